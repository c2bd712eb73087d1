package database

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/roombook/backend/internal/database/models"
)

type UserStore struct {
	DB bun.IDB
}

func NewUserStore(db bun.IDB) *UserStore {
	return &UserStore{DB: db}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) (err error) {
	_, err = s.DB.NewInsert().
		Model(user).
		Returning("*").
		Exec(ctx)
	return classify(err)
}

func (s *UserStore) Get(ctx context.Context, id int64) (user models.User, err error) {
	err = s.DB.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Scan(ctx)
	err = classify(err)
	return
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (user models.User, err error) {
	err = s.DB.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Scan(ctx)
	err = classify(err)
	return
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (exists bool, err error) {
	exists, err = s.DB.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	err = classify(err)
	return
}

func (s *UserStore) NameExists(ctx context.Context, name string) (exists bool, err error) {
	exists, err = s.DB.NewSelect().
		Model((*models.User)(nil)).
		Where("name = ?", name).
		Exists(ctx)
	err = classify(err)
	return
}
