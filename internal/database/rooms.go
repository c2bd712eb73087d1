package database

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/roombook/backend/internal/database/models"
)

type RoomStore struct {
	DB bun.IDB
}

func NewRoomStore(db bun.IDB) *RoomStore {
	return &RoomStore{DB: db}
}

func (s *RoomStore) Create(ctx context.Context, room *models.Room) (err error) {
	_, err = s.DB.NewInsert().
		Model(room).
		Returning("*").
		Exec(ctx)
	return classify(err)
}

func (s *RoomStore) Get(ctx context.Context, id int64) (room models.Room, err error) {
	err = s.DB.NewSelect().
		Model(&room).
		Where("id = ?", id).
		Scan(ctx)
	err = classify(err)
	return
}

// FindByName looks up the room an owner registered under name.
func (s *RoomStore) FindByName(ctx context.Context, ownerID int64, name string) (room models.Room, err error) {
	err = s.DB.NewSelect().
		Model(&room).
		Where("created_by = ?", ownerID).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	err = classify(err)
	return
}

// Rename stores room.Name and refreshes room from the updated row.
func (s *RoomStore) Rename(ctx context.Context, room *models.Room) (err error) {
	_, err = s.DB.NewUpdate().
		Model(room).
		Set("name = ?", room.Name).
		Set("updated_at = current_timestamp").
		Where("id = ?", room.ID).
		Returning("*").
		Exec(ctx)
	return classify(err)
}

func (s *RoomStore) Delete(ctx context.Context, id int64) (err error) {
	res, err := s.DB.NewDelete().
		Model((*models.Room)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return classify(err)
	}
	return requireAffected(res)
}

func (s *RoomStore) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) (rooms []models.Room, count int, err error) {
	rooms = make([]models.Room, 0)

	count, err = s.DB.NewSelect().
		Model((*models.Room)(nil)).
		Where("created_by = ?", ownerID).
		Count(ctx)
	if err != nil {
		err = classify(err)
		return
	}

	err = s.DB.NewSelect().
		Model(&rooms).
		Where("created_by = ?", ownerID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	err = classify(err)
	return
}
