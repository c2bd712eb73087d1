package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/database"
	"github.com/roombook/backend/internal/database/models"
)

const (
	DefaultPageLimit = 10
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
}

type RoomStore interface {
	Create(ctx context.Context, room *models.Room) error
	Get(ctx context.Context, id int64) (models.Room, error)
	FindByName(ctx context.Context, ownerID int64, name string) (models.Room, error)
	Rename(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]models.Room, int, error)
}

type BookingStore interface {
	CreateExclusive(ctx context.Context, booking *models.Booking) ([]models.Booking, error)
	Get(ctx context.Context, id int64) (models.Booking, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, booking *models.Booking) error
	CountForRoom(ctx context.Context, roomID int64) (int, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	ListForRoom(ctx context.Context, roomID int64, from, to time.Time, limit, offset int) ([]models.Booking, int, error)
}

// Stores bundles the persistence the services run against.
type Stores struct {
	Users    UserStore
	Rooms    RoomStore
	Bookings BookingStore
}

// Page is a slice of rows plus the total number of matching rows.
type Page[T any] struct {
	Rows  []T `json:"rows"`
	Count int `json:"count"`
}

type baseService struct {
	Stores
}

func (s *baseService) findRoom(ctx context.Context, roomID int64) (room models.Room, err error) {
	if room, err = s.Rooms.Get(ctx, roomID); errors.Is(err, database.ErrNotFound) {
		err = apperror.NotFound(MsgRoomNotFound)
	} else if err != nil {
		err = fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	return
}

func (s *baseService) findUser(ctx context.Context, userID int64) (user models.User, err error) {
	if user, err = s.Users.Get(ctx, userID); errors.Is(err, database.ErrNotFound) {
		err = apperror.NotFound(MsgUserNotFound)
	} else if err != nil {
		err = fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return
}

func (s *baseService) findBooking(ctx context.Context, bookingID int64) (booking models.Booking, err error) {
	if booking, err = s.Bookings.Get(ctx, bookingID); errors.Is(err, database.ErrNotFound) {
		err = apperror.NotFound(MsgBookingNotFound)
	} else if err != nil {
		err = fmt.Errorf("failed to load booking %d: %w", bookingID, err)
	}
	return
}

func pagination(limit, offset int) (int, int, error) {
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 {
		return 0, 0, apperror.Validation(MsgInvalidLimit)
	}
	if offset < 0 {
		return 0, 0, apperror.Validation(MsgInvalidOffset)
	}
	return limit, offset, nil
}
