package service

import (
	"context"
	"errors"
	"strings"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/database"
	"github.com/roombook/backend/internal/database/models"
)

func NewRoomService(stores Stores) *RoomService {
	return &RoomService{
		baseService: baseService{Stores: stores},
	}
}

type RoomService struct {
	baseService
}

func (s *RoomService) Create(ctx context.Context, ownerID int64, name string) (room models.Room, err error) {
	if name = strings.TrimSpace(name); name == "" {
		err = apperror.Validation(MsgRoomNameRequired)
		return
	}
	if ownerID <= 0 {
		err = apperror.Validation(MsgUserIDRequired)
		return
	}

	if err = s.ensureNameFree(ctx, ownerID, name, 0); err != nil {
		return
	}

	room = models.Room{
		Name:      name,
		CreatedBy: ownerID,
	}
	if err = s.Rooms.Create(ctx, &room); errors.Is(err, database.ErrDuplicate) {
		err = apperror.Wrap(apperror.KindConflict, MsgRoomNameTaken, err)
	}
	return
}

func (s *RoomService) Get(ctx context.Context, id int64) (room models.Room, err error) {
	if id <= 0 {
		err = apperror.Validation(MsgRoomIDRequired)
		return
	}
	return s.findRoom(ctx, id)
}

// Update renames a room. Only the owner may rename it, and the new name must
// not clash with another room of the same owner.
func (s *RoomService) Update(ctx context.Context, requesterID, id int64, name string) (room models.Room, err error) {
	if id <= 0 {
		err = apperror.Validation(MsgRoomIDRequired)
		return
	}
	if name = strings.TrimSpace(name); name == "" {
		err = apperror.Validation(MsgRoomNameRequired)
		return
	}

	if room, err = s.findRoom(ctx, id); err != nil {
		return
	}
	if room.CreatedBy != requesterID {
		err = apperror.Forbidden(MsgRoomNotOwned)
		return
	}
	if room.Name == name {
		return
	}

	if err = s.ensureNameFree(ctx, room.CreatedBy, name, room.ID); err != nil {
		return
	}

	room.Name = name
	if err = s.Rooms.Rename(ctx, &room); errors.Is(err, database.ErrDuplicate) {
		err = apperror.Wrap(apperror.KindConflict, MsgRoomNameTaken, err)
	} else if errors.Is(err, database.ErrNotFound) {
		err = apperror.NotFound(MsgRoomNotFound)
	}
	return
}

// Delete removes a room that has no bookings and returns it.
func (s *RoomService) Delete(ctx context.Context, requesterID, id int64) (room models.Room, err error) {
	if id <= 0 {
		err = apperror.Validation(MsgRoomIDRequired)
		return
	}

	if room, err = s.findRoom(ctx, id); err != nil {
		return
	}
	if room.CreatedBy != requesterID {
		err = apperror.Forbidden(MsgRoomNotOwned)
		return
	}

	var bookings int
	if bookings, err = s.Bookings.CountForRoom(ctx, id); err != nil {
		return
	} else if bookings > 0 {
		err = apperror.Conflict(MsgRoomHasBookings)
		return
	}

	if err = s.Rooms.Delete(ctx, id); errors.Is(err, database.ErrForeignKey) {
		// A booking landed between the count and the delete.
		err = apperror.Wrap(apperror.KindConflict, MsgRoomHasBookings, err)
	} else if errors.Is(err, database.ErrNotFound) {
		err = apperror.NotFound(MsgRoomNotFound)
	}
	return
}

func (s *RoomService) List(ctx context.Context, ownerID int64, limit, offset int) (page Page[models.Room], err error) {
	if ownerID <= 0 {
		err = apperror.Validation(MsgUserIDRequired)
		return
	}
	if limit, offset, err = pagination(limit, offset); err != nil {
		return
	}

	page.Rows, page.Count, err = s.Rooms.ListByOwner(ctx, ownerID, limit, offset)
	return
}

func (s *RoomService) ensureNameFree(ctx context.Context, ownerID int64, name string, exceptID int64) error {
	existing, err := s.Rooms.FindByName(ctx, ownerID, name)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != exceptID:
		return apperror.Conflict(MsgRoomNameTaken)
	}
	return nil
}
