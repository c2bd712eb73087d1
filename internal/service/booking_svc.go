package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/database"
	"github.com/roombook/backend/internal/database/models"
)

const (
	minTitleLength = 3
	maxTitleLength = 80
)

// BookingConflictError reports every booking that overlaps a rejected request.
type BookingConflictError struct {
	Conflicts []models.Booking
}

func (e *BookingConflictError) Error() string {
	return MsgBookingConflict
}

func (e *BookingConflictError) ErrorKind() apperror.Kind {
	return apperror.KindConflict
}

func NewBookingService(stores Stores) *BookingService {
	return &BookingService{
		baseService: baseService{Stores: stores},
	}
}

type BookingService struct {
	baseService
}

type NewBooking struct {
	RoomID  int64
	UserID  int64
	Title   string
	StartAt time.Time
	EndAt   time.Time
}

func (s *BookingService) Create(ctx context.Context, req NewBooking) (booking models.Booking, err error) {
	if req.RoomID <= 0 {
		err = apperror.Validation(MsgRoomIDRequired)
		return
	}

	if !req.StartAt.Before(req.EndAt) {
		err = apperror.Validation(MsgStartBeforeEnd)
		return
	}
	title := strings.TrimSpace(req.Title)
	if n := utf8.RuneCountInString(title); n < minTitleLength || n > maxTitleLength {
		err = apperror.Validation(MsgTitleLength)
		return
	}

	if _, err = s.findRoom(ctx, req.RoomID); err != nil {
		return
	}
	if _, err = s.findUser(ctx, req.UserID); err != nil {
		return
	}

	booking = models.Booking{
		UserID:  req.UserID,
		RoomID:  req.RoomID,
		Title:   title,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
		Status:  models.BookingPending,
	}

	var conflicts []models.Booking
	conflicts, err = s.Bookings.CreateExclusive(ctx, &booking)
	switch {
	case errors.Is(err, database.ErrNotFound):
		// Room deleted after the lookup above.
		err = apperror.NotFound(MsgRoomNotFound)
	case errors.Is(err, database.ErrOverlap):
		err = &BookingConflictError{}
	case err == nil && len(conflicts) > 0:
		err = &BookingConflictError{Conflicts: conflicts}
	}
	if err != nil {
		booking = models.Booking{}
	}
	return
}

// Delete removes a booking owned by requesterID unless it is in progress.
func (s *BookingService) Delete(ctx context.Context, id, requesterID int64) (booking models.Booking, err error) {
	if id <= 0 {
		err = apperror.Validation(MsgBookingIDRequired)
		return
	}

	if booking, err = s.findBooking(ctx, id); err != nil {
		return
	}
	if booking.UserID != requesterID {
		err = apperror.Forbidden(MsgBookingNotOwned)
		return
	}
	if booking.Status == models.BookingInProgress {
		err = apperror.Conflict(MsgBookingActive)
		return
	}

	if err = s.Bookings.Delete(ctx, id); errors.Is(err, database.ErrNotFound) {
		err = apperror.NotFound(MsgBookingNotFound)
	}
	return
}

func (s *BookingService) SetStatus(ctx context.Context, id, requesterID int64, status models.BookingStatus) (booking models.Booking, err error) {
	if id <= 0 {
		err = apperror.Validation(MsgBookingIDRequired)
		return
	}
	if !status.Valid() {
		err = apperror.Validation(MsgInvalidStatus)
		return
	}

	if booking, err = s.findBooking(ctx, id); err != nil {
		return
	}
	if booking.UserID != requesterID {
		err = apperror.Forbidden(MsgBookingNotOwnedMod)
		return
	}
	if booking.Status == status {
		return
	}

	booking.Status = status
	if err = s.Bookings.SetStatus(ctx, &booking); errors.Is(err, database.ErrNotFound) {
		err = apperror.NotFound(MsgBookingNotFound)
	}
	return
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64) (bookings []models.Booking, err error) {
	if userID <= 0 {
		err = apperror.Validation(MsgUserIDRequired)
		return
	}
	return s.Bookings.ListByUser(ctx, userID)
}

// ListForRoom pages through the bookings of a room that intersect [from, to),
// earliest first.
func (s *BookingService) ListForRoom(ctx context.Context, roomID int64, from, to time.Time, limit, offset int) (page Page[models.Booking], err error) {
	if roomID <= 0 {
		err = apperror.Validation(MsgRoomIDRequired)
		return
	}
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		err = apperror.Validation(MsgRangeRequired)
		return
	}
	if limit, offset, err = pagination(limit, offset); err != nil {
		return
	}

	page.Rows, page.Count, err = s.Bookings.ListForRoom(ctx, roomID, from, to, limit, offset)
	return
}
