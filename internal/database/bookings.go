package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/roombook/backend/internal/database/models"
)

type BookingStore struct {
	DB *bun.DB
}

func NewBookingStore(db *bun.DB) *BookingStore {
	return &BookingStore{DB: db}
}

// CreateExclusive inserts booking unless it overlaps an existing booking of
// the same room, in which case the overlapping bookings are returned and
// nothing is written. The room row stays locked for the whole check-and-insert;
// the bookings_no_overlap constraint rejects anything that gets past it.
func (s *BookingStore) CreateExclusive(ctx context.Context, booking *models.Booking) (conflicts []models.Booking, err error) {
	err = s.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) (err error) {
		var room models.Room
		err = tx.NewSelect().
			Model(&room).
			Column("id").
			Where("id = ?", booking.RoomID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return classify(err)
		}

		if conflicts, err = overlapping(ctx, tx, booking.RoomID, booking.StartAt, booking.EndAt); err != nil || len(conflicts) > 0 {
			return
		}

		_, err = tx.NewInsert().
			Model(booking).
			Returning("*").
			Exec(ctx)
		return classify(err)
	})

	if errors.Is(err, ErrOverlap) {
		// Lost a race against a writer that did not take the room lock.
		if conflicts, err = overlapping(ctx, s.DB, booking.RoomID, booking.StartAt, booking.EndAt); err == nil && len(conflicts) == 0 {
			err = ErrOverlap
		}
	}
	return
}

func overlapping(ctx context.Context, db bun.IDB, roomID int64, start, end time.Time) (bookings []models.Booking, err error) {
	bookings = make([]models.Booking, 0)
	err = db.NewSelect().
		Model(&bookings).
		Where("room_id = ?", roomID).
		Where("start_at < ?", end).
		Where("end_at > ?", start).
		Order("start_at ASC").
		Scan(ctx)
	err = classify(err)
	return
}

func (s *BookingStore) Get(ctx context.Context, id int64) (booking models.Booking, err error) {
	err = s.DB.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Scan(ctx)
	err = classify(err)
	return
}

func (s *BookingStore) Delete(ctx context.Context, id int64) (err error) {
	res, err := s.DB.NewDelete().
		Model((*models.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return classify(err)
	}
	return requireAffected(res)
}

// SetStatus stores booking.Status and refreshes booking from the updated row.
func (s *BookingStore) SetStatus(ctx context.Context, booking *models.Booking) (err error) {
	_, err = s.DB.NewUpdate().
		Model(booking).
		Set("status = ?", booking.Status).
		Set("updated_at = current_timestamp").
		Where("id = ?", booking.ID).
		Returning("*").
		Exec(ctx)
	return classify(err)
}

func (s *BookingStore) CountForRoom(ctx context.Context, roomID int64) (count int, err error) {
	count, err = s.DB.NewSelect().
		Model((*models.Booking)(nil)).
		Where("room_id = ?", roomID).
		Count(ctx)
	err = classify(err)
	return
}

func (s *BookingStore) ListByUser(ctx context.Context, userID int64) (bookings []models.Booking, err error) {
	bookings = make([]models.Booking, 0)
	err = s.DB.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("start_at ASC").
		Scan(ctx)
	err = classify(err)
	return
}

// ListForRoom pages through the bookings of a room that intersect [from, to).
func (s *BookingStore) ListForRoom(ctx context.Context, roomID int64, from, to time.Time, limit, offset int) (bookings []models.Booking, count int, err error) {
	bookings = make([]models.Booking, 0)

	filter := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("room_id = ?", roomID).
			Where("start_at < ?", to).
			Where("end_at > ?", from)
	}

	count, err = s.DB.NewSelect().
		Model((*models.Booking)(nil)).
		Apply(filter).
		Count(ctx)
	if err != nil {
		err = classify(err)
		return
	}

	err = s.DB.NewSelect().
		Model(&bookings).
		Apply(filter).
		Order("start_at ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	err = classify(err)
	return
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
