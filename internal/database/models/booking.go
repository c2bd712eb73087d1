package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingInProgress BookingStatus = "in_progress"
	BookingPending    BookingStatus = "pending"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingInProgress, BookingPending, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID        int64         `bun:",pk,autoincrement" json:"id"`
	UserID    int64         `bun:",notnull" json:"userId"`
	RoomID    int64         `bun:",notnull" json:"roomId"`
	Title     string        `bun:",notnull" json:"title"`
	StartAt   time.Time     `bun:",notnull" json:"start_at"`
	EndAt     time.Time     `bun:",notnull" json:"end_at"`
	Status    BookingStatus `bun:",nullzero,notnull,default:'pending'" json:"status"`
	CreatedAt time.Time     `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time     `bun:",nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Overlaps reports whether b intersects the half-open interval [start, end).
// The SQL side uses the same predicate: start_at < end AND end_at > start.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartAt.Before(end) && b.EndAt.After(start)
}
