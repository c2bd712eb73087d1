package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roombook/backend/internal/auth"
	"github.com/roombook/backend/internal/database"
	"github.com/roombook/backend/internal/database/models"
)

// memStore is an in-memory stand-in for the Postgres stores, enforcing the
// same uniqueness, reference and overlap rules as the schema.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]models.User
	rooms    map[int64]models.Room
	bookings map[int64]models.Booking

	// failNext, when set, is returned by the next insert instead of writing.
	failNext error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]models.User),
		rooms:    make(map[int64]models.Room),
		bookings: make(map[int64]models.Booking),
	}
}

func (m *memStore) stores() Stores {
	return Stores{
		Users:    memUsers{m},
		Rooms:    memRooms{m},
		Bookings: memBookings{m},
	}
}

func (m *memStore) takeFailure() (err error) {
	err, m.failNext = m.failNext, nil
	return
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(name string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{ID: m.id(), Name: name, Username: name, Email: name + "@example.com"}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addRoom(ownerID int64, name string) models.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := models.Room{ID: m.id(), Name: name, CreatedBy: ownerID}
	m.rooms[r.ID] = r
	return r
}

func (m *memStore) addBooking(b models.Booking) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.id()
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	m.bookings[b.ID] = b
	return b
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m memUsers) Get(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return u, database.ErrNotFound
	}
	return u, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (m memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m memUsers) NameExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type memRooms struct{ *memStore }

func (m memRooms) Create(_ context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.CreatedBy == room.CreatedBy && r.Name == room.Name {
			return database.ErrDuplicate
		}
	}
	room.ID = m.id()
	m.rooms[room.ID] = *room
	return nil
}

func (m memRooms) Get(_ context.Context, id int64) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return r, database.ErrNotFound
	}
	return r, nil
}

func (m memRooms) FindByName(_ context.Context, ownerID int64, name string) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.CreatedBy == ownerID && r.Name == name {
			return r, nil
		}
	}
	return models.Room{}, database.ErrNotFound
}

func (m memRooms) Rename(_ context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[room.ID]
	if !ok {
		return database.ErrNotFound
	}
	r.Name = room.Name
	m.rooms[r.ID] = r
	*room = r
	return nil
}

func (m memRooms) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return database.ErrNotFound
	}
	for _, b := range m.bookings {
		if b.RoomID == id {
			return database.ErrForeignKey
		}
	}
	delete(m.rooms, id)
	return nil
}

func (m memRooms) ListByOwner(_ context.Context, ownerID int64, limit, offset int) ([]models.Room, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Room
	for _, r := range m.rooms {
		if r.CreatedBy == ownerID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, limit, offset), len(all), nil
}

type memBookings struct{ *memStore }

func (m memBookings) CreateExclusive(_ context.Context, booking *models.Booking) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	if _, ok := m.rooms[booking.RoomID]; !ok {
		return nil, database.ErrNotFound
	}
	conflicts := m.overlapping(booking.RoomID, booking.StartAt, booking.EndAt)
	if len(conflicts) > 0 {
		return conflicts, nil
	}
	booking.ID = m.id()
	m.bookings[booking.ID] = *booking
	return nil, nil
}

func (m memBookings) overlapping(roomID int64, start, end time.Time) []models.Booking {
	var out []models.Booking
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out
}

func (m memBookings) Get(_ context.Context, id int64) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return b, database.ErrNotFound
	}
	return b, nil
}

func (m memBookings) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m memBookings) SetStatus(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[booking.ID]
	if !ok {
		return database.ErrNotFound
	}
	b.Status = booking.Status
	m.bookings[b.ID] = b
	*booking = b
	return nil
}

func (m memBookings) CountForRoom(_ context.Context, roomID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

func (m memBookings) ListByUser(_ context.Context, userID int64) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m memBookings) ListForRoom(_ context.Context, roomID int64, from, to time.Time, limit, offset int) ([]models.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.overlapping(roomID, from, to)
	return window(all, limit, offset), len(all), nil
}

func sortByStart(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartAt.Before(bookings[j].StartAt) })
}

func window[T any](rows []T, limit, offset int) []T {
	out := make([]T, 0)
	if offset >= len(rows) {
		return out
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return append(out, rows...)
}

// fixedTokens issues "token-<id>" and accepts only those.
type fixedTokens struct{}

func (fixedTokens) Issue(userID int64) (string, time.Time) {
	return "token-" + strconv.FormatInt(userID, 10), time.Now().Add(time.Hour)
}

func (fixedTokens) Verify(token string) (int64, error) {
	if !strings.HasPrefix(token, "token-") {
		return 0, auth.ErrInvalidToken
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(token, "token-"), 10, 64)
	if err != nil {
		return 0, auth.ErrInvalidToken
	}
	return id, nil
}
