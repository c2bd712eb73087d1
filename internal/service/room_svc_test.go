package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/database/models"
)

func TestCreateRoom(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	owner := mem.addUser("owner")

	room, err := svc.Create(context.Background(), owner.ID, "  A101 ")
	require.NoError(t, err)
	assert.Equal(t, "A101", room.Name)
	assert.Equal(t, owner.ID, room.CreatedBy)
}

func TestCreateRoomValidation(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())

	_, err := svc.Create(context.Background(), 1, " ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, MsgRoomNameRequired, apperror.Message(err))
}

func TestCreateRoomNameScopedToOwner(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	ctx := context.Background()
	a, b := mem.addUser("a"), mem.addUser("b")

	_, err := svc.Create(ctx, a.ID, "A101")
	require.NoError(t, err)

	_, err = svc.Create(ctx, a.ID, "A101")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, MsgRoomNameTaken, apperror.Message(err))

	_, err = svc.Create(ctx, b.ID, "A101")
	assert.NoError(t, err)
}

func TestGetRoom(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	ctx := context.Background()
	room := mem.addRoom(mem.addUser("owner").ID, "A101")

	first, err := svc.Get(ctx, room.ID)
	require.NoError(t, err)
	second, err := svc.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = svc.Get(ctx, 999)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, MsgRoomNotFound, apperror.Message(err))

	_, err = svc.Get(ctx, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateRoom(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	ctx := context.Background()
	owner := mem.addUser("owner")
	room := mem.addRoom(owner.ID, "A101")
	mem.addRoom(owner.ID, "B202")

	updated, err := svc.Update(ctx, owner.ID, room.ID, "C303")
	require.NoError(t, err)
	assert.Equal(t, "C303", updated.Name)
	assert.Equal(t, "C303", mem.rooms[room.ID].Name)

	_, err = svc.Update(ctx, owner.ID, room.ID, "B202")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = svc.Update(ctx, owner.ID, room.ID, "")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Update(ctx, owner.ID, 999, "D404")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Update(ctx, owner.ID+100, room.ID, "D404")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestDeleteRoom(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	ctx := context.Background()
	owner := mem.addUser("owner")
	room := mem.addRoom(owner.ID, "A101")

	deleted, err := svc.Delete(ctx, owner.ID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room, deleted)

	_, err = svc.Delete(ctx, owner.ID, room.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteRoomWithBookings(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	ctx := context.Background()
	owner := mem.addUser("owner")
	room := mem.addRoom(owner.ID, "A101")
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	mem.addBooking(models.Booking{RoomID: room.ID, UserID: owner.ID, Title: "Standup", StartAt: start, EndAt: start.Add(30 * time.Minute)})

	_, err := svc.Delete(ctx, owner.ID, room.ID)

	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Room has bookings. Delete them before deleting the room", apperror.Message(err))
	assert.Contains(t, mem.rooms, room.ID)
}

func TestDeleteRoomNotOwner(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	room := mem.addRoom(mem.addUser("owner").ID, "A101")
	intruder := mem.addUser("intruder")

	_, err := svc.Delete(context.Background(), intruder.ID, room.ID)

	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	assert.Contains(t, mem.rooms, room.ID)
}

func TestListRooms(t *testing.T) {
	mem := newMemStore()
	svc := NewRoomService(mem.stores())
	ctx := context.Background()
	owner, other := mem.addUser("owner"), mem.addUser("other")
	for _, name := range []string{"A", "B", "C"} {
		mem.addRoom(owner.ID, name)
	}
	mem.addRoom(other.ID, "X")

	page, err := svc.List(ctx, owner.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Rows, 3)
	assert.Equal(t, "A", page.Rows[0].Name)

	page, err = svc.List(ctx, owner.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "B", page.Rows[0].Name)
	assert.Equal(t, "C", page.Rows[1].Name)

	_, err = svc.List(ctx, 0, 10, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.List(ctx, owner.ID, -1, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.List(ctx, owner.ID, 10, -1)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
