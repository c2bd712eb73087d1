package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/database/models"
	"github.com/roombook/backend/internal/router"
	"github.com/roombook/backend/internal/service"
)

const testToken = "good"

type stubAuth struct {
	register     func(reg service.Registration) (models.User, error)
	authenticate func(email, password string) (string, error)
}

func (s *stubAuth) VerifyToken(token string) (int64, error) {
	if token == testToken {
		return 7, nil
	}
	return 0, apperror.Wrap(apperror.KindUnauthorized, service.MsgInvalidToken, errors.New("bad token"))
}

func (s *stubAuth) Register(_ context.Context, reg service.Registration) (models.User, error) {
	return s.register(reg)
}

func (s *stubAuth) Authenticate(_ context.Context, email, password string) (string, error) {
	return s.authenticate(email, password)
}

type stubRooms struct {
	create func(ownerID int64, name string) (models.Room, error)
	get    func(id int64) (models.Room, error)
	update func(requesterID, id int64, name string) (models.Room, error)
	delete func(requesterID, id int64) (models.Room, error)
	list   func(ownerID int64, limit, offset int) (service.Page[models.Room], error)
}

func (s *stubRooms) Create(_ context.Context, ownerID int64, name string) (models.Room, error) {
	return s.create(ownerID, name)
}

func (s *stubRooms) Get(_ context.Context, id int64) (models.Room, error) {
	return s.get(id)
}

func (s *stubRooms) Update(_ context.Context, requesterID, id int64, name string) (models.Room, error) {
	return s.update(requesterID, id, name)
}

func (s *stubRooms) Delete(_ context.Context, requesterID, id int64) (models.Room, error) {
	return s.delete(requesterID, id)
}

func (s *stubRooms) List(_ context.Context, ownerID int64, limit, offset int) (service.Page[models.Room], error) {
	return s.list(ownerID, limit, offset)
}

type stubBookings struct {
	create      func(req service.NewBooking) (models.Booking, error)
	delete      func(id, requesterID int64) (models.Booking, error)
	setStatus   func(id, requesterID int64, status models.BookingStatus) (models.Booking, error)
	listByUser  func(userID int64) ([]models.Booking, error)
	listForRoom func(roomID int64, from, to time.Time, limit, offset int) (service.Page[models.Booking], error)
}

func (s *stubBookings) Create(_ context.Context, req service.NewBooking) (models.Booking, error) {
	return s.create(req)
}

func (s *stubBookings) Delete(_ context.Context, id, requesterID int64) (models.Booking, error) {
	return s.delete(id, requesterID)
}

func (s *stubBookings) SetStatus(_ context.Context, id, requesterID int64, status models.BookingStatus) (models.Booking, error) {
	return s.setStatus(id, requesterID, status)
}

func (s *stubBookings) ListByUser(_ context.Context, userID int64) ([]models.Booking, error) {
	return s.listByUser(userID)
}

func (s *stubBookings) ListForRoom(_ context.Context, roomID int64, from, to time.Time, limit, offset int) (service.Page[models.Booking], error) {
	return s.listForRoom(roomID, from, to, limit, offset)
}

// newTestAPI wires controllers the same way the serve command does.
func newTestAPI(auth *stubAuth, rooms *stubRooms, bookings *stubBookings) http.Handler {
	r := mux.NewRouter()
	router.RegisterAll(r, &AuthController{Auth: auth})

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(router.RequireBearer(auth))
	router.RegisterAll(api,
		&RoomController{Rooms: rooms, Bookings: bookings},
		&BookingController{Bookings: bookings},
	)
	return r
}
