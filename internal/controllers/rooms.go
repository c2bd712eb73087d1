package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/cctx"
	"github.com/roombook/backend/internal/database/models"
	"github.com/roombook/backend/internal/router"
	"github.com/roombook/backend/internal/service"
)

var _ router.Controller = (*RoomController)(nil)

type RoomLogic interface {
	Create(ctx context.Context, ownerID int64, name string) (models.Room, error)
	Get(ctx context.Context, id int64) (models.Room, error)
	Update(ctx context.Context, requesterID, id int64, name string) (models.Room, error)
	Delete(ctx context.Context, requesterID, id int64) (models.Room, error)
	List(ctx context.Context, ownerID int64, limit, offset int) (service.Page[models.Room], error)
}

type BookingLogic interface {
	Create(ctx context.Context, req service.NewBooking) (models.Booking, error)
	Delete(ctx context.Context, id, requesterID int64) (models.Booking, error)
	SetStatus(ctx context.Context, id, requesterID int64, status models.BookingStatus) (models.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	ListForRoom(ctx context.Context, roomID int64, from, to time.Time, limit, offset int) (service.Page[models.Booking], error)
}

// RoomController serves rooms and the bookings nested under them. It expects
// to be registered on a router guarded by router.RequireBearer.
type RoomController struct {
	Rooms    RoomLogic
	Bookings BookingLogic
}

var (
	roomKeys         = allowedKeys("name", "userId")
	roomListKeys     = allowedKeys("limit", "offset")
	bookingKeys      = allowedKeys("title", "start_at", "end_at", "userId")
	bookingQueryKeys = allowedKeys("limit", "offset", "from", "to")
)

type roomRequest struct {
	Name string `json:"name"`
	// accepted for older clients, the principal always wins
	UserID *int64 `json:"userId"`
}

type bookingRequest struct {
	Title   string `json:"title"`
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
	UserID  *int64 `json:"userId"`
}

type conflictingRange struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

func principal(r *http.Request) (int64, error) {
	userID, ok := cctx.UserIDFrom(r.Context())
	if !ok {
		return 0, apperror.Unauthorized("Authorization header is missing. Please log in to continue.")
	}
	return userID, nil
}

func (c *RoomController) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	var req roomRequest
	if err := decodeBody(r, roomKeys, &req); err != nil {
		router.WriteError(w, r, err)
		return
	}

	room, err := c.Rooms.Create(r.Context(), userID, req.Name)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Room created successfully",
		"room":    room,
	})
}

func (c *RoomController) handleList(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	if err := checkQuery(q, roomListKeys); err != nil {
		router.WriteError(w, r, err)
		return
	}
	limit, err := queryInt(q, "limit", service.DefaultPageLimit)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	offset, err := queryInt(q, "offset", 0)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	page, err := c.Rooms.List(r.Context(), userID, limit, offset)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Rooms found",
		"rooms":   page,
	})
}

func (c *RoomController) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	room, err := c.Rooms.Get(r.Context(), id)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Room found",
		"room":    room,
	})
}

func (c *RoomController) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	var req roomRequest
	if err := decodeBody(r, roomKeys, &req); err != nil {
		router.WriteError(w, r, err)
		return
	}

	room, err := c.Rooms.Update(r.Context(), userID, id, req.Name)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Room updated successfully",
		"room":    room,
	})
}

func (c *RoomController) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	room, err := c.Rooms.Delete(r.Context(), userID, id)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Room deleted successfully",
		"room":    room,
	})
}

func (c *RoomController) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	roomID, err := pathID(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	var req bookingRequest
	if err := decodeBody(r, bookingKeys, &req); err != nil {
		router.WriteError(w, r, err)
		return
	}
	if req.UserID != nil && *req.UserID <= 0 {
		router.WriteError(w, r, apperror.Validation(service.MsgUserIDRequired))
		return
	}
	startAt, err := parseTimestamp("start_at", req.StartAt)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	endAt, err := parseTimestamp("end_at", req.EndAt)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	booking, err := c.Bookings.Create(r.Context(), service.NewBooking{
		RoomID:  roomID,
		UserID:  userID,
		Title:   req.Title,
		StartAt: startAt,
		EndAt:   endAt,
	})
	var conflict *service.BookingConflictError
	if errors.As(err, &conflict) {
		writeConflict(w, r, conflict)
		return
	} else if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

func writeConflict(w http.ResponseWriter, r *http.Request, conflict *service.BookingConflictError) {
	if ce := zap.L().Check(zapcore.DebugLevel, "booking rejected"); ce != nil {
		ce.Write(
			zap.String("request_id", cctx.RequestIDFrom(r.Context())),
			zap.String("conflicts", spew.Sdump(conflict.Conflicts)),
		)
	}

	ranges := make([]conflictingRange, 0, len(conflict.Conflicts))
	for _, b := range conflict.Conflicts {
		ranges = append(ranges, conflictingRange{
			ID:      b.ID,
			Title:   b.Title,
			StartAt: b.StartAt,
			EndAt:   b.EndAt,
		})
	}

	router.WriteJSON(w, http.StatusConflict, map[string]interface{}{
		"error":             "BOOKING_CONFLICT",
		"message":           conflict.Error(),
		"conflictingRanges": ranges,
	})
}

func (c *RoomController) handleListBookings(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	if err := checkQuery(q, bookingQueryKeys); err != nil {
		router.WriteError(w, r, err)
		return
	}
	from, err := parseTimestamp("from", q.Get("from"))
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	to, err := parseTimestamp("to", q.Get("to"))
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	limit, err := queryInt(q, "limit", service.DefaultPageLimit)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	offset, err := queryInt(q, "offset", 0)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	page, err := c.Bookings.ListForRoom(r.Context(), roomID, from, to, limit, offset)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Bookings found",
		"rows":    page.Rows,
		"count":   page.Count,
	})
}

func (c *RoomController) Register(router *mux.Router) {
	router.HandleFunc("/rooms", c.handleCreate).
		Methods(http.MethodPost)
	router.HandleFunc("/rooms", c.handleList).
		Methods(http.MethodGet)
	router.HandleFunc("/rooms/{id}", c.handleGet).
		Methods(http.MethodGet)
	router.HandleFunc("/rooms/{id}", c.handleUpdate).
		Methods(http.MethodPut)
	router.HandleFunc("/rooms/{id}", c.handleDelete).
		Methods(http.MethodDelete)
	router.HandleFunc("/rooms/{id}/bookings", c.handleCreateBooking).
		Methods(http.MethodPost)
	router.HandleFunc("/rooms/{id}/bookings", c.handleListBookings).
		Methods(http.MethodGet)
}
