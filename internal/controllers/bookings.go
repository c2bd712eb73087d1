package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roombook/backend/internal/database/models"
	"github.com/roombook/backend/internal/router"
)

var _ router.Controller = (*BookingController)(nil)

// BookingController serves the principal's bookings. Like RoomController it
// expects a router guarded by router.RequireBearer.
type BookingController struct {
	Bookings BookingLogic
}

var statusKeys = allowedKeys("status")

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
}

func (c *BookingController) handleList(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	bookings, err := c.Bookings.ListByUser(r.Context(), userID)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Bookings found",
		"rows":    bookings,
		"count":   len(bookings),
	})
}

func (c *BookingController) handleSetStatus(w http.ResponseWriter, r *http.Request) {
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

	var req statusRequest
	if err := decodeBody(r, statusKeys, &req); err != nil {
		router.WriteError(w, r, err)
		return
	}

	booking, err := c.Bookings.SetStatus(r.Context(), id, userID, req.Status)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Booking updated successfully",
		"booking": booking,
	})
}

func (c *BookingController) handleDelete(w http.ResponseWriter, r *http.Request) {
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

	booking, err := c.Bookings.Delete(r.Context(), id, userID)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Booking deleted successfully",
		"booking": booking,
	})
}

func (c *BookingController) Register(router *mux.Router) {
	router.HandleFunc("/bookings", c.handleList).
		Methods(http.MethodGet)
	router.HandleFunc("/bookings/{id}", c.handleSetStatus).
		Methods(http.MethodPatch)
	router.HandleFunc("/bookings/{id}", c.handleDelete).
		Methods(http.MethodDelete)
}
