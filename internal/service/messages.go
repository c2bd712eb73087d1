package service

// Client-facing failure messages.
const (
	MsgRegisterFieldsRequired = "All fields are required: name, username, email, password."
	MsgEmailTaken             = "A user with this email already exists."
	MsgNameTaken              = "A user with this name already exists."
	MsgLoginFieldsRequired    = "Email and password are required."
	MsgUserUnknown            = "Invalid credentials. User not found."
	MsgBadPassword            = "Invalid credentials. Invalid password."
	MsgInvalidToken           = "Invalid or expired token. Please log in again."

	MsgRoomNameRequired = "Room name is required"
	MsgRoomIDRequired   = "Room id is required"
	MsgUserIDRequired   = "Valid userId is required"
	MsgRoomNotFound     = "Room not found"
	MsgUserNotFound     = "User not found"
	MsgRoomNameTaken    = "A room with this name already exists"
	MsgRoomHasBookings  = "Room has bookings. Delete them before deleting the room"
	MsgRoomNotOwned     = "You are not authorized to modify this room"
	MsgInvalidLimit     = "limit must be a positive integer"
	MsgInvalidOffset    = "offset must be a non-negative integer"

	MsgStartBeforeEnd     = "Start date must be before end date"
	MsgTitleLength        = "Title must be between 3 and 80 characters"
	MsgRangeRequired      = "from and to are required and from must be before to"
	MsgBookingIDRequired  = "Booking id is required"
	MsgBookingNotFound    = "Booking not found"
	MsgBookingNotOwned    = "You are not authorized to delete this booking"
	MsgBookingNotOwnedMod = "You are not authorized to modify this booking"
	MsgBookingActive      = "Booking is active. Deactivate it before deleting"
	MsgInvalidStatus      = "status must be one of in_progress, pending, completed, cancelled"
	MsgBookingConflict    = "The requested booking overlaps with one or more existing bookings."
)
