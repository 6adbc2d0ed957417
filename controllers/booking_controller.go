package controllers

import (
	"errors"
	"net/http"
	"time"

	"bookable-backend/metrics"
	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{Bookings: bookings}
}

type CreateBookingRequest struct {
	ResourceID uint      `json:"resource_id" binding:"required"`
	ClientID   uint      `json:"client_id" binding:"required"`
	StaffID    *uint     `json:"staff_id,omitempty"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	ClientNote string    `json:"client_note,omitempty"`
}

type TransitionRequest struct {
	ActorID         uint   `json:"actor_id" binding:"required"`
	ActorRole       string `json:"actor_role" binding:"required,oneof=client provider admin"`
	TargetStatus    string `json:"target_status" binding:"required"`
	Reason          string `json:"reason,omitempty"`
	RescheduledToID *uint  `json:"rescheduled_to_id,omitempty"`
}

type NoteRequest struct {
	ActorID   uint   `json:"actor_id" binding:"required"`
	ActorRole string `json:"actor_role" binding:"required,oneof=client provider admin"`
	Note      string `json:"note"`
}

type ReviewRequest struct {
	ClientID uint   `json:"client_id" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment,omitempty"`
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	booking, err := ctrl.Bookings.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		ResourceID: req.ResourceID,
		ClientID:   req.ClientID,
		StaffID:    req.StaffID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ClientNote: req.ClientNote,
	})
	if err != nil {
		if isConflictError(err) {
			metrics.IncConflict()
		}
		respondServiceError(c, err)
		return
	}

	metrics.IncBookingCreated()
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (ctrl *BookingController) GetBooking(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	booking, err := ctrl.Bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) ListBookings(c *gin.Context) {
	var filter services.BookingFilter
	filter.Status = c.Query("status")
	if v, err := parseQueryUint(c, "business_id"); err == nil {
		filter.BusinessID = v
	}
	if v, err := parseQueryUint(c, "resource_id"); err == nil {
		filter.ResourceID = v
	}
	if v, err := parseQueryUint(c, "client_id"); err == nil {
		filter.ClientID = v
	}

	list, err := ctrl.Bookings.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// Transition is the single lifecycle endpoint: target status plus acting
// party, validated against the transition table.
func (ctrl *BookingController) Transition(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	booking, err := ctrl.Bookings.Transition(c.Request.Context(), id, req.ActorID, req.ActorRole, req.TargetStatus, services.TransitionInput{
		Reason:          req.Reason,
		RescheduledToID: req.RescheduledToID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	metrics.IncTransition(req.TargetStatus)
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func isConflictError(err error) bool {
	var conflictErr *services.ConflictError
	return errors.As(err, &conflictErr) || errors.Is(err, services.ErrConflict)
}

func (ctrl *BookingController) UpdateNote(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	booking, err := ctrl.Bookings.UpdateNote(c.Request.Context(), id, req.ActorID, req.ActorRole, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) AttachReview(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	review, err := ctrl.Bookings.AttachReview(c.Request.Context(), id, req.ClientID, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, review)
}
