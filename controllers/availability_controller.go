package controllers

import (
	"net/http"
	"time"

	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

type AvailabilityController struct {
	Availability *services.AvailabilityService
}

func NewAvailabilityController(availability *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Availability: availability}
}

type CheckAvailabilityRequest struct {
	ResourceID uint      `json:"resource_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

// Check answers whether [start_time, end_time) is bookable and, when it is
// not, returns the blocking records.
func (ctrl *AvailabilityController) Check(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	result, err := ctrl.Availability.CheckAvailability(c.Request.Context(), req.ResourceID, req.StartTime, req.EndTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// Slots lists free bookable windows for a resource on one date
// (?date=2026-09-14).
func (ctrl *AvailabilityController) Slots(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "query parameter date must be YYYY-MM-DD")
		return
	}

	slots, err := ctrl.Availability.ListSlots(c.Request.Context(), id, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, slots)
}
