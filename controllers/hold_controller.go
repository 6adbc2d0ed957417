package controllers

import (
	"net/http"
	"time"

	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

type HoldController struct {
	Holds *services.HoldService
}

func NewHoldController(holds *services.HoldService) *HoldController {
	return &HoldController{Holds: holds}
}

type CreateHoldRequest struct {
	BusinessID uint       `json:"business_id" binding:"required"`
	ResourceID uint       `json:"resource_id" binding:"required"`
	StartTime  time.Time  `json:"start_time" binding:"required"`
	EndTime    time.Time  `json:"end_time" binding:"required"`
	Reason     string     `json:"reason,omitempty"`
	CreatedBy  string     `json:"created_by,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (ctrl *HoldController) CreateHold(c *gin.Context) {
	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	hold, err := ctrl.Holds.CreateHold(c.Request.Context(), req.BusinessID, services.CreateHoldInput{
		ResourceID: req.ResourceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
		CreatedBy:  req.CreatedBy,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, hold)
}

func (ctrl *HoldController) ListHolds(c *gin.Context) {
	resourceID, err := parseQueryUint(c, "resource_id")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "query parameter resource_id is required")
		return
	}
	holds, err := ctrl.Holds.ListHolds(c.Request.Context(), resourceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, holds)
}

func (ctrl *HoldController) ReleaseHold(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	businessID, err := parseQueryUint(c, "business_id")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "query parameter business_id is required")
		return
	}
	if err := ctrl.Holds.ReleaseHold(c.Request.Context(), businessID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"released": id})
}
