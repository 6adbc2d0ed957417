package controllers

import (
	"net/http"
	"time"

	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

type ResourceController struct {
	Resources *services.ResourceService
}

func NewResourceController(resources *services.ResourceService) *ResourceController {
	return &ResourceController{Resources: resources}
}

type CreateResourceRequest struct {
	BusinessID           uint   `json:"business_id" binding:"required"`
	Kind                 string `json:"kind,omitempty" binding:"omitempty,oneof=service venue"`
	Name                 string `json:"name" binding:"required"`
	Description          string `json:"description,omitempty"`
	PriceAmount          int64  `json:"price_amount" binding:"min=0"`
	Currency             string `json:"currency,omitempty"`
	Capacity             int    `json:"capacity,omitempty" binding:"omitempty,min=1"`
	DurationMinutes      int    `json:"duration_minutes,omitempty" binding:"omitempty,min=1"`
	BufferMinutes        int    `json:"buffer_minutes,omitempty" binding:"omitempty,min=0"`
	AdvanceNoticeMinutes int    `json:"advance_notice_minutes,omitempty" binding:"omitempty,min=0"`
}

type UpdateResourceRequest struct {
	BusinessID  uint    `json:"business_id" binding:"required"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceAmount *int64  `json:"price_amount,omitempty"`
	Active      *bool   `json:"active,omitempty"`

	DurationMinutes      *int `json:"duration_minutes,omitempty"`
	BufferMinutes        *int `json:"buffer_minutes,omitempty"`
	AdvanceNoticeMinutes *int `json:"advance_notice_minutes,omitempty"`
}

type AddRuleRequest struct {
	BusinessID uint   `json:"business_id" binding:"required"`
	RuleType   string `json:"rule_type" binding:"required,oneof=recurring exception"`
	Weekday    *int   `json:"weekday,omitempty"`
	Date       string `json:"date,omitempty"`
	Closed     bool   `json:"closed,omitempty"`
	OpensAt    int    `json:"opens_at,omitempty"`
	ClosesAt   int    `json:"closes_at,omitempty"`
}

func (ctrl *ResourceController) CreateResource(c *gin.Context) {
	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	resource, err := ctrl.Resources.CreateResource(c.Request.Context(), req.BusinessID, services.ResourceInput{
		Kind:                 req.Kind,
		Name:                 req.Name,
		Description:          req.Description,
		PriceAmount:          req.PriceAmount,
		Currency:             req.Currency,
		Capacity:             req.Capacity,
		DurationMinutes:      req.DurationMinutes,
		BufferMinutes:        req.BufferMinutes,
		AdvanceNoticeMinutes: req.AdvanceNoticeMinutes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, resource)
}

func (ctrl *ResourceController) GetResource(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	resource, err := ctrl.Resources.GetResource(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, resource)
}

func (ctrl *ResourceController) ListResources(c *gin.Context) {
	businessID, err := parseQueryUint(c, "business_id")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "query parameter business_id is required")
		return
	}
	list, err := ctrl.Resources.ListResources(c.Request.Context(), businessID, c.Query("active") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctrl *ResourceController) UpdateResource(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PriceAmount != nil {
		updates["price_amount"] = *req.PriceAmount
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.BufferMinutes != nil {
		updates["buffer_minutes"] = *req.BufferMinutes
	}
	if req.AdvanceNoticeMinutes != nil {
		updates["advance_notice_minutes"] = *req.AdvanceNoticeMinutes
	}

	resource, err := ctrl.Resources.UpdateResource(c.Request.Context(), req.BusinessID, id, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, resource)
}

func (ctrl *ResourceController) AddRule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req AddRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	in := services.RuleInput{
		RuleType: req.RuleType,
		Weekday:  req.Weekday,
		Closed:   req.Closed,
		OpensAt:  req.OpensAt,
		ClosesAt: req.ClosesAt,
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "date must be YYYY-MM-DD")
			return
		}
		in.Date = &d
	}

	rule, err := ctrl.Resources.AddRule(c.Request.Context(), req.BusinessID, id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, rule)
}

func (ctrl *ResourceController) RemoveRule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	ruleID, ok := uintParam(c, "ruleId")
	if !ok {
		return
	}
	businessID, err := parseQueryUint(c, "business_id")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "query parameter business_id is required")
		return
	}

	if err := ctrl.Resources.RemoveRule(c.Request.Context(), businessID, id, ruleID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": ruleID})
}

func (ctrl *ResourceController) ListReviews(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	reviews, err := ctrl.Resources.ListReviews(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reviews)
}
