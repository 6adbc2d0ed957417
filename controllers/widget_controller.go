package controllers

import (
	"net/http"
	"time"

	"bookable-backend/middleware"
	"bookable-backend/metrics"
	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

// WidgetController serves two surfaces: key management for businesses, and
// the public endpoints the embedded widget calls with an X-Widget-Key header.
type WidgetController struct {
	Widgets      *services.WidgetService
	Resources    *services.ResourceService
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Clients      *services.ClientService
}

func NewWidgetController(
	widgets *services.WidgetService,
	resources *services.ResourceService,
	availability *services.AvailabilityService,
	bookings *services.BookingService,
	clients *services.ClientService,
) *WidgetController {
	return &WidgetController{
		Widgets:      widgets,
		Resources:    resources,
		Availability: availability,
		Bookings:     bookings,
		Clients:      clients,
	}
}

type IssueKeyRequest struct {
	BusinessID uint   `json:"business_id" binding:"required"`
	Label      string `json:"label,omitempty"`
}

type WidgetBookingRequest struct {
	ResourceID uint      `json:"resource_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	FullName   string    `json:"full_name" binding:"required"`
	Email      string    `json:"email" binding:"required,email"`
	Phone      string    `json:"phone,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// ---- key management (business API) ----

func (ctrl *WidgetController) IssueKey(c *gin.Context) {
	var req IssueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}
	key, err := ctrl.Widgets.IssueKey(c.Request.Context(), req.BusinessID, req.Label)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, key)
}

func (ctrl *WidgetController) ListKeys(c *gin.Context) {
	businessID, err := parseQueryUint(c, "business_id")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "query parameter business_id is required")
		return
	}
	keys, err := ctrl.Widgets.ListKeys(c.Request.Context(), businessID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, keys)
}

func (ctrl *WidgetController) RevokeKey(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	businessID, err := parseQueryUint(c, "business_id")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "query parameter business_id is required")
		return
	}
	if err := ctrl.Widgets.RevokeKey(c.Request.Context(), businessID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"revoked": id})
}

// ---- public widget surface (behind WidgetAuth) ----

func widgetBusinessID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(middleware.ContextBusinessID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func (ctrl *WidgetController) PublicResources(c *gin.Context) {
	businessID, ok := widgetBusinessID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidWidgetKey", "widget key did not resolve")
		return
	}
	list, err := ctrl.Resources.ListResources(c.Request.Context(), businessID, true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctrl *WidgetController) PublicSlots(c *gin.Context) {
	businessID, ok := widgetBusinessID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidWidgetKey", "widget key did not resolve")
		return
	}
	resourceID, err := parseQueryUint(c, "resource_id")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "query parameter resource_id is required")
		return
	}
	if ok, err := ctrl.resourceBelongsTo(c, resourceID, businessID); err != nil || !ok {
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDate", "query parameter date must be YYYY-MM-DD")
		return
	}

	slots, err := ctrl.Availability.ListSlots(c.Request.Context(), resourceID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, slots)
}

// PublicCreateBooking books from the embedded widget: the visitor supplies
// name and email, which map onto an existing or new client record. The
// booking lands as pending for the business to confirm.
func (ctrl *WidgetController) PublicCreateBooking(c *gin.Context) {
	businessID, ok := widgetBusinessID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "error.invalidWidgetKey", "widget key did not resolve")
		return
	}

	var req WidgetBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}
	if ok, err := ctrl.resourceBelongsTo(c, req.ResourceID, businessID); err != nil || !ok {
		return
	}

	client, err := ctrl.Clients.FindOrCreateByEmail(c.Request.Context(), req.FullName, req.Email, req.Phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	booking, err := ctrl.Bookings.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		ResourceID: req.ResourceID,
		ClientID:   client.ID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ClientNote: req.Note,
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

// resourceBelongsTo guards the widget surface against probing other tenants'
// resources. Writes the error response itself when the check fails.
func (ctrl *WidgetController) resourceBelongsTo(c *gin.Context, resourceID, businessID uint) (bool, error) {
	resource, err := ctrl.Resources.GetResource(c.Request.Context(), resourceID)
	if err != nil {
		respondServiceError(c, err)
		return false, err
	}
	if resource.BusinessID != businessID {
		utils.JSONError(c, http.StatusNotFound, "error.notFound", "resource not found for this widget")
		return false, nil
	}
	return true, nil
}
