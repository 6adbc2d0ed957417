package controllers

import (
	"net/http"

	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

type BusinessController struct {
	Businesses *services.BusinessService
}

func NewBusinessController(businesses *services.BusinessService) *BusinessController {
	return &BusinessController{Businesses: businesses}
}

type RegisterBusinessRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AddStaffRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email,omitempty" binding:"omitempty,email"`
	Role     string `json:"role,omitempty"`
}

func (ctrl *BusinessController) Register(c *gin.Context) {
	var req RegisterBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	business, err := ctrl.Businesses.Register(c.Request.Context(), services.RegisterBusinessInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Timezone: req.Timezone,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, business)
}

func (ctrl *BusinessController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	business, err := ctrl.Businesses.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, business)
}

func (ctrl *BusinessController) GetBusiness(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	business, err := ctrl.Businesses.GetBusiness(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, business)
}

func (ctrl *BusinessController) AddStaff(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req AddStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	staff, err := ctrl.Businesses.AddStaff(c.Request.Context(), id, req.FullName, req.Email, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, staff)
}

func (ctrl *BusinessController) ListStaff(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	staff, err := ctrl.Businesses.ListStaff(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, staff)
}
