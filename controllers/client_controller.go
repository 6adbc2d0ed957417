package controllers

import (
	"net/http"

	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
)

type ClientController struct {
	Clients *services.ClientService
}

func NewClientController(clients *services.ClientService) *ClientController {
	return &ClientController{Clients: clients}
}

type CreateClientRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty"`
}

func (ctrl *ClientController) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
		return
	}

	client, err := ctrl.Clients.CreateClient(c.Request.Context(), req.FullName, req.Email, req.Phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, client)
}

func (ctrl *ClientController) GetClient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	client, err := ctrl.Clients.GetClient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, client)
}
