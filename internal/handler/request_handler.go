package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"petsitter-app/internal/models"
	"petsitter-app/internal/services"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		PetID       string    `json:"pet_id" binding:"required"`
		ServiceType string    `json:"service_type" binding:"required,oneof=walking care overnight grooming"`
		StartDate   time.Time `json:"start_date" binding:"required"`
		EndDate     time.Time `json:"end_date" binding:"required"`
		Description string    `json:"description"`
		Address     string    `json:"address" binding:"required"`
		Price       *float64  `json:"price" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	petID, err := primitive.ObjectIDFromHex(req.PetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pet id"})
		return
	}

	request := &models.Request{
		PetID:       petID,
		ServiceType: models.ServiceType(req.ServiceType),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
		Address:     req.Address,
		Price:       *req.Price,
	}

	if err := h.requestService.Create(c.Request.Context(), userID, request); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *RequestHandler) GetAll(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	requests, err := h.requestService.GetAll(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetPending(c *gin.Context) {
	requests, err := h.requestService.GetPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetMy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.requestService.GetMine(c.Request.Context(), userID, models.Role(c.GetString("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetStatistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.requestService.GetStatistics(c.Request.Context(), userID, models.Role(c.GetString("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RequestHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Accept(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=pending accepted in_progress completed cancelled"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	request, err := h.requestService.UpdateStatus(c.Request.Context(), id, userID, models.RequestStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.requestService.Cancel(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
