package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petsitter-app/internal/models"
	"petsitter-app/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetPetsitters(c *gin.Context) {
	var minRating float64
	if raw := c.Query("minRating"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minRating"})
			return
		}
		minRating = parsed
	}

	petsitters, err := h.userService.GetPetsitters(c.Request.Context(), minRating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petsitters)
}

func (h *UserHandler) GetAll(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if role != "" && role != models.RoleClient && role != models.RolePetsitter {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	users, err := h.userService.GetAll(c.Request.Context(), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeactivateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
