package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petsitter-app/internal/models"
	"petsitter-app/internal/services"
)

type PetHandler struct {
	petService *services.PetService
}

func NewPetHandler(petService *services.PetService) *PetHandler {
	return &PetHandler{petService: petService}
}

func (h *PetHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name         string   `json:"name" binding:"required"`
		Type         string   `json:"type" binding:"required,oneof=dog cat bird rabbit other"`
		Breed        string   `json:"breed" binding:"required"`
		Age          *int     `json:"age" binding:"required,gte=0"`
		Size         string   `json:"size" binding:"required,oneof=small medium large"`
		Weight       *float64 `json:"weight" binding:"omitempty,gte=0"`
		SpecialNeeds string   `json:"special_needs"`
		MedicalInfo  string   `json:"medical_info"`
		Photo        string   `json:"photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pet := &models.Pet{
		Name:         req.Name,
		Type:         models.PetType(req.Type),
		Breed:        req.Breed,
		Age:          *req.Age,
		Size:         models.PetSize(req.Size),
		Weight:       req.Weight,
		SpecialNeeds: req.SpecialNeeds,
		MedicalInfo:  req.MedicalInfo,
		Photo:        req.Photo,
	}

	if err := h.petService.Create(c.Request.Context(), userID, pet); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pet)
}

func (h *PetHandler) GetAll(c *gin.Context) {
	pets, err := h.petService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pets)
}

func (h *PetHandler) GetMy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	pets, err := h.petService.GetByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pets)
}

func (h *PetHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pet, err := h.petService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}

func (h *PetHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pet, err := h.petService.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pet)
}

func (h *PetHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.petService.Remove(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
