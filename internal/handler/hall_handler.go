package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/response"
)

type hallService interface {
	List(ctx context.Context) ([]models.Hall, error)
	Create(ctx context.Context, req dto.CreateHallRequest) (*models.Hall, error)
	Update(ctx context.Context, id string, req dto.UpdateHallRequest) (*models.Hall, error)
}

// HallHandler exposes hall endpoints.
type HallHandler struct {
	halls hallService
}

// NewHallHandler constructs HallHandler.
func NewHallHandler(halls hallService) *HallHandler {
	return &HallHandler{halls: halls}
}

// List godoc
// @Summary List halls
// @Tags Halls
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /halls [get]
func (h *HallHandler) List(c *gin.Context) {
	halls, err := h.halls.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, halls, nil)
}

// Create godoc
// @Summary Create hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param payload body dto.CreateHallRequest true "Hall payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /halls [post]
func (h *HallHandler) Create(c *gin.Context) {
	var req dto.CreateHallRequest
	if !bindJSON(c, &req) {
		return
	}
	hall, err := h.halls.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hall)
}

// Update godoc
// @Summary Update hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param id path string true "Hall ID"
// @Param payload body dto.UpdateHallRequest true "Hall payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /halls/{id} [put]
func (h *HallHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateHallRequest
	if !bindJSON(c, &req) {
		return
	}
	hall, err := h.halls.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hall, nil)
}
