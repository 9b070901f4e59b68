package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/dnalifesong/api/internal/model"
	"github.com/dnalifesong/api/internal/service"
	"github.com/dnalifesong/api/pkg/response"
)

type SongHandler struct {
	service   *service.SongService
	validator *validator.Validate
}

func NewSongHandler(svc *service.SongService, v *validator.Validate) *SongHandler {
	return &SongHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/generate
func (h *SongHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateSongRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.GenerateSong(c.Context(), &req)
	if err != nil {
		return sequenceError(c, err)
	}

	return response.OK(c, result)
}
