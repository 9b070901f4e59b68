package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/dnalifesong/api/internal/dna"
	"github.com/dnalifesong/api/internal/model"
	"github.com/dnalifesong/api/internal/service"
	"github.com/dnalifesong/api/pkg/response"
)

type SequenceHandler struct {
	service   *service.SequenceService
	validator *validator.Validate
}

func NewSequenceHandler(svc *service.SequenceService, v *validator.Validate) *SequenceHandler {
	return &SequenceHandler{
		service:   svc,
		validator: v,
	}
}

// Analyze handles POST /api/analyze
func (h *SequenceHandler) Analyze(c *fiber.Ctx) error {
	var req model.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Analyze(req.DNA)
	if err != nil {
		return sequenceError(c, err)
	}

	return response.OK(c, result)
}

// Random handles POST /api/sequence/random
func (h *SequenceHandler) Random(c *fiber.Ctx) error {
	var req model.RandomSequenceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.GenerateRandom(&req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// sequenceError maps DNA validation failures to 400s with their code.
func sequenceError(c *fiber.Ctx, err error) error {
	var verr *dna.ValidationError
	if errors.As(err, &verr) {
		return response.ValidationError(c, verr.Message, map[string]string{"code": verr.Code})
	}
	return response.ServiceError(c, err.Error())
}
