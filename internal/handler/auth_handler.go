package handler

import (
	"crypto/subtle"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dnalifesong/api/internal/middleware"
	"github.com/dnalifesong/api/pkg/response"
)

// AuthHandler exchanges the shared access key for a session token.
type AuthHandler struct {
	auth      *middleware.AuthMiddleware
	accessKey string
	validator *validator.Validate
}

func NewAuthHandler(auth *middleware.AuthMiddleware, accessKey string, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		accessKey: accessKey,
		validator: v,
	}
}

type validateKeyRequest struct {
	AccessKey string `json:"accessKey" validate:"required"`
}

type validateKeyResponse struct {
	Token string `json:"token"`
}

// ValidateKey handles POST /api/validate-key
func (h *AuthHandler) ValidateKey(c *fiber.Ctx) error {
	var req validateKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	// No configured key means an open development gate: any non-empty
	// key is exchanged for a session.
	if h.accessKey != "" && subtle.ConstantTimeCompare([]byte(req.AccessKey), []byte(h.accessKey)) != 1 {
		return response.Unauthorized(c, "Invalid access key")
	}

	token, err := h.auth.GenerateToken(uuid.New().String())
	if err != nil {
		return response.ServiceError(c, "Failed to create session")
	}

	return response.OK(c, validateKeyResponse{Token: token})
}
