package handlers

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for session handlers
type AuthHandlerInterface interface {
	CreateSession(c fiber.Ctx) error
	RefreshSession(c fiber.Ctx) error
}

// AuthHandler handles session-related HTTP requests
type AuthHandler struct {
	identityFlow businessflow.IdentityFlow
	validator    *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identityFlow businessflow.IdentityFlow) *AuthHandler {
	return &AuthHandler{
		identityFlow: identityFlow,
		validator:    validator.New(),
	}
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateSession provisions the account for a provider-asserted identity and
// issues session tokens
// @Summary Create Session
// @Description Upsert the customer behind a verified provider profile and issue a JWT pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ProviderProfileRequest true "Provider profile"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/session [post]
func (h *AuthHandler) CreateSession(c fiber.Ctx) error {
	var req dto.ProviderProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	resp, err := h.identityFlow.EnsureAccount(h.createRequestContext(c, "/api/v1/auth/session"), &req, metadata)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create session", "CREATE_SESSION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Session created successfully", resp)
}

// RefreshSession exchanges a refresh token for a new token pair
// @Summary Refresh Session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshSessionRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.SessionTokensDTO} "Session refreshed successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Router /api/v1/auth/session/refresh [post]
func (h *AuthHandler) RefreshSession(c fiber.Ctx) error {
	var req dto.RefreshSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	resp, err := h.identityFlow.RefreshSession(h.createRequestContext(c, "/api/v1/auth/session/refresh"), &req)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid refresh token", "INVALID_REFRESH_TOKEN", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Session refreshed successfully", resp)
}

func (h *AuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}
