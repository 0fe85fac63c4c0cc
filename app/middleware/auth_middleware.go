// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/gofiber/fiber/v3"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate is the middleware function that validates JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_AUTHORIZATION_HEADER",
				},
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error: dto.ErrorDetail{
					Code: "INVALID_AUTHORIZATION_FORMAT",
				},
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_ACCESS_TOKEN",
				},
			})
		}

		// Validation already checks the revocation list
		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			var errorCode string
			var message string

			if errors.Is(err, services.ErrTokenExpired) {
				errorCode = "TOKEN_EXPIRED"
				message = "Access token has expired"
			} else if errors.Is(err, services.ErrTokenInvalid) {
				errorCode = "TOKEN_INVALID"
				message = "Invalid access token"
			} else if errors.Is(err, services.ErrTokenRevoked) {
				errorCode = "TOKEN_REVOKED"
				message = "Access token has been revoked"
			} else {
				errorCode = "TOKEN_VALIDATION_FAILED"
				message = "Token validation failed"
			}

			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error: dto.ErrorDetail{
					Code: errorCode,
				},
			})
		}

		if claims.TokenType != "access" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Token is not an access token",
				Error: dto.ErrorDetail{
					Code: "WRONG_TOKEN_TYPE",
				},
			})
		}

		// Store user information in context for downstream handlers
		c.Locals("customer_id", claims.CustomerID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}
