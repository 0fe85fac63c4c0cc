package handlers

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AnalyticsHandlerInterface defines the contract for analytics handlers
type AnalyticsHandlerInterface interface {
	GetLinkAnalytics(c fiber.Ctx) error
	GetTopicAnalytics(c fiber.Ctx) error
	GetOverallAnalytics(c fiber.Ctx) error
}

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	analyticsFlow businessflow.AnalyticsFlow
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsFlow businessflow.AnalyticsFlow) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsFlow: analyticsFlow}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetLinkAnalytics returns the trailing-window summary for one link
// @Summary Link Analytics
// @Tags Analytics
// @Produce json
// @Param code path string true "Short code or custom alias"
// @Success 200 {object} dto.APIResponse{data=dto.LinkAnalyticsResponse} "Analytics retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Link owned by another customer"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/link/{code} [get]
func (h *AnalyticsHandler) GetLinkAnalytics(c fiber.Ctx) error {
	customerID, ok := authenticatedCustomerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	code := c.Params("code")
	resp, err := h.analyticsFlow.GetLinkAnalytics(h.createRequestContext(c, "/api/v1/analytics/link/"+code), code, customerID)
	if err != nil {
		switch {
		case businessflow.IsShortLinkNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Short link not found", "SHORT_LINK_NOT_FOUND", nil)
		case businessflow.IsAnalyticsAccessDenied(err):
			return h.ErrorResponse(c, fiber.StatusForbidden, "Analytics access denied", "ANALYTICS_ACCESS_DENIED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", "ANALYTICS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Analytics retrieved successfully", resp)
}

// GetTopicAnalytics returns the trailing-window summary for a topic
// @Summary Topic Analytics
// @Tags Analytics
// @Produce json
// @Param topic path string true "Topic name"
// @Success 200 {object} dto.APIResponse{data=dto.TopicAnalyticsResponse} "Analytics retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Unknown topic"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/topic/{topic} [get]
func (h *AnalyticsHandler) GetTopicAnalytics(c fiber.Ctx) error {
	customerID, ok := authenticatedCustomerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	topic := c.Params("topic")
	resp, err := h.analyticsFlow.GetTopicAnalytics(h.createRequestContext(c, "/api/v1/analytics/topic/"+topic), topic, customerID)
	if err != nil {
		if businessflow.IsTopicInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Topic is not a known value", "TOPIC_INVALID", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", "ANALYTICS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Analytics retrieved successfully", resp)
}

// GetOverallAnalytics returns the trailing-window summary across all links
// @Summary Overall Analytics
// @Tags Analytics
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.OverallAnalyticsResponse} "Analytics retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/overall [get]
func (h *AnalyticsHandler) GetOverallAnalytics(c fiber.Ctx) error {
	customerID, ok := authenticatedCustomerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	resp, err := h.analyticsFlow.GetOverallAnalytics(h.createRequestContext(c, "/api/v1/analytics/overall"), customerID)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", "ANALYTICS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Analytics retrieved successfully", resp)
}

func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 15*time.Second)
}
