package handlers

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// LinkHandlerInterface defines the contract for link management handlers
type LinkHandlerInterface interface {
	CreateShortLink(c fiber.Ctx) error
	ListLinks(c fiber.Ctx) error
	ExportLinks(c fiber.Ctx) error
}

// LinkHandler handles link creation and listing HTTP requests
type LinkHandler struct {
	linkFlow   businessflow.ShortLinkFlow
	exportFlow businessflow.LinkExportFlow
	validator  *validator.Validate
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkFlow businessflow.ShortLinkFlow, exportFlow businessflow.LinkExportFlow) *LinkHandler {
	return &LinkHandler{
		linkFlow:   linkFlow,
		exportFlow: exportFlow,
		validator:  validator.New(),
	}
}

func (h *LinkHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LinkHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateShortLink handles the short link creation process
// @Summary Create Short Link
// @Description Allocate a short code (or claim a custom alias) for a long URL
// @Tags Links
// @Accept json
// @Produce json
// @Param request body dto.CreateShortLinkRequest true "Link creation data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateShortLinkResponse} "Short link created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid long URL"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "Custom alias already taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateShortLink(c fiber.Ctx) error {
	customerID, ok := authenticatedCustomerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateShortLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	resp, err := h.linkFlow.CreateShortLink(h.createRequestContext(c, "/api/v1/links"), &req, customerID, metadata)
	if err != nil {
		switch {
		case businessflow.IsInvalidURL(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Long URL is not a valid http(s) URL", "INVALID_URL", nil)
		case businessflow.IsTopicInvalid(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Topic is not a known value", "TOPIC_INVALID", nil)
		case businessflow.IsAliasTaken(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Custom alias is already taken", "ALIAS_TAKEN", nil)
		case businessflow.IsAllocationExhausted(err):
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Could not allocate a unique short code", "ALLOCATION_EXHAUSTED", nil)
		case businessflow.IsCustomerNotFound(err):
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create short link", "CREATE_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Short link created successfully", resp)
}

// ListLinks returns the authenticated customer's links, newest first
// @Summary List Links
// @Tags Links
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListCustomerLinksResponse} "Links retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c fiber.Ctx) error {
	customerID, ok := authenticatedCustomerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	resp, err := h.linkFlow.ListCustomerLinks(h.createRequestContext(c, "/api/v1/links"), customerID)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list links", "LIST_LINKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Links retrieved successfully", resp)
}

// ExportLinks downloads the customer's links as an Excel workbook
// @Summary Export Links
// @Tags Links
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Excel export"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/export [get]
func (h *LinkHandler) ExportLinks(c fiber.Ctx) error {
	customerID, ok := authenticatedCustomerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	filename, content, err := h.exportFlow.DownloadLinksExcel(h.createRequestContext(c, "/api/v1/links/export"), customerID)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export links", "EXPORT_LINKS_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(content)
}

func (h *LinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}
