package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Kusanagi/app/middleware"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/gofiber/fiber/v3"
)

// ShortLinkHandlerInterface defines contract for public short link visit
type ShortLinkHandlerInterface interface {
	Visit(c fiber.Ctx) error
}

type ShortLinkHandler struct {
	flow businessflow.ShortLinkVisitFlow
}

func NewShortLinkHandler(flow businessflow.ShortLinkVisitFlow) ShortLinkHandlerInterface {
	return &ShortLinkHandler{flow: flow}
}

// Visit resolves a short link, counts the click and redirects
// @Summary Visit Short Link
// @Tags ShortLinks
// @Produce json
// @Param code path string true "Short code or custom alias"
// @Success 302 {string} string "Redirect"
// @Failure 404 {object} any
// @Failure 500 {object} any
// @Router /s/{code} [get]
func (h *ShortLinkHandler) Visit(c fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).SendString("invalid short link")
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.Referrer = c.Get("Referer")
	metadata.Language = c.Get("Accept-Language")
	metadata.SetRequestID(c.Get("X-Request-ID"))

	longURL, err := h.flow.Visit(h.createRequestContext(c, "/s/"+code), code, metadata)
	if err != nil {
		if businessflow.IsShortLinkNotFound(err) {
			middleware.CountRedirect("not_found")
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		middleware.CountRedirect("error")
		log.Println("Visit short link failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	middleware.CountRedirect("ok")
	c.Redirect().Status(fiber.StatusFound).To(longURL)
	return nil
}

func (h *ShortLinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
