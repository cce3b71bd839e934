package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PageHandler serves the public informational routes and the health check.
type PageHandler struct {
	database Pinger
	cache    Pinger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(database, cache Pinger) *PageHandler {
	return &PageHandler{database: database, cache: cache}
}

// PageResponse is the body of an informational page.
type PageResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HealthResponse reports dependency health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Home godoc
// @Summary Landing page
// @Tags pages
// @Produce json
// @Success 200 {object} PageResponse
// @Router / [get]
func (h *PageHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, PageResponse{
		Title:       "Sneakerdex",
		Description: "Keep track of your sneaker collection.",
	})
}

// About godoc
// @Summary About page
// @Tags pages
// @Produce json
// @Success 200 {object} PageResponse
// @Router /about [get]
func (h *PageHandler) About(c echo.Context) error {
	return c.JSON(http.StatusOK, PageResponse{
		Title:       "About",
		Description: "Sneakerdex stores the brand, model, price, color and size of every pair you own.",
	})
}

// Contact godoc
// @Summary Contact page
// @Tags pages
// @Produce json
// @Success 200 {object} PageResponse
// @Router /contact [get]
func (h *PageHandler) Contact(c echo.Context) error {
	return c.JSON(http.StatusOK, PageResponse{
		Title:       "Contact",
		Description: "Questions or feedback? Open an issue on the project page.",
	})
}

// Health godoc
// @Summary Health check
// @Description Reports 503 when the database is unreachable. A cache outage only degrades the service.
// @Tags pages
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *PageHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: probe(ctx, h.database),
		Cache:    probe(ctx, h.cache),
	}
	if resp.Database != "ok" || resp.Cache != "ok" {
		resp.Status = "degraded"
	}

	status := http.StatusOK
	if resp.Database != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "unavailable"
	}
	if err := p.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}
