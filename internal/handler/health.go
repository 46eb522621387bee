package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"portfolio-backend/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// diagnosticsTimeout bounds the collection listing done by Diagnostics.
const diagnosticsTimeout = 5 * time.Second

const maxListedCollections = 10

// HealthHandler serves greeting, health, status and diagnostics endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
	store   DocumentStore
}

// NewHealthHandler creates a HealthHandler. store may be nil.
func NewHealthHandler(cfg *config.Config, v Version, store DocumentStore) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v, store: store}
}

type messageResponse struct {
	Message string `json:"message"`
}

// Root greets callers of the bare service URL.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Hello from the portfolio backend!"})
}

// Hello lets the frontend check that API calls are routed to this service.
func (h *HealthHandler) Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Hello from the backend API!"})
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status returns build and dependency information.
func (h *HealthHandler) Status(c echo.Context) error {
	database := "not configured"
	if h.store != nil {
		database = "configured"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"version":  string(h.version),
		"database": database,
	})
}

type diagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnostics reports liveness and document store connectivity. Store
// failures are reported in the body; the endpoint itself always answers 200.
func (h *HealthHandler) Diagnostics(c echo.Context) error {
	resp := diagnosticsResponse{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if h.store != nil {
		resp.Database = "✅ Available"
		resp.ConnectionStatus = "Connected"

		ctx, cancel := context.WithTimeout(c.Request().Context(), diagnosticsTimeout)
		defer cancel()

		names, err := h.store.CollectionNames(ctx)
		if err != nil {
			resp.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 50)
		} else {
			if len(names) > maxListedCollections {
				names = names[:maxListedCollections]
			}
			resp.Collections = append(resp.Collections, names...)
			resp.Database = "✅ Connected & Working"
		}
	} else {
		resp.Database = "⚠️  Available but not initialized"
	}

	resp.DatabaseURL = setOrNot(h.cfg.Database.URL)
	resp.DatabaseName = setOrNot(h.cfg.Database.Name)

	return c.JSON(http.StatusOK, resp)
}

func setOrNot(v string) string {
	if v != "" {
		return "✅ Set"
	}
	return "❌ Not Set"
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
