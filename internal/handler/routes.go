package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, image *ImageHandler, contact *ContactHandler, health *HealthHandler) {
	e.GET("/", health.Root)
	e.GET("/healthz", health.Healthz)
	e.GET("/status", health.Status)
	e.GET("/test", health.Diagnostics)

	api := e.Group("/api")
	api.GET("/hello", health.Hello)
	api.GET("/image", image.Handle)
	api.POST("/contact", contact.Create)
	api.GET("/contact", contact.List)
}
