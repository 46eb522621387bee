package handler

import (
	"github.com/labstack/echo/v4"
)

// errorResponse is the JSON body of every error response.
type errorResponse struct {
	Detail string `json:"detail"`
}

func detail(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Detail: msg})
}
