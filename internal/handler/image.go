package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"portfolio-backend/internal/model"
	"portfolio-backend/internal/service"
)

// ImageHandler serves the same-origin image proxy.
type ImageHandler struct {
	service *service.ImageProxyService
	logger  *slog.Logger
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(svc *service.ImageProxyService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		service: svc,
		logger:  logger.With("component", "image_handler"),
	}
}

// Handle fetches the image named by the src query parameter and relays it.
// The body is fully buffered before anything is written, so callers never
// observe a truncated image.
func (h *ImageHandler) Handle(c echo.Context) error {
	req := c.Request()

	if !c.QueryParams().Has("src") {
		return detail(c, http.StatusUnprocessableEntity, "src: field required")
	}

	resp, err := h.service.Fetch(&model.ProxyRequest{
		Ctx: req.Context(),
		Src: c.QueryParam("src"),
	})
	if err != nil {
		return h.mapError(c, err)
	}

	for key, vals := range resp.Header {
		for _, v := range vals {
			c.Response().Header().Add(key, v)
		}
	}
	return c.Blob(http.StatusOK, resp.ContentType, resp.Body)
}

func (h *ImageHandler) mapError(c echo.Context, err error) error {
	var statusErr *service.UpstreamStatusError

	switch {
	case errors.Is(err, service.ErrInvalidURL):
		return detail(c, http.StatusBadRequest, "Invalid URL")

	case errors.Is(err, service.ErrTimeout):
		h.logger.Warn("image fetch timed out", "err", err)
		return detail(c, http.StatusGatewayTimeout, "Image fetch timed out")

	case errors.As(err, &statusErr):
		h.logger.Info("upstream rejected image fetch", "status", statusErr.StatusCode)
		return detail(c, statusErr.StatusCode, "Upstream failed: "+strconv.Itoa(statusErr.StatusCode))

	default:
		h.logger.Error("image proxy error", "err", err)
		return detail(c, http.StatusInternalServerError, "Proxy error: "+err.Error())
	}
}
