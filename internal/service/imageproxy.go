// Package service implements the image proxy logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"portfolio-backend/internal/client"
	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/model"
)

// ErrInvalidURL is returned when src is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid URL")

// ErrTimeout is returned when the upstream did not answer within the client timeout.
var ErrTimeout = errors.New("image fetch timed out")

// UpstreamStatusError reports a non-200 upstream response.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream failed: %d", e.StatusCode)
}

// allowedPrefixes is the entire SSRF check: any http(s) URL is accepted,
// including private and loopback addresses.
var allowedPrefixes = []string{"https://", "http://"}

// Headers sent with every outbound fetch. Referer and Origin are sent empty
// so hosts that key hotlink protection on them let the request through.
const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	imageAccept      = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"
)

const (
	defaultContentType = "image/jpeg"
	cacheControl       = "public, max-age=86400"
	proxyMarkerHeader  = "X-Image-Proxy"
)

// ImageProxyService fetches remote images on the caller's behalf.
type ImageProxyService struct {
	client  *client.ImageClient
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewImageProxyService creates an ImageProxyService.
// The metrics parameter is optional; pass nil to disable outcome recording.
func NewImageProxyService(c *client.ImageClient, logger *slog.Logger, m *metrics.Metrics) *ImageProxyService {
	return &ImageProxyService{
		client:  c,
		logger:  logger.With("component", "image_proxy"),
		metrics: m,
	}
}

// Fetch validates pr.Src, performs exactly one upstream GET and returns the
// buffered image. Every call fetches afresh; nothing is cached.
//
// Errors are ErrInvalidURL, ErrTimeout, *UpstreamStatusError, or any other
// wrapped transport error.
func (s *ImageProxyService) Fetch(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	resp, err := s.fetch(pr)
	s.record(err)
	return resp, err
}

func (s *ImageProxyService) fetch(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	if !hasAllowedPrefix(pr.Src) {
		return nil, ErrInvalidURL
	}
	if _, err := url.Parse(pr.Src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	ctx := pr.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	upstream, err := s.client.Get(ctx, pr.Src, outboundHeaders())
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("fetch image: %w", err)
	}

	if upstream.StatusCode != http.StatusOK {
		s.logger.Debug("upstream rejected image request", "status", upstream.StatusCode)
		return nil, &UpstreamStatusError{StatusCode: upstream.StatusCode}
	}

	contentType := upstream.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	header := make(http.Header)
	header.Set("Cache-Control", cacheControl)
	header.Set(proxyMarkerHeader, "1")

	return &model.ProxyResponse{
		Body:        upstream.Body,
		ContentType: contentType,
		Header:      header,
	}, nil
}

func hasAllowedPrefix(src string) bool {
	for _, p := range allowedPrefixes {
		if strings.HasPrefix(src, p) {
			return true
		}
	}
	return false
}

func outboundHeaders() http.Header {
	return http.Header{
		"User-Agent": {browserUserAgent},
		"Accept":     {imageAccept},
		"Referer":    {""},
		"Origin":     {""},
	}
}

// isTimeout reports whether err came from the client timeout or a deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (s *ImageProxyService) record(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ImageProxyResults.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	var statusErr *UpstreamStatusError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrInvalidURL):
		return metrics.OutcomeInvalidURL
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.As(err, &statusErr):
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeError
	}
}
