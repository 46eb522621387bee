// Package client provides the outbound HTTP client used to fetch remote images.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/model"
)

// maxRedirects matches the net/http default redirect cap.
const maxRedirects = 10

// ImageClient performs bounded GET requests against third-party image hosts.
type ImageClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewImageClient creates an ImageClient with connection pooling and a hard
// timeout covering the whole exchange, body read included.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewImageClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *ImageClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &ImageClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:       time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
			CheckRedirect: blankReferrer,
		},
		logger:  logger.With("component", "image_client"),
		metrics: m,
	}
}

// Get fetches rawURL with the given headers and buffers the full body.
// The provided context bounds the request alongside the client timeout.
func (c *ImageClient) Get(ctx context.Context, rawURL string, header http.Header) (*model.UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	for key, vals := range header {
		req.Header[key] = vals
	}

	c.logger.Debug("upstream request", "host", req.URL.Host, "path", req.URL.Path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observeDuration(start)
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	c.observeDuration(start)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	if c.metrics != nil {
		c.metrics.UpstreamResponses.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		c.metrics.UpstreamBytes.Observe(float64(len(body)))
	}

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// blankReferrer keeps Referer and Origin empty on every redirect hop.
// net/http sets Referer to the previous URL before consulting CheckRedirect.
func blankReferrer(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}
	req.Header["Referer"] = []string{""}
	req.Header["Origin"] = []string{""}
	return nil
}

func (c *ImageClient) observeDuration(start time.Time) {
	if c.metrics != nil {
		c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	}
}
