package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"portfolio-backend/internal/client"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/service"
)

func newTestImageHandler(timeoutSeconds int) *ImageHandler {
	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			TimeoutSeconds:  timeoutSeconds,
			IdleConnections: 10,
		},
	}
	logger := discardLogger()
	svc := service.NewImageProxyService(client.NewImageClient(cfg, logger, nil), logger, nil)
	return NewImageHandler(svc, logger)
}

func serveImage(t *testing.T, h *ImageHandler, src string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/image?src="+url.QueryEscape(src), http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Handle(c); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %q: %v", rec.Body.String(), err)
	}
	return body["detail"]
}

func TestImageHandler_Success(t *testing.T) {
	payload := []byte("\x89PNG\r\n\x1a\nfake")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Set-Cookie", "tracker=1")
		_, _ = w.Write(payload)
	}))
	defer upstream.Close()

	rec := serveImage(t, newTestImageHandler(10), upstream.URL+"/avatar.png")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != string(payload) {
		t.Errorf("body = %q, want %q", rec.Body.String(), payload)
	}

	wantHeaders := map[string]string{
		"Content-Type":  "image/png",
		"Cache-Control": "public, max-age=86400",
		"X-Image-Proxy": "1",
		"Set-Cookie":    "",
	}
	for key, want := range wantHeaders {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestImageHandler_DefaultContentType(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("jpeg-ish"))
	}))
	defer upstream.Close()

	rec := serveImage(t, newTestImageHandler(10), upstream.URL)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q, want %q", got, "image/jpeg")
	}
}

func TestImageHandler_InvalidURL(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer upstream.Close()

	h := newTestImageHandler(10)

	for _, src := range []string{"ftp://example.com/x.png", "", "/local.png", "file:///etc/hosts"} {
		t.Run(src, func(t *testing.T) {
			rec := serveImage(t, h, src)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if got := decodeDetail(t, rec); got != "Invalid URL" {
				t.Errorf("detail = %q, want %q", got, "Invalid URL")
			}
		})
	}

	if n := hits.Load(); n != 0 {
		t.Errorf("upstream hits = %d, want 0", n)
	}
}

func TestImageHandler_MissingSrc(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer upstream.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/image", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := newTestImageHandler(10).Handle(c); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if got := decodeDetail(t, rec); got != "src: field required" {
		t.Errorf("detail = %q, want %q", got, "src: field required")
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("upstream hits = %d, want 0", n)
	}
}

func TestImageHandler_EmptySrc(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/image?src=", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := newTestImageHandler(10).Handle(c); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestImageHandler_UpstreamNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer upstream.Close()

	rec := serveImage(t, newTestImageHandler(10), upstream.URL+"/missing.png")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	got := decodeDetail(t, rec)
	if !strings.Contains(got, "404") {
		t.Errorf("detail = %q, want it to contain %q", got, "404")
	}
	if got != "Upstream failed: 404" {
		t.Errorf("detail = %q, want %q", got, "Upstream failed: 404")
	}
	if v := rec.Header().Get("X-Image-Proxy"); v != "" {
		t.Errorf("X-Image-Proxy = %q on error, want empty", v)
	}
}

func TestImageHandler_Timeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer upstream.Close()

	rec := serveImage(t, newTestImageHandler(1), upstream.URL)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusGatewayTimeout)
	}
	if got := decodeDetail(t, rec); got != "Image fetch timed out" {
		t.Errorf("detail = %q, want %q", got, "Image fetch timed out")
	}
}

func TestImageHandler_ConnectionFailure(t *testing.T) {
	rec := serveImage(t, newTestImageHandler(2), "http://127.0.0.1:1/avatar.png")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := decodeDetail(t, rec); !strings.HasPrefix(got, "Proxy error: ") {
		t.Errorf("detail = %q, want Proxy error prefix", got)
	}
}

func TestImageHandler_mapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"invalid url", service.ErrInvalidURL, http.StatusBadRequest, "Invalid URL"},
		{"timeout", fmt.Errorf("%w: %w", service.ErrTimeout, context.DeadlineExceeded), http.StatusGatewayTimeout, "Image fetch timed out"},
		{"upstream 403", &service.UpstreamStatusError{StatusCode: 403}, http.StatusForbidden, "Upstream failed: 403"},
		{"upstream 502", &service.UpstreamStatusError{StatusCode: 502}, http.StatusBadGateway, "Upstream failed: 502"},
		{"dns", fmt.Errorf("fetch image: %w", &net.DNSError{Err: "no such host", Name: "img.example.com"}), http.StatusInternalServerError, "Proxy error: fetch image: lookup img.example.com: no such host"},
		{"other", errors.New("connection reset by peer"), http.StatusInternalServerError, "Proxy error: connection reset by peer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &ImageHandler{logger: discardLogger()}

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/image", http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.mapError(c, tt.err); err != nil {
				t.Fatalf("mapError() returned error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeDetail(t, rec); got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
		})
	}
}
