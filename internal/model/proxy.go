// Package model defines shared types for the backend.
package model

import (
	"context"
	"net/http"
)

// ProxyRequest is a request to fetch a remote image on the caller's behalf.
type ProxyRequest struct {
	Ctx context.Context
	Src string
}

// ProxyResponse is a fully buffered upstream image ready to be written back.
type ProxyResponse struct {
	Body        []byte
	ContentType string
	Header      http.Header
}

// UpstreamResponse is the raw result of an outbound fetch.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
