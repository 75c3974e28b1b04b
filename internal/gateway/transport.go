package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request is one call to a backend endpoint.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// Response is what came back. Status is the HTTP status of the backend.
type Response struct {
	Status int
	Body   []byte
}

// Transport moves a Request to the backend. An error means the call could not be
// completed at all; backend-reported failures come back as a Response.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// HTTPTransport talks to the backend's exposed port directly.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (t *HTTPTransport) Do(ctx context.Context, req Request) (Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, t.baseURL+req.Path, body)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	if req.ContentType != "" {
		hr.Header.Set("Content-Type", req.ContentType)
	}
	resp, err := t.client.Do(hr)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read body: %w", err)
	}
	return Response{Status: resp.StatusCode, Body: b}, nil
}
