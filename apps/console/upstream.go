package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// envelope is the content API's response shape. Every endpoint wraps its
// result in {"data": ...} and puts human-readable failures in "message".
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type upstreamClient struct {
	baseURL string
	client  *http.Client
}

func newUpstreamClient(baseURL string) *upstreamClient {
	return &upstreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: upstreamTimeout},
	}
}

type ctxKey int

const authTokenKey ctxKey = 1

func withAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, authTokenKey, token)
}

func authTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(authTokenKey).(string)
	return token
}

// do performs a request against the content API and decodes the envelope.
// Transport failures map to network_failure, a 401 maps to unauthorized and
// any other non-2xx to upstream_rejected carrying the server's message when
// it sent one. out may be nil when the caller only cares about success.
func (u *upstreamClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := authTokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return &apiError{Status: http.StatusBadGateway, Code: "network_failure", Message: "Could not reach the content service"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamResponseBytes))
	if err != nil {
		return &apiError{Status: http.StatusBadGateway, Code: "network_failure", Message: "Could not read the content service response"}
	}

	var env envelope
	if len(raw) > 0 {
		// Tolerate non-JSON bodies on errors; the fallback message covers it.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Session expired, please sign in again"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{Status: http.StatusBadGateway, Code: "upstream_rejected", Message: strings.TrimSpace(env.Message)}
	}

	if out != nil {
		// null data decodes as an empty value so callers never see nil
		// collections.
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &apiError{Status: http.StatusBadGateway, Code: "upstream_rejected", Message: "Content service returned an unexpected response"}
		}
	}
	return nil
}

// listUpstream fetches a collection endpoint, normalizing a null or absent
// data field to an empty slice.
func listUpstream[T any](ctx context.Context, u *upstreamClient, path string) ([]T, error) {
	items := []T{}
	if err := u.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

const (
	upstreamTimeout          = 10 * time.Second
	maxUpstreamResponseBytes = 32 << 20
)
