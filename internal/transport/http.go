package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// contentTypeAMF is the content type the gateway expects for envelope posts.
const contentTypeAMF = "application/x-amf"

// maxResponseBytes caps gateway replies; anything larger than this is not a
// legitimate envelope.
const maxResponseBytes = 4 << 20

// HTTPGateway dispatches envelopes to the game gateway with an HTTP POST,
// which is how the Flash client itself delivers them.
type HTTPGateway struct {
	client *http.Client
}

// NewHTTPGateway wraps client; a nil client uses http.DefaultClient.
// Per-call deadlines come from the dispatch context, not the client.
func NewHTTPGateway(client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{client: client}
}

// Dispatch posts payload to targetURL and returns the raw response body.
func (g *HTTPGateway) Dispatch(ctx context.Context, payload []byte, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeAMF)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}
	return body, nil
}
