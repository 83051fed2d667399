package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prism-dev/prism/internal/prismerr"
)

// httpProvider calls an external embedding service over HTTP, the way
// the local provider talks to a sidecar process — but this
// package never manages that process's lifecycle (embedding generation
// is an external capability, not core scope).
type httpProvider struct {
	endpoint   string
	dimensions int
	client     *http.Client
}

// NewHTTPProvider creates a Provider backed by a JSON HTTP endpoint
// accepting {"texts": [...], "mode": "query"|"passage"} and returning
// {"embeddings": [[...]...]}.
func NewHTTPProvider(endpoint string, dimensions int, timeout time.Duration) Provider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpProvider{
		endpoint:   endpoint,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *httpProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Texts: texts, Mode: string(mode)})
	if err != nil {
		return nil, prismerr.Validation("embed_request_encode", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, prismerr.Validation("embed_request_build", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, prismerr.Cancelled(ctx.Err())
		}
		return nil, prismerr.Network("embed_request_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, prismerr.Network("embed_request_status", fmt.Errorf("status %d", resp.StatusCode))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, prismerr.Network("embed_response_decode", err)
	}

	for i := range out.Embeddings {
		out.Embeddings[i] = Normalize(out.Embeddings[i])
	}
	if err := Validate(out.Embeddings, p.dimensions); err != nil {
		return nil, err
	}

	return out.Embeddings, nil
}

func (p *httpProvider) Dimensions() int { return p.dimensions }

func (p *httpProvider) Close() error { return nil }
