// Package lookup is the boundary to the third-party skip-trace
// provider. The core only ever sees the Provider interface and the
// opaque JSON it returns; everything about the provider's schema is
// handled downstream by the entity normalizer.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Provider performs one lookup against the upstream API. The returned
// bytes are opaque, versioned, undocumented JSON; callers must not
// assume any shape.
type Provider interface {
	Lookup(ctx context.Context, apiName string, params map[string]string) (json.RawMessage, error)
}

// HTTPProvider is a thin HTTP client for the lookup API. It performs a
// single attempt per call; retry policy belongs to the dispatch queue,
// not here.
type HTTPProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPProviderParams configures an HTTPProvider.
type NewHTTPProviderParams struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPProvider creates a provider client.
func NewHTTPProvider(params NewHTTPProviderParams) *HTTPProvider {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: params.BaseURL,
		apiKey:  params.APIKey,
	}
}

func (p *HTTPProvider) Lookup(ctx context.Context, apiName string, params map[string]string) (json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lookup params: %w", err)
	}

	endpoint := p.baseURL + "/" + url.PathEscape(apiName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("lookup returned status %d", res.StatusCode)
	}
	return raw, nil
}
