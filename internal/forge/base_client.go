package forge

import "context"

const (
	// MaxConcurrentRequests limits concurrent API requests to avoid overwhelming the API
	MaxConcurrentRequests = 5
	// DefaultPageSize is the page size the upstream endpoints are walked with
	DefaultPageSize = 30
)

// BaseClient contains common fields and functionality for forge API clients.
type BaseClient struct {
	BaseURL    string
	Token      string
	HTTPClient HTTPClient
	Semaphore  chan struct{} // Limits concurrent requests
}

// NewBaseClient creates a new base client with rate limiting.
func NewBaseClient(baseURL, token string, httpClient HTTPClient) *BaseClient {
	return &BaseClient{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: httpClient,
		Semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}
}

// DoRateLimited performs an operation with rate limiting via semaphore.
// Batch write fan-out goes through here so a large import cannot flood the
// server with concurrent requests.
func (c *BaseClient) DoRateLimited(ctx context.Context, fn func() error) error {
	// Acquire semaphore (rate limiting)
	select {
	case c.Semaphore <- struct{}{}:
		defer func() { <-c.Semaphore }()
	case <-ctx.Done():
		return ctx.Err()
	}

	return fn()
}
