package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	// Do sends a request with an optional raw body (nil means no body).
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error)
}
