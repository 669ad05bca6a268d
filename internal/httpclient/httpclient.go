package httpclient

import (
	"net/http"
	"time"
)

// HTTPClient is the part of *http.Client the API clients use.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoFunc adapts a function to HTTPClient.
type DoFunc func(req *http.Request) (*http.Response, error)

func (f DoFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// New returns a client whose requests, including reading the body, are
// bounded by timeout. Zero means no limit.
func New(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
