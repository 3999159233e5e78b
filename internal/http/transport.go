package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/net/http2"
)

// NewHTTPClient builds a pooled client. When enableHTTP2 is set the transport
// negotiates h2 over TLS.
func NewHTTPClient(timeout time.Duration, enableHTTP2 bool) (*http.Client, error) {
	transport := cleanhttp.DefaultPooledTransport()

	if enableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("failed to configure HTTP/2 transport: %w", err)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
