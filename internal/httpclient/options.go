package httpclient

import (
	"net/http"
	"time"
)

// ClientOptions holds configuration for the instrumented HTTP client.
type ClientOptions struct {
	vendor         string
	baseURL        string
	headers        map[string]string
	requestTimeout time.Duration
	retryMax       int
	roundTripper   http.RoundTripper
}

// ClientOption configures ClientOptions.
type ClientOption func(*ClientOptions)

func newClientOptions(opts ...ClientOption) *ClientOptions {
	options := &ClientOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithVendor sets the vendor name tagged on metrics and traces.
func WithVendor(name string) ClientOption {
	return func(o *ClientOptions) {
		o.vendor = name
	}
}

// WithBaseURL sets the base URL prepended to relative request paths.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = url
	}
}

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) ClientOption {
	return func(o *ClientOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.requestTimeout = d
	}
}

// WithRetry enables the retrying transport with up to max attempts beyond
// the first.
func WithRetry(max int) ClientOption {
	return func(o *ClientOptions) {
		o.retryMax = max
	}
}

// WithRoundTripper sets a custom base transport (tests).
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *ClientOptions) {
		o.roundTripper = rt
	}
}
