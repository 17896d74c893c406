package util

import (
	"net/http"
	"net/url"
)

// HeaderTransport adds fixed headers to every outgoing request
// unless the request already carries them
type HeaderTransport struct {
	Base    http.RoundTripper
	Headers map[string]string
}

// RoundTrip implements http.RoundTripper
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if len(t.Headers) == 0 {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	for k, v := range t.Headers {
		if clone.Header.Get(k) == "" {
			clone.Header.Set(k, v)
		}
	}
	return base.RoundTrip(clone)
}

// NewHTTPClient builds a client with proxy settings and fixed headers.
// It sets no overall timeout; callers bound requests through their context.
func NewHTTPClient(httpProxy, httpsProxy string, headers map[string]string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFor(httpProxy, httpsProxy)

	return &http.Client{
		Transport: &HeaderTransport{Base: transport, Headers: headers},
	}
}

// proxyFor routes LLM traffic through the configured proxy for the request
// scheme, falling back to HTTP_PROXY/HTTPS_PROXY/NO_PROXY
func proxyFor(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		switch {
		case req.URL.Scheme == "https" && httpsProxy != "":
			return url.Parse(httpsProxy)
		case httpProxy != "":
			return url.Parse(httpProxy)
		default:
			return http.ProxyFromEnvironment(req)
		}
	}
}
