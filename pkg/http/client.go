package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

type TransportFunc func(http.RoundTripper) http.RoundTripper

type httpConfig struct {
	connClientTimeout     time.Duration
	requestTimeout        time.Duration
	clientKeepAlive       time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	transports            []TransportFunc
}

// Callbacks go to a single receiver, so one small idle pool covers it
const (
	maxIdleConns        = 10
	tlsHandshakeTimeout = 10 * time.Second
)

func defaultHTTPConfig() *httpConfig {
	return &httpConfig{
		connClientTimeout:     30 * time.Second,
		requestTimeout:        30 * time.Second,
		clientKeepAlive:       90 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
		idleConnTimeout:       90 * time.Second,
	}
}

func newClient(opts ...HttpOpts) *http.Client {
	cfg := defaultHTTPConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return newInternal(cfg)
}

func newInternal(cfg *httpConfig) *http.Client {
	dialer := net.Dialer{
		Timeout:   cfg.connClientTimeout,
		KeepAlive: cfg.clientKeepAlive,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConns,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}

	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}

	var rt http.RoundTripper = transport
	for _, wrap := range cfg.transports {
		rt = wrap(rt)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: rt,
	}
}
