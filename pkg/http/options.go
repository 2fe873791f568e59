package http

import "time"

type HttpOpts func(*httpConfig)

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.connClientTimeout = timeout
	}
}

func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.requestTimeout = timeout
	}
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.clientKeepAlive = keepAlive
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.responseHeaderTimeout = timeout
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.idleConnTimeout = timeout
	}
}

func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *httpConfig) {
		c.transports = append(c.transports, transport)
	}
}

// WithUserAgent identifies the service to callback receivers
func WithUserAgent(userAgent string) HttpOpts {
	return WithStaticHeader("User-Agent", userAgent)
}
