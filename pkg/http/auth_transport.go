package http

import "net/http"

type headerTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.header, t.value)

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends token as a bearer Authorization header
func WithAuthToken(token string) HttpOpts {
	value := ""
	if token != "" {
		value = "Bearer " + token
	}
	return WithStaticHeader("Authorization", value)
}

// WithStaticHeader sets header on every request; an empty value is a no-op
func WithStaticHeader(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
