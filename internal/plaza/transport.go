package plaza

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient executes HTTP requests. *http.Client satisfies it; tests can
// substitute their own implementation.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// request describes a single exchange handled by the transport
type request struct {
	method         string
	url            string
	params         url.Values
	body           []byte
	headers        http.Header
	captureHeaders bool
}

// response is what the transport hands back after one exchange.
// header is nil unless the request asked for header capture.
type response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

type transport struct {
	httpClient HTTPClient
	userAgent  string
}

// newHTTPClient builds a client that opens a fresh connection per request.
func newHTTPClient(skipSSLVerification bool) *http.Client {
	return &http.Client{
		Timeout: HTTPTimeout,
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			DisableKeepAlives: true,
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: skipSSLVerification, //nolint:gosec // opt-in, test endpoints only
			},
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

func (t *transport) do(ctx context.Context, req request) (*response, error) {
	u, err := url.Parse(req.url)
	if err != nil {
		return nil, fmt.Errorf("plaza: invalid url %q: %w", req.url, err)
	}

	if req.method == http.MethodGet && len(req.params) > 0 {
		q := u.Query()
		for key, values := range req.params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.body != nil && hasBody(req.method) {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("plaza: failed to create request: %w", err)
	}
	for key, values := range req.headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, newTransportError(req.method, u.String(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(req.method, u.String(), err)
	}

	out := &response{StatusCode: resp.StatusCode, Body: data}
	if req.captureHeaders {
		out.Header = resp.Header.Clone()
	}
	return out, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
