// Package plaza is a client for the bol.com Plaza seller API (v2).
//
// Every request is signed with the account's HMAC key pair and exchanges XML
// documents. Responses are mapped onto typed entities; failures surface as
// one of *TransportError, *RateLimitError, *APIError or *ParseError.
package plaza

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// LiveURL is the production API host
	LiveURL = "https://plazaapi.bol.com"
	// TestURL is the test API host
	TestURL = "https://test-plazaapi.bol.com"

	APIVersion      = "v2"
	OfferAPIVersion = "v2"

	HTTPTimeout = 60 * time.Second
	UserAgent   = "plaza-helpers Go client (github.com/julienbonastre/plaza-helpers)"
	ContentType = "application/xml"
)

// Configuration errors
var (
	ErrMissingPublicKey  = errors.New("plaza: public key is required")
	ErrMissingPrivateKey = errors.New("plaza: private key is required")
)

// Config holds Plaza API configuration. It is copied into the client and
// never mutated afterwards.
type Config struct {
	PublicKey  string
	PrivateKey string

	// TestMode selects the test API host
	TestMode bool
	// SkipSSLVerification disables certificate checks. Only for test setups.
	SkipSSLVerification bool

	// BaseURL overrides the host picked by TestMode
	BaseURL string
	// HTTPClient overrides the default one-connection-per-request client
	HTTPClient HTTPClient
	Logger     *zap.Logger
}

// Client is the Plaza API client. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	config    Config
	signer    *Signer
	transport *transport
	baseURL   string
	logger    *zap.Logger
	now       func() time.Time
}

// NewClient creates a new Plaza API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.PublicKey == "" {
		return nil, ErrMissingPublicKey
	}
	if cfg.PrivateKey == "" {
		return nil, ErrMissingPrivateKey
	}

	baseURL := LiveURL
	if cfg.TestMode {
		baseURL = TestURL
	}
	if cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	var httpClient HTTPClient = cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.SkipSSLVerification)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:    cfg,
		signer:    NewSigner(cfg.PublicKey, cfg.PrivateKey),
		transport: &transport{httpClient: httpClient, userAgent: UserAgent},
		baseURL:   baseURL,
		logger:    logger.Named("plaza"),
		now:       time.Now,
	}, nil
}

// BaseURL returns the API host requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsTestMode returns true if the client talks to the test API
func (c *Client) IsTestMode() bool {
	return c.config.TestMode
}

// call describes one API operation
type call struct {
	method         string
	endpoint       string // path relative to the base URL, may carry a query string
	params         url.Values
	body           []byte
	accept         string
	captureHeaders bool
}

// do signs and executes a call, then runs the error classifier on the result.
func (c *Client) do(ctx context.Context, cl call) (*response, error) {
	date := c.now().UTC().Format(http.TimeFormat)
	rawURL := c.baseURL + cl.endpoint

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("plaza: invalid endpoint %q: %w", cl.endpoint, err)
	}
	// the signature covers the path only, never the query string
	path := u.Path
	if path == "" {
		path = cl.endpoint
	}

	headers := http.Header{}
	if cl.accept != "" {
		headers.Set("Accept", cl.accept)
	}
	headers.Set("Content-Type", ContentType)
	headers.Set("X-BOL-Date", date)
	headers.Set("X-BOL-Authorization", c.signer.Sign(cl.method, ContentType, date, path))

	start := time.Now()
	resp, err := c.transport.do(ctx, request{
		method:         cl.method,
		url:            rawURL,
		params:         cl.params,
		body:           cl.body,
		headers:        headers,
		captureHeaders: cl.captureHeaders,
	})
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", cl.method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("request completed",
		zap.String("method", cl.method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", time.Since(start)))

	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// marshalBody serializes a request entity, wrapping failures with the operation name
func marshalBody(op string, e Entity, namespace string) ([]byte, error) {
	data, err := Marshal(e, namespace)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}
