package plaza

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/beevik/etree"
)

// TransportErrorKind classifies network level failures. The zero value is
// never used so a kind can always be reported as a non-zero code.
type TransportErrorKind int

const (
	TransportUnknown TransportErrorKind = iota + 1
	TransportTimeout
	TransportDNS
	TransportTLS
	TransportConnection
	TransportCanceled
)

// String returns the string representation of the kind
func (k TransportErrorKind) String() string {
	switch k {
	case TransportTimeout:
		return "timeout"
	case TransportDNS:
		return "dns"
	case TransportTLS:
		return "tls"
	case TransportConnection:
		return "connection"
	case TransportCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TransportError is returned when the HTTP exchange itself failed
// (DNS, TLS, connect, timeout, reset). It is never retried.
type TransportError struct {
	Kind   TransportErrorKind
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("plaza: transport error (%s) %s %s: %v", e.Kind, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Code returns the non-zero numeric transport error code
func (e *TransportError) Code() int {
	return int(e.Kind)
}

// RateLimitError is returned for HTTP 409, which the Plaza API uses to
// signal that the request quota is exhausted. Backoff is up to the caller.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "plaza: rate limit exceeded"
}

// APIError carries the vendor error code and message verbatim.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("plaza: api error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("plaza: api error (http %d): %s", e.StatusCode, e.Message)
}

// ParseError means a response body was not well-formed XML. StatusCode is
// the HTTP status of the response that carried it.
type ParseError struct {
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("plaza: malformed xml response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is, or wraps, a RateLimitError
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func newTransportError(method, url string, err error) *TransportError {
	return &TransportError{
		Kind:   classifyTransportError(err),
		Method: method,
		URL:    url,
		Err:    err,
	}
}

func classifyTransportError(err error) TransportErrorKind {
	if errors.Is(err, context.Canceled) {
		return TransportCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TransportTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TransportDNS
	}

	var certErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) || errors.As(err, &recordErr) {
		return TransportTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TransportTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return TransportConnection
	}

	return TransportUnknown
}

// checkResponse maps a completed exchange onto the error taxonomy.
// Statuses 200-226 never produce an error, whatever the body holds.
func checkResponse(resp *response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode <= http.StatusIMUsed {
		return nil
	}

	if resp.StatusCode == http.StatusConflict {
		return &RateLimitError{}
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	root, err := parseDocument(body)
	if err != nil {
		err.StatusCode = resp.StatusCode
		return err
	}

	if node := errorNode(root, "ServiceErrors", "ServiceError"); node != nil {
		return apiErrorFrom(resp.StatusCode, childText(node, "ErrorCode"), childText(node, "ErrorMessage"))
	}
	if node := errorNode(root, "ValidationErrors", "ValidationError"); node != nil {
		return apiErrorFrom(resp.StatusCode, childText(node, "ErrorCode"), childText(node, "ErrorMessage"))
	}
	if code := childText(root, "ErrorCode"); code != "" {
		return apiErrorFrom(resp.StatusCode, code, childText(root, "ErrorMessage"))
	}
	if code := childText(root, "errorCode"); code != "" {
		return apiErrorFrom(resp.StatusCode, code, childText(root, "errorMessage"))
	}

	return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
}

// errorNode finds container/child either at the document root or one level below it.
func errorNode(root *etree.Element, container, child string) *etree.Element {
	if root.Tag == container {
		return root.SelectElement(child)
	}
	if c := root.SelectElement(container); c != nil {
		return c.SelectElement(child)
	}
	return nil
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return c.Text()
	}
	return ""
}

func apiErrorFrom(status int, code, message string) *APIError {
	// non-numeric codes collapse to 0
	n, _ := strconv.Atoi(code)
	return &APIError{StatusCode: status, Code: n, Message: message}
}
