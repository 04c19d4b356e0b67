package plaza

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Signer produces the X-BOL-Authorization header value for a request.
type Signer struct {
	publicKey  string
	privateKey string
}

// NewSigner creates a signer for the given key pair
func NewSigner(publicKey, privateKey string) *Signer {
	return &Signer{publicKey: publicKey, privateKey: privateKey}
}

// Sign returns "publicKey:base64(HMAC-SHA256(privateKey, canonical))".
// The path must not contain the query string.
func (s *Signer) Sign(method, contentType, date, path string) string {
	mac := hmac.New(sha256.New, []byte(s.privateKey))
	mac.Write([]byte(canonicalString(method, contentType, date, path)))
	return s.publicKey + ":" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// canonicalString builds the string to sign:
// METHOD, empty line, content type, date, x-bol-date header, path.
func canonicalString(method, contentType, date, path string) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteString("\n\n")
	b.WriteString(contentType)
	b.WriteString("\n")
	b.WriteString(date)
	b.WriteString("\nx-bol-date:")
	b.WriteString(date)
	b.WriteString("\n")
	b.WriteString(path)
	return b.String()
}
