// Package crypto provides request signing and API-secret storage for the
// BingX open API.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RequestSigner signs BingX API requests with HMAC-SHA256. The signature is
// computed over the query string of all parameters sorted by key, hex
// encoded, and appended as the "signature" parameter. The API key itself
// travels in the X-BX-APIKEY header, not in the signed payload.
type RequestSigner struct {
	apiKey string
	secret string
}

// NewRequestSigner creates a signer for the given API key pair.
func NewRequestSigner(apiKey, apiSecret string) *RequestSigner {
	return &RequestSigner{
		apiKey: apiKey,
		secret: apiSecret,
	}
}

// APIKey returns the key to send in the X-BX-APIKEY header.
func (s *RequestSigner) APIKey() string {
	return s.apiKey
}

// Configured reports whether both credentials are present.
func (s *RequestSigner) Configured() bool {
	return s.apiKey != "" && s.secret != ""
}

// Sign stamps the current millisecond timestamp onto params and appends the
// signature. The input map is not mutated; a signed copy is returned.
func (s *RequestSigner) Sign(params url.Values) url.Values {
	return s.SignAt(params, time.Now())
}

// SignAt is like Sign but lets the caller supply the timestamp, which keeps
// signature tests deterministic.
func (s *RequestSigner) SignAt(params url.Values, at time.Time) url.Values {
	signed := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			signed.Add(k, v)
		}
	}
	signed.Set("timestamp", strconv.FormatInt(at.UnixMilli(), 10))

	signed.Set("signature", hmacSHA256Hex(s.secret, canonicalQuery(signed)))
	return signed
}

// canonicalQuery renders params as "k=v" pairs joined by "&" with keys in
// lexicographic order. Values are used verbatim: BingX signs the raw value,
// not its URL-encoded form.
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	return strings.Join(pairs, "&")
}

// hmacSHA256Hex computes HMAC-SHA256 of message with key and returns the
// lowercase hex digest.
func hmacSHA256Hex(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// String returns a redacted representation suitable for logging.
func (s *RequestSigner) String() string {
	redact := func(v string) string {
		if len(v) <= 4 {
			return "****"
		}
		return v[:4] + "****"
	}
	return fmt.Sprintf("RequestSigner{key=%s, secret=%s}", redact(s.apiKey), redact(s.secret))
}
