// Package bingx is the REST client and account adapters for the BingX open
// API. It covers the two futures account families, perpetual (swap/v2) and
// standard (contract/v1), and normalizes their divergent response shapes
// into the canonical domain model.
package bingx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/avierra/futmon/internal/domain"
)

const (
	// DefaultBaseURL is the BingX open API root.
	DefaultBaseURL = "https://open-api.bingx.com"

	// maxAttempts is the total attempt budget per call: one initial try plus
	// two immediate retries.
	maxAttempts = 3

	// attemptTimeout bounds each individual attempt.
	attemptTimeout = 10 * time.Second
)

// Signer produces authenticated request parameters. The concrete
// implementation lives in internal/crypto; the client only needs the signed
// parameter set and the key for the X-BX-APIKEY header.
type Signer interface {
	APIKey() string
	Sign(params url.Values) url.Values
}

// Client is the signed REST client for the BingX open API. Every call runs
// through a bounded-retry wrapper: up to three attempts with an independent
// 10-second timeout each, retrying only timeouts and transient upstream
// errors. Failed attempts are re-signed so the timestamp stays fresh; all
// covered endpoints are read-only, so re-sending cannot double-apply state.
type Client struct {
	baseURL    string
	signer     Signer
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a BingX client with the given signer. baseURL falls back
// to DefaultBaseURL when empty. The HTTP client's own timeout is left at
// zero; per-attempt deadlines come from the retry wrapper's contexts.
func NewClient(baseURL string, signer Signer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		signer:     signer,
		httpClient: &http.Client{},
		logger:     logger.With(slog.String("component", "bingx")),
	}
}

// SetHTTPClient overrides the underlying transport, used by tests to point
// the client at an httptest server with a custom transport.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Ping performs a signed probe against the perpetual balance endpoint to
// verify connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/openApi/swap/v2/user/balance", nil)
	return err
}

// get executes a signed GET against endpoint and returns the envelope's data
// payload. Failures come back as *domain.Fault with a classified kind.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (rawData, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := c.doOnce(ctx, endpoint, params)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if !domain.Retryable(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		c.logger.WarnContext(ctx, "retrying request",
			slog.String("endpoint", endpoint),
			slog.Int("attempt", attempt),
			slog.String("kind", string(domain.KindOf(err))),
		)
	}
	return nil, lastErr
}

// doOnce performs a single signed attempt with its own timeout.
func (c *Client) doOnce(ctx context.Context, endpoint string, params url.Values) (rawData, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	if params == nil {
		params = url.Values{}
	}
	signed := c.signer.Sign(params)

	reqURL := c.baseURL + endpoint + "?" + signed.Encode()
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.WrapFault(domain.FaultUpstream, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("X-BX-APIKEY", c.signer.APIKey())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.WrapFault(domain.FaultTimeout, err)
		}
		return nil, &domain.Fault{Kind: domain.FaultUpstream, Err: err, Transient: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		if isTimeout(err) {
			return nil, domain.WrapFault(domain.FaultTimeout, err)
		}
		return nil, &domain.Fault{Kind: domain.FaultUpstream, Err: err, Transient: true}
	}

	if fault := classifyStatus(resp.StatusCode, body); fault != nil {
		return nil, fault
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.WrapFault(domain.FaultMalformedResponse, fmt.Errorf("decode envelope: %w", err))
	}
	if fault := classifyCode(env.Code, env.Msg); fault != nil {
		return nil, fault
	}

	return env.Data, nil
}

// isTimeout reports whether an HTTP transport error is a deadline of any
// flavor.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyStatus maps a non-2xx HTTP status to a Fault, nil otherwise.
func classifyStatus(status int, body []byte) *domain.Fault {
	if status >= 200 && status < 300 {
		return nil
	}

	detail := fmt.Sprintf("HTTP %d: %s", status, truncate(body, 256))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewFault(domain.FaultAuth, detail)
	case status == http.StatusTooManyRequests:
		return domain.NewFault(domain.FaultRateLimited, detail)
	case status >= 500:
		return &domain.Fault{Kind: domain.FaultUpstream, Detail: detail, Transient: true}
	default:
		return domain.NewFault(domain.FaultUpstream, detail)
	}
}

// BingX result codes observed on the futures endpoints. The exchange signals
// auth and throttling problems through the envelope code even on HTTP 200.
const (
	codeOK             = 0
	codeRateLimited    = 100410
	codeInvalidAPIKey  = 100413
	codeSignatureError = 100419
	codePermissionDeny = 100202
	codeInternalError  = 100500
	codeSystemBusy     = 80012
)

// classifyCode maps a non-zero envelope code to a Fault, nil for success.
func classifyCode(code int, msg string) *domain.Fault {
	if code == codeOK {
		return nil
	}

	detail := fmt.Sprintf("code %d: %s", code, msg)
	switch code {
	case codeInvalidAPIKey, codeSignatureError, codePermissionDeny:
		return domain.NewFault(domain.FaultAuth, detail)
	case codeRateLimited:
		return domain.NewFault(domain.FaultRateLimited, detail)
	case codeInternalError, codeSystemBusy:
		return &domain.Fault{Kind: domain.FaultUpstream, Detail: detail, Transient: true}
	default:
		return domain.NewFault(domain.FaultUpstream, detail)
	}
}

// truncate clips b for error detail strings.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// parseSide maps an explicit upstream direction value to the canonical side.
// Anything outside the known LONG/SHORT set is a MalformedResponse; a side
// is never guessed from the sign of the position size.
func parseSide(raw string) (domain.PositionSide, error) {
	switch raw {
	case "LONG", "Long", "long":
		return domain.SideLong, nil
	case "SHORT", "Short", "short":
		return domain.SideShort, nil
	default:
		return "", domain.NewFault(domain.FaultMalformedResponse,
			fmt.Sprintf("unrecognized position side %q", raw))
	}
}
