package planclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/gate"
	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/planstatus"
	"github.com/invoiceaz/planguard/pkg/requestid"
)

const (
	statusPath     = "users/plan/status/"
	businessHeader = "X-Business-ID"
	maxErrorBody   = 64 << 10
)

// Client talks to the entitlement service. It implements planstatus.Fetcher.
type Client struct {
	base      *url.URL
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	retry     RetryPolicy
	userAgent string
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *slog.Logger
	now       func() time.Time
}

var _ planstatus.Fetcher = (*Client)(nil)

// New creates a client for the service at baseURL, e.g. "https://api.invoice.az/api/".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, fmt.Errorf("%q", baseURL), err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 10 * time.Second},
		retry:  DefaultRetryPolicy(),
		sleep:  sleepContext,
		logger: logger.Nop(),
		now:    time.Now,
	}
	c.breaker = newBreaker("entitlement")
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("planclient"))
	return c, nil
}

// FetchStatus requests the plan status for req's account and business.
func (c *Client) FetchStatus(ctx context.Context, req planstatus.FetchRequest) (*entitlement.Snapshot, error) {
	u := c.base.JoinPath(statusPath)
	if req.BusinessID != "" {
		q := u.Query()
		q.Set("business_id", req.BusinessID)
		u.RawQuery = q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("planclient: build request: %w", err)
	}
	c.authorize(httpReq, req)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.do(httpReq, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Join(ErrUnauthorized, &StatusError{Code: resp.StatusCode, Body: readBody(resp.Body)})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Code: resp.StatusCode, Body: readBody(resp.Body)}
	}

	snap, err := entitlement.DecodeStatus(resp.Body, req.BusinessID, c.now())
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	c.logger.DebugContext(ctx, "planclient: plan status fetched",
		logger.UserID(req.Identity.UserID),
		logger.BusinessID(req.BusinessID),
		logger.Plan(string(snap.Plan)),
	)
	return snap, nil
}

// Create posts payload to the resource collection, e.g. POST /clients/.
// Rejections are returned as *gate.APIError so gated flows can classify them.
// Mutations are never retried.
func (c *Client) Create(ctx context.Context, req planstatus.FetchRequest, res entitlement.Resource, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("planclient: encode payload: %w", err)
	}

	u := c.base.JoinPath(string(res) + "/")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("planclient: build request: %w", err)
	}
	c.authorize(httpReq, req)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.do(httpReq, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return gate.ParseAPIError(resp.StatusCode, readBody(resp.Body))
}

func (c *Client) authorize(r *http.Request, req planstatus.FetchRequest) {
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.BusinessID != "" {
		r.Header.Set(businessHeader, req.BusinessID)
	}
	if c.userAgent != "" {
		r.Header.Set("User-Agent", c.userAgent)
	}
	_, id := requestid.Ensure(r.Context())
	r.Header.Set(requestid.Header, id)
}

func readBody(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return b
}
