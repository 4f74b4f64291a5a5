package planclient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/requestid"
)

func newBreaker(name string) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})
}

var errRetryableStatus = errors.New("retryable status")

// do sends req through the circuit breaker. When retry is set, 429 and 5xx
// responses and transport errors are retried with backoff. Other responses,
// including 4xx, are returned to the caller, who must close the body.
func (c *Client) do(req *http.Request, retry bool) (*http.Response, error) {
	attempts := 1
	if retry {
		attempts += c.retry.MaxRetries
	}

	var (
		lastResp *http.Response
		lastErr  error
	)
	for attempt := range attempts {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, doErr := c.http.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
				return r, fmt.Errorf("%w: %d", errRetryableStatus, r.StatusCode)
			}
			return r, nil
		})
		if err == nil {
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			closeBody(lastResp)
			return nil, errors.Join(ErrCircuitOpen, err)
		}

		closeBody(lastResp)
		lastResp, lastErr = resp, err

		if ctxErr := req.Context().Err(); ctxErr != nil {
			closeBody(lastResp)
			return nil, errors.Join(ErrRequestFailed, ctxErr)
		}
		if attempt == attempts-1 {
			break
		}

		wait := c.backoff(attempt, resp)
		c.logger.WarnContext(req.Context(), "planclient: retrying request",
			logger.Error(err),
			logger.RequestID(req.Header.Get(requestid.Header)),
			logger.Duration(wait),
		)
		if err := c.sleep(req.Context(), wait); err != nil {
			closeBody(lastResp)
			return nil, errors.Join(ErrRequestFailed, err)
		}
	}

	// a final 429/5xx is handed back so callers can map the status
	if lastResp != nil {
		return lastResp, nil
	}
	return nil, errors.Join(ErrRequestFailed, lastErr)
}

// backoff honours Retry-After, otherwise uses exponential backoff with jitter
// clamped to [MinWait, MaxWait].
func (c *Client) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
				return min(time.Duration(seconds)*time.Second, c.retry.MaxWait)
			}
			if t, err := http.ParseTime(ra); err == nil {
				wait := time.Until(t)
				if wait <= 0 {
					return c.retry.MinWait
				}
				return min(wait, c.retry.MaxWait)
			}
		}
	}

	base := min(float64(c.retry.MinWait)*math.Pow(2, float64(attempt)), float64(c.retry.MaxWait))
	minWait := float64(c.retry.MinWait)
	if base <= minWait {
		return c.retry.MinWait
	}
	return time.Duration(minWait + rand.Float64()*(base-minWait))
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
