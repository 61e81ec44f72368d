// Package httpretry wraps an HTTP client with retries and backoff for
// calls to external intelligence providers, which rate-limit aggressively
// and fail transiently.
package httpretry

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// HTTPDoer executes a single HTTP request. Both *http.Client and
// *RetryClient satisfy it, so provider adapters can take either.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient retries transient failures with exponential backoff and
// full jitter, honouring Retry-After when the provider sends one.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryClient wraps doer with retry behaviour. A nil doer gets a
// 30-second-timeout http.Client; maxRetries <= 0 means 3 retries after
// the initial attempt.
func NewRetryClient(doer HTTPDoer, maxRetries int) *RetryClient {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		client:     doer,
		maxRetries: maxRetries,
		baseDelay:  1 * time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Do sends the request, retrying on 429/500/502/503/504 and on network
// errors. Client errors (400, 401, 403, 404) return immediately so the
// adapter can map them, as does context cancellation. The response from
// the final attempt is returned as-is, body intact.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	var wait time.Duration

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		if attempt > 0 {
			// Requests with a body need it rewound before resending.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset request body: %w", err)
				}
				req.Body = body
			}

			if wait <= 0 {
				wait = rc.backoff(attempt)
			}
			log.Printf("httpretry: retry %d/%d for %s %s%s in %s",
				attempt, rc.maxRetries, req.Method, req.URL.Host, req.URL.Path, wait)

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			wait = 0
			continue
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt == rc.maxRetries {
			return resp, nil
		}

		// Rate-limited providers tell us when to come back.
		wait = rc.retryAfter(resp)

		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// backoff is exponential with full jitter: a random duration up to
// min(maxDelay, baseDelay * 2^(attempt-1)), floored at 100ms.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	ceiling := float64(rc.baseDelay) * math.Pow(2, float64(attempt-1))
	if ceiling > float64(rc.maxDelay) {
		ceiling = float64(rc.maxDelay)
	}
	d := time.Duration(rand.Float64() * ceiling)
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	return d
}

// retryAfter reads the Retry-After header in its delay-seconds form,
// capped at maxDelay. Zero means no usable header; the caller falls
// back to jittered backoff.
func (rc *RetryClient) retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > rc.maxDelay {
		d = rc.maxDelay
	}
	return d
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
