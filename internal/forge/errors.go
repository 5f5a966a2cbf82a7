package forge

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// AuthError reports a credential rejected by the server (401-class).
// It is never retried.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d): %s", e.StatusCode, e.Body)
}

// NotFoundError reports a target resource that no longer exists (404/410).
// Callers use it to evict stale cache entries.
type NotFoundError struct {
	StatusCode int
	URL        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found (status %d): %s", e.StatusCode, e.URL)
}

// RateLimitError reports quota exhaustion. Reset is the server-announced
// reset time, zero when the server did not provide one. The core never waits
// for the reset itself.
type RateLimitError struct {
	StatusCode int
	Reset      time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return fmt.Sprintf("rate limit exceeded (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("rate limit exceeded (status %d), resets at %s", e.StatusCode, e.Reset.Format(time.RFC3339))
}

// RequestError reports any other transport or server failure. StatusCode is
// zero when the request never produced a response.
type RequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ClassifyResponse maps a non-2xx response to the matching typed error.
// A 403 with an exhausted X-RateLimit-Remaining counter is a rate-limit
// condition even though the status is not 429.
func ClassifyResponse(resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return &NotFoundError{StatusCode: resp.StatusCode, URL: requestURL(resp)}
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return &RateLimitError{StatusCode: resp.StatusCode, Reset: rateLimitReset(resp)}
	default:
		return &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}

func requestURL(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}

// rateLimitReset reads the X-RateLimit-Reset header (unix seconds).
func rateLimitReset(resp *http.Response) time.Time {
	raw := resp.Header.Get("X-RateLimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}
