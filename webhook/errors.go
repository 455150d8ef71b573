// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultRetryAfter is used when a 429 response carries no usable wait.
	defaultRetryAfter = time.Second
	// maxErrorBody bounds how much of an error response is kept on HTTPError.
	maxErrorBody = 512
)

var (
	// ErrRateLimited matches any *HTTPError produced by a 429 response.
	ErrRateLimited = errors.New("webhook: rate limited")
	// ErrNilMessage is returned by Send when called without a message.
	ErrNilMessage = errors.New("webhook: nil message")
)

// HTTPError reports a webhook response outside the 2xx range.
type HTTPError struct {
	StatusCode int
	Status     string
	// Body holds the start of the response body with surrounding space trimmed.
	Body string
	// RetryAfter is the wait requested by Discord on 429 responses.
	RetryAfter time.Duration
	// Global reports whether a 429 applies to the whole application rather
	// than this webhook.
	Global bool
}

// Error implements error.
func (e *HTTPError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return fmt.Sprintf("webhook: rate limited, retry after %s: %s", e.RetryAfter, e.Body)
	}
	status := e.Status
	if status == "" {
		status = strconv.Itoa(e.StatusCode)
	}
	if e.Body == "" {
		return fmt.Sprintf("webhook: unexpected status %s", status)
	}
	return fmt.Sprintf("webhook: unexpected status %s: %s", status, e.Body)
}

// Is lets errors.Is(err, ErrRateLimited) identify 429 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

type rateLimitBody struct {
	RetryAfter *float64 `json:"retry_after"`
	Global     bool     `json:"global"`
}

// newHTTPError describes resp using the already-read body snippet.
func newHTTPError(resp *http.Response, body []byte) *HTTPError {
	herr := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		return herr
	}

	herr.RetryAfter = defaultRetryAfter
	var parsed rateLimitBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.RetryAfter != nil && *parsed.RetryAfter >= 0 {
		herr.RetryAfter = time.Duration(*parsed.RetryAfter * float64(time.Second))
		herr.Global = parsed.Global
		return herr
	}
	if d, ok := parseRetryAfterHeader(resp.Header.Get("Retry-After")); ok {
		herr.RetryAfter = d
	}
	return herr
}

// parseRetryAfterHeader reads a Retry-After header expressed in seconds.
// Discord sends fractional seconds, so floats are accepted.
func parseRetryAfterHeader(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
