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
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Option configures a Client built by New.
type Option func(*config)

type config struct {
	httpClient     *http.Client
	retryRateLimit bool
	maxRetries     int
	maxRetryWait   time.Duration
	limit          rate.Limit
	burst          int
	userAgent      string
	otel           bool
	tracerProvider trace.TracerProvider
	logger         *slog.Logger
}

// WithHTTPClient sends requests through client instead of a default
// http.Client. Its timeout, if any, bounds each POST.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = client
	}
}

// WithRateLimitRetry controls whether 429 responses are retried after the
// wait Discord requests. Enabled by default.
func WithRateLimitRetry(enabled bool) Option {
	return func(cfg *config) {
		cfg.retryRateLimit = enabled
	}
}

// WithMaxRetries bounds the number of rate-limit retries per Send. Negative
// values are treated as zero.
func WithMaxRetries(n int) Option {
	return func(cfg *config) {
		cfg.maxRetries = n
	}
}

// WithMaxRetryWait caps the wait the client is willing to honour before a
// retry. A 429 asking for longer is returned to the caller instead.
func WithMaxRetryWait(d time.Duration) Option {
	return func(cfg *config) {
		cfg.maxRetryWait = d
	}
}

// WithRateLimit paces outgoing POSTs with a token bucket allowing limit
// requests per second and bursts of burst. Send waits for a token while its
// context allows.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(cfg *config) {
		cfg.limit = limit
		cfg.burst = burst
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *config) {
		cfg.userAgent = ua
	}
}

// WithOTel wraps the HTTP transport with otelhttp so each POST produces a
// client span and carries trace headers.
func WithOTel(enabled bool) Option {
	return func(cfg *config) {
		cfg.otel = enabled
	}
}

// WithTracerProvider selects the provider used when WithOTel is enabled.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}

// WithLogger receives debug diagnostics about retries and pacing.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
