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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent identifies requests when WithUserAgent is not used.
	DefaultUserAgent = "DiscordBot (https://github.com/pjscruggs/slogdiscord, dev)"

	defaultMaxRetries   = 5
	defaultMaxRetryWait = 30 * time.Second
)

// Client posts messages to a single webhook URL. It is safe for concurrent
// use.
type Client struct {
	url            string
	httpClient     *http.Client
	limiter        *rate.Limiter
	retryRateLimit bool
	maxRetries     int
	maxRetryWait   time.Duration
	userAgent      string
	logger         *slog.Logger

	sleep func(context.Context, time.Duration) error
}

// New returns a Client for url. The URL is not validated here; a malformed
// URL surfaces as an error from Send.
func New(url string, opts ...Option) *Client {
	cfg := config{
		retryRateLimit: true,
		maxRetries:     defaultMaxRetries,
		maxRetryWait:   defaultMaxRetryWait,
		userAgent:      DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.maxRetries < 0 {
		cfg.maxRetries = 0
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.otel {
		httpClient = instrumentClient(httpClient, cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		url:            url,
		httpClient:     httpClient,
		retryRateLimit: cfg.retryRateLimit,
		maxRetries:     cfg.maxRetries,
		maxRetryWait:   cfg.maxRetryWait,
		userAgent:      cfg.userAgent,
		logger:         logger,
		sleep:          sleepContext,
	}
	if cfg.limit > 0 {
		burst := cfg.burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(cfg.limit, burst)
	}
	return c
}

// instrumentClient returns a shallow copy of client whose transport is
// wrapped by otelhttp, leaving the caller's client untouched.
func instrumentClient(client *http.Client, cfg config) *http.Client {
	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	dup := *client
	dup.Transport = otelhttp.NewTransport(base,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "discord.webhook " + r.Method
		}),
	)
	return &dup
}

// URL reports the webhook URL the client posts to.
func (c *Client) URL() string { return c.url }

// Send posts msg and waits for Discord's response. Rate-limited responses are
// retried when enabled, up to the configured number of retries.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	ctx = WithDelivery(ctx)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("webhook: encode message: %w", err)
	}

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("webhook: wait for rate limiter: %w", err)
			}
		}

		err := c.post(ctx, body)
		if err == nil {
			return nil
		}

		var herr *HTTPError
		if !c.retryRateLimit || attempt >= c.maxRetries || !errors.As(err, &herr) || !errors.Is(herr, ErrRateLimited) {
			return err
		}
		if c.maxRetryWait > 0 && herr.RetryAfter > c.maxRetryWait {
			return err
		}

		c.logger.LogAttrs(ctx, slog.LevelDebug, "discord webhook rate limited, retrying",
			slog.Duration("retry_after", herr.RetryAfter),
			slog.Bool("global", herr.Global),
			slog.Int("attempt", attempt+1),
		)
		if err := c.sleep(ctx, herr.RetryAfter); err != nil {
			return fmt.Errorf("webhook: wait for rate limit retry: %w", err)
		}
	}
}

// post performs a single POST of body.
func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return newHTTPError(resp, snippet)
}

// CloseIdleConnections releases idle keep-alive connections held by the
// underlying HTTP client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
