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

package slogdiscord

import (
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pjscruggs/slogdiscord/slogdiscordasync"
)

// Option mutates Handler construction behaviour when supplied to [NewHandler].
//
// Options are applied in the order they are provided, after environment
// variable overrides, so an explicit option always wins over the environment.
type Option func(*options)

// options holds explicitly configured values. Pointer fields distinguish an
// unset option from a zero value.
type options struct {
	serviceName       *string
	avatarURL         *string
	styles            *Styles
	colours           map[slog.Level]int
	emojis            map[slog.Level]string
	rateLimitRetry    *bool
	lineWrapThreshold *int
	clipPolicy        *ClipPolicy
	level             *slog.Level
	levelVar          *slog.LevelVar
	addSource         *bool
	traceAttributes   *bool
	traceProjectID    *string
	otel              *bool
	formatter         Formatter
	errorHandler      ErrorHandler
	errorWriter       io.Writer
	errorWriterSet    bool
	transport         Transport
	httpClient        *http.Client
	rateLimit         *rate.Limit
	rateBurst         int
	internalLogger    *slog.Logger
	attrs             []groupedAttrs
	groups            []string
	asyncEnabled      bool
	asyncOpts         []slogdiscordasync.Option
}

// WithServiceName sets the sender name shown on Discord messages. Without it
// the handler uses SLOGDISCORD_SERVICE_NAME or the detected runtime name.
func WithServiceName(name string) Option {
	trimmed := strings.TrimSpace(name)
	return func(o *options) {
		o.serviceName = &trimmed
	}
}

// WithAvatarURL sets the sender avatar image.
func WithAvatarURL(url string) Option {
	trimmed := strings.TrimSpace(url)
	return func(o *options) {
		o.avatarURL = &trimmed
	}
}

// WithStyles replaces the severity styles. It takes precedence over
// [WithColours] and [WithEmojis].
func WithStyles(styles Styles) Option {
	return func(o *options) {
		o.styles = &styles
	}
}

// WithColours replaces the colour map. The map must contain [LevelFallback];
// [NewHandler] returns [ErrMissingFallbackStyle] otherwise.
func WithColours(colours map[slog.Level]int) Option {
	dup := maps.Clone(colours)
	return func(o *options) {
		o.colours = dup
		if o.colours == nil {
			o.colours = map[slog.Level]int{}
		}
	}
}

// WithEmojis replaces the emoji map. The map must contain [LevelFallback].
func WithEmojis(emojis map[slog.Level]string) Option {
	dup := maps.Clone(emojis)
	return func(o *options) {
		o.emojis = dup
		if o.emojis == nil {
			o.emojis = map[slog.Level]string{}
		}
	}
}

// WithRateLimitRetry controls whether a 429 response is retried after the
// delay Discord asks for. Enabled by default.
func WithRateLimitRetry(enabled bool) Option {
	return func(o *options) {
		o.rateLimitRetry = &enabled
	}
}

// WithLineWrapThreshold sets the line length, in characters, above which a
// message is sent as a code block instead of an embed. Defaults to 60.
func WithLineWrapThreshold(n int) Option {
	return func(o *options) {
		o.lineWrapThreshold = &n
	}
}

// WithClipPolicy selects which end of an oversized message survives. The
// default is [KeepTail].
func WithClipPolicy(policy ClipPolicy) Option {
	return func(o *options) {
		o.clipPolicy = &policy
	}
}

// WithLevel sets the minimum slog level accepted by the handler.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = &level
	}
}

// WithLevelVar shares the provided slog.LevelVar with the handler. When
// supplied, the handler inherits the LevelVar's current value after other
// options and environment overrides have been applied.
func WithLevelVar(levelVar *slog.LevelVar) Option {
	return func(o *options) {
		if levelVar != nil {
			o.levelVar = levelVar
		}
	}
}

// WithSourceLocationEnabled appends the caller's file:line to every message.
func WithSourceLocationEnabled(enabled bool) Option {
	return func(o *options) {
		o.addSource = &enabled
	}
}

// WithTraceAttributes appends the OpenTelemetry trace and span IDs found in
// the record's context.
func WithTraceAttributes(enabled bool) Option {
	return func(o *options) {
		o.traceAttributes = &enabled
	}
}

// WithTraceProjectID sets the Google Cloud project used to build trace
// links. Setting a project also enables trace attributes.
func WithTraceProjectID(id string) Option {
	trimmed := strings.TrimSpace(id)
	return func(o *options) {
		o.traceProjectID = &trimmed
		if trimmed != "" {
			enabled := true
			o.traceAttributes = &enabled
		}
	}
}

// WithOTel instruments webhook requests with otelhttp using the global tracer
// provider.
func WithOTel(enabled bool) Option {
	return func(o *options) {
		o.otel = &enabled
	}
}

// WithFormatter replaces [TextFormatter].
func WithFormatter(f Formatter) Option {
	return func(o *options) {
		o.formatter = f
	}
}

// WithErrorHandler receives failures other than HTTP delivery errors, such
// as formatter errors, network errors and recovered panics. The context it
// receives is marked as delivering, so records logged with it are dropped by
// the handler that reported the failure.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithErrorWriter sets where one-line delivery diagnostics go. Defaults to
// os.Stderr; nil discards them.
func WithErrorWriter(w io.Writer) Option {
	return func(o *options) {
		o.errorWriter = w
		o.errorWriterSet = true
	}
}

// WithTransport replaces the webhook client. The webhook URL becomes
// optional and the HTTP-specific options are ignored.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithHTTPClient sets the HTTP client used for webhook requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithRateLimit paces webhook requests on the client side.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.rateLimit = &limit
		o.rateBurst = burst
	}
}

// WithInternalLogger injects a logger for configuration warnings, transport
// retries and records dropped because another delivery was in flight. It
// must not be backed by the handler being built.
func WithInternalLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.internalLogger = logger
	}
}

// WithAttrs preloads attributes attached to every record, nested under the
// groups opened by earlier [WithGroup] options.
func WithAttrs(attrs []slog.Attr) Option {
	return func(o *options) {
		if len(attrs) == 0 {
			return
		}
		o.attrs = append(o.attrs, groupedAttrs{
			groups: append([]string(nil), o.groups...),
			attrs:  append([]slog.Attr(nil), attrs...),
		})
	}
}

// WithGroup nests subsequent attributes under name. An empty name clears the
// open groups.
func WithGroup(name string) Option {
	trimmed := strings.TrimSpace(name)
	return func(o *options) {
		if trimmed == "" {
			o.groups = nil
			return
		}
		o.groups = append(o.groups, trimmed)
	}
}

// WithAsync delivers records from a background worker through
// [slogdiscordasync], so logging never blocks on Discord and concurrent
// callers are queued instead of dropped. Keep the default single worker:
// deliveries from parallel workers overlap and the handler drops all but
// one of them.
func WithAsync(opts ...slogdiscordasync.Option) Option {
	return func(o *options) {
		o.asyncEnabled = true
		o.asyncOpts = append(o.asyncOpts, opts...)
	}
}
