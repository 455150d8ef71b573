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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/pjscruggs/slogdiscord/slogdiscordasync"
	"github.com/pjscruggs/slogdiscord/webhook"
)

const (
	// DefaultLineWrapThreshold is the line length above which messages are
	// sent as code blocks.
	DefaultLineWrapThreshold = 60

	envWebhookURL        = "SLOGDISCORD_WEBHOOK_URL"
	envServiceName       = "SLOGDISCORD_SERVICE_NAME"
	envAvatarURL         = "SLOGDISCORD_AVATAR_URL"
	envLevel             = "SLOGDISCORD_LEVEL"
	envRateLimitRetry    = "SLOGDISCORD_RATE_LIMIT_RETRY"
	envLineWrapThreshold = "SLOGDISCORD_LINE_WRAP_THRESHOLD"
	envSourceLocation    = "SLOGDISCORD_SOURCE_LOCATION"
	envTraceProjectID    = "SLOGDISCORD_TRACE_PROJECT_ID"
)

var (
	// ErrMissingWebhookURL indicates that no webhook URL was passed to
	// NewHandler or found in SLOGDISCORD_WEBHOOK_URL, and no Transport was
	// supplied.
	ErrMissingWebhookURL = errors.New("slogdiscord: missing webhook URL")
	// ErrInvalidLineWrapThreshold indicates a line wrap threshold below 1.
	ErrInvalidLineWrapThreshold = errors.New("slogdiscord: line wrap threshold must be at least 1")
)

// Handler forwards slog records to a Discord channel through a webhook. It
// is safe to share between goroutines, but a record logged while another is
// being delivered is dropped unless the handler was built with [WithAsync].
type Handler struct {
	slog.Handler

	cfg            *handlerConfig
	transport      Transport
	internalLogger *slog.Logger
	levelVar       *slog.LevelVar

	closeOnce sync.Once
	closeErr  error
}

type handlerConfig struct {
	WebhookURL        string
	ServiceName       string
	AvatarURL         string
	Level             slog.Level
	Styles            Styles
	RateLimitRetry    bool
	LineWrapThreshold int
	ClipPolicy        ClipPolicy
	AddSource         bool
	TraceAttributes   bool
	TraceProjectID    string
	OTel              bool
	Formatter         Formatter
	ErrorHandler      ErrorHandler
	ErrorWriter       io.Writer
	HTTPClient        *http.Client
	RateLimit         rate.Limit
	RateBurst         int
	InitialAttrs      []groupedAttrs
	InitialGroups     []string
	InternalLogger    *slog.Logger
}

// detectRuntime is replaced in tests.
var detectRuntime = DetectRuntimeInfo

// NewHandler builds a Discord [Handler] posting to webhookURL. It reads
// SLOGDISCORD_* environment overrides and then applies opts. An empty
// webhookURL falls back to SLOGDISCORD_WEBHOOK_URL; the URL itself is not
// validated, so a malformed URL only shows up as a delivery diagnostic.
//
// Example:
//
//	h, err := slogdiscord.NewHandler(os.Getenv("DISCORD_WEBHOOK"),
//		slogdiscord.WithServiceName("billing"),
//		slogdiscord.WithLevel(slog.LevelWarn),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Close()
//	slog.New(h).Error("payment declined", "order_id", 8123)
func NewHandler(webhookURL string, opts ...Option) (*Handler, error) {
	builder := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(builder)
		}
	}

	internalLogger := builder.internalLogger
	if internalLogger == nil {
		internalLogger = slog.New(slog.DiscardHandler)
	}

	cfg := loadConfigFromEnv(internalLogger)
	if err := applyOptions(&cfg, builder); err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(webhookURL); trimmed != "" {
		cfg.WebhookURL = trimmed
	}

	if cfg.WebhookURL == "" && builder.transport == nil {
		return nil, ErrMissingWebhookURL
	}
	if cfg.LineWrapThreshold < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLineWrapThreshold, cfg.LineWrapThreshold)
	}

	resolveRuntimeDefaults(&cfg, internalLogger)

	levelVar := builder.levelVar
	if levelVar == nil {
		levelVar = new(slog.LevelVar)
	}
	levelVar.Set(cfg.Level)

	transport := builder.transport
	if transport == nil {
		transport = newWebhookClient(&cfg, internalLogger)
	}

	cfg.InternalLogger = internalLogger
	cfgPtr := &cfg
	handler := slog.Handler(newDiscordHandler(cfgPtr, levelVar, transport))
	if builder.asyncEnabled {
		handler = slogdiscordasync.Wrap(handler, builder.asyncOpts...)
	}

	return &Handler{
		Handler:        handler,
		cfg:            cfgPtr,
		transport:      transport,
		internalLogger: internalLogger,
		levelVar:       levelVar,
	}, nil
}

// newWebhookClient builds the default transport from cfg.
func newWebhookClient(cfg *handlerConfig, logger *slog.Logger) *webhook.Client {
	opts := []webhook.Option{
		webhook.WithRateLimitRetry(cfg.RateLimitRetry),
		webhook.WithUserAgent(UserAgent),
		webhook.WithLogger(logger),
		webhook.WithOTel(cfg.OTel),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, webhook.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, webhook.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	return webhook.New(cfg.WebhookURL, opts...)
}

// resolveRuntimeDefaults fills the sender name and trace project from the
// detected runtime when neither was configured.
func resolveRuntimeDefaults(cfg *handlerConfig, logger *slog.Logger) {
	needName := cfg.ServiceName == ""
	needProject := cfg.TraceAttributes && cfg.TraceProjectID == ""
	if !needName && !needProject {
		return
	}

	info := detectRuntime()
	if needName {
		cfg.ServiceName = defaultServiceName(info)
		logDiagnostic(logger, slog.LevelDebug, "using detected service name",
			slog.String("service", cfg.ServiceName),
			slog.String("platform", info.Platform))
	}
	if needProject {
		cfg.TraceProjectID = info.ProjectID
	}
}

// Close stops the async worker, when one is configured, after it drains the
// queue, and releases idle webhook connections. It is safe to call multiple
// times; only the first invocation performs work.
func (h *Handler) Close() error {
	h.closeOnce.Do(func() {
		if closer, ok := h.Handler.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				h.closeErr = err
				h.internalLogger.Error("failed to flush async queue", slog.Any("error", err))
			}
		}
		if c, ok := h.transport.(interface{ CloseIdleConnections() }); ok {
			c.CloseIdleConnections()
		}
	})
	return h.closeErr
}

// SetLevel updates the minimum slog level accepted by the handler at runtime.
// Calls are safe for concurrent use.
func (h *Handler) SetLevel(level slog.Level) {
	if h == nil || h.levelVar == nil {
		return
	}
	h.levelVar.Set(level)
}

// Level reports the handler's current minimum slog level.
func (h *Handler) Level() slog.Level {
	if h == nil || h.levelVar == nil {
		return slog.LevelInfo
	}
	return h.levelVar.Level()
}

// LevelVar returns the underlying slog.LevelVar used to gate records.
func (h *Handler) LevelVar() *slog.LevelVar {
	if h == nil {
		return nil
	}
	return h.levelVar
}

// ServiceName returns the sender name the handler posts as.
func (h *Handler) ServiceName() string {
	if h == nil || h.cfg == nil {
		return ""
	}
	return h.cfg.ServiceName
}

// loadConfigFromEnv builds the default configuration and overlays
// SLOGDISCORD_* environment variables, logging invalid values to logger.
func loadConfigFromEnv(logger *slog.Logger) handlerConfig {
	cfg := handlerConfig{
		Level:             slog.LevelInfo,
		Styles:            DefaultStyles(),
		RateLimitRetry:    true,
		LineWrapThreshold: DefaultLineWrapThreshold,
		ClipPolicy:        KeepTail,
		Formatter:         TextFormatter,
		ErrorWriter:       os.Stderr,
	}

	cfg.WebhookURL = strings.TrimSpace(os.Getenv(envWebhookURL))
	cfg.ServiceName = strings.TrimSpace(os.Getenv(envServiceName))
	cfg.AvatarURL = strings.TrimSpace(os.Getenv(envAvatarURL))
	cfg.Level = parseLevelEnv(os.Getenv(envLevel), cfg.Level, logger)
	cfg.RateLimitRetry = parseBoolEnv(os.Getenv(envRateLimitRetry), cfg.RateLimitRetry, logger)
	cfg.LineWrapThreshold = parseIntEnv(os.Getenv(envLineWrapThreshold), cfg.LineWrapThreshold, logger)
	cfg.AddSource = parseBoolEnv(os.Getenv(envSourceLocation), cfg.AddSource, logger)

	if project := strings.TrimSpace(os.Getenv(envTraceProjectID)); project != "" {
		cfg.TraceProjectID = project
		cfg.TraceAttributes = true
	}
	return cfg
}

// applyOptions merges user-supplied options into the derived handler
// configuration.
func applyOptions(cfg *handlerConfig, o *options) error {
	if o.serviceName != nil && *o.serviceName != "" {
		cfg.ServiceName = *o.serviceName
	}
	if o.avatarURL != nil {
		cfg.AvatarURL = *o.avatarURL
	}
	switch {
	case o.styles != nil:
		cfg.Styles = *o.styles
	case o.colours != nil || o.emojis != nil:
		colours, emojis := o.colours, o.emojis
		if colours == nil {
			colours = DefaultColours()
		}
		if emojis == nil {
			emojis = DefaultEmojis()
		}
		styles, err := StylesFromMaps(colours, emojis)
		if err != nil {
			return err
		}
		cfg.Styles = styles
	}
	if o.rateLimitRetry != nil {
		cfg.RateLimitRetry = *o.rateLimitRetry
	}
	if o.lineWrapThreshold != nil {
		cfg.LineWrapThreshold = *o.lineWrapThreshold
	}
	if o.clipPolicy != nil {
		cfg.ClipPolicy = *o.clipPolicy
	}
	if o.level != nil {
		cfg.Level = *o.level
	}
	if o.levelVar != nil {
		cfg.Level = o.levelVar.Level()
	}
	if o.addSource != nil {
		cfg.AddSource = *o.addSource
	}
	if o.traceAttributes != nil {
		cfg.TraceAttributes = *o.traceAttributes
	}
	if o.traceProjectID != nil {
		cfg.TraceProjectID = *o.traceProjectID
	}
	if o.otel != nil {
		cfg.OTel = *o.otel
	}
	if o.formatter != nil {
		cfg.Formatter = o.formatter
	}
	if o.errorHandler != nil {
		cfg.ErrorHandler = o.errorHandler
	}
	if o.errorWriterSet {
		cfg.ErrorWriter = o.errorWriter
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	if o.rateLimit != nil {
		cfg.RateLimit = *o.rateLimit
		cfg.RateBurst = o.rateBurst
	}
	cfg.InitialAttrs = append(cfg.InitialAttrs, o.attrs...)
	if len(o.groups) > 0 {
		cfg.InitialGroups = append([]string(nil), o.groups...)
	}
	return nil
}

// parseBoolEnv interprets truthy environment variable values with validation
// diagnostics.
func parseBoolEnv(value string, current bool, logger *slog.Logger) bool {
	if strings.TrimSpace(value) == "" {
		return current
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		logDiagnostic(logger, slog.LevelWarn, "invalid boolean environment variable", slog.String("value", value), slog.Any("error", err))
		return current
	}
	return b
}

// parseIntEnv parses an integer environment variable, retaining current on
// failure.
func parseIntEnv(value string, current int, logger *slog.Logger) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return current
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		logDiagnostic(logger, slog.LevelWarn, "invalid integer environment variable", slog.String("value", value), slog.Any("error", err))
		return current
	}
	return n
}

// parseLevelEnv parses slog levels from environment variables, retaining the
// current level on failure.
func parseLevelEnv(value string, current slog.Level, logger *slog.Logger) slog.Level {
	if strings.TrimSpace(value) == "" {
		return current
	}
	level, err := ParseLevel(value)
	if err != nil {
		logDiagnostic(logger, slog.LevelWarn, "invalid log level environment variable", slog.String("value", value))
		return current
	}
	return level
}

// logDiagnostic emits internal diagnostic messages, guarding against nil
// loggers in tests.
func logDiagnostic(logger *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
