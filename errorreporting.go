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
	"log/slog"
)

// ErrorReportOption configures [ErrorAttrs] and [ReportError].
type ErrorReportOption func(*errorReportConfig)

type errorReportConfig struct {
	level slog.Level
	stack bool
}

// WithReportLevel sets the level [ReportError] logs at. It defaults to
// [LevelError].
func WithReportLevel(level slog.Level) ErrorReportOption {
	return func(cfg *errorReportConfig) {
		cfg.level = level
	}
}

// WithStackTrace controls whether a stack attribute is attached. It is on by
// default.
func WithStackTrace(enabled bool) ErrorReportOption {
	return func(cfg *errorReportConfig) {
		cfg.stack = enabled
	}
}

func buildErrorReportConfig(opts []ErrorReportOption) errorReportConfig {
	cfg := errorReportConfig{level: LevelError, stack: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ErrorAttrs returns an "error" attribute for err and, unless disabled, a
// multi-line "stack" attribute. The stack recorded by err itself is used when
// it carries one; otherwise the caller's stack is captured. Because the stack
// has long lines, records carrying it are posted as code blocks.
func ErrorAttrs(err error, opts ...ErrorReportOption) []slog.Attr {
	if err == nil {
		return nil
	}
	cfg := buildErrorReportConfig(opts)
	return errorAttrs(err, cfg)
}

func errorAttrs(err error, cfg errorReportConfig) []slog.Attr {
	attrs := []slog.Attr{slog.String("error", err.Error())}
	if !cfg.stack {
		return attrs
	}
	stack := originStack(err)
	if stack == "" {
		stack = captureStack()
	}
	if stack != "" {
		attrs = append(attrs, slog.String("stack", stack))
	}
	return attrs
}

// ReportError logs err through logger with the attributes from [ErrorAttrs].
// Nil loggers and nil errors are ignored.
func ReportError(ctx context.Context, logger *slog.Logger, err error, msg string, opts ...ErrorReportOption) {
	if logger == nil || err == nil {
		return
	}
	cfg := buildErrorReportConfig(opts)
	if !logger.Enabled(ctx, cfg.level) {
		return
	}
	logger.LogAttrs(ctx, cfg.level, msg, errorAttrs(err, cfg)...)
}
