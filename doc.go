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

// Package slogdiscord provides a [log/slog] handler that posts log records
// to a Discord channel through a webhook. It is meant for the handful of
// records a team wants to see in chat, such as errors and deploy notices,
// usually alongside a regular handler writing everything else.
//
// The primary entry point is [NewHandler]. Each record becomes one Discord
// message sent as the configured service name:
//   - A short single-line message is an embed whose title is the message,
//     coloured by severity and prefixed with the severity's emoji.
//   - A multi-line message whose lines all fit the line wrap threshold is an
//     embed with the first line as title and the rest as description.
//   - Anything with a longer line is sent as one code block.
//
// Every text field is clipped to [MaxFieldLength] characters, keeping the
// tail of the message by default ([KeepTail]).
//
// Delivery never fails the caller: Handle always returns nil. HTTP errors
// from Discord, rate limiting included, produce one line on stderr; other
// failures go to the [ErrorHandler] set with [WithErrorHandler]. Records
// logged while a delivery is in progress, for example by an instrumented
// HTTP transport, are dropped rather than sent recursively.
//
// [ReportError] logs an error together with its stack trace, which Discord
// shows as a code block.
//
// # Quick Start
//
//	handler, err := slogdiscord.NewHandler(os.Getenv("DISCORD_WEBHOOK_URL"),
//		slogdiscord.WithServiceName("billing"),
//		slogdiscord.WithLevel(slog.LevelWarn),
//	)
//	if err != nil {
//	    log.Fatalf("create slogdiscord handler: %v", err)
//	}
//	defer handler.Close()
//
//	logger := slog.New(handler)
//	logger.Error("payment declined", "order_id", 8123)
//
// Handle posts on the caller's goroutine, and a record logged from another
// goroutine while a post is in flight is dropped. Servers and other programs
// that log concurrently should add [WithAsync], which queues records for a
// single background worker:
//
//	handler, err := slogdiscord.NewHandler(url, slogdiscord.WithAsync())
//
// Dropped overlapping records are reported at debug level to the logger set
// with [WithInternalLogger].
//
// # Configuration
//
// Functional options such as [WithStyles], [WithLineWrapThreshold],
// [WithRateLimitRetry] and [WithAsync] adjust behaviour programmatically.
// The environment variables SLOGDISCORD_WEBHOOK_URL, SLOGDISCORD_SERVICE_NAME,
// SLOGDISCORD_AVATAR_URL, SLOGDISCORD_LEVEL, SLOGDISCORD_RATE_LIMIT_RETRY,
// SLOGDISCORD_LINE_WRAP_THRESHOLD, SLOGDISCORD_SOURCE_LOCATION and
// SLOGDISCORD_TRACE_PROJECT_ID are read first; options override them.
//
// # Subpackages
//
//   - [github.com/pjscruggs/slogdiscord/webhook] is the Discord webhook
//     client used as the default [Transport].
//   - [github.com/pjscruggs/slogdiscord/slogdiscordasync] queues records
//     for background delivery.
//
// The slogdiscord command in cmd/slogdiscord posts messages or piped output
// from the shell.
package slogdiscord
