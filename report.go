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
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrorHandler receives failures other than HTTP-level delivery errors:
// formatter errors, transport errors such as unreachable hosts or malformed
// webhook URLs, and recovered panics. It must not panic; if it does, or if
// it is re-entered, a one-line diagnostic is written to the error writer
// instead. The record is dropped either way.
type ErrorHandler func(ctx context.Context, r slog.Record, err error)

// reportDeliveryFailure records a webhook HTTP error. These are expected
// (rate limits, revoked webhooks) and only get a one-line diagnostic.
func (h *discordHandler) reportDeliveryFailure(err error) {
	writeDiagnostic(h.cfg.ErrorWriter, "slogdiscord: error from Discord logger: %v", err)
}

// reportOverlap notes a record dropped because another delivery was in
// flight. Only the internal logger sees it, at debug level.
func (h *discordHandler) reportOverlap(ctx context.Context, r slog.Record) {
	dropped := h.state.overlapped.Add(1)
	logger := h.cfg.InternalLogger
	if logger == nil {
		return
	}
	logger.LogAttrs(deliveryContext(ctx), slog.LevelDebug, "record dropped while another delivery was in flight",
		slog.String("level", LevelName(r.Level)),
		slog.String("message", r.Message),
		slog.Uint64("dropped_total", dropped),
	)
}

// reportUnexpected routes err to the configured ErrorHandler, falling back
// to the error writer when no handler is set or calling it is unsafe.
func (h *discordHandler) reportUnexpected(ctx context.Context, r slog.Record, err error) {
	hook := h.cfg.ErrorHandler
	if hook == nil {
		writeDiagnostic(h.cfg.ErrorWriter, "slogdiscord: dropped %s record %q: %v", LevelName(r.Level), r.Message, err)
		return
	}
	if !h.state.reporting.CompareAndSwap(false, true) {
		writeDiagnostic(h.cfg.ErrorWriter, "slogdiscord: error handler re-entered, dropped %s record %q: %v", LevelName(r.Level), r.Message, err)
		return
	}
	defer h.state.reporting.Store(false)
	defer func() {
		if p := recover(); p != nil {
			writeDiagnostic(h.cfg.ErrorWriter, "slogdiscord: error handler panicked: %v (while reporting: %v)", p, err)
		}
	}()

	hook(deliveryContext(ctx), r, err)
}

// writeDiagnostic writes a single line to w. Line breaks inside the message
// are flattened so one failure never spans several lines.
func writeDiagnostic(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(line)
	_, _ = io.WriteString(w, line+"\n")
}
