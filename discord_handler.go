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
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/pjscruggs/slogdiscord/webhook"
)

// Transport delivers one composed message. [webhook.Client] is the default
// implementation; any Discord client library can be adapted to it. Errors of
// type [*webhook.HTTPError] are treated as expected delivery failures, every
// other error as unexpected.
type Transport interface {
	Send(ctx context.Context, msg *webhook.Message) error
}

// sinkState is shared by a handler and every handler derived from it.
type sinkState struct {
	// inFlight is set for the duration of one delivery.
	inFlight atomic.Bool
	// reporting is set while the ErrorHandler hook runs.
	reporting atomic.Bool
	// overlapped counts records dropped because inFlight was set.
	overlapped atomic.Uint64
}

type groupedAttrs struct {
	groups []string
	attrs  []slog.Attr
}

// discordHandler turns records into webhook messages.
type discordHandler struct {
	cfg       *handlerConfig
	levelVar  *slog.LevelVar
	layout    layout
	transport Transport
	state     *sinkState

	attrs  []groupedAttrs
	groups []string
}

// newDiscordHandler builds the core handler for cfg.
func newDiscordHandler(cfg *handlerConfig, levelVar *slog.LevelVar, transport Transport) *discordHandler {
	h := &discordHandler{
		cfg:      cfg,
		levelVar: levelVar,
		layout: layout{
			serviceName: cfg.ServiceName,
			avatarURL:   cfg.AvatarURL,
			threshold:   cfg.LineWrapThreshold,
			clipPolicy:  cfg.ClipPolicy,
		},
		transport: transport,
		state:     &sinkState{},
		groups:    slices.Clone(cfg.InitialGroups),
	}
	for _, ga := range cfg.InitialAttrs {
		h.attrs = append(h.attrs, groupedAttrs{
			groups: slices.Clone(ga.groups),
			attrs:  slices.Clone(ga.attrs),
		})
	}
	return h
}

// Enabled reports whether level passes the handler's threshold. Records
// logged while a delivery is in progress on ctx are never enabled.
func (h *discordHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if ctx != nil && webhook.IsDelivery(ctx) {
		return false
	}
	return level >= h.levelVar.Level()
}

// Handle delivers r and always returns nil. A call made while another
// delivery is in flight, whether nested inside the transport or from another
// goroutine, returns without doing anything.
func (h *discordHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if webhook.IsDelivery(ctx) {
		return nil
	}
	if !h.state.inFlight.CompareAndSwap(false, true) {
		h.reportOverlap(ctx, r)
		return nil
	}
	defer h.state.inFlight.Store(false)

	h.emit(ctx, r)
	return nil
}

// emit formats and sends r, routing every failure to the reporting paths.
func (h *discordHandler) emit(ctx context.Context, r slog.Record) {
	defer func() {
		if p := recover(); p != nil {
			h.reportUnexpected(ctx, r, fmt.Errorf("slogdiscord: panic while emitting record: %v", p))
		}
	}()

	text, err := h.cfg.Formatter(ctx, h.render(ctx, r))
	if err != nil {
		h.reportUnexpected(ctx, r, fmt.Errorf("slogdiscord: format record: %w", err))
		return
	}

	msg := h.layout.compose(text, h.cfg.Styles.Lookup(r.Level))
	err = h.transport.Send(deliveryContext(ctx), msg)
	if err == nil {
		return
	}

	var httpErr *webhook.HTTPError
	if errors.As(err, &httpErr) {
		h.reportDeliveryFailure(err)
		return
	}
	h.reportUnexpected(ctx, r, err)
}

// render returns a copy of r carrying the handler's attributes, the record's
// own attributes nested in the open groups, and the optional source and
// trace attributes.
func (h *discordHandler) render(ctx context.Context, r slog.Record) slog.Record {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	for _, ga := range h.attrs {
		out.AddAttrs(nestInGroups(ga.groups, ga.attrs)...)
	}

	if r.NumAttrs() > 0 {
		own := make([]slog.Attr, 0, r.NumAttrs())
		r.Attrs(func(a slog.Attr) bool {
			own = append(own, a)
			return true
		})
		out.AddAttrs(nestInGroups(h.groups, own)...)
	}

	if h.cfg.AddSource {
		if attr, ok := sourceAttr(r.PC); ok {
			out.AddAttrs(attr)
		}
	}
	if h.cfg.TraceAttributes {
		if attrs, ok := TraceAttributes(ctx, h.cfg.TraceProjectID); ok {
			out.AddAttrs(attrs...)
		}
	}
	return out
}

// WithAttrs returns a handler that adds attrs, nested in the open groups, to
// every record. The child shares the parent's delivery state.
func (h *discordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	child := h.clone()
	child.attrs = append(child.attrs, groupedAttrs{
		groups: slices.Clone(h.groups),
		attrs:  slices.Clone(attrs),
	})
	return child
}

// WithGroup returns a handler that nests later attributes under name.
func (h *discordHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := h.clone()
	child.groups = append(child.groups, name)
	return child
}

func (h *discordHandler) clone() *discordHandler {
	dup := *h
	dup.attrs = slices.Clip(h.attrs)
	dup.groups = slices.Clip(h.groups)
	return &dup
}
