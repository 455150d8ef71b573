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

// Command async demonstrates slogdiscord's opt-in async delivery. Records are
// queued and posted from a background worker, dropped records are counted
// with an OnDrop callback, and Close is bounded by a flush timeout.
package main

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pjscruggs/slogdiscord"
	"github.com/pjscruggs/slogdiscord/slogdiscordasync"
)

// dropTracker records dropped messages for visibility.
type dropTracker struct {
	dropped  atomic.Int64
	mu       sync.Mutex
	messages []string
}

// observe records a dropped slog.Record.
func (d *dropTracker) observe(_ context.Context, rec slog.Record) {
	d.dropped.Add(1)
	d.mu.Lock()
	d.messages = append(d.messages, rec.Message)
	d.mu.Unlock()
}

// snapshot returns a copy of the recorded drop messages.
func (d *dropTracker) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.messages...)
}

// asyncExample bundles an async slogdiscord logger with its drop tracker.
type asyncExample struct {
	handler *slogdiscord.Handler
	logger  *slog.Logger
	drops   *dropTracker
}

// newAsyncExample builds a handler for webhookURL with a small queue.
// SLOGDISCORD_ASYNC_* variables override the defaults thanks to WithEnv.
func newAsyncExample(webhookURL string, opts ...slogdiscordasync.Option) (*asyncExample, error) {
	drops := &dropTracker{}

	asyncOpts := []slogdiscordasync.Option{
		slogdiscordasync.WithQueueSize(8),
		slogdiscordasync.WithDropMode(slogdiscordasync.DropModeDropOldest),
		slogdiscordasync.WithFlushTimeout(5 * time.Second),
		slogdiscordasync.WithOnDrop(drops.observe),
		slogdiscordasync.WithEnv(),
	}
	asyncOpts = append(asyncOpts, opts...)

	handler, err := slogdiscord.NewHandler(webhookURL,
		slogdiscord.WithServiceName("async-example"),
		slogdiscord.WithAsync(asyncOpts...),
	)
	if err != nil {
		return nil, err
	}

	return &asyncExample{
		handler: handler,
		logger:  slog.New(handler),
		drops:   drops,
	}, nil
}

// logBurst emits a few records without waiting on Discord.
func (a *asyncExample) logBurst(ctx context.Context) {
	a.logger.InfoContext(ctx, "accepted background tasks", slog.Int("queued", 3))
	a.logger.WarnContext(ctx, "worker pool saturated", slog.Int("workers", 2))
	a.logger.ErrorContext(ctx, "task failed", slog.String("task", "export-42"))
}

// main runs the async example against SLOGDISCORD_WEBHOOK_URL.
func main() {
	example, err := newAsyncExample("")
	if err != nil {
		log.Fatalf("failed to construct slogdiscord async example: %v", err)
	}

	example.logBurst(context.Background())

	if cerr := example.handler.Close(); cerr != nil {
		log.Printf("async handler close: %v", cerr)
	}
	if dropped := example.drops.dropped.Load(); dropped > 0 {
		log.Printf("dropped %d log records while the queue was full", dropped)
	}
}
