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

package slogdiscordasync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pjscruggs/slogdiscord/webhook"
)

const (
	defaultQueueSize = 256

	envAsyncEnabled      = "SLOGDISCORD_ASYNC_ENABLED"
	envAsyncQueueSize    = "SLOGDISCORD_ASYNC_QUEUE_SIZE"
	envAsyncDropMode     = "SLOGDISCORD_ASYNC_DROP_MODE"
	envAsyncWorkers      = "SLOGDISCORD_ASYNC_WORKERS"
	envAsyncFlushTimeout = "SLOGDISCORD_ASYNC_FLUSH_TIMEOUT"
)

// DropMode controls what happens when the queue is full.
type DropMode int

const (
	// DropModeBlock blocks the caller until the queue has room.
	DropModeBlock DropMode = iota
	// DropModeDropNewest discards the incoming record.
	DropModeDropNewest
	// DropModeDropOldest discards the oldest queued record to make room.
	DropModeDropOldest
)

// ErrFlushTimeout indicates Close returned before the queue was drained.
var ErrFlushTimeout = errors.New("slogdiscordasync: flush timeout")

// DropHandler observes dropped records.
type DropHandler func(ctx context.Context, rec slog.Record)

// Config controls the wrapper.
type Config struct {
	Enabled      bool
	QueueSize    int
	WorkerCount  int
	DropMode     DropMode
	OnDrop       DropHandler
	ErrorWriter  io.Writer
	FlushTimeout time.Duration

	workerStarter func(func())
}

// Option customizes Config.
type Option func(*Config)

// WithEnabled toggles the wrapper; Wrap returns the inner handler when
// disabled.
func WithEnabled(enabled bool) Option {
	return func(cfg *Config) { cfg.Enabled = enabled }
}

// WithQueueSize sets the queue capacity. Zero yields an unbuffered queue.
func WithQueueSize(size int) Option {
	return func(cfg *Config) { cfg.QueueSize = size }
}

// WithWorkerCount sets the number of delivering goroutines.
func WithWorkerCount(count int) Option {
	return func(cfg *Config) { cfg.WorkerCount = count }
}

// WithDropMode sets the overflow strategy.
func WithDropMode(mode DropMode) Option {
	return func(cfg *Config) { cfg.DropMode = mode }
}

// WithOnDrop registers a callback for dropped records.
func WithOnDrop(fn DropHandler) Option {
	return func(cfg *Config) { cfg.OnDrop = fn }
}

// WithErrorWriter receives inner handler errors and recovered panics. Nil
// silences them.
func WithErrorWriter(w io.Writer) Option {
	return func(cfg *Config) { cfg.ErrorWriter = w }
}

// WithFlushTimeout bounds how long Close waits for the queue to drain.
func WithFlushTimeout(timeout time.Duration) Option {
	return func(cfg *Config) { cfg.FlushTimeout = timeout }
}

// WithEnv overlays SLOGDISCORD_ASYNC_* environment variables onto the
// options applied so far.
func WithEnv() Option {
	return applyEnv
}

// Handler is an asynchronous slog.Handler wrapper.
type Handler struct {
	inner    slog.Handler
	dropMode DropMode
	onDrop   DropHandler
	state    *queueState
}

type queueState struct {
	queue     chan queuedRecord
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	timeout   time.Duration
	closer    func() error
	errWriter io.Writer
}

type queuedRecord struct {
	ctx     context.Context
	rec     slog.Record
	handler slog.Handler
}

// Wrap returns inner wrapped in an async Handler, or inner itself when the
// resulting configuration is disabled.
func Wrap(inner slog.Handler, opts ...Option) slog.Handler {
	cfg := buildConfig(opts)
	if !cfg.Enabled {
		return inner
	}
	return newHandler(inner, cfg)
}

// Middleware adapts Wrap for handler chains.
func Middleware(opts ...Option) func(slog.Handler) slog.Handler {
	return func(inner slog.Handler) slog.Handler {
		return Wrap(inner, opts...)
	}
}

// newHandler starts the workers for cfg and returns the wrapper.
func newHandler(inner slog.Handler, cfg Config) *Handler {
	state := &queueState{
		queue:     make(chan queuedRecord, cfg.QueueSize),
		timeout:   cfg.FlushTimeout,
		closer:    closerFor(inner),
		errWriter: cfg.ErrorWriter,
	}

	start := cfg.workerStarter
	if start == nil {
		start = func(run func()) { go run() }
	}
	state.wg.Add(cfg.WorkerCount)
	for range cfg.WorkerCount {
		start(func() {
			defer state.wg.Done()
			for item := range state.queue {
				state.deliver(item)
			}
		})
	}

	return &Handler{
		inner:    inner,
		dropMode: cfg.DropMode,
		onDrop:   cfg.OnDrop,
		state:    state,
	}
}

// deliver hands one record to its handler, containing panics.
func (s *queueState) deliver(item queuedRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logError("slogdiscordasync: recovered panic from handler: %v\n", r)
		}
	}()
	if err := item.handler.Handle(item.ctx, item.rec); err != nil {
		s.logError("slogdiscordasync: handler error: %v\n", err)
	}
}

// logError writes a worker diagnostic when an error writer is configured.
func (s *queueState) logError(format string, args ...any) {
	if s.errWriter == nil {
		return
	}
	_, _ = fmt.Fprintf(s.errWriter, format, args...)
}

// Enabled defers to the inner handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle queues rec for delivery. Records produced by a webhook delivery and
// records arriving after Close are dropped.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if webhook.IsDelivery(ctx) || h.state.closed.Load() {
		h.drop(ctx, rec.Clone())
		return nil
	}
	h.enqueue(queuedRecord{
		ctx:     context.WithoutCancel(ctx),
		rec:     rec.Clone(),
		handler: h.inner,
	})
	return nil
}

// WithAttrs returns a child sharing the same queue.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &Handler{inner: h.inner.WithAttrs(attrs), dropMode: h.dropMode, onDrop: h.onDrop, state: h.state}
}

// WithGroup returns a child sharing the same queue.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{inner: h.inner.WithGroup(name), dropMode: h.dropMode, onDrop: h.onDrop, state: h.state}
}

// drop reports a discarded record to OnDrop.
func (h *Handler) drop(ctx context.Context, rec slog.Record) {
	if h.onDrop != nil {
		h.onDrop(ctx, rec)
	}
}

// enqueue applies the drop mode. A send racing with Close panics on the
// closed channel; that record is reported as dropped.
func (h *Handler) enqueue(item queuedRecord) {
	defer func() {
		if recover() != nil {
			h.drop(item.ctx, item.rec)
		}
	}()

	queue := h.state.queue
	switch h.dropMode {
	case DropModeDropNewest:
		select {
		case queue <- item:
		default:
			h.drop(item.ctx, item.rec)
		}
	case DropModeDropOldest:
		for {
			select {
			case queue <- item:
				return
			default:
			}
			select {
			case oldest := <-queue:
				h.drop(oldest.ctx, oldest.rec)
			default:
				// Unbuffered queue with no idle worker: nothing to evict.
				h.drop(item.ctx, item.rec)
				return
			}
		}
	default:
		queue <- item
	}
}

// Close stops accepting records, waits for queued records to be delivered
// (bounded by the flush timeout) and then closes the inner handler when it
// has a Close method. Subsequent calls return the first result.
func (h *Handler) Close() error {
	s := h.state
	s.closeOnce.Do(func() {
		if s.closed.CompareAndSwap(false, true) {
			close(s.queue)
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		if s.timeout > 0 {
			timer := time.NewTimer(s.timeout)
			defer timer.Stop()
			select {
			case <-done:
			case <-timer.C:
				s.closeErr = ErrFlushTimeout
			}
		} else {
			<-done
		}

		if s.closer != nil {
			if err := s.closer(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

// closerFor extracts a Close function from inner when it has one.
func closerFor(inner slog.Handler) func() error {
	switch c := inner.(type) {
	case interface{ Close() error }:
		return c.Close
	case interface{ Close() }:
		return func() error {
			c.Close()
			return nil
		}
	}
	return nil
}

// buildConfig applies opts over the defaults and clamps invalid values.
func buildConfig(opts []Option) Config {
	cfg := Config{
		Enabled:     true,
		QueueSize:   defaultQueueSize,
		WorkerCount: 1,
		DropMode:    DropModeDropNewest,
		ErrorWriter: os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return cfg
}

// applyEnv overlays configuration from environment variables, ignoring
// values that do not parse.
func applyEnv(cfg *Config) {
	if raw := strings.TrimSpace(os.Getenv(envAsyncEnabled)); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			cfg.Enabled = enabled
		}
	}
	if raw := strings.TrimSpace(os.Getenv(envAsyncQueueSize)); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			cfg.QueueSize = size
		}
	}
	if raw := strings.TrimSpace(os.Getenv(envAsyncWorkers)); raw != "" {
		if workers, err := strconv.Atoi(raw); err == nil {
			cfg.WorkerCount = workers
		}
	}
	if raw := strings.TrimSpace(os.Getenv(envAsyncDropMode)); raw != "" {
		if mode, ok := ParseDropMode(raw); ok {
			cfg.DropMode = mode
		}
	}
	if raw := strings.TrimSpace(os.Getenv(envAsyncFlushTimeout)); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.FlushTimeout = d
		}
	}
}

// ParseDropMode converts "block", "drop_newest" or "drop_oldest" (hyphens
// accepted) into a DropMode.
func ParseDropMode(s string) (DropMode, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "block":
		return DropModeBlock, true
	case "drop_newest":
		return DropModeDropNewest, true
	case "drop_oldest":
		return DropModeDropOldest, true
	}
	return DropModeBlock, false
}
