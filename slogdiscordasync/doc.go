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

// Package slogdiscordasync moves Discord deliveries off the logging
// goroutine. A slogdiscord handler blocks for a full webhook round trip and
// drops records that arrive while another delivery is in flight; wrapping it
// queues records on a bounded channel instead and delivers them from worker
// goroutines, so concurrent callers neither wait on Discord nor lose records
// to overlap.
//
// Basic usage:
//
//	h, _ := slogdiscord.NewHandler(webhookURL,
//		slogdiscord.WithAsync(
//			slogdiscordasync.WithQueueSize(256),
//			slogdiscordasync.WithDropMode(slogdiscordasync.DropModeDropOldest),
//		),
//	)
//	defer h.Close() // drains the queue
//
// or, for any slog.Handler:
//
//	async := slogdiscordasync.Wrap(inner, slogdiscordasync.WithEnv())
//
// Records logged with a context marked by webhook.WithDelivery (that is,
// logged by the delivery path itself) are dropped at enqueue time so they
// cannot circle back through the queue.
//
// The following environment variables are recognized when [WithEnv] is
// supplied:
//   - SLOGDISCORD_ASYNC_ENABLED: true/false to toggle the wrapper
//   - SLOGDISCORD_ASYNC_QUEUE_SIZE: channel capacity (0 makes the queue unbuffered)
//   - SLOGDISCORD_ASYNC_DROP_MODE: block | drop_newest | drop_oldest
//   - SLOGDISCORD_ASYNC_WORKERS: number of worker goroutines
//   - SLOGDISCORD_ASYNC_FLUSH_TIMEOUT: duration string used by Close
package slogdiscordasync
