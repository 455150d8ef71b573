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

// Package webhook is a small client for Discord's execute-webhook endpoint.
//
// It models the subset of the webhook payload used by slogdiscord (sender
// name, avatar, plain content and embeds) and posts it synchronously:
//
//	client := webhook.New("https://discord.com/api/webhooks/123/abc",
//		webhook.WithRateLimitRetry(true),
//	)
//	err := client.Send(ctx, webhook.NewEmbedMessage("billing", "", webhook.Embed{
//		Title: "invoice job finished",
//		Color: 2196944,
//	}))
//
// Non-2xx responses are reported as [*HTTPError]. A 429 response matches
// [ErrRateLimited] with errors.Is and, when rate-limit retry is enabled, is
// retried after the wait Discord asks for. Client-side pacing is available
// through [WithRateLimit], and [WithOTel] instruments requests with otelhttp.
package webhook
