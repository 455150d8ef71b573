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

package webhook

import "context"

type deliveryKey struct{}

// WithDelivery marks ctx as carrying a webhook delivery. Send applies the
// mark to every request it makes, so log handlers can recognise records that
// the delivery path itself produced (for example from an instrumented
// transport) and refuse to send them back through the webhook.
func WithDelivery(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if IsDelivery(ctx) {
		return ctx
	}
	return context.WithValue(ctx, deliveryKey{}, true)
}

// IsDelivery reports whether ctx was marked by WithDelivery.
func IsDelivery(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	marked, _ := ctx.Value(deliveryKey{}).(bool)
	return marked
}
