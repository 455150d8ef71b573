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

	"github.com/pjscruggs/slogdiscord/webhook"
)

// Delivering reports whether ctx belongs to a record that a Handler is
// currently delivering. Handlers drop records logged with such a context;
// custom [Transport] implementations can use it to avoid logging through
// the sink they serve.
func Delivering(ctx context.Context) bool {
	return webhook.IsDelivery(ctx)
}

// deliveryContext derives the context used for one delivery: it keeps the
// values of ctx (trace spans in particular) but not its cancellation, since a
// finished request should not prevent its final log line from being sent.
func deliveryContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return webhook.WithDelivery(context.WithoutCancel(ctx))
}
