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

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pjscruggs/slogdiscord"
)

// TestBasicExamplePostsEmbed validates the basic example against a fake
// webhook endpoint.
func TestBasicExamplePostsEmbed(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("unmarshal webhook body: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	h, err := slogdiscord.NewHandler(srv.URL, slogdiscord.WithServiceName("basic-example"))
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	t.Cleanup(func() {
		if cerr := h.Close(); cerr != nil {
			t.Errorf("handler close: %v", cerr)
		}
	})

	slog.New(h).Warn("service ready")

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("webhook received %d requests, want 1", len(bodies))
	}
	if got := bodies[0]["username"]; got != "basic-example" {
		t.Fatalf("username = %v, want basic-example", got)
	}
	embeds, _ := bodies[0]["embeds"].([]any)
	if len(embeds) != 1 {
		t.Fatalf("embeds = %v, want one embed", bodies[0]["embeds"])
	}
	if title := embeds[0].(map[string]any)["title"]; title != "⚠️ service ready" {
		t.Fatalf("title = %v, want %q", title, "⚠️ service ready")
	}
}
