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
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Keys used for trace attributes appended when trace attributes are enabled.
const (
	TraceIDKey  = "otel.trace_id"
	SpanIDKey   = "otel.span_id"
	TraceURLKey = "trace_url"
)

// TraceAttributes extracts the OpenTelemetry span context from ctx and
// returns attributes identifying it. When projectID is non-empty a Cloud
// Trace console link is included so responders can jump from the Discord
// message to the trace. The boolean is false when ctx carries no valid span.
func TraceAttributes(ctx context.Context, projectID string) ([]slog.Attr, bool) {
	if ctx == nil {
		return nil, false
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil, false
	}

	traceID := sc.TraceID().String()
	attrs := make([]slog.Attr, 0, 3)
	attrs = append(attrs, slog.String(TraceIDKey, traceID))
	if !sc.IsRemote() {
		attrs = append(attrs, slog.String(SpanIDKey, sc.SpanID().String()))
	}
	if project := normalizeProjectID(projectID); project != "" {
		attrs = append(attrs, slog.String(TraceURLKey, FormatTraceURL(project, traceID)))
	}
	return attrs, true
}

// FormatTraceURL returns the Cloud Trace console URL for traceID.
func FormatTraceURL(projectID, traceID string) string {
	return fmt.Sprintf("https://console.cloud.google.com/traces/list?project=%s&tid=%s",
		url.QueryEscape(projectID), url.QueryEscape(traceID))
}

// normalizeProjectID strips resource prefixes and surrounding whitespace.
func normalizeProjectID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(strings.ToLower(id), "projects/") {
		id = id[len("projects/"):]
	}
	id = strings.TrimPrefix(id, "_")
	if strings.Contains(id, "/") {
		return ""
	}
	return strings.TrimSpace(id)
}
