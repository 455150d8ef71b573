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
	"testing"

	"go.opentelemetry.io/otel/trace"
)

var (
	testTraceID = trace.TraceID{0x10, 0x5e, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e, 0x6f, 0x70, 0x81, 0x92, 0xa3, 0xb4, 0xc5, 0xd6, 0xe7}
	testSpanID  = trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
)

func spanContext(remote bool) context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    testTraceID,
		SpanID:     testSpanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     remote,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func attrMap(t *testing.T, ctx context.Context, project string) map[string]string {
	t.Helper()
	attrs, ok := TraceAttributes(ctx, project)
	if !ok {
		t.Fatal("TraceAttributes() reported no span")
	}
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value.String()
	}
	return out
}

func TestTraceAttributesLocalSpan(t *testing.T) {
	t.Parallel()

	got := attrMap(t, spanContext(false), "")
	if got[TraceIDKey] != "105e1a2b3c4d5e6f708192a3b4c5d6e7" {
		t.Fatalf("%s = %q", TraceIDKey, got[TraceIDKey])
	}
	if got[SpanIDKey] != "0102030405060708" {
		t.Fatalf("%s = %q", SpanIDKey, got[SpanIDKey])
	}
	if _, ok := got[TraceURLKey]; ok {
		t.Fatal("trace URL present without a project")
	}
}

func TestTraceAttributesRemoteSpanOmitsSpanID(t *testing.T) {
	t.Parallel()

	got := attrMap(t, spanContext(true), "projects/acme-prod")
	if _, ok := got[SpanIDKey]; ok {
		t.Fatal("span ID present for a remote span")
	}
	want := "https://console.cloud.google.com/traces/list?project=acme-prod&tid=105e1a2b3c4d5e6f708192a3b4c5d6e7"
	if got[TraceURLKey] != want {
		t.Fatalf("%s = %q, want %q", TraceURLKey, got[TraceURLKey], want)
	}
}

func TestTraceAttributesWithoutSpan(t *testing.T) {
	t.Parallel()

	if _, ok := TraceAttributes(context.Background(), "acme"); ok {
		t.Fatal("TraceAttributes(background) reported a span")
	}
	if _, ok := TraceAttributes(nil, "acme"); ok {
		t.Fatal("TraceAttributes(nil) reported a span")
	}
}

func TestNormalizeProjectID(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" acme ":          "acme",
		"projects/acme":   "acme",
		"Projects/acme":   "acme",
		"projects/acme/x": "",
		"":                "",
	}
	for in, want := range tests {
		if got := normalizeProjectID(in); got != want {
			t.Errorf("normalizeProjectID(%q) = %q, want %q", in, got, want)
		}
	}
}
