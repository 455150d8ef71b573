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

package slogdiscord_test

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/pjscruggs/slogdiscord"
	"github.com/pjscruggs/slogdiscord/webhook"
)

// captureTransport keeps every message it is asked to send.
type captureTransport struct {
	mu   sync.Mutex
	msgs []*webhook.Message
}

func (c *captureTransport) Send(_ context.Context, msg *webhook.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureTransport) messages() []*webhook.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*webhook.Message(nil), c.msgs...)
}

// tracedError carries the stack of the place it was created.
type tracedError struct {
	msg string
	pcs []uintptr
}

func (e *tracedError) Error() string         { return e.msg }
func (e *tracedError) StackTrace() []uintptr { return e.pcs }

func newTracedError(msg string) error {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(1, pcs)
	return &tracedError{msg: msg, pcs: pcs[:n]}
}

func attrValue(attrs []slog.Attr, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String(), true
		}
	}
	return "", false
}

func TestErrorAttrsCapturesCallerStack(t *testing.T) {
	t.Parallel()

	attrs := slogdiscord.ErrorAttrs(errors.New("boom"))
	if len(attrs) != 2 {
		t.Fatalf("ErrorAttrs() returned %d attrs, want 2", len(attrs))
	}
	if got, _ := attrValue(attrs, "error"); got != "boom" {
		t.Fatalf("error attr = %q, want %q", got, "boom")
	}
	stack, ok := attrValue(attrs, "stack")
	if !ok {
		t.Fatal("stack attr missing")
	}
	const want = "github.com/pjscruggs/slogdiscord_test.TestErrorAttrsCapturesCallerStack\n"
	if !strings.HasPrefix(stack, want) {
		t.Fatalf("stack does not start at caller:\n%s", stack)
	}
	if strings.Contains(stack, "runtime.Callers") {
		t.Fatalf("stack kept runtime frames:\n%s", stack)
	}
}

func TestErrorAttrsPrefersOriginStack(t *testing.T) {
	t.Parallel()

	err := newTracedError("origin")
	wrapped := errors.Join(errors.New("context"), err)

	stack, ok := attrValue(slogdiscord.ErrorAttrs(wrapped), "stack")
	if !ok {
		t.Fatal("stack attr missing")
	}
	const want = "github.com/pjscruggs/slogdiscord_test.newTracedError\n"
	if !strings.HasPrefix(stack, want) {
		t.Fatalf("stack does not start at origin:\n%s", stack)
	}
}

func TestErrorAttrsOptions(t *testing.T) {
	t.Parallel()

	if attrs := slogdiscord.ErrorAttrs(nil); attrs != nil {
		t.Fatalf("ErrorAttrs(nil) = %v, want nil", attrs)
	}
	attrs := slogdiscord.ErrorAttrs(errors.New("boom"), slogdiscord.WithStackTrace(false), nil)
	if len(attrs) != 1 || attrs[0].Key != "error" {
		t.Fatalf("ErrorAttrs(WithStackTrace(false)) = %v, want only error", attrs)
	}
}

func TestReportErrorPostsCodeBlock(t *testing.T) {
	t.Parallel()

	transport := &captureTransport{}
	h, err := slogdiscord.NewHandler("",
		slogdiscord.WithTransport(transport),
		slogdiscord.WithServiceName("sync"),
	)
	if err != nil {
		t.Fatalf("NewHandler() returned %v, want nil", err)
	}
	defer h.Close()

	slogdiscord.ReportError(context.Background(), slog.New(h), errors.New("boom"), "sync failed")

	msgs := transport.messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(msgs))
	}
	want := "```❌ sync failed\nerror=boom\nstack=github.com/pjscruggs/slogdiscord_test.TestReportErrorPostsCodeBlock\n"
	if !strings.HasPrefix(msgs[0].Content, want) {
		t.Fatalf("content = %q, want prefix %q", msgs[0].Content, want)
	}
}

func TestReportErrorHonoursLevel(t *testing.T) {
	t.Parallel()

	transport := &captureTransport{}
	h, err := slogdiscord.NewHandler("",
		slogdiscord.WithTransport(transport),
		slogdiscord.WithServiceName("sync"),
		slogdiscord.WithLevel(slog.LevelError),
	)
	if err != nil {
		t.Fatalf("NewHandler() returned %v, want nil", err)
	}
	defer h.Close()
	logger := slog.New(h)

	slogdiscord.ReportError(context.Background(), logger, errors.New("minor"), "retrying",
		slogdiscord.WithReportLevel(slog.LevelWarn))
	slogdiscord.ReportError(context.Background(), nil, errors.New("ignored"), "nil logger")
	slogdiscord.ReportError(context.Background(), logger, nil, "nil error")
	if n := len(transport.messages()); n != 0 {
		t.Fatalf("sent %d messages, want 0", n)
	}

	slogdiscord.ReportError(context.Background(), logger, errors.New("fatal"), "giving up",
		slogdiscord.WithReportLevel(slogdiscord.LevelCritical), slogdiscord.WithStackTrace(false))
	msgs := transport.messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(msgs))
	}
	if got := msgs[0].Embeds[0].Description; got != "error=fatal" {
		t.Fatalf("description = %q, want %q", got, "error=fatal")
	}
}
