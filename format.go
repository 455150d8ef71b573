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
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Formatter renders a record into the text sent to Discord. The record it
// receives already carries the handler's own attributes ahead of the
// record's, with open groups folded in as nested group attributes.
type Formatter func(ctx context.Context, r slog.Record) (string, error)

// TextFormatter is the default [Formatter]. The message forms the first line
// and every attribute follows on its own line as key=value, with group names
// joined by dots:
//
//	payment declined
//	order_id=8123
//	http.status=402
//
// Values containing spaces, quotes or '=' are quoted. Multi-line string
// values, such as stack traces, are written verbatim.
func TextFormatter(_ context.Context, r slog.Record) (string, error) {
	var b strings.Builder
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, "", a)
		return true
	})
	return b.String(), nil
}

// writeAttr appends a as one or more key=value lines.
func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		if key == "" {
			key = prefix
		} else {
			key = prefix + "." + key
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			writeAttr(b, key, member)
		}
		return
	}

	b.WriteByte('\n')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(formatValue(a.Value))
}

// formatValue renders a resolved, non-group value.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return quoteIfNeeded(safeString(x, x.Error))
		case fmt.Stringer:
			return quoteIfNeeded(safeString(x, x.String))
		case []byte:
			return quoteIfNeeded(string(x))
		}
		return quoteIfNeeded(fmt.Sprintf("%+v", v.Any()))
	default:
		return v.String()
	}
}

// safeString calls str and renders "<nil>" when it panics because v is a
// nil pointer, as slog's handlers do. Other panics propagate.
func safeString(v any, str func() string) (s string) {
	defer func() {
		if p := recover(); p != nil {
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
				s = "<nil>"
				return
			}
			panic(p)
		}
	}()
	return str()
}

// quoteIfNeeded quotes single-line strings that would be ambiguous as
// key=value output.
func quoteIfNeeded(s string) string {
	if strings.Contains(s, "\n") {
		return s
	}
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}

// nestInGroups wraps attrs in the given groups, outermost first.
func nestInGroups(groups []string, attrs []slog.Attr) []slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: groups[i], Value: slog.GroupValue(attrs...)}}
	}
	return attrs
}

// sourceAttr describes the call site recorded in pc as file:line.
func sourceAttr(pc uintptr) (slog.Attr, bool) {
	if pc == 0 {
		return slog.Attr{}, false
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return slog.Attr{}, false
	}
	return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", frame.File, frame.Line)), true
}
