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
	"errors"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const maxStackFrames = 32

var stackPCPool = sync.Pool{
	New: func() any {
		buf := make([]uintptr, maxStackFrames+16)
		return &buf
	},
}

// stackTracer is implemented by errors that carry the program counters of
// their origin, such as those built with github.com/pkg/errors.
type stackTracer interface {
	StackTrace() []uintptr
}

// originStack formats the stack carried by err or one it wraps. It returns an
// empty string when no error in the chain records one.
func originStack(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return ""
	}
	pcs := st.StackTrace()
	if len(pcs) > maxStackFrames {
		pcs = pcs[:maxStackFrames]
	}
	return formatStack(pcs)
}

// captureStack formats the calling goroutine's stack, starting at the first
// frame outside slogdiscord, log/slog and the runtime.
func captureStack() string {
	bufPtr := stackPCPool.Get().(*[]uintptr)
	defer stackPCPool.Put(bufPtr)

	pcs := (*bufPtr)[:cap(*bufPtr)]
	n := runtime.Callers(0, pcs)
	if n == 0 {
		return ""
	}
	pcs = pcs[:n]
	if trimmed := trimStack(pcs, skipInternalFrame); len(trimmed) > 0 {
		pcs = trimmed
	}
	return formatStack(pcs)
}

// trimStack drops leading frames for which skip reports true.
func trimStack(pcs []uintptr, skip func(string) bool) []uintptr {
	frames := runtime.CallersFrames(pcs)
	n := 0
	for {
		frame, more := frames.Next()
		if !skip(frame.Function) {
			break
		}
		n++
		if !more {
			return nil
		}
	}
	return pcs[n:]
}

// skipInternalFrame reports whether funcName belongs to the logging path
// rather than the caller.
func skipInternalFrame(funcName string) bool {
	return strings.HasPrefix(funcName, "runtime.") ||
		strings.HasPrefix(funcName, "log/slog.") ||
		strings.HasPrefix(funcName, "github.com/pjscruggs/slogdiscord.")
}

// formatStack renders pcs in the layout used by runtime/debug.Stack, without
// the goroutine header, one function and file:line pair per frame.
func formatStack(pcs []uintptr) string {
	if len(pcs) == 0 {
		return ""
	}

	var sb strings.Builder
	var intBuf [20]byte
	frames := runtime.CallersFrames(pcs)
	for count := 0; count < maxStackFrames; {
		frame, more := frames.Next()
		if frame.Function != "" && frame.Function != "runtime.goexit" {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteByte(':')
			sb.Write(strconv.AppendInt(intBuf[:0], int64(frame.Line), 10))
			sb.WriteByte('\n')
			count++
		}
		if !more {
			break
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
