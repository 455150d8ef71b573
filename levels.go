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
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Severity levels understood by the default styles. Debug through Error are
// the standard slog levels; LevelCritical sits above Error with the same
// spacing slog uses between its own levels.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarn     = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

// LevelFallback keys the style applied to records whose level has no entry
// of its own. It never matches a real record.
const LevelFallback = slog.Level(math.MinInt32)

// LevelName returns the display name for level, using "CRITICAL" for
// [LevelCritical] and slog's naming (for example "WARN+1") otherwise.
func LevelName(level slog.Level) string {
	switch level {
	case LevelCritical:
		return "CRITICAL"
	case LevelFallback:
		return "FALLBACK"
	}
	if level > LevelCritical {
		return fmt.Sprintf("CRITICAL+%d", int(level-LevelCritical))
	}
	return level.String()
}

// ParseLevel converts a level name or integer into a slog.Level. Names are
// case-insensitive; "warning" and "fatal" are accepted as aliases and
// "fallback"/"unknown" resolve to [LevelFallback].
func ParseLevel(s string) (slog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	switch trimmed {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	case "fallback", "unknown", "default":
		return LevelFallback, nil
	case "":
		return 0, fmt.Errorf("slogdiscord: empty level")
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return slog.Level(n), nil
	}
	return 0, fmt.Errorf("slogdiscord: unknown level %q", s)
}
