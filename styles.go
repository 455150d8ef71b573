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
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

var (
	// ErrMissingFallbackStyle reports colour or emoji maps without a
	// LevelFallback entry.
	ErrMissingFallbackStyle = errors.New("slogdiscord: style maps must include LevelFallback")
	// ErrInvalidStyles wraps problems found while parsing a style sheet.
	ErrInvalidStyles = errors.New("slogdiscord: invalid styles")
)

// maxColor is the largest 24-bit RGB value accepted for embed colours.
const maxColor = 0xFFFFFF

// Style is the embed colour and message prefix used for one severity.
type Style struct {
	// Color is a 24-bit RGB value such as 0xDB2828.
	Color int
	// Emoji, when non-empty, is prefixed to the message followed by one space.
	Emoji string
}

// Styles maps severities to styles. The zero value resolves every level to
// the zero Style. Values are immutable; use [Styles.With] to derive a
// modified copy.
type Styles struct {
	levels   map[slog.Level]Style
	fallback Style
}

// NewStyles builds Styles from per-level entries and a fallback. The map is
// copied; a LevelFallback key in levels is ignored in favour of fallback.
func NewStyles(fallback Style, levels map[slog.Level]Style) Styles {
	dup := make(map[slog.Level]Style, len(levels))
	for level, style := range levels {
		if level == LevelFallback {
			continue
		}
		dup[level] = style
	}
	return Styles{levels: dup, fallback: fallback}
}

// DefaultColours returns a fresh copy of the default colour map, including
// the LevelFallback entry.
func DefaultColours() map[slog.Level]int {
	return map[slog.Level]int{
		LevelFallback: 2040357,
		LevelCritical: 14362664, // red
		LevelError:    14362664, // red
		LevelWarn:     16497928, // yellow
		LevelInfo:     2196944,  // blue
		LevelDebug:    8947848,  // gray
	}
}

// DefaultEmojis returns a fresh copy of the default emoji map, including the
// LevelFallback entry.
func DefaultEmojis() map[slog.Level]string {
	return map[slog.Level]string{
		LevelFallback: "",
		LevelCritical: "🆘",
		LevelError:    "❌",
		LevelWarn:     "⚠️",
		LevelInfo:     "",
		LevelDebug:    "",
	}
}

// DefaultStyles returns the built-in styles.
func DefaultStyles() Styles {
	styles, err := StylesFromMaps(DefaultColours(), DefaultEmojis())
	if err != nil {
		panic(err) // the defaults always carry a fallback
	}
	return styles
}

// StylesFromMaps combines separate colour and emoji maps. Both maps must
// contain [LevelFallback]. A level present in only one map takes the
// fallback value for the other.
func StylesFromMaps(colours map[slog.Level]int, emojis map[slog.Level]string) (Styles, error) {
	fallbackColor, ok := colours[LevelFallback]
	if !ok {
		return Styles{}, fmt.Errorf("%w: colours", ErrMissingFallbackStyle)
	}
	fallbackEmoji, ok := emojis[LevelFallback]
	if !ok {
		return Styles{}, fmt.Errorf("%w: emojis", ErrMissingFallbackStyle)
	}

	levels := make(map[slog.Level]Style, len(colours))
	for level, color := range colours {
		style := levels[level]
		style.Color = color
		style.Emoji = fallbackEmoji
		levels[level] = style
	}
	for level, emoji := range emojis {
		style, ok := levels[level]
		if !ok {
			style.Color = fallbackColor
		}
		style.Emoji = emoji
		levels[level] = style
	}
	return NewStyles(Style{Color: fallbackColor, Emoji: fallbackEmoji}, levels), nil
}

// Lookup returns the style for level, or the fallback when level has no
// entry.
func (s Styles) Lookup(level slog.Level) Style {
	if style, ok := s.levels[level]; ok {
		return style
	}
	return s.fallback
}

// Fallback returns the style used for levels without an entry.
func (s Styles) Fallback() Style { return s.fallback }

// With returns a copy of s with level mapped to style. Passing LevelFallback
// replaces the fallback.
func (s Styles) With(level slog.Level, style Style) Styles {
	dup := Styles{levels: maps.Clone(s.levels), fallback: s.fallback}
	if dup.levels == nil {
		dup.levels = make(map[slog.Level]Style, 1)
	}
	if level == LevelFallback {
		dup.fallback = style
		return dup
	}
	dup.levels[level] = style
	return dup
}

// styleSheet is the YAML shape accepted by ParseStyles:
//
//	fallback:
//	  color: 2040357
//	levels:
//	  critical: {color: "#DB2828", emoji: "🆘"}
//	  warn:     {color: 0xFBBC08}
//	  "2":      {emoji: "📣"}
type styleSheet struct {
	Fallback *styleEntry           `yaml:"fallback"`
	Levels   map[string]styleEntry `yaml:"levels"`
}

type styleEntry struct {
	Color *colorValue `yaml:"color"`
	Emoji *string     `yaml:"emoji"`
}

type colorValue int

// UnmarshalYAML accepts decimal integers and hex strings ("#RRGGBB" or
// "0xRRGGBB").
func (c *colorValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a scalar", node.Line)
	}
	n, err := parseColor(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = colorValue(n)
	return nil
}

// parseColor converts a colour literal into a 24-bit RGB integer.
func parseColor(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(strings.ToLower(s), "0x"):
		s, base = s[2:], 16
	}
	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", raw)
	}
	if n < 0 || n > maxColor {
		return 0, fmt.Errorf("color %q outside 24-bit RGB range", raw)
	}
	return int(n), nil
}

// apply overlays the set fields of e onto style.
func (e styleEntry) apply(style Style) Style {
	if e.Color != nil {
		style.Color = int(*e.Color)
	}
	if e.Emoji != nil {
		style.Emoji = *e.Emoji
	}
	return style
}

// ParseStyles reads a YAML style sheet and overlays it onto [DefaultStyles].
// Level keys are names accepted by [ParseLevel] or integers.
func ParseStyles(r io.Reader) (Styles, error) {
	var sheet styleSheet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sheet); err != nil && !errors.Is(err, io.EOF) {
		return Styles{}, fmt.Errorf("%w: %w", ErrInvalidStyles, err)
	}

	styles := DefaultStyles()
	if sheet.Fallback != nil {
		styles = styles.With(LevelFallback, sheet.Fallback.apply(styles.Fallback()))
	}
	for name, entry := range sheet.Levels {
		level, err := ParseLevel(name)
		if err != nil {
			return Styles{}, fmt.Errorf("%w: %w", ErrInvalidStyles, err)
		}
		if level == LevelFallback {
			styles = styles.With(LevelFallback, entry.apply(styles.Fallback()))
			continue
		}
		styles = styles.With(level, entry.apply(styles.Lookup(level)))
	}
	return styles, nil
}
