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

import "unicode/utf8"

const (
	// DiscordMessageLimit is Discord's hard limit on message content length.
	DiscordMessageLimit = 2000
	// MaxFieldLength is the clip length applied to every text field, leaving
	// room under DiscordMessageLimit for code fences and emoji prefixes.
	MaxFieldLength = 1900
	// MaxTitleLength is Discord's limit on embed titles.
	MaxTitleLength = 256

	ellipsis = "..."
	// clipSlack is how far below the limit content may run before it is
	// clipped at all.
	clipSlack = 5
)

// ClipPolicy selects which end of an oversized text survives clipping.
type ClipPolicy int

const (
	// KeepTail keeps the last characters and prefixes an ellipsis. The end of
	// a log message, such as the bottom of a stack trace, is usually the most
	// useful part.
	KeepTail ClipPolicy = iota
	// KeepHead keeps the first characters and appends an ellipsis.
	KeepHead
)

// Clip shortens content so it fits a Discord text field. Content longer than
// max-5 characters is cut to at most max characters plus a three-character
// ellipsis; anything shorter is returned unchanged. Lengths count runes, not
// bytes.
func Clip(content string, max int, policy ClipPolicy) string {
	n := utf8.RuneCountInString(content)
	if n <= max-clipSlack {
		return content
	}
	if max < 0 {
		max = 0
	}

	runes := []rune(content)
	if policy == KeepHead {
		if len(runes) > max {
			runes = runes[:max]
		}
		return string(runes) + ellipsis
	}
	if len(runes) > max {
		runes = runes[len(runes)-max:]
	}
	return ellipsis + string(runes)
}
