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
	"strings"
	"unicode/utf8"

	"github.com/pjscruggs/slogdiscord/webhook"
)

const codeFence = "```"

// layout holds the settings that shape a rendered record into a webhook
// message.
type layout struct {
	serviceName string
	avatarURL   string
	threshold   int
	clipPolicy  ClipPolicy
}

// compose turns rendered text into a webhook message styled with style.
//
// Short single-line text becomes an embed title. Multi-line or over-long text
// becomes an embed with the first line as title and the rest as description,
// unless some line is longer than the wrap threshold, in which case the whole
// text is sent as one code block so Discord does not wrap it.
func (l layout) compose(text string, style Style) *webhook.Message {
	prefix := ""
	if style.Emoji != "" {
		prefix = style.Emoji + " "
	}

	if !strings.Contains(text, "\n") && utf8.RuneCountInString(text) <= l.threshold {
		return webhook.NewEmbedMessage(l.serviceName, l.avatarURL, webhook.Embed{
			Title: clipTitle(prefix + text),
			Color: style.Color,
		})
	}

	if longestLine(text) > l.threshold {
		body := Clip(text, MaxFieldLength, l.clipPolicy)
		return webhook.NewContentMessage(l.serviceName, l.avatarURL, codeFence+prefix+body+codeFence)
	}

	first, remainder, _ := strings.Cut(text, "\n")
	return webhook.NewEmbedMessage(l.serviceName, l.avatarURL, webhook.Embed{
		Title:       clipTitle(prefix + first),
		Description: Clip(remainder, MaxFieldLength, l.clipPolicy),
		Color:       style.Color,
	})
}

// clipTitle keeps the head of title within [MaxTitleLength], ellipsis
// included.
func clipTitle(title string) string {
	return Clip(title, MaxTitleLength-len(ellipsis), KeepHead)
}

// longestLine returns the rune length of the longest line in text.
func longestLine(text string) int {
	longest := 0
	for line := range strings.SplitSeq(text, "\n") {
		if n := utf8.RuneCountInString(line); n > longest {
			longest = n
		}
	}
	return longest
}
