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

package webhook

// Message is the JSON body accepted by the execute-webhook endpoint. Only the
// fields slogdiscord needs are modelled; exactly one of Content or Embeds is
// normally set.
type Message struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// Embed is a rich message card with a title, optional description and a
// 24-bit RGB side colour.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color"`
}

// NewContentMessage builds a plain-content message sent as username.
func NewContentMessage(username, avatarURL, content string) *Message {
	return &Message{
		Username:  username,
		AvatarURL: avatarURL,
		Content:   content,
	}
}

// NewEmbedMessage builds a message carrying a single embed sent as username.
func NewEmbedMessage(username, avatarURL string, embed Embed) *Message {
	return &Message{
		Username:  username,
		AvatarURL: avatarURL,
		Embeds:    []Embed{embed},
	}
}
