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
	"testing"
	"unicode/utf8"
)

func TestClipTailPolicy(t *testing.T) {
	t.Parallel()

	const max = 20
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short untouched", in: "hello", want: "hello"},
		{name: "at bound untouched", in: strings.Repeat("a", max-5), want: strings.Repeat("a", max-5)},
		{name: "just over bound keeps all with marker", in: strings.Repeat("b", max-4), want: "..." + strings.Repeat("b", max-4)},
		{name: "long keeps tail", in: strings.Repeat("x", 30) + "0123456789abcdefghij", want: "...0123456789abcdefghij"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clip(tt.in, max, KeepTail); got != tt.want {
				t.Fatalf("Clip(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClipHeadPolicy(t *testing.T) {
	t.Parallel()

	in := "0123456789abcdefghij" + strings.Repeat("x", 30)
	if got, want := Clip(in, 20, KeepHead), "0123456789abcdefghij..."; got != want {
		t.Fatalf("Clip() = %q, want %q", got, want)
	}
	if got := Clip("short", 20, KeepHead); got != "short" {
		t.Fatalf("Clip(short) = %q, want unchanged", got)
	}
}

func TestClipDiscordLimits(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 5000)
	for _, policy := range []ClipPolicy{KeepTail, KeepHead} {
		got := Clip(long, MaxFieldLength, policy)
		if n := utf8.RuneCountInString(got); n != MaxFieldLength+3 {
			t.Fatalf("policy %d: clipped length = %d runes, want %d", policy, n, MaxFieldLength+3)
		}
		if utf8.RuneCountInString(got) > DiscordMessageLimit {
			t.Fatalf("policy %d: clipped text exceeds Discord limit", policy)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("policy %d: clipping split a rune", policy)
		}
	}
}
