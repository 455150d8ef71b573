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

// Command basic posts a single record to the Discord webhook named by
// SLOGDISCORD_WEBHOOK_URL.
//
// This example is both documentation, and a test for `slogdiscord`.
package main

import (
	"log"
	"log/slog"

	"github.com/pjscruggs/slogdiscord"
)

// main runs the basic slogdiscord example.
func main() {
	handler, err := slogdiscord.NewHandler("", slogdiscord.WithServiceName("basic-example"))
	if err != nil {
		log.Fatalf("failed to create slogdiscord handler: %v", err)
	}
	defer handler.Close()

	slog.New(handler).Warn("service ready", "region", "europe-west1")
}
