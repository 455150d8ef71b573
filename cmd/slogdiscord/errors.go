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

package main

import "errors"

// Config errors
var (
	ErrReadConfig   = errors.New("read config file")
	ErrInvalidLevel = errors.New("invalid level")
	ErrOpenStyles   = errors.New("open style sheet")
	ErrInvalidClip  = errors.New("invalid clip policy")
	ErrBuildHandler = errors.New("build handler")
)

// Delivery errors
var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrReadInput      = errors.New("read input")
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrInvalidAttr    = errors.New("invalid attribute")
)
