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

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/pjscruggs/slogdiscord"
)

// Keys shared by flags, environment variables and the config file.
const (
	keyConfig            = "config"
	keyWebhookURL        = "webhook-url"
	keyServiceName       = "service-name"
	keyAvatarURL         = "avatar-url"
	keyLevel             = "level"
	keyStyles            = "styles"
	keyRateLimitRetry    = "rate-limit-retry"
	keyLineWrapThreshold = "line-wrap-threshold"
	keyClip              = "clip"
)

// readConfigFile loads the file named by --config, if any.
func readConfigFile(v *viper.Viper) error {
	path := v.GetString(keyConfig)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrReadConfig, err)
	}
	return nil
}

// handlerOptions translates the resolved configuration into handler options.
// Unset keys are left to the handler's own defaults.
func handlerOptions(v *viper.Viper) ([]slogdiscord.Option, error) {
	var opts []slogdiscord.Option

	if name := v.GetString(keyServiceName); name != "" {
		opts = append(opts, slogdiscord.WithServiceName(name))
	}
	if avatar := v.GetString(keyAvatarURL); avatar != "" {
		opts = append(opts, slogdiscord.WithAvatarURL(avatar))
	}
	if raw := v.GetString(keyLevel); raw != "" {
		level, err := slogdiscord.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
		}
		opts = append(opts, slogdiscord.WithLevel(level))
	}
	if path := v.GetString(keyStyles); path != "" {
		styles, err := loadStyles(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, slogdiscord.WithStyles(styles))
	}
	if v.IsSet(keyRateLimitRetry) {
		opts = append(opts, slogdiscord.WithRateLimitRetry(v.GetBool(keyRateLimitRetry)))
	}
	if v.IsSet(keyLineWrapThreshold) {
		opts = append(opts, slogdiscord.WithLineWrapThreshold(v.GetInt(keyLineWrapThreshold)))
	}
	if raw := v.GetString(keyClip); raw != "" {
		policy, err := parseClipPolicy(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, slogdiscord.WithClipPolicy(policy))
	}
	return opts, nil
}

func loadStyles(path string) (slogdiscord.Styles, error) {
	f, err := os.Open(path)
	if err != nil {
		return slogdiscord.Styles{}, fmt.Errorf("%w: %w", ErrOpenStyles, err)
	}
	defer f.Close()
	return slogdiscord.ParseStyles(f)
}

func parseClipPolicy(raw string) (slogdiscord.ClipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tail":
		return slogdiscord.KeepTail, nil
	case "head":
		return slogdiscord.KeepHead, nil
	}
	return 0, fmt.Errorf("%w: %q (expected head or tail)", ErrInvalidClip, raw)
}

// buildHandler creates a handler whose diagnostics go to errOut through a
// counting writer, so callers can tell whether anything was dropped.
func buildHandler(v *viper.Viper, errOut io.Writer, extra ...slogdiscord.Option) (*slogdiscord.Handler, *failureWriter, error) {
	opts, err := handlerOptions(v)
	if err != nil {
		return nil, nil, err
	}
	failures := &failureWriter{w: errOut}
	opts = append(opts, slogdiscord.WithErrorWriter(failures))
	opts = append(opts, extra...)

	handler, err := slogdiscord.NewHandler(v.GetString(keyWebhookURL), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrBuildHandler, err)
	}
	return handler, failures, nil
}

// parseAttrs turns key=value pairs into string attributes.
func parseAttrs(specs []string) ([]any, error) {
	attrs := make([]any, 0, len(specs))
	for _, spec := range specs {
		key, value, ok := strings.Cut(spec, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (expected key=value)", ErrInvalidAttr, spec)
		}
		attrs = append(attrs, slog.String(key, value))
	}
	return attrs, nil
}

// failureWriter forwards handler diagnostics and counts them. The handler
// writes exactly one line per dropped record.
type failureWriter struct {
	mu    sync.Mutex
	w     io.Writer
	count int
}

func (f *failureWriter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	if f.w == nil {
		return len(p), nil
	}
	return f.w.Write(p)
}

// Failures reports how many records were dropped so far.
func (f *failureWriter) Failures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// checkDelivered closes handler and reports any record that did not reach
// Discord.
func checkDelivered(handler *slogdiscord.Handler, failures *failureWriter) error {
	if err := handler.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if n := failures.Failures(); n > 0 {
		return fmt.Errorf("%w: %d record(s) dropped", ErrDeliveryFailed, n)
	}
	return nil
}
