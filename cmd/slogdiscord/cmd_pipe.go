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
	"bufio"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pjscruggs/slogdiscord"
	"github.com/pjscruggs/slogdiscord/slogdiscordasync"
)

const maxLineBytes = 1 << 20

func newPipeCmd(v *viper.Viper) *cobra.Command {
	pipeCmd := &cobra.Command{
		Use:   "pipe",
		Short: "Post every non-blank stdin line as its own record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipe(cmd, v)
		},
	}
	pipeCmd.Flags().StringP("severity", "s", "info", "Level of the posted records")
	pipeCmd.Flags().StringArrayP("attr", "a", nil, "Attribute to attach to every record (key=value, can be repeated)")
	pipeCmd.Flags().Bool("tee", false, "Copy stdin to stdout")
	pipeCmd.Flags().Bool("async", true, "Post from a background worker so reading never waits on Discord")
	pipeCmd.Flags().Int("queue-size", 256, "Records buffered ahead of the worker")
	pipeCmd.Flags().Duration("flush-timeout", 30*time.Second, "How long to wait for queued records at end of input")
	return pipeCmd
}

func runPipe(cmd *cobra.Command, v *viper.Viper) error {
	level, attrs, err := recordFlags(cmd)
	if err != nil {
		return err
	}
	tee, _ := cmd.Flags().GetBool("tee")
	async, _ := cmd.Flags().GetBool("async")
	queueSize, _ := cmd.Flags().GetInt("queue-size")
	flushTimeout, _ := cmd.Flags().GetDuration("flush-timeout")

	var extra []slogdiscord.Option
	if async {
		extra = append(extra, slogdiscord.WithAsync(
			slogdiscordasync.WithQueueSize(queueSize),
			slogdiscordasync.WithDropMode(slogdiscordasync.DropModeBlock),
			slogdiscordasync.WithFlushTimeout(flushTimeout),
			slogdiscordasync.WithErrorWriter(cmd.ErrOrStderr()),
		))
	}

	handler, failures, err := buildHandler(v, cmd.ErrOrStderr(), extra...)
	if err != nil {
		return err
	}
	defer handler.Close()
	logger := slog.New(handler).With(attrs...)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if tee {
			fmt.Fprintln(out, line)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		logger.Log(ctx, level, line)
	}
	if err := scanner.Err(); err != nil {
		_ = handler.Close()
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	return checkDelivered(handler, failures)
}
