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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pjscruggs/slogdiscord"
)

func newSendCmd(v *viper.Viper) *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send [message...]",
		Short: "Post a single record, reading it from stdin when no message is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, v, args)
		},
	}
	sendCmd.Flags().StringP("severity", "s", "info", "Level of the posted record")
	sendCmd.Flags().StringArrayP("attr", "a", nil, "Attribute to attach (key=value, can be repeated)")
	return sendCmd
}

func runSend(cmd *cobra.Command, v *viper.Viper, args []string) error {
	level, attrs, err := recordFlags(cmd)
	if err != nil {
		return err
	}

	msg := strings.Join(args, " ")
	if len(args) == 0 {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		msg = strings.TrimRight(string(raw), "\r\n")
	}
	if strings.TrimSpace(msg) == "" {
		return ErrEmptyMessage
	}

	handler, failures, err := buildHandler(v, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer handler.Close()

	slog.New(handler).Log(cmd.Context(), level, msg, attrs...)
	return checkDelivered(handler, failures)
}

// recordFlags reads the --severity and --attr flags shared by send and pipe.
func recordFlags(cmd *cobra.Command) (slog.Level, []any, error) {
	severity, _ := cmd.Flags().GetString("severity")
	level, err := slogdiscord.ParseLevel(severity)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	specs, _ := cmd.Flags().GetStringArray("attr")
	attrs, err := parseAttrs(specs)
	if err != nil {
		return 0, nil, err
	}
	return level, attrs, nil
}
