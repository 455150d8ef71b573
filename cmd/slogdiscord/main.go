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

// Command slogdiscord posts log lines to a Discord webhook from the shell.
//
// Configuration comes from flags, SLOGDISCORD_* environment variables and an
// optional config file, in that order of precedence.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SLOGDISCORD"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree around a fresh viper instance.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "slogdiscord",
		Short:         "Send log records to a Discord webhook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(v)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyConfig, "", "Config file (YAML, JSON or TOML)")
	flags.String(keyWebhookURL, "", "Discord webhook URL")
	flags.String(keyServiceName, "", "Name the messages are posted under (default: detected service name)")
	flags.String(keyAvatarURL, "", "Avatar image URL for posted messages")
	flags.String(keyLevel, "", "Minimum level to post (debug, info, warn, error, critical)")
	flags.String(keyStyles, "", "YAML style sheet overriding level colours and emojis")
	flags.Bool(keyRateLimitRetry, true, "Wait and retry when Discord rate limits a request")
	flags.Int(keyLineWrapThreshold, 0, "Line length above which messages are sent as code blocks (default 60)")
	flags.String(keyClip, "", "Which end of oversized messages to keep (head or tail)")
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(newSendCmd(v), newPipeCmd(v), newVersionCmd())
	return rootCmd
}
