// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the chatloop CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatloop",
		Short: "chatloop - authentication service",
		Long: `chatloop is the authentication service for the chatloop client:
account registration, login, stateless cookie sessions, and profile
retrieval over a JSON API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}
