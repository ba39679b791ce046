// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authd",
		Short: "PAPPI Calculator authentication service",
		Long: `authd registers student accounts, verifies credentials and issues
time-limited bearer tokens for the PAPPI Calculator system.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
