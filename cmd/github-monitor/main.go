// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thmasq/github-monitor/pkg/provision"
)

var (
	// Global flags.
	verbose bool
	rootDir string
	envFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "github-monitor",
	Short: "Grafana provisioning generator and backlog validator for GitHub dashboards",
	Long: `github-monitor turns a small typed configuration (GitHub token,
repositories, server exposure) into a consistent bundle of Grafana
provisioning artifacts, and audits a deployed bundle against the
project backlog (FR01-FR03, EPIC01-EPIC02, US01-US03).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "bundle root directory")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file path (default <root>/.env)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(updateCmd)
}

// envPath resolves the --env flag against the bundle root.
func envPath() string {
	if envFile != "" {
		return envFile
	}
	return filepath.Join(rootDir, provision.DefaultEnvFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
