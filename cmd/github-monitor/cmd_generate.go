// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thmasq/github-monitor/pkg/provision"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the Grafana provisioning bundle from the configuration",
	Long: `Reads the configuration from the env file (plus process environment)
and materializes the datasource, dashboard provider, access control,
server template and filter parameter artifacts under the bundle root.
Re-running is idempotent: every artifact is a full overwrite.

Configuration errors abort before any file is written.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.Sugar()

	cfg, err := provision.LoadConfig(envPath())
	if err != nil {
		return err
	}

	gen := provision.NewGenerator(cfg, rootDir, log)
	artifacts, err := gen.GenerateAll()
	for _, artifact := range artifacts {
		fmt.Fprintf(cmd.OutOrStdout(), "generated: %s\n", artifact.Path)
	}
	if err != nil {
		return fmt.Errorf("generation incomplete: %w", err)
	}

	orgs := cfg.Organizations()
	fmt.Fprintf(cmd.OutOrStdout(), "organizations configured: %d, repositories filtered: %d\n",
		len(orgs), len(cfg.Repositories))
	return nil
}
