// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thmasq/github-monitor/pkg/provision"
	"github.com/thmasq/github-monitor/pkg/setup"
)

var setupGenerate bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the monitoring bundle interactively",
	Long: `Walks through token, repository and server configuration, writes the
.env file, and optionally generates the provisioning bundle right
away.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupGenerate, "generate", true,
		"generate the provisioning bundle after setup completes")
}

func runSetup(cmd *cobra.Command, args []string) error {
	log := logger.Sugar()

	existing, err := provision.ReadEnvFile(envPath())
	if err != nil {
		return err
	}
	for _, key := range []string{provision.EnvToken, provision.EnvRepos} {
		if _, ok := existing[key]; !ok {
			if v := os.Getenv(key); v != "" {
				existing[key] = v
			}
		}
	}

	flow := setup.New(cmd.InOrStdin(), cmd.OutOrStdout(), envPath(), existing)
	result, err := flow.Run()
	if err != nil {
		return err
	}

	if !setupGenerate {
		return nil
	}

	gen := provision.NewGenerator(result.Config, rootDir, log)
	artifacts, err := gen.GenerateAll()
	for _, artifact := range artifacts {
		fmt.Fprintf(cmd.OutOrStdout(), "generated: %s\n", artifact.Path)
	}
	if err != nil {
		return fmt.Errorf("generation incomplete: %w", err)
	}

	params, err := gen.FilterParams()
	if err != nil {
		return err
	}
	if _, err := provision.UpdateDashboards(rootDir, params, log); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "System configured and ready; run 'docker compose up -d' to apply.")
	return nil
}
