// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thmasq/github-monitor/pkg/provision"
)

var updateCmd = &cobra.Command{
	Use:   "update-dashboards",
	Short: "Apply the derived filter parameters to the dashboard templates",
	Long: `Recomputes the repository regex and organization options from the
configuration and rewrites the templating variables of the shipped
dashboard JSON files. Dashboards that are absent are skipped.`,
	RunE: runUpdateDashboards,
}

func runUpdateDashboards(cmd *cobra.Command, args []string) error {
	log := logger.Sugar()

	cfg, err := provision.LoadConfig(envPath())
	if err != nil {
		return err
	}

	params, err := provision.NewGenerator(cfg, rootDir, log).FilterParams()
	if err != nil {
		return err
	}

	updated, err := provision.UpdateDashboards(rootDir, params, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dashboards updated: %d (regex %s)\n", updated, params.RepoRegex)
	return nil
}
