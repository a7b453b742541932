// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thmasq/github-monitor/pkg/backlog"
)

var (
	validateJSON    bool
	validateTimeout time.Duration
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit the deployed bundle against the backlog requirements",
	Long: `Evaluates the fixed backlog catalogue against the bundle under the
root directory and the running Grafana instance. The service probe is
advisory where the backlog says so; an unreachable service never
aborts the run. Exits non-zero if any requirement fails.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit the report as JSON")
	validateCmd.Flags().DurationVar(&validateTimeout, "probe-timeout", backlog.DefaultProbeTimeout,
		"timeout for the service liveness probe")
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.Sugar()

	world := backlog.NewWorld(rootDir, backlog.NewHTTPProber(validateTimeout))
	engine := backlog.NewEngine(world, log)
	report := engine.ValidateAll()

	formatter := backlog.NewFormatter(cmd.OutOrStdout())
	if validateJSON {
		if err := formatter.WriteJSON(report); err != nil {
			return err
		}
	} else {
		formatter.Write(report)
	}

	if !report.AllPassed() {
		return fmt.Errorf("%d of %d requirements failed", report.Failed, report.Total)
	}
	return nil
}
