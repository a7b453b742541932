// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

// Package backlog audits a deployed monitoring bundle against the fixed
// backlog of requirements (FR01-FR03, EPIC01-EPIC02, US01-US03) and
// renders the outcome as a categorized pass/fail report.
package backlog

import (
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/thmasq/github-monitor/pkg/provision"
)

// World is the read-only snapshot a validation rule is evaluated
// against: the bundle's file tree, the persisted configuration, and a
// probe capability. Rules never see the in-process Config that drove
// generation; the repositories and organizations below are re-derived
// from whatever .env file the bundle carries, so validation can run in
// a separate process from generation.
type World struct {
	root   string
	prober Prober
	env    map[string]string
}

// NewWorld snapshots the bundle at root. A missing or unreadable .env
// simply yields an empty configuration; rules that need it fail with
// their own detail text.
func NewWorld(root string, prober Prober) *World {
	env, err := provision.ReadEnvFile(filepath.Join(root, provision.DefaultEnvFile))
	if err != nil {
		env = map[string]string{}
	}
	return &World{root: root, prober: prober, env: env}
}

func (w *World) path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// Exists reports whether the bundle contains rel (file or directory).
func (w *World) Exists(rel string) bool {
	_, err := os.Stat(w.path(rel))
	return err == nil
}

// ReadFile returns the content of rel, or "" when it cannot be read.
func (w *World) ReadFile(rel string) string {
	data, err := os.ReadFile(w.path(rel))
	if err != nil {
		return ""
	}
	return string(data)
}

// Repositories returns the persisted repository list.
func (w *World) Repositories() []string {
	return provision.ParseRepositories(w.env[provision.EnvRepos])
}

// Organizations returns the owner prefixes derived from the persisted
// repository list, through the same derivation the generator uses.
func (w *World) Organizations() []string {
	return provision.Organizations(w.Repositories())
}

// ServerURL returns the persisted Grafana URL, or the default.
func (w *World) ServerURL() string {
	if v := strings.TrimSpace(w.env[provision.EnvServerURL]); v != "" {
		return v
	}
	return provision.DefaultServerURL
}

// Probe checks the service at the given path below the server URL.
// With no prober injected everything is Unreachable.
func (w *World) Probe(path string) Status {
	if w.prober == nil {
		return Unreachable
	}
	return w.prober.Probe(strings.TrimRight(w.ServerURL(), "/") + path)
}

// Dashboard loads a dashboard document from dashboards/. A file that is
// absent or fails to parse counts as missing rule input, never as a
// crash.
func (w *World) Dashboard(name string) (provision.Dashboard, bool) {
	d, err := provision.LoadDashboard(w.path(provision.DashboardsDir + "/" + name))
	if err != nil {
		return nil, false
	}
	return d, true
}

// FilterParams loads the derived filter configuration, if present and
// parseable.
func (w *World) FilterParams() (provision.FilterParams, bool) {
	data, err := os.ReadFile(w.path(provision.FilterParamsFile))
	if err != nil {
		return provision.FilterParams{}, false
	}
	var params provision.FilterParams
	if err := unmarshalJSON(data, &params); err != nil {
		return provision.FilterParams{}, false
	}
	return params, true
}

// DatasourceType returns the type of the first configured datasource,
// if the datasource artifact exists and parses.
func (w *World) DatasourceType() (string, bool) {
	data, err := os.ReadFile(w.path(provision.DatasourceFile))
	if err != nil {
		return "", false
	}
	var doc struct {
		Datasources []struct {
			Type string `yaml:"type"`
		} `yaml:"datasources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Datasources) == 0 {
		return "", false
	}
	return doc.Datasources[0].Type, true
}

// ComposeValid structurally validates the deployment descriptor: it
// must parse as YAML and declare a non-empty services map.
func (w *World) ComposeValid() bool {
	data, err := os.ReadFile(w.path(composeFile))
	if err != nil {
		return false
	}
	var doc struct {
		Services map[string]any `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	return len(doc.Services) > 0
}

// ExtraDashboards lists github-*.json dashboards beyond the two the
// bundle ships. Informational only; no rule gates on it.
func (w *World) ExtraDashboards() []string {
	matches, err := filepath.Glob(filepath.Join(w.path(provision.DashboardsDir), "github-*.json"))
	if err != nil {
		return nil
	}
	var extra []string
	for _, m := range matches {
		name := filepath.Base(m)
		if name != provision.PrimaryDashboard && name != provision.OrgDashboard {
			extra = append(extra, name)
		}
	}
	return extra
}

func unmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
