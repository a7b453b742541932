// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package provision

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Dashboard file names the bundle ships. PrimaryDashboard is also the
// default home dashboard the server template points at.
const (
	PrimaryDashboard = "github.json"
	OrgDashboard     = "github-organization.json"
)

// Templating variable names the dashboard contract exposes.
const (
	repoVariable = "repository"
	orgVariable  = "organization"
)

// Dashboard is an externally authored dashboard document. It is kept as
// a generic tree so every field outside the templating/panels/time
// contract survives a load-edit-save cycle untouched.
type Dashboard map[string]any

// LoadDashboard parses the dashboard JSON document at path.
func LoadDashboard(path string) (Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing dashboard %s: %w", path, err)
	}
	return d, nil
}

// Save writes the dashboard back with stable two-space indentation.
func (d Dashboard) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling dashboard: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing dashboard %s: %w", path, err)
	}
	return nil
}

// TemplatingVariable returns the templating.list entry with the given
// name, or false when the document carries none.
func (d Dashboard) TemplatingVariable(name string) (map[string]any, bool) {
	templating, ok := d["templating"].(map[string]any)
	if !ok {
		return nil, false
	}
	list, ok := templating["list"].([]any)
	if !ok {
		return nil, false
	}
	for _, entry := range list {
		v, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if n, _ := v["name"].(string); n == name {
			return v, true
		}
	}
	return nil, false
}

// PanelTitles returns the human-readable titles of all panels.
func (d Dashboard) PanelTitles() []string {
	panels, ok := d["panels"].([]any)
	if !ok {
		return nil
	}
	var titles []string
	for _, entry := range panels {
		p, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if title, _ := p["title"].(string); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// HasTimeRange reports whether the document declares a top-level time
// range with both ends.
func (d Dashboard) HasTimeRange() bool {
	t, ok := d["time"].(map[string]any)
	if !ok {
		return false
	}
	_, hasFrom := t["from"]
	_, hasTo := t["to"]
	return hasFrom && hasTo
}

// ApplyFilters rewrites the repository and organization templating
// variables from the derived filter parameters. Variables the document
// does not declare are skipped.
func (d Dashboard) ApplyFilters(params FilterParams) {
	if v, ok := d.TemplatingVariable(repoVariable); ok {
		v["regex"] = params.RepoRegex
	}
	if v, ok := d.TemplatingVariable(orgVariable); ok {
		options := make([]any, len(params.OrgOptions))
		for i, opt := range params.OrgOptions {
			options[i] = map[string]any{
				"selected": opt.Selected,
				"text":     opt.Text,
				"value":    opt.Value,
			}
		}
		v["options"] = options
		if params.DefaultOrg != "" {
			v["current"] = map[string]any{
				"selected": true,
				"text":     params.DefaultOrg,
				"value":    params.DefaultOrg,
			}
		}
	}
}

// UpdateDashboards applies params to the bundle's dashboard files under
// root. Dashboards that are absent are skipped; a dashboard that exists
// but cannot be parsed or written is an error. Returns how many files
// were updated.
func UpdateDashboards(root string, params FilterParams, log *zap.SugaredLogger) (int, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	updated := 0
	for _, name := range []string{PrimaryDashboard, OrgDashboard} {
		path := filepath.Join(root, DashboardsDir, name)
		d, err := LoadDashboard(path)
		if os.IsNotExist(err) {
			log.Debugw("dashboard absent, skipping", "path", path)
			continue
		}
		if err != nil {
			return updated, err
		}
		d.ApplyFilters(params)
		if err := d.Save(path); err != nil {
			return updated, err
		}
		log.Infow("dashboard filters applied", "path", path)
		updated++
	}
	return updated, nil
}
