// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"fmt"
	"strings"

	"github.com/thmasq/github-monitor/pkg/provision"
)

// Category is the closed set of backlog groupings.
type Category int

const (
	FunctionalRequirement Category = iota
	Epic
	UserStory
)

// Categories lists every category in report order.
var Categories = []Category{FunctionalRequirement, Epic, UserStory}

func (c Category) String() string {
	switch c {
	case FunctionalRequirement:
		return "FR"
	case Epic:
		return "EPIC"
	case UserStory:
		return "US"
	}
	return "?"
}

// DisplayName returns the long form used in report headings.
func (c Category) DisplayName() string {
	switch c {
	case FunctionalRequirement:
		return "Functional Requirements"
	case Epic:
		return "Epics"
	case UserStory:
		return "User Stories"
	}
	return "Unknown"
}

// Outcome is what a rule check yields: an explicit result collector,
// folded by the engine. There is no shared state across rules.
type Outcome struct {
	Passed  bool
	Details []string
}

func (o *Outcome) detailf(format string, args ...any) {
	o.Details = append(o.Details, fmt.Sprintf(format, args...))
}

// Rule is one named, categorized requirement check. Check must be pure
// given the world snapshot and free of side effects beyond reads.
type Rule struct {
	ID          string
	Category    Category
	Description string
	Check       func(*World) Outcome
}

// Bundle files rules inspect beyond the provisioning artifacts.
const composeFile = "docker-compose.yml"

// essentialFiles must all exist for the infrastructure epic.
var essentialFiles = []string{
	composeFile,
	provision.DatasourceFile,
	provision.ServerTemplateFile,
	provision.DefaultEnvFile,
}

// Operator tooling the bundle ships. The update script doubles as the
// update-tooling entry point of the administrator-filtering rule.
var customizationEntryPoints = []string{
	"scripts/setup.sh",
	"scripts/generate.sh",
	updateEntryPoint,
}

const updateEntryPoint = "scripts/update-dashboards.sh"

// metricVocabulary maps metric categories to the panel-title substrings
// that identify them, matched case-insensitively. The English keywords
// mirror the shipped dashboards; deployments with renamed panels can
// swap this table out.
var metricVocabulary = []struct {
	Name     string
	Keywords []string
}{
	{"Issues", []string{"issue"}},
	{"Pull Requests", []string{"pull request", "pr"}},
	{"Commits", []string{"commit"}},
	{"Releases", []string{"release"}},
}

// Registry returns the fixed rule catalogue in its stable evaluation
// order. The order, IDs and pass conditions are part of the report
// contract.
func Registry() []Rule {
	return []Rule{
		{
			ID:          "FR01",
			Category:    FunctionalRequirement,
			Description: "Pre-configured dashboards to monitor GitHub activities",
			Check:       checkDashboardAvailability,
		},
		{
			ID:          "FR02",
			Category:    FunctionalRequirement,
			Description: "View statistics from multiple repositories",
			Check:       checkMultiRepository,
		},
		{
			ID:          "FR03",
			Category:    FunctionalRequirement,
			Description: "Filter access to displayed repositories",
			Check:       checkFiltering,
		},
		{
			ID:          "EPIC01",
			Category:    Epic,
			Description: "Monitoring infrastructure set up",
			Check:       checkInfrastructure,
		},
		{
			ID:          "EPIC02",
			Category:    Epic,
			Description: "Filtering and custom visualization implemented",
			Check:       checkCustomization,
		},
		{
			ID:          "US01",
			Category:    UserStory,
			Description: "Ready-made dashboards to track activity",
			Check:       checkUserDashboard,
		},
		{
			ID:          "US02",
			Category:    UserStory,
			Description: "Repository filtering for administrator",
			Check:       checkAdminFiltering,
		},
		{
			ID:          "US03",
			Category:    UserStory,
			Description: "Specific metrics for collaborators",
			Check:       checkMetricsVisibility,
		},
	}
}

// checkDashboardAvailability passes iff both shipped dashboard files
// and the provider config exist. Service reachability is advisory only.
func checkDashboardAvailability(w *World) Outcome {
	var out Outcome

	dashboards := []string{
		provision.DashboardsDir + "/" + provision.PrimaryDashboard,
		provision.DashboardsDir + "/" + provision.OrgDashboard,
	}
	haveDashboards := true
	for _, d := range dashboards {
		if !w.Exists(d) {
			haveDashboards = false
		}
	}
	if haveDashboards {
		out.detailf("dashboards found: %s, %s", provision.PrimaryDashboard, provision.OrgDashboard)
	} else {
		out.detailf("dashboards missing")
	}

	haveProvider := w.Exists(provision.DashboardProviderFile)
	if haveProvider {
		out.detailf("provisioning configuration present")
	} else {
		out.detailf("provisioning configuration missing")
	}

	switch w.Probe("/api/health") {
	case Reachable:
		out.detailf("Grafana responding")
	default:
		out.detailf("warning: Grafana is not running")
	}

	out.Passed = haveDashboards && haveProvider
	return out
}

// checkMultiRepository passes iff more than one repository is
// configured, at least one organization is derived, and the
// organization dashboard exists.
func checkMultiRepository(w *World) Outcome {
	var out Outcome

	repos := w.Repositories()
	if len(repos) > 1 {
		out.detailf("multiple repositories configured: %d", len(repos))
	} else {
		out.detailf("need more than one configured repository")
	}

	orgs := w.Organizations()
	if len(orgs) > 0 {
		out.detailf("organizations detected: %s", strings.Join(orgs, ", "))
	} else {
		out.detailf("no organizations detected")
	}

	haveOrgDashboard := w.Exists(provision.DashboardsDir + "/" + provision.OrgDashboard)
	if haveOrgDashboard {
		out.detailf("organization dashboard present")
	} else {
		out.detailf("organization dashboard missing")
	}

	out.Passed = len(repos) > 1 && len(orgs) >= 1 && haveOrgDashboard
	return out
}

// checkFiltering passes iff the access-control artifact exists and the
// primary dashboard's repository variable carries a non-empty regex.
func checkFiltering(w *World) Outcome {
	var out Outcome

	haveAccess := w.Exists(provision.AccessControlFile)
	if haveAccess {
		out.detailf("access control configured")
	} else {
		out.detailf("access control not configured")
	}

	hasFilter := false
	if d, ok := w.Dashboard(provision.PrimaryDashboard); ok {
		if v, ok := d.TemplatingVariable("repository"); ok {
			if regex, _ := v["regex"].(string); regex != "" {
				hasFilter = true
			}
		}
	}
	if hasFilter {
		out.detailf("repository filters configured")
	} else {
		out.detailf("repository filters not found")
	}

	if w.Exists(provision.FilterParamsFile) {
		out.detailf("filter configuration present")
	} else {
		out.detailf("filter configuration missing")
	}

	out.Passed = haveAccess && hasFilter
	return out
}

// checkInfrastructure passes iff every essential file exists, the
// compose descriptor is structurally valid, and the datasource declares
// the GitHub plugin type exactly.
func checkInfrastructure(w *World) Outcome {
	var out Outcome

	var missing []string
	for _, f := range essentialFiles {
		if !w.Exists(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		out.detailf("essential files present")
	} else {
		out.detailf("missing files: %s", strings.Join(missing, ", "))
	}

	composeOK := w.ComposeValid()
	if composeOK {
		out.detailf("compose descriptor valid")
	} else {
		out.detailf("compose descriptor invalid")
	}

	dsType, ok := w.DatasourceType()
	dsOK := ok && dsType == provision.DatasourceType
	if dsOK {
		out.detailf("GitHub datasource configured")
	} else {
		out.detailf("GitHub datasource not configured")
	}

	out.Passed = len(missing) == 0 && composeOK && dsOK
	return out
}

// checkCustomization passes iff the operator tooling entry points exist
// and the derived filter configuration is present. Extra dashboards are
// reported informationally and never gate pass/fail.
func checkCustomization(w *World) Outcome {
	var out Outcome

	var missing []string
	for _, f := range customizationEntryPoints {
		if !w.Exists(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		out.detailf("customization tooling present")
	} else {
		out.detailf("missing tooling: %s", strings.Join(missing, ", "))
	}

	haveParams := w.Exists(provision.FilterParamsFile)
	if haveParams {
		out.detailf("custom configuration generated")
	} else {
		out.detailf("custom configuration not found")
	}

	if extra := w.ExtraDashboards(); len(extra) > 0 {
		out.detailf("custom dashboards: %d", len(extra))
	} else {
		out.detailf("no custom dashboards (optional)")
	}

	out.Passed = len(missing) == 0 && haveParams
	return out
}

// checkUserDashboard passes iff the service root answers successfully
// and the server template declares a default home dashboard. Anonymous
// access detection is advisory only.
func checkUserDashboard(w *World) Outcome {
	var out Outcome

	reachable := w.Probe("") == Reachable
	if reachable {
		out.detailf("Grafana accessible at %s", w.ServerURL())
	} else {
		out.detailf("Grafana not accessible at %s", w.ServerURL())
	}

	homeConfigured := strings.Contains(w.ReadFile(provision.ServerTemplateFile), "default_home_dashboard_path")
	if homeConfigured {
		out.detailf("default dashboard configured")
	} else {
		out.detailf("default dashboard not configured")
	}

	if strings.Contains(w.ReadFile(composeFile), "GF_AUTH_ANONYMOUS_ENABLED=true") {
		out.detailf("anonymous access enabled")
	} else {
		out.detailf("warning: anonymous access not detected")
	}

	out.Passed = reachable && homeConfigured
	return out
}

// checkAdminFiltering passes iff at least one repository is configured,
// the filter configuration carries a non-empty regex, and the update
// tooling exists.
func checkAdminFiltering(w *World) Outcome {
	var out Outcome

	repos := w.Repositories()
	if len(repos) > 0 {
		out.detailf("specific repositories configured: %d", len(repos))
	} else {
		out.detailf("no specific repositories configured")
	}

	params, ok := w.FilterParams()
	hasRegex := ok && params.RepoRegex != ""
	if hasRegex {
		out.detailf("filters applied in dashboards")
	} else {
		out.detailf("filters not applied in dashboards")
	}

	haveUpdater := w.Exists(updateEntryPoint)
	if haveUpdater {
		out.detailf("update tooling available")
	} else {
		out.detailf("update tooling not found")
	}

	out.Passed = len(repos) > 0 && hasRegex && haveUpdater
	return out
}

// checkMetricsVisibility passes iff the primary dashboard's panel
// titles cover at least two distinct metric categories from the fixed
// vocabulary.
func checkMetricsVisibility(w *World) Outcome {
	var out Outcome

	var metrics []string
	d, ok := w.Dashboard(provision.PrimaryDashboard)
	if ok {
		metrics = detectMetrics(d.PanelTitles())
	}
	if len(metrics) > 0 {
		out.detailf("available metrics: %s", strings.Join(metrics, ", "))
	} else {
		out.detailf("metrics not configured")
	}

	if len(metrics) >= 3 {
		out.detailf("multiple metrics configured")
	} else {
		out.detailf("fewer than three metric categories found")
	}

	if ok && d.HasTimeRange() {
		out.detailf("historical data configured")
	} else {
		out.detailf("warning: historical data depends on time range")
	}

	out.Passed = len(metrics) >= 2
	return out
}

// detectMetrics returns the vocabulary categories whose keywords appear
// in at least one title, in vocabulary order.
func detectMetrics(titles []string) []string {
	var found []string
	for _, entry := range metricVocabulary {
		for _, title := range titles {
			lower := strings.ToLower(title)
			matched := false
			for _, kw := range entry.Keywords {
				if strings.Contains(lower, kw) {
					matched = true
					break
				}
			}
			if matched {
				found = append(found, entry.Name)
				break
			}
		}
	}
	return found
}
