// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// findRule pulls a rule out of the registry by ID.
func findRule(t *testing.T, id string) Rule {
	t.Helper()
	for _, rule := range Registry() {
		if rule.ID == id {
			return rule
		}
	}
	t.Fatalf("rule %s not in registry", id)
	return Rule{}
}

func TestRegistry_StableOrderAndCategories(t *testing.T) {
	var ids []string
	for _, rule := range Registry() {
		ids = append(ids, rule.ID)
	}
	want := []string{"FR01", "FR02", "FR03", "EPIC01", "EPIC02", "US01", "US02", "US03"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("registry order mismatch (-want +got):\n%s", diff)
	}

	for _, rule := range Registry() {
		switch rule.Category {
		case FunctionalRequirement, Epic, UserStory:
		default:
			t.Errorf("rule %s: unexpected category %v", rule.ID, rule.Category)
		}
	}
}

// Dashboards and provider present, service down: the availability rule
// passes and only warns about the unreachable service.
func TestDashboardAvailability_ServiceDownIsAdvisory(t *testing.T) {
	b := newBundle(t)
	b.write("dashboards/github.json", testDashboardJSON)
	b.write("dashboards/github-organization.json", testDashboardJSON)
	b.write("provisioning/dashboards/dashboard.yaml", "apiVersion: 1\n")

	out := findRule(t, "FR01").Check(b.world(stubProber{Unreachable}))
	if !out.Passed {
		t.Fatalf("FR01 failed: %v", out.Details)
	}
	detail := strings.Join(out.Details, "; ")
	if !strings.Contains(detail, "not running") {
		t.Errorf("detail misses the unreachable warning: %q", detail)
	}
}

func TestDashboardAvailability_MissingProviderFails(t *testing.T) {
	b := newBundle(t)
	b.write("dashboards/github.json", testDashboardJSON)
	b.write("dashboards/github-organization.json", testDashboardJSON)

	out := findRule(t, "FR01").Check(b.world(stubProber{Reachable}))
	if out.Passed {
		t.Error("FR01 passed without the provider config")
	}
}

func TestMultiRepository(t *testing.T) {
	b := newBundle(t)
	b.writeEnv("docker/buildx, grafana/grafana")
	b.write("dashboards/github-organization.json", testDashboardJSON)

	if out := findRule(t, "FR02").Check(b.world(nil)); !out.Passed {
		t.Errorf("FR02 failed: %v", out.Details)
	}

	single := newBundle(t)
	single.writeEnv("docker/buildx")
	single.write("dashboards/github-organization.json", testDashboardJSON)
	if out := findRule(t, "FR02").Check(single.world(nil)); out.Passed {
		t.Error("FR02 passed with a single repository")
	}
}

// Access-control file absent: filtering fails regardless of the
// dashboard regex state.
func TestFiltering_MissingAccessControlFails(t *testing.T) {
	b := newBundle(t)
	b.writeEnv("docker/buildx, grafana/grafana")
	b.write("dashboards/github.json", testDashboardJSON)
	b.write("dashboard_config.json", `{"repo_regex": "^(buildx)$"}`)

	if out := findRule(t, "FR03").Check(b.world(nil)); out.Passed {
		t.Error("FR03 passed without the access-control file")
	}
}

func TestFiltering_RequiresDashboardRegex(t *testing.T) {
	b := newBundle(t)
	b.write("provisioning/access-control/api-permissions.yaml", "apiVersion: 1\n")
	b.write("dashboards/github.json",
		`{"templating": {"list": [{"name": "repository", "regex": ""}]}}`)

	if out := findRule(t, "FR03").Check(b.world(nil)); out.Passed {
		t.Error("FR03 passed with an empty repository regex")
	}

	b.write("dashboards/github.json", testDashboardJSON)
	if out := findRule(t, "FR03").Check(b.world(nil)); !out.Passed {
		t.Errorf("FR03 failed with access control and regex present: %v", out.Details)
	}
}

func TestInfrastructure(t *testing.T) {
	b := newBundle(t)
	b.full()
	if out := findRule(t, "EPIC01").Check(b.world(nil)); !out.Passed {
		t.Errorf("EPIC01 failed on a full bundle: %v", out.Details)
	}

	wrongType := newBundle(t)
	wrongType.full()
	wrongType.write("provisioning/datasources/datasource.yaml",
		"apiVersion: 1\ndatasources:\n  - type: prometheus\n")
	if out := findRule(t, "EPIC01").Check(wrongType.world(nil)); out.Passed {
		t.Error("EPIC01 passed with a non-GitHub datasource type")
	}
}

func TestCustomization_ExtraDashboardsAreInformational(t *testing.T) {
	b := newBundle(t)
	b.full()

	out := findRule(t, "EPIC02").Check(b.world(nil))
	if !out.Passed {
		t.Fatalf("EPIC02 failed: %v", out.Details)
	}
	if !strings.Contains(strings.Join(out.Details, "; "), "no custom dashboards") {
		t.Errorf("missing informational detail: %v", out.Details)
	}

	// An extra dashboard flips the detail but never the outcome.
	b.write("dashboards/github-team.json", testDashboardJSON)
	out = findRule(t, "EPIC02").Check(b.world(nil))
	if !out.Passed {
		t.Errorf("EPIC02 failed with an extra dashboard: %v", out.Details)
	}
	if !strings.Contains(strings.Join(out.Details, "; "), "custom dashboards: 1") {
		t.Errorf("extra dashboard not reported: %v", out.Details)
	}
}

func TestUserDashboard_GatesOnReachabilityAndHomePath(t *testing.T) {
	b := newBundle(t)
	b.full()

	if out := findRule(t, "US01").Check(b.world(stubProber{Reachable})); !out.Passed {
		t.Errorf("US01 failed: %v", out.Details)
	}
	if out := findRule(t, "US01").Check(b.world(stubProber{Unreachable})); out.Passed {
		t.Error("US01 passed with the service unreachable")
	}

	noHome := newBundle(t)
	noHome.full()
	noHome.write("grafana.ini.template", "[server]\nroot_url = http://localhost:3000\n")
	if out := findRule(t, "US01").Check(noHome.world(stubProber{Reachable})); out.Passed {
		t.Error("US01 passed without a default home dashboard path")
	}
}

func TestAdminFiltering(t *testing.T) {
	b := newBundle(t)
	b.full()
	if out := findRule(t, "US02").Check(b.world(nil)); !out.Passed {
		t.Errorf("US02 failed: %v", out.Details)
	}

	noRegex := newBundle(t)
	noRegex.full()
	noRegex.write("dashboard_config.json", `{"repo_regex": ""}`)
	if out := findRule(t, "US02").Check(noRegex.world(nil)); out.Passed {
		t.Error("US02 passed with an empty filter regex")
	}
}

// Panel titles covering two vocabulary categories meet the threshold.
func TestMetricsVisibility_TwoCategoriesPass(t *testing.T) {
	b := newBundle(t)
	b.write("dashboards/github.json",
		`{"panels": [{"title": "Open Issues"}, {"title": "Merged Pull Requests"}]}`)

	out := findRule(t, "US03").Check(b.world(nil))
	if !out.Passed {
		t.Fatalf("US03 failed: %v", out.Details)
	}
	detail := strings.Join(out.Details, "; ")
	if !strings.Contains(detail, "Issues") || !strings.Contains(detail, "Pull Requests") {
		t.Errorf("detected metrics not reported: %q", detail)
	}
}

func TestMetricsVisibility_SingleCategoryFails(t *testing.T) {
	b := newBundle(t)
	b.write("dashboards/github.json", `{"panels": [{"title": "Open Issues"}]}`)

	if out := findRule(t, "US03").Check(b.world(nil)); out.Passed {
		t.Error("US03 passed with a single metric category")
	}
}

func TestDetectMetrics(t *testing.T) {
	cases := []struct {
		titles []string
		want   []string
	}{
		{[]string{"Open Issues", "Merged Pull Requests"}, []string{"Issues", "Pull Requests"}},
		{[]string{"Commit Activity", "Latest Release", "PR Throughput"}, []string{"Pull Requests", "Commits", "Releases"}},
		{[]string{"Stars over time"}, nil},
		{nil, nil},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, detectMetrics(tc.titles)); diff != "" {
			t.Errorf("detectMetrics(%v) mismatch (-want +got):\n%s", tc.titles, diff)
		}
	}
}
