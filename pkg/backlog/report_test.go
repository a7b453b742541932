// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func sampleReport() Report {
	return Report{
		Results: []Result{
			{RuleID: "FR01", Category: FunctionalRequirement, CategoryTag: "FR",
				Description: "Pre-configured dashboards", Passed: true, Detail: "dashboards found"},
			{RuleID: "EPIC01", Category: Epic, CategoryTag: "EPIC",
				Description: "Monitoring infrastructure", Passed: false, Detail: "missing files: .env"},
			{RuleID: "US01", Category: UserStory, CategoryTag: "US",
				Description: "Ready-made dashboards", Passed: true, Detail: "Grafana accessible"},
		},
		Total:  3,
		Passed: 2,
		Failed: 1,
	}
}

func TestFormatter_Write(t *testing.T) {
	var b strings.Builder
	NewFormatter(&b).Write(sampleReport())
	out := b.String()

	for _, want := range []string{
		"BACKLOG REQUIREMENTS VALIDATION REPORT",
		"Summary: 2/3 requirements implemented",
		"Success rate: 66.7%",
		"FR - Functional Requirements",
		"EPIC - Epics",
		"US - User Stories",
		"FR01",
		"missing files: .env",
		"Some requirements need attention",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output misses %q", want)
		}
	}
}

func TestFormatter_WriteAllPassed(t *testing.T) {
	report := sampleReport()
	report.Results[1].Passed = true
	report.Passed, report.Failed = 3, 0

	var b strings.Builder
	NewFormatter(&b).Write(report)
	if !strings.Contains(b.String(), "All backlog requirements have been implemented") {
		t.Error("success footer missing")
	}
}

func TestFormatter_WriteJSON(t *testing.T) {
	var b strings.Builder
	if err := NewFormatter(&b).WriteJSON(sampleReport()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc struct {
		Results []struct {
			RuleID   string `json:"rule_id"`
			Category string `json:"category"`
			Status   string `json:"status"`
		} `json:"results"`
		Total  int `json:"total"`
		Passed int `json:"passed"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal([]byte(b.String()), &doc); err != nil {
		t.Fatalf("parsing report JSON: %v", err)
	}
	if doc.Total != 3 || doc.Passed != 2 || doc.Failed != 1 {
		t.Errorf("summary: got %+v", doc)
	}
	if doc.Results[0].Status != "pass" || doc.Results[1].Status != "fail" {
		t.Errorf("status codes: got %+v", doc.Results)
	}
	if doc.Results[1].Category != "EPIC" {
		t.Errorf("category tag: got %q", doc.Results[1].Category)
	}
}
