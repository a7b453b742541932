// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateAll_CountsAndOrder(t *testing.T) {
	b := newBundle(t)
	b.full()

	report := NewEngine(b.world(stubProber{Reachable}), nil).ValidateAll()
	if report.Total != 8 {
		t.Fatalf("total: got %d, want 8", report.Total)
	}
	if report.Passed+report.Failed != report.Total {
		t.Errorf("counts disagree: passed=%d failed=%d total=%d",
			report.Passed, report.Failed, report.Total)
	}
	if !report.AllPassed() {
		for _, res := range report.Results {
			if !res.Passed {
				t.Errorf("rule %s failed: %s", res.RuleID, res.Detail)
			}
		}
	}
}

// Same snapshot, identical report.
func TestValidateAll_Deterministic(t *testing.T) {
	b := newBundle(t)
	b.full()
	world := b.world(stubProber{Unreachable})

	first := NewEngine(world, nil).ValidateAll()
	second := NewEngine(world, nil).ValidateAll()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reports differ across identical runs (-first +second):\n%s", diff)
	}
}

// A rule whose check panics yields a failed result; every other rule
// still reports normally.
func TestValidateAll_FaultIsolation(t *testing.T) {
	b := newBundle(t)
	b.full()

	engine := NewEngine(b.world(stubProber{Reachable}), nil)
	engine.rules = append([]Rule{{
		ID:          "BROKEN",
		Category:    Epic,
		Description: "a rule that blows up",
		Check:       func(*World) Outcome { panic("boom") },
	}}, engine.rules...)

	report := engine.ValidateAll()
	if report.Total != 9 {
		t.Fatalf("total: got %d, want 9", report.Total)
	}

	broken := report.Results[0]
	if broken.RuleID != "BROKEN" || broken.Passed {
		t.Fatalf("broken rule: got %+v", broken)
	}
	if !strings.Contains(broken.Detail, "boom") {
		t.Errorf("broken rule detail misses the panic message: %q", broken.Detail)
	}
	for _, res := range report.Results[1:] {
		if !res.Passed {
			t.Errorf("rule %s affected by the broken rule: %s", res.RuleID, res.Detail)
		}
	}
}

func TestReport_ByCategory(t *testing.T) {
	b := newBundle(t)
	b.full()
	report := NewEngine(b.world(stubProber{Reachable}), nil).ValidateAll()

	grouped := report.ByCategory()
	if got := len(grouped[FunctionalRequirement]); got != 3 {
		t.Errorf("FR results: got %d, want 3", got)
	}
	if got := len(grouped[Epic]); got != 2 {
		t.Errorf("EPIC results: got %d, want 2", got)
	}
	if got := len(grouped[UserStory]); got != 3 {
		t.Errorf("US results: got %d, want 3", got)
	}
}

func TestResult_Status(t *testing.T) {
	if got := (Result{Passed: true}).Status(); got != "pass" {
		t.Errorf("Status: got %q, want pass", got)
	}
	if got := (Result{}).Status(); got != "fail" {
		t.Errorf("Status: got %q, want fail", got)
	}
}
