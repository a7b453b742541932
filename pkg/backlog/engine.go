// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Result is the immutable outcome of one rule evaluation. Exactly one
// is produced per rule per run.
type Result struct {
	RuleID      string   `json:"rule_id"`
	Category    Category `json:"-"`
	CategoryTag string   `json:"category"`
	Description string   `json:"description"`
	Passed      bool     `json:"passed"`
	Detail      string   `json:"detail"`
}

// Status returns the machine-readable status code for downstream
// tooling, so nobody has to parse the prose detail.
func (r Result) Status() string {
	if r.Passed {
		return "pass"
	}
	return "fail"
}

// Report aggregates one validation run. It is derived state, recomputed
// each run; the artifacts and the live service stay the source of
// truth.
type Report struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
}

// AllPassed reports whether every rule passed.
func (r *Report) AllPassed() bool { return r.Failed == 0 }

// ByCategory groups results keeping both category order and rule order
// stable across runs.
func (r *Report) ByCategory() map[Category][]Result {
	grouped := make(map[Category][]Result, len(Categories))
	for _, res := range r.Results {
		grouped[res.Category] = append(grouped[res.Category], res)
	}
	return grouped
}

// Engine evaluates the rule catalogue against one world snapshot.
type Engine struct {
	world *World
	rules []Rule
	log   *zap.SugaredLogger
}

// NewEngine returns an engine over the fixed registry. A nil log
// disables logging.
func NewEngine(world *World, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{world: world, rules: Registry(), log: log}
}

// ValidateAll evaluates every rule in stable order and folds the
// outcomes into a Report. It never short-circuits: an unexpected error
// inside a check becomes a failed result for that rule and the run
// continues.
func (e *Engine) ValidateAll() Report {
	report := Report{Results: make([]Result, 0, len(e.rules))}
	for _, rule := range e.rules {
		out := e.evaluate(rule)
		result := Result{
			RuleID:      rule.ID,
			Category:    rule.Category,
			CategoryTag: rule.Category.String(),
			Description: rule.Description,
			Passed:      out.Passed,
			Detail:      strings.Join(out.Details, "; "),
		}
		e.log.Debugw("rule evaluated", "rule", rule.ID, "status", result.Status())
		report.Results = append(report.Results, result)
		report.Total++
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report
}

// evaluate runs one check, converting a panic into a failed outcome so
// a single broken rule cannot take down the run.
func (e *Engine) evaluate(rule Rule) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorw("rule check failed unexpectedly", "rule", rule.ID, "error", r)
			out = Outcome{Passed: false, Details: []string{fmt.Sprintf("check failed unexpectedly: %v", r)}}
		}
	}()
	return rule.Check(e.world)
}
