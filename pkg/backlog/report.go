// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package backlog

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const reportRule = "======================================================================"

// Formatter renders a Report for humans (Write) or for tooling
// (WriteJSON).
type Formatter struct {
	w io.Writer
}

// NewFormatter returns a Formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Write renders the grouped report with a summary header.
func (f *Formatter) Write(report Report) {
	fmt.Fprintln(f.w, reportRule)
	fmt.Fprintln(f.w, titleStyle.Render("BACKLOG REQUIREMENTS VALIDATION REPORT"))
	fmt.Fprintln(f.w, reportRule)

	rate := 0.0
	if report.Total > 0 {
		rate = float64(report.Passed) / float64(report.Total) * 100
	}
	fmt.Fprintf(f.w, "Summary: %d/%d requirements implemented\n", report.Passed, report.Total)
	fmt.Fprintf(f.w, "Passed:  %d\n", report.Passed)
	fmt.Fprintf(f.w, "Failed:  %d\n", report.Failed)
	fmt.Fprintf(f.w, "Success rate: %.1f%%\n", rate)

	grouped := report.ByCategory()
	for _, category := range Categories {
		results := grouped[category]
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(f.w, "\n%s\n", titleStyle.Render(category.String()+" - "+category.DisplayName()))
		for _, res := range results {
			marker := passStyle.Render("[PASS]")
			if !res.Passed {
				marker = failStyle.Render("[FAIL]")
			}
			fmt.Fprintf(f.w, "  %s %s: %s\n", marker, res.RuleID, res.Description)
			fmt.Fprintf(f.w, "         %s\n", dimStyle.Render(res.Detail))
		}
	}

	fmt.Fprintln(f.w, "")
	fmt.Fprintln(f.w, reportRule)
	if report.AllPassed() {
		fmt.Fprintln(f.w, passStyle.Render("All backlog requirements have been implemented."))
	} else {
		fmt.Fprintln(f.w, failStyle.Render("Some requirements need attention. Check the details above."))
	}
}

// WriteJSON emits the report as a stable JSON document. Each result
// additionally carries its status code.
func (f *Formatter) WriteJSON(report Report) error {
	type jsonResult struct {
		Result
		Status string `json:"status"`
	}
	doc := struct {
		Results []jsonResult `json:"results"`
		Total   int          `json:"total"`
		Passed  int          `json:"passed"`
		Failed  int          `json:"failed"`
	}{
		Results: make([]jsonResult, len(report.Results)),
		Total:   report.Total,
		Passed:  report.Passed,
		Failed:  report.Failed,
	}
	for i, res := range report.Results {
		doc.Results[i] = jsonResult{Result: res, Status: res.Status()}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	_, err = f.w.Write(append(data, '\n'))
	return err
}
