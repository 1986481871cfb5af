package runner

import (
	"fmt"
	"strings"
	"time"
)

// StepStatus is the outcome of one step.
type StepStatus string

const (
	StatusPassed  StepStatus = "passed"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepResult describes one executed (or skipped) step.
type StepResult struct {
	Index    int           `json:"index"`
	Step     Step          `json:"step"`
	Status   StepStatus    `json:"status"`
	Result   string        `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report summarises a script run.
type Report struct {
	Script   string        `json:"script"`
	Steps    []StepResult  `json:"steps"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether no step failed.
func (r *Report) OK() bool { return r.Failed == 0 }

func (r *Report) add(res StepResult) {
	r.Steps = append(r.Steps, res)
	switch res.Status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

// Markdown renders the report as a Markdown table.
func (r *Report) Markdown() string {
	var sb strings.Builder
	title := r.Script
	if title == "" {
		title = "script"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d passed, %d failed, %d skipped in %s\n\n", r.Passed, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond))
	sb.WriteString("| # | step | status | detail |\n|---|---|---|---|\n")
	for _, s := range r.Steps {
		detail := s.Result
		if s.Error != "" {
			detail = s.Error
		}
		fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n", s.Index, s.Step.Label(), s.Status, escapeCell(detail))
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
