package orchestrator

import (
	"encoding/json"
	"strings"
)

// maxPlanEntries caps how many tool invocations a single plan may carry.
// Plans beyond this are truncated, not rejected.
const maxPlanEntries = 5

// PlanEntry is one tool invocation the planner selected.
type PlanEntry struct {
	Tool  string `json:"name"`
	Query string `json:"query"`
}

// Plan is the planner's structured output: which tools to run, with which
// sub-queries, and why.
type Plan struct {
	Entries   []PlanEntry `json:"tools"`
	Reasoning string      `json:"reasoning"`

	// Fallback marks a plan synthesized locally because the model output
	// could not be parsed.
	Fallback bool `json:"-"`
}

// DefaultPlan is the universal fallback: route the whole question through
// the general search tool.
func DefaultPlan(question string) Plan {
	return Plan{
		Entries:  []PlanEntry{{Tool: fallbackToolName, Query: question}},
		Fallback: true,
	}
}

// parsePlan extracts a Plan from raw model output.
//
// Models wrap JSON in markdown fences or prose more often than not, so
// parsing is forgiving: fences are stripped and, failing a direct
// unmarshal, the outermost brace-delimited object is tried. A plan that
// cannot be recovered at all degrades to DefaultPlan rather than failing
// the question.
func parsePlan(raw, question string) Plan {
	cleaned := stripFences(raw)

	var plan Plan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		inner := extractObject(cleaned)
		if inner == "" || json.Unmarshal([]byte(inner), &plan) != nil {
			return DefaultPlan(question)
		}
	}

	plan.Entries = sanitizeEntries(plan.Entries, question)
	if len(plan.Entries) == 0 {
		return DefaultPlan(question)
	}
	return plan
}

// sanitizeEntries drops unusable entries and fills empty sub-queries with
// the original question.
func sanitizeEntries(entries []PlanEntry, question string) []PlanEntry {
	out := make([]PlanEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		e.Tool = strings.TrimSpace(e.Tool)
		e.Query = strings.TrimSpace(e.Query)
		if e.Tool == "" {
			continue
		}
		if e.Query == "" {
			e.Query = question
		}
		// The same tool with the same sub-query would do identical work.
		key := e.Tool + "\x00" + e.Query
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
		if len(out) == maxPlanEntries {
			break
		}
	}
	return out
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractObject returns the outermost {...} substring, or "" when the
// input contains no balanced object.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
