package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlan_CleanJSON(t *testing.T) {
	raw := `{"tools":[{"name":"version_search","query":"Laravel 11 release"}],"reasoning":"version question"}`

	plan := parsePlan(raw, "What's new in Laravel 11?")

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "version_search", plan.Entries[0].Tool)
	assert.Equal(t, "Laravel 11 release", plan.Entries[0].Query)
	assert.Equal(t, "version question", plan.Reasoning)
	assert.False(t, plan.Fallback)
}

func TestParsePlan_MarkdownFenced(t *testing.T) {
	raw := "```json\n{\"tools\":[{\"name\":\"feature_search\",\"query\":\"queues\"}],\"reasoning\":\"feature\"}\n```"

	plan := parsePlan(raw, "How do queues work?")

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "feature_search", plan.Entries[0].Tool)
	assert.False(t, plan.Fallback)
}

func TestParsePlan_ProseWrapped(t *testing.T) {
	raw := `Here is my plan: {"tools":[{"name":"general_search","query":"middleware"}],"reasoning":"x"} Hope that helps.`

	plan := parsePlan(raw, "middleware?")

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "general_search", plan.Entries[0].Tool)
	assert.False(t, plan.Fallback)
}

func TestParsePlan_GarbageFallsBack(t *testing.T) {
	for _, raw := range []string{
		"I'm not sure which tool to use.",
		"",
		"{broken json",
		`{"tools": "not an array"}`,
	} {
		plan := parsePlan(raw, "How do I install Laravel?")
		require.Len(t, plan.Entries, 1, "raw=%q", raw)
		assert.Equal(t, fallbackToolName, plan.Entries[0].Tool)
		assert.Equal(t, "How do I install Laravel?", plan.Entries[0].Query)
		assert.True(t, plan.Fallback)
	}
}

func TestParsePlan_EmptyToolListFallsBack(t *testing.T) {
	plan := parsePlan(`{"tools":[],"reasoning":"nothing fits"}`, "q")
	assert.True(t, plan.Fallback)
	assert.Equal(t, fallbackToolName, plan.Entries[0].Tool)
}

func TestSanitizeEntries(t *testing.T) {
	entries := sanitizeEntries([]PlanEntry{
		{Tool: "  version_search ", Query: " releases "},
		{Tool: "", Query: "dropped"},
		{Tool: "feature_search", Query: ""},
		{Tool: "version_search", Query: "releases"}, // exact duplicate
	}, "original question")

	require.Len(t, entries, 2)
	assert.Equal(t, PlanEntry{Tool: "version_search", Query: "releases"}, entries[0])
	assert.Equal(t, PlanEntry{Tool: "feature_search", Query: "original question"}, entries[1])
}

func TestSanitizeEntries_CapsPlanSize(t *testing.T) {
	var entries []PlanEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, PlanEntry{Tool: "general_search", Query: string(rune('a' + i))})
	}

	out := sanitizeEntries(entries, "q")
	assert.Len(t, out, maxPlanEntries)
}
