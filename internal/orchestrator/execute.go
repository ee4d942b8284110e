package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/tools"
)

// maxConcurrentTools bounds how many tool invocations run in parallel
// for one question. Each invocation performs embedding and model calls,
// so the bound keeps one question from saturating provider quotas.
const maxConcurrentTools = 4

// toolResult is the outcome of one plan entry, in plan order.
type toolResult struct {
	Tool   string
	Query  string
	Output string
	Err    error
}

// failurePlaceholder stands in for a failed tool so the synthesizer sees
// a uniform result list in plan order.
func failurePlaceholder(tool string) string {
	return fmt.Sprintf("[The %s tool failed to produce an answer.]", tool)
}

// executePlan runs every resolved plan entry with bounded concurrency
// and returns the results in plan order. A failed entry yields its
// placeholder output alongside the error; allFailed reports whether no
// entry produced a real answer.
func (o *Orchestrator) executePlan(ctx context.Context, entries []resolvedEntry) (results []toolResult, allFailed bool) {
	results = make([]toolResult, len(entries))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentTools)

	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry resolvedEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := entry.tool.Run(ctx, entry.query)
			if err != nil {
				o.logger.Warn("tool failed",
					"tool", entry.tool.Name(),
					"sub_query", entry.query,
					"error", err)
				out = failurePlaceholder(entry.tool.Name())
			}
			results[i] = toolResult{
				Tool:   entry.tool.Name(),
				Query:  entry.query,
				Output: out,
				Err:    err,
			}
		}(i, entry)
	}
	wg.Wait()

	allFailed = true
	for _, r := range results {
		if r.Err == nil {
			allFailed = false
			break
		}
	}
	return results, allFailed
}

// resolvedEntry pairs a plan entry with its registered tool.
type resolvedEntry struct {
	tool  tools.Tool
	query string
}

// resolve maps plan entries onto registered tools, dropping entries that
// name unknown tools. A plan whose every entry was dropped degrades to
// the fallback tool with the original question.
func (o *Orchestrator) resolve(plan Plan, question string) []resolvedEntry {
	resolved := make([]resolvedEntry, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		tool, err := o.registry.Find(e.Tool)
		if err != nil {
			o.logger.Warn("plan named unknown tool, dropping entry", "tool", e.Tool)
			continue
		}
		resolved = append(resolved, resolvedEntry{tool: tool, query: e.Query})
	}

	if len(resolved) == 0 {
		if tool, err := o.registry.Find(fallbackToolName); err == nil {
			resolved = append(resolved, resolvedEntry{tool: tool, query: question})
		}
	}
	return resolved
}
