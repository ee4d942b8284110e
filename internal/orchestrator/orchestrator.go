// Package orchestrator answers questions by planning tool invocations,
// executing them against the documentation index, and synthesizing the
// tool outputs into one response.
//
// The flow for a question is planning, execution, synthesis. Every stage
// degrades rather than fails: an unparseable plan becomes the default
// general-search plan, a failed tool is replaced by a placeholder, and a
// plan whose every tool failed gets one fallback retry through general
// search before the orchestrator gives up with an apology answer. The
// question is recorded in conversation memory on every path.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/llm"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/tools"
)

const fallbackToolName = tools.FallbackToolName

// ErrorAnswer is returned when every tool, including the fallback
// retry, failed. It is an answer, not an error: the conversation keeps
// going and the question stays in memory.
const ErrorAnswer = "I was unable to retrieve the documentation needed to answer that. Please try rephrasing your question or ask again in a moment."

const plannerSystemPrompt = `You are a planning assistant for a Laravel documentation helper. Given a user question and the available tools, decide which tools to call and with what search query.

Respond with ONLY a JSON object in this exact shape, no markdown, no commentary:
{"tools": [{"name": "<tool name>", "query": "<search query for that tool>"}], "reasoning": "<one sentence>"}

Rules:
- Use only the tool names listed below.
- Pick between one and three tools. Prefer one specific tool over many generic ones.
- Each query should be a focused, self-contained search phrase, not the raw question.

Available tools:
%s`

const synthesisSystemPrompt = `You are a Laravel documentation assistant. Combine the tool findings below into one clear, direct answer to the user's question. Answer only from the findings; do not invent details. If a finding reports a failure or no results, work with what remains. Keep code examples from the findings intact.

Tool findings:
%s`

// greetings are answered directly, without touching the planner or the
// index. Matching is exact after lowercasing and trimming punctuation.
var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {}, "hiya": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"thanks": {}, "thank you": {},
}

const greetingAnswer = "Hello! I can help you with Laravel documentation questions: installation, features, version changes, and anything in between. What would you like to know?"

// shortInputAnswer replies to inputs too short to carry searchable
// intent without spending a planner call on them.
const shortInputAnswer = "Could you ask a more specific question? For example: \"How do I define a route?\" or \"What changed in Laravel 11?\""

// Config carries the orchestrator's model and history settings.
type Config struct {
	// PlannerModel is the provider-qualified model for plan generation.
	PlannerModel string
	// SynthesisModel is the provider-qualified model for the final answer.
	SynthesisModel string
	// HistoryWindow is how many past turns are passed as model context.
	HistoryWindow int
	// MaxHistoryTurns is each session's memory ceiling.
	MaxHistoryTurns int
}

// Completer issues model calls. Implemented by llm.Client.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Orchestrator coordinates planning, tool execution, and synthesis.
type Orchestrator struct {
	cfg       Config
	registry  *tools.Registry
	completer Completer
	sessions  *Sessions
	logger    *slog.Logger
}

// New creates an orchestrator. The registry must contain the fallback
// tool; construction fails otherwise so the degradation paths can never
// dead-end at runtime.
func New(cfg Config, registry *tools.Registry, completer Completer, logger *slog.Logger) (*Orchestrator, error) {
	if registry == nil || completer == nil {
		return nil, fmt.Errorf("orchestrator: registry and completer are required")
	}
	if _, err := registry.Find(fallbackToolName); err != nil {
		return nil, fmt.Errorf("orchestrator: fallback tool %q must be registered: %w", fallbackToolName, err)
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:       cfg,
		registry:  registry,
		completer: completer,
		sessions:  NewSessions(cfg.MaxHistoryTurns),
		logger:    logger,
	}, nil
}

// Result is one answered question.
type Result struct {
	Answer string
	// ToolsUsed lists the tools that ran, in plan order.
	ToolsUsed []string
	// Reasoning is the planner's stated rationale, empty for fallback plans.
	Reasoning string
	// Recovered marks answers produced through the fallback retry after
	// every planned tool failed.
	Recovered bool
}

// Sessions exposes the per-session conversation store, for history
// inspection and deletion.
func (o *Orchestrator) Sessions() *Sessions { return o.sessions }

// Tools returns the registered tools, in registration order.
func (o *Orchestrator) Tools() []tools.Tool { return o.registry.All() }

// Answer runs the full pipeline for one question within a session.
//
// It returns an error only for invalid input or context cancellation;
// model and tool failures degrade into the answer itself.
func (o *Orchestrator) Answer(ctx context.Context, sessionID, question string) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, fmt.Errorf("orchestrator: question must not be empty")
	}

	memory := o.sessions.Get(sessionID)

	if isGreeting(question) {
		memory.Append(question, greetingAnswer)
		return Result{Answer: greetingAnswer}, nil
	}
	if tooShort(question) {
		memory.Append(question, shortInputAnswer)
		return Result{Answer: shortInputAnswer}, nil
	}

	history := memory.Recent(o.cfg.HistoryWindow)

	plan := o.plan(ctx, question, history)
	entries := o.resolve(plan, question)

	results, allFailed := o.executePlan(ctx, entries)

	recovered := false
	if allFailed {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		o.logger.Warn("all planned tools failed, retrying through fallback", "question", question)
		results, recovered = o.retryFallback(ctx, question, results)
		if !recovered {
			memory.Append(question, ErrorAnswer)
			return Result{Answer: ErrorAnswer, ToolsUsed: toolNames(results)}, nil
		}
	}

	answer, err := o.synthesize(ctx, question, history, results)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		o.logger.Error("synthesis failed", "error", err)
		memory.Append(question, ErrorAnswer)
		return Result{Answer: ErrorAnswer, ToolsUsed: toolNames(results)}, nil
	}

	memory.Append(question, answer)
	return Result{
		Answer:    answer,
		ToolsUsed: toolNames(results),
		Reasoning: plan.Reasoning,
		Recovered: recovered,
	}, nil
}

// plan asks the planner model for a tool plan, degrading to DefaultPlan
// when the call fails or the output cannot be parsed.
func (o *Orchestrator) plan(ctx context.Context, question string, history []llm.Message) Plan {
	raw, err := o.completer.Complete(ctx, llm.Request{
		Model:   o.cfg.PlannerModel,
		System:  fmt.Sprintf(plannerSystemPrompt, o.describeTools()),
		History: history,
		Prompt:  question,
	})
	if err != nil {
		o.logger.Warn("planner call failed, using default plan", "error", err)
		return DefaultPlan(question)
	}

	plan := parsePlan(raw, question)
	if plan.Fallback {
		o.logger.Warn("planner output unparseable, using default plan", "raw_len", len(raw))
	} else {
		o.logger.Debug("plan ready", "entries", len(plan.Entries), "reasoning", plan.Reasoning)
	}
	return plan
}

// retryFallback runs the fallback tool once with the original question.
// When it succeeds, its output replaces the failed results; when it
// fails too, the original placeholder results are kept.
func (o *Orchestrator) retryFallback(ctx context.Context, question string, failed []toolResult) ([]toolResult, bool) {
	tool, err := o.registry.Find(fallbackToolName)
	if err != nil {
		return failed, false
	}

	out, err := tool.Run(ctx, question)
	if err != nil {
		o.logger.Warn("fallback retry failed", "error", err)
		return failed, false
	}
	return []toolResult{{Tool: tool.Name(), Query: question, Output: out}}, true
}

// synthesize combines the tool outputs into the final answer.
func (o *Orchestrator) synthesize(ctx context.Context, question string, history []llm.Message, results []toolResult) (string, error) {
	var findings strings.Builder
	for i, r := range results {
		fmt.Fprintf(&findings, "--- Finding %d (tool: %s, query: %q) ---\n%s\n\n", i+1, r.Tool, r.Query, r.Output)
	}

	answer, err := o.completer.Complete(ctx, llm.Request{
		Model:   o.cfg.SynthesisModel,
		System:  fmt.Sprintf(synthesisSystemPrompt, strings.TrimSpace(findings.String())),
		History: history,
		Prompt:  question,
	})
	if err != nil {
		return "", fmt.Errorf("synthesis: %w", err)
	}
	return answer, nil
}

// describeTools renders the registry as a planner prompt section.
func (o *Orchestrator) describeTools() string {
	var b strings.Builder
	for _, t := range o.registry.All() {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
	}
	return strings.TrimSpace(b.String())
}

func toolNames(results []toolResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Tool
	}
	return names
}

// isGreeting reports whether the question is a bare greeting.
func isGreeting(question string) bool {
	_, ok := greetings[normalize(question)]
	return ok
}

// tooShort reports whether the input is too short to search for.
func tooShort(question string) bool {
	return utf8.RuneCountInString(normalize(question)) <= 3
}

func normalize(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	return strings.TrimRight(normalized, "!.? ")
}
