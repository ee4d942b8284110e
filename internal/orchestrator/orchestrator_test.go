package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/llm"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	testPlannerModel   = "googleai/test-planner"
	testSynthesisModel = "googleai/test-synthesis"
)

// scriptedCompleter answers planner and synthesis calls separately,
// keyed by the request's model name.
type scriptedCompleter struct {
	mu sync.Mutex

	planOutput string
	planErr    error

	synthOutput string
	synthErr    error

	requests []llm.Request
}

func (s *scriptedCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	switch req.Model {
	case testPlannerModel:
		return s.planOutput, s.planErr
	case testSynthesisModel:
		return s.synthOutput, s.synthErr
	default:
		return "", errors.New("unexpected model " + req.Model)
	}
}

func (s *scriptedCompleter) lastRequest() llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *scriptedCompleter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// fakeTool returns a fixed output or error; it records invocations.
type fakeTool struct {
	mu      sync.Mutex
	name    string
	output  string
	err     error
	queries []string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake " + f.name }
func (f *fakeTool) Run(ctx context.Context, subQuery string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, subQuery)
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func (f *fakeTool) runs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newTestOrchestrator(t *testing.T, completer Completer, toolset ...*fakeTool) (*Orchestrator, *tools.Registry) {
	t.Helper()

	registry := tools.NewRegistry()
	hasFallback := false
	for _, tool := range toolset {
		require.NoError(t, registry.Register(tool))
		if tool.name == fallbackToolName {
			hasFallback = true
		}
	}
	if !hasFallback {
		require.NoError(t, registry.Register(&fakeTool{name: fallbackToolName, output: "fallback answer"}))
	}

	orch, err := New(Config{
		PlannerModel:   testPlannerModel,
		SynthesisModel: testSynthesisModel,
		HistoryWindow:  5,
	}, registry, completer, nil)
	require.NoError(t, err)
	return orch, registry
}

func TestNew_RequiresFallbackTool(t *testing.T) {
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(&fakeTool{name: "version_search"}))

	_, err := New(Config{}, registry, &scriptedCompleter{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrToolNotFound)
}

func TestAnswer_GreetingShortCircuits(t *testing.T) {
	completer := &scriptedCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	for _, q := range []string{"hi", "Hello!", "  HEY  ", "thanks"} {
		res, err := orch.Answer(context.Background(), "s1", q)
		require.NoError(t, err)
		assert.Equal(t, greetingAnswer, res.Answer)
		assert.Empty(t, res.ToolsUsed)
	}

	assert.Zero(t, completer.calls(), "greetings must not reach the model")
	assert.Equal(t, 4, orch.Sessions().Get("s1").Len())
}

func TestAnswer_HappyPath(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  `{"tools":[{"name":"version_search","query":"Laravel 11 changes"},{"name":"feature_search","query":"new Eloquent features"}],"reasoning":"version plus features"}`,
		synthOutput: "Laravel 11 ships new Eloquent casts.",
	}
	version := &fakeTool{name: "version_search", output: "v11 release notes summary"}
	feature := &fakeTool{name: "feature_search", output: "eloquent feature summary"}
	orch, _ := newTestOrchestrator(t, completer, version, feature)

	res, err := orch.Answer(context.Background(), "s1", "What's new in Laravel 11?")
	require.NoError(t, err)

	assert.Equal(t, "Laravel 11 ships new Eloquent casts.", res.Answer)
	assert.Equal(t, []string{"version_search", "feature_search"}, res.ToolsUsed)
	assert.Equal(t, "version plus features", res.Reasoning)
	assert.False(t, res.Recovered)

	assert.Equal(t, []string{"Laravel 11 changes"}, version.runs())
	assert.Equal(t, []string{"new Eloquent features"}, feature.runs())

	// Synthesis sees both findings in plan order.
	synthReq := completer.lastRequest()
	first := strings.Index(synthReq.System, "v11 release notes summary")
	second := strings.Index(synthReq.System, "eloquent feature summary")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)

	// Memory recorded the turn.
	turns := orch.Sessions().Get("s1").Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "What's new in Laravel 11?", turns[0].Question)
	assert.Equal(t, res.Answer, turns[0].Answer)
}

func TestAnswer_UnparseablePlanUsesFallbackTool(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  "I think you should look at the routing docs.",
		synthOutput: "answer",
	}
	fallback := &fakeTool{name: fallbackToolName, output: "general docs summary"}
	orch, _ := newTestOrchestrator(t, completer, fallback)

	res, err := orch.Answer(context.Background(), "s1", "How does route model binding work?")
	require.NoError(t, err)

	assert.Equal(t, []string{fallbackToolName}, res.ToolsUsed)
	// The fallback carries the full original question.
	assert.Equal(t, []string{"How does route model binding work?"}, fallback.runs())
}

func TestAnswer_PlannerCallFailureDegrades(t *testing.T) {
	completer := &scriptedCompleter{
		planErr:     llm.ErrModelTimeout,
		synthOutput: "answer",
	}
	fallback := &fakeTool{name: fallbackToolName, output: "docs"}
	orch, _ := newTestOrchestrator(t, completer, fallback)

	res, err := orch.Answer(context.Background(), "s1", "question")
	require.NoError(t, err)
	assert.Equal(t, "answer", res.Answer)
	assert.Equal(t, []string{fallbackToolName}, res.ToolsUsed)
}

func TestAnswer_UnknownToolEntriesDropped(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  `{"tools":[{"name":"nonexistent_tool","query":"x"},{"name":"version_search","query":"releases"}],"reasoning":"r"}`,
		synthOutput: "answer",
	}
	version := &fakeTool{name: "version_search", output: "release summary"}
	orch, _ := newTestOrchestrator(t, completer, version)

	res, err := orch.Answer(context.Background(), "s1", "some question")
	require.NoError(t, err)

	assert.Equal(t, []string{"version_search"}, res.ToolsUsed)
	assert.Equal(t, []string{"releases"}, version.runs())
}

func TestAnswer_AllUnknownToolsFallBack(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  `{"tools":[{"name":"bogus_one","query":"x"},{"name":"bogus_two","query":"y"}],"reasoning":"r"}`,
		synthOutput: "answer",
	}
	fallback := &fakeTool{name: fallbackToolName, output: "docs"}
	orch, _ := newTestOrchestrator(t, completer, fallback)

	res, err := orch.Answer(context.Background(), "s1", "the question")
	require.NoError(t, err)

	assert.Equal(t, []string{fallbackToolName}, res.ToolsUsed)
	assert.Equal(t, []string{"the question"}, fallback.runs())
}

func TestAnswer_PartialToolFailureIsolated(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  `{"tools":[{"name":"version_search","query":"a"},{"name":"feature_search","query":"b"}],"reasoning":"r"}`,
		synthOutput: "answer from surviving tool",
	}
	version := &fakeTool{name: "version_search", err: errors.New("index exploded")}
	feature := &fakeTool{name: "feature_search", output: "feature summary"}
	orch, _ := newTestOrchestrator(t, completer, version, feature)

	res, err := orch.Answer(context.Background(), "s1", "some question")
	require.NoError(t, err)

	assert.Equal(t, "answer from surviving tool", res.Answer)
	assert.False(t, res.Recovered)

	// The failed tool appears as a placeholder, still in plan order.
	synthReq := completer.lastRequest()
	assert.Contains(t, synthReq.System, failurePlaceholder("version_search"))
	assert.Contains(t, synthReq.System, "feature summary")
}

func TestAnswer_AllFailedRecoversThroughFallback(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  `{"tools":[{"name":"version_search","query":"a"}],"reasoning":"r"}`,
		synthOutput: "recovered answer",
	}
	version := &fakeTool{name: "version_search", err: errors.New("down")}
	fallback := &fakeTool{name: fallbackToolName, output: "general rescue"}
	orch, _ := newTestOrchestrator(t, completer, version, fallback)

	res, err := orch.Answer(context.Background(), "s1", "the question")
	require.NoError(t, err)

	assert.Equal(t, "recovered answer", res.Answer)
	assert.True(t, res.Recovered)
	assert.Equal(t, []string{fallbackToolName}, res.ToolsUsed)
	assert.Equal(t, []string{"the question"}, fallback.runs())
}

func TestAnswer_AllFailedIncludingFallback(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput: `{"tools":[{"name":"general_search","query":"a"}],"reasoning":"r"}`,
	}
	fallback := &fakeTool{name: fallbackToolName, err: errors.New("index unavailable")}
	orch, _ := newTestOrchestrator(t, completer, fallback)

	res, err := orch.Answer(context.Background(), "s1", "doomed question")
	require.NoError(t, err)

	assert.Equal(t, ErrorAnswer, res.Answer)

	// The question survives in memory even though answering failed.
	turns := orch.Sessions().Get("s1").Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "doomed question", turns[0].Question)
	assert.Equal(t, ErrorAnswer, turns[0].Answer)
}

func TestAnswer_SynthesisFailureYieldsErrorAnswer(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput: `{"tools":[{"name":"general_search","query":"a"}],"reasoning":"r"}`,
		synthErr:   llm.ErrModelTimeout,
	}
	fallback := &fakeTool{name: fallbackToolName, output: "docs"}
	orch, _ := newTestOrchestrator(t, completer, fallback)

	res, err := orch.Answer(context.Background(), "s1", "some question")
	require.NoError(t, err)
	assert.Equal(t, ErrorAnswer, res.Answer)

	turns := orch.Sessions().Get("s1").Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, ErrorAnswer, turns[0].Answer)
}

func TestAnswer_EmptyQuestionRejected(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &scriptedCompleter{})

	_, err := orch.Answer(context.Background(), "s1", "   ")
	assert.Error(t, err)
}

func TestAnswer_HistoryFlowsIntoSecondTurn(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  `{"tools":[{"name":"general_search","query":"upgrade guide"}],"reasoning":"r"}`,
		synthOutput: "first answer",
	}
	fallback := &fakeTool{name: fallbackToolName, output: "docs"}
	orch, _ := newTestOrchestrator(t, completer, fallback)

	_, err := orch.Answer(context.Background(), "s1", "How do I upgrade to Laravel 11?")
	require.NoError(t, err)

	completer.synthOutput = "second answer"
	_, err = orch.Answer(context.Background(), "s1", "And what about PHP requirements?")
	require.NoError(t, err)

	// The second turn's planner call carries the first exchange.
	completer.mu.Lock()
	defer completer.mu.Unlock()
	var secondPlanReq llm.Request
	for _, req := range completer.requests {
		if req.Model == testPlannerModel && req.Prompt == "And what about PHP requirements?" {
			secondPlanReq = req
		}
	}
	require.Len(t, secondPlanReq.History, 2)
	assert.Equal(t, "How do I upgrade to Laravel 11?", secondPlanReq.History[0].Content)
	assert.Equal(t, "first answer", secondPlanReq.History[1].Content)
}

func TestAnswer_SessionsAreIsolated(t *testing.T) {
	completer := &scriptedCompleter{
		planOutput:  `{"tools":[{"name":"general_search","query":"a"}],"reasoning":"r"}`,
		synthOutput: "answer",
	}
	fallback := &fakeTool{name: fallbackToolName, output: "docs"}
	orch, _ := newTestOrchestrator(t, completer, fallback)

	_, err := orch.Answer(context.Background(), "alice", "first question")
	require.NoError(t, err)

	assert.Equal(t, 1, orch.Sessions().Get("alice").Len())
	assert.Equal(t, 0, orch.Sessions().Get("bob").Len())
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, isGreeting("hi"))
	assert.True(t, isGreeting("Hello!"))
	assert.True(t, isGreeting("GOOD MORNING"))
	assert.False(t, isGreeting("php"))
	assert.False(t, isGreeting("hi, how do I install Laravel?"))
	assert.False(t, isGreeting("What is Eloquent?"))
}

func TestTooShort(t *testing.T) {
	assert.True(t, tooShort("php"))
	assert.True(t, tooShort("  a?  "))
	assert.False(t, tooShort("cors"))
}

func TestAnswer_ShortInputShortCircuits(t *testing.T) {
	completer := &scriptedCompleter{}
	orch, _ := newTestOrchestrator(t, completer)

	res, err := orch.Answer(context.Background(), "s1", "php")
	require.NoError(t, err)
	assert.Equal(t, shortInputAnswer, res.Answer)
	assert.Empty(t, res.ToolsUsed)
	assert.Zero(t, completer.calls(), "short inputs must not reach the model")

	// Distinct from the greeting reply, and still recorded in memory.
	greet, err := orch.Answer(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.NotEqual(t, res.Answer, greet.Answer)
	assert.Equal(t, 2, orch.Sessions().Get("s1").Len())
}
