package orchestrator

import (
	"sync"
	"time"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/llm"
)

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
	At       time.Time
}

// Memory holds the conversation history for one session.
//
// It is bounded: once maxTurns is reached the oldest turn is dropped, so
// long-running sessions hold a fixed amount of context. All methods are
// safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	turns    []Turn
	maxTurns int
}

// NewMemory creates a bounded conversation memory. maxTurns <= 0 falls
// back to a sensible default.
func NewMemory(maxTurns int) *Memory {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &Memory{maxTurns: maxTurns}
}

// Append records a completed exchange, evicting the oldest turn when the
// ceiling is reached.
func (m *Memory) Append(question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, Turn{Question: question, Answer: answer, At: time.Now()})
	if len(m.turns) > m.maxTurns {
		m.turns = m.turns[len(m.turns)-m.maxTurns:]
	}
}

// Recent returns the last n turns flattened into model messages, oldest
// first. n <= 0 returns all retained turns.
func (m *Memory) Recent(n int) []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	msgs := make([]llm.Message, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: t.Question},
			llm.Message{Role: llm.RoleModel, Content: t.Answer},
		)
	}
	return msgs
}

// Turns returns a copy of the retained exchanges, oldest first.
func (m *Memory) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len reports the number of retained turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Clear discards all retained turns.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}

// Sessions is a concurrency-safe map of session ID to conversation
// memory. Sessions are created lazily on first use.
type Sessions struct {
	mu       sync.Mutex
	byID     map[string]*Memory
	maxTurns int
}

// NewSessions creates an empty session store whose memories retain at
// most maxTurns exchanges each.
func NewSessions(maxTurns int) *Sessions {
	return &Sessions{byID: make(map[string]*Memory), maxTurns: maxTurns}
}

// Get returns the memory for id, creating it when absent.
func (s *Sessions) Get(id string) *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, ok := s.byID[id]
	if !ok {
		mem = NewMemory(s.maxTurns)
		s.byID[id] = mem
	}
	return mem
}

// Lookup returns the memory for id without creating one.
func (s *Sessions) Lookup(id string) (*Memory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, ok := s.byID[id]
	return mem, ok
}

// Delete removes the session and its history.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}
