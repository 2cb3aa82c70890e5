package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/embedding"
	"github.com/poiesic/tabula/retry"
	"github.com/poiesic/tabula/search"
	"github.com/poiesic/tabula/vectorindex"
)

// DefaultTopK is the number of fragments retrieved per question.
const DefaultTopK = 6

// State describes whether a session has any turns.
type State int

const (
	// StateEmpty means no question has been answered since start or Reset.
	StateEmpty State = iota
	// StateActive means memory holds at least one turn.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Answer is the reply to one question.
type Answer struct {
	Text    string
	Sources []core.Fragment // retrieved fragments, nearest first
}

// Engine runs one conversation session over a read-only index.
type Engine struct {
	searcher     *search.Searcher
	completer    ai.Completer
	topK         int
	policy       retry.Policy
	systemPrompt string
	fallback     string
	condense     bool
	monitor      search.SearchMonitor
	now          func() time.Time
	sessionID    string
	logger       *slog.Logger

	// turn serializes Ask so each prompt sees every earlier turn
	turn   sync.Mutex
	mu     sync.Mutex
	memory []core.ConversationTurn
}

// Option configures an Engine.
type Option func(*Engine) error

// WithTopK sets the number of fragments retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			return ErrInvalidTopK
		}
		e.topK = k
		return nil
	}
}

// WithRetryPolicy sets the retry policy for completion calls.
// Default is retry.DefaultPolicy().
func WithRetryPolicy(policy retry.Policy) Option {
	return func(e *Engine) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		e.policy = policy
		return nil
	}
}

// WithSystemPrompt replaces the analyst instruction.
func WithSystemPrompt(prompt string) Option {
	return func(e *Engine) error {
		if strings.TrimSpace(prompt) != "" {
			e.systemPrompt = prompt
		}
		return nil
	}
}

// WithFallbackAnswer replaces the answer given when nothing is retrieved.
func WithFallbackAnswer(answer string) Option {
	return func(e *Engine) error {
		if strings.TrimSpace(answer) != "" {
			e.fallback = answer
		}
		return nil
	}
}

// WithCondenseQuestion rewrites follow-up questions into standalone ones
// before retrieval. Default is off.
func WithCondenseQuestion(enabled bool) Option {
	return func(e *Engine) error {
		e.condense = enabled
		return nil
	}
}

// WithSearchMonitor observes every retrieval.
func WithSearchMonitor(monitor search.SearchMonitor) Option {
	return func(e *Engine) error {
		e.monitor = monitor
		return nil
	}
}

// WithClock sets the time source for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now != nil {
			e.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a session answering questions from index. The client
// must embed with the model the index was built with.
func NewEngine(index *vectorindex.Index, client *embedding.Client, completer ai.Completer, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}

	e := &Engine{
		completer:    completer,
		topK:         DefaultTopK,
		policy:       retry.DefaultPolicy(),
		systemPrompt: DefaultSystemPrompt,
		fallback:     DefaultFallbackAnswer,
		now:          time.Now,
		sessionID:    uuid.New().String(),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "conversation", "session", e.sessionID)

	searcher, err := search.NewSearcher(index, client, search.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.searcher = searcher
	return e, nil
}

// SessionID identifies this session in logs and transcripts.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Ask answers query using retrieved fragments and the conversation so far.
// The turn is added to memory only when an answer is produced. Concurrent
// calls are answered one at a time in lock order.
func (e *Engine) Ask(ctx context.Context, query string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", core.ErrInvalidQuery)
	}

	e.turn.Lock()
	defer e.turn.Unlock()

	history := e.History()
	retrievalQuery := query
	if e.condense && len(history) > 0 {
		standalone, err := e.complete(ctx, condenseMessages(history, query))
		if err != nil {
			return nil, fmt.Errorf("condense question: %w", err)
		}
		if s := strings.TrimSpace(standalone); s != "" {
			retrievalQuery = s
		}
		e.logger.Debug("question condensed", "query", query, "standalone", retrievalQuery)
	}

	hits, err := e.searcher.FindSimilarWithMonitor(ctx, retrievalQuery, e.topK, e.monitor)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	sources := make([]core.Fragment, len(hits))
	for i, hit := range hits {
		sources[i] = hit.Fragment
	}

	var text string
	if len(sources) == 0 {
		e.logger.Info("no context retrieved, using fallback answer")
		text = e.fallback
	} else {
		text, err = e.complete(ctx, answerMessages(e.systemPrompt, sources, history, query))
		if err != nil {
			return nil, fmt.Errorf("complete answer: %w", err)
		}
	}

	e.mu.Lock()
	e.memory = append(e.memory, core.ConversationTurn{
		UserQuery: query,
		Answer:    text,
		Sources:   sources,
		Timestamp: e.now(),
	})
	e.mu.Unlock()

	e.logger.Debug("question answered", "sources", len(sources), "turns", len(history)+1)
	return &Answer{Text: text, Sources: sources}, nil
}

func (e *Engine) complete(ctx context.Context, messages []ai.Message) (string, error) {
	var out string
	err := e.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = e.completer.Complete(ctx, messages)
		return err
	})
	return out, err
}

// History returns a copy of the turns so far, oldest first.
func (e *Engine) History() []core.ConversationTurn {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := make([]core.ConversationTurn, len(e.memory))
	copy(history, e.memory)
	return history
}

// Reset clears the conversation memory.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memory = nil
}

// State reports whether the session has any turns.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.memory) == 0 {
		return StateEmpty
	}
	return StateActive
}

// Transcript renders the conversation as "User:"/"Assistant:" pairs
// separated by blank lines.
func (e *Engine) Transcript() string {
	var b strings.Builder
	for _, turn := range e.History() {
		b.WriteString("User: ")
		b.WriteString(turn.UserQuery)
		b.WriteString("\nAssistant: ")
		b.WriteString(turn.Answer)
		b.WriteString("\n\n")
	}
	return b.String()
}
