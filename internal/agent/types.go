package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bowerhall/rene/internal/assistant"
	"github.com/bowerhall/rene/internal/emotion"
	"github.com/bowerhall/rene/internal/guard"
	"github.com/bowerhall/rene/internal/ratelimit"
	"github.com/bowerhall/rene/internal/session"
)

var (
	ErrRateLimited = errors.New("rate limited")
	ErrNoReply     = errors.New("no assistant reply")
	ErrRunTimeout  = errors.New("run timed out")
)

// RunFailedError carries the terminal status a remote run ended in,
// plus the engine-provided reason when there is one.
type RunFailedError struct {
	Status string
	Reason string
}

func (e *RunFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("run %s", e.Status)
	}
	return fmt.Sprintf("run %s: %s", e.Status, e.Reason)
}

// Engine is the remote reasoning engine, reduced to the operations the
// orchestrator drives.
type Engine interface {
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, role, content string) error
	CreateRun(ctx context.Context, threadID, assistantID string) (*assistant.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*assistant.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []assistant.ToolOutput) error
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}

// Scorer produces an emotion vector for a piece of text.
type Scorer interface {
	Score(ctx context.Context, text string) (emotion.Vector, string, error)
}

// Dispatcher answers a batch of tool calls.
type Dispatcher interface {
	Dispatch(ctx context.Context, calls []assistant.ToolCall) []assistant.ToolOutput
}

type Agent struct {
	engine       Engine
	assistantID  string
	limiter      *ratelimit.Limiter
	guard        *guard.Guard
	sessions     *session.Store
	scorer       Scorer
	dispatcher   Dispatcher
	pollInterval time.Duration
	maxPolls     int
}

type Config struct {
	Engine      Engine
	AssistantID string
	Limiter     *ratelimit.Limiter
	Guard       *guard.Guard
	Sessions    *session.Store
	Scorer      Scorer
	Dispatcher  Dispatcher

	PollInterval time.Duration // default 1s
	MaxPolls     int           // default 60
}

// Reply is what the speech synthesizer consumes: the final text and
// the blended emotion vector.
type Reply struct {
	Text      string
	Emotions  emotion.Vector
	Deflected bool
}
