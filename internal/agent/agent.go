// Package agent orchestrates one conversational turn: admission,
// injection guard, session binding, the remote run state machine and
// the final emotion blend.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/bowerhall/rene/internal/assistant"
	"github.com/bowerhall/rene/internal/emotion"
	"github.com/bowerhall/rene/internal/logger"
)

func New(cfg Config) *Agent {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	maxPolls := cfg.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 60
	}

	return &Agent{
		engine:       cfg.Engine,
		assistantID:  cfg.AssistantID,
		limiter:      cfg.Limiter,
		guard:        cfg.Guard,
		sessions:     cfg.Sessions,
		scorer:       cfg.Scorer,
		dispatcher:   cfg.Dispatcher,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

// Process handles one user message end to end and returns the reply
// text with its blended emotion vector.
func (a *Agent) Process(ctx context.Context, userID, message string) (*Reply, error) {
	if !a.limiter.Allow(userID) {
		return nil, ErrRateLimited
	}

	if a.guard.Check(message) {
		a.guard.Record(userID, message)
		logger.Warn("injection attempt deflected", "user", userID)

		// canned reply, neutral voice; the session and engine are
		// never touched
		return &Reply{
			Text:      a.guard.SafeReply(),
			Emotions:  emotion.Neutral(),
			Deflected: true,
		}, nil
	}

	userVec := a.scoreUserMessage(ctx, message)

	threadID, err := a.sessions.GetOrCreate(ctx, userID, a.engine.CreateThread)
	if err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	logger.Debug("session bound", "user", userID, "thread", threadID)

	if err := a.engine.AddMessage(ctx, threadID, "user", message); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	run, err := a.engine.CreateRun(ctx, threadID, a.assistantID)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	if err := a.driveRun(ctx, threadID, run.ID); err != nil {
		return nil, err
	}

	reply, err := a.engine.LatestAssistantMessage(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("fetch reply: %w", err)
	}
	if reply == "" {
		return nil, ErrNoReply
	}

	final := a.blendEmotions(ctx, userVec, reply)

	label, score := final.Dominant()
	logger.Debug("reply ready", "user", userID, "chars", len(reply), "emotion", label, "score", score)

	return &Reply{Text: reply, Emotions: final}, nil
}

// driveRun polls the run once per tick until it reaches a terminal
// state. The budget counts iterations, not wall-clock time, so slow
// remote calls can stretch the true timeout past the nominal one.
func (a *Agent) driveRun(ctx context.Context, threadID, runID string) error {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for polls := 0; polls < a.maxPolls; polls++ {
		run, err := a.engine.GetRun(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("poll run: %w", err)
		}
		logger.Debug("run status", "run", runID, "status", run.Status)

		switch run.Status {
		case assistant.StatusCompleted:
			return nil

		case assistant.StatusFailed, assistant.StatusCancelled, assistant.StatusExpired:
			failure := &RunFailedError{Status: run.Status}
			if run.LastError != nil {
				failure.Reason = run.LastError.Message
			}
			return failure

		case assistant.StatusRequiresAction:
			logger.Debug("run requires action", "run", runID, "tools", len(run.ToolCalls))
			outputs := a.dispatcher.Dispatch(ctx, run.ToolCalls)
			if err := a.engine.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
				return fmt.Errorf("submit tool outputs: %w", err)
			}
			// poll again right away, the engine is already working
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return ErrRunTimeout
}

func (a *Agent) scoreUserMessage(ctx context.Context, message string) emotion.Vector {
	vec, label, err := a.scorer.Score(ctx, message)
	if err != nil {
		logger.Warn("user emotion scoring failed, using neutral", "error", err)
		return emotion.Neutral()
	}

	logger.Debug("user emotion scored", "emotion", label)
	return vec
}

// blendEmotions scores the assistant reply and mixes it with the user
// vector. If scoring fails the user vector rides alone.
func (a *Agent) blendEmotions(ctx context.Context, userVec emotion.Vector, reply string) emotion.Vector {
	assistantVec, label, err := a.scorer.Score(ctx, reply)
	if err != nil {
		logger.Warn("assistant emotion scoring failed, using user vector", "error", err)
		return userVec
	}

	logger.Debug("assistant emotion scored", "emotion", label)
	return emotion.Blend(userVec, assistantVec)
}
