// Package chat orchestrates one user turn end to end: context loading,
// planning, execution, and payload assembly.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	"github.com/jolmarket/listing-agent/listing"
)

// Mode selects how a turn is planned.
type Mode string

const (
	// ModePlan commits to a full plan in one model call, then executes it.
	ModePlan Mode = "plan"
	// ModeToolLoop interleaves model rounds with tool execution.
	ModeToolLoop Mode = "tool_loop"
)

func (m Mode) Valid() bool {
	return m == ModePlan || m == ModeToolLoop
}

type Service struct {
	store   listing.Store
	planner contractx.Planner
	loop    contractx.ToolLoopPlanner
	exec    contractx.Executor
	mode    Mode
	now     func() time.Time

	run compose.Runnable[TurnRequest, contractx.ChatResult]
}

type Option func(*Service)

// WithClock overrides the service clock. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(
	ctx context.Context,
	store listing.Store,
	planner contractx.Planner,
	loop contractx.ToolLoopPlanner,
	exec contractx.Executor,
	mode Mode,
	opts ...Option,
) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: listing store is required", contractx.ErrValidation)
	}
	if exec == nil {
		return nil, fmt.Errorf("%w: executor is required", contractx.ErrValidation)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown chat mode %q", contractx.ErrValidation, mode)
	}
	if mode == ModePlan && planner == nil {
		return nil, fmt.Errorf("%w: planner is required in plan mode", contractx.ErrValidation)
	}
	if mode == ModeToolLoop && loop == nil {
		return nil, fmt.Errorf("%w: tool loop planner is required in tool_loop mode", contractx.ErrValidation)
	}

	s := &Service{
		store:   store,
		planner: planner,
		loop:    loop,
		exec:    exec,
		mode:    mode,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	runner, err := s.compileTurnGraph(ctx)
	if err != nil {
		return nil, err
	}
	s.run = runner
	return s, nil
}

// HandleMessage processes one user turn. The only errors it returns are
// request-shape problems; planner degradation has already happened below
// this layer, so a reachable model is not required for a turn to finish.
func (s *Service) HandleMessage(ctx context.Context, message string, history []contractx.Turn) (contractx.ChatResult, error) {
	start := s.now()
	result, err := s.run.Invoke(ctx, TurnRequest{Message: message, History: history})
	if err != nil {
		return contractx.ChatResult{}, err
	}

	log.Info().
		Str("intent", string(result.Intent)).
		Int("actions", len(result.ActionsTaken)).
		Dur("took", time.Since(start)).
		Msg("chat turn completed")
	return result, nil
}
