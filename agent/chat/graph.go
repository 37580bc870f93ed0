package chat

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
)

// compileTurnGraph wires one user turn: validate and load context, then
// branch on the configured planning mode, then out.
func (s *Service) compileTurnGraph(ctx context.Context) (compose.Runnable[TurnRequest, contractx.ChatResult], error) {
	graph := compose.NewGraph[TurnRequest, contractx.ChatResult]()

	if err := graph.AddLambdaNode("validate_and_prepare",
		compose.InvokableLambda(s.validateAndPrepare),
	); err != nil {
		return nil, fmt.Errorf("add turn validate node: %w", err)
	}

	if err := graph.AddLambdaNode("plan_path",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (contractx.ChatResult, error) {
			if in == nil {
				return contractx.ChatResult{}, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			return s.planAndExecute(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add turn plan node: %w", err)
	}

	if err := graph.AddLambdaNode("loop_path",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (contractx.ChatResult, error) {
			if in == nil {
				return contractx.ChatResult{}, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			return s.converse(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add turn loop node: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *turnState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			if s.mode == ModeToolLoop {
				return "loop_path", nil
			}
			return "plan_path", nil
		},
		map[string]bool{
			"plan_path": true,
			"loop_path": true,
		},
	)

	if err := graph.AddBranch("validate_and_prepare", branch); err != nil {
		return nil, fmt.Errorf("add turn branch: %w", err)
	}
	if err := graph.AddEdge(compose.START, "validate_and_prepare"); err != nil {
		return nil, fmt.Errorf("add turn edge start->validate: %w", err)
	}
	if err := graph.AddEdge("plan_path", compose.END); err != nil {
		return nil, fmt.Errorf("add turn edge plan->end: %w", err)
	}
	if err := graph.AddEdge("loop_path", compose.END); err != nil {
		return nil, fmt.Errorf("add turn edge loop->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("chat.turn_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
