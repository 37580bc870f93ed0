package contract

import "context"

// Planner maps one user turn to a Plan. Implementations degrade to the
// fixed fallback plan when the reasoning service misbehaves; a turn never
// fails outright because of the model.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (Plan, error)
}

// ToolRunner dispatches a single validated tool call and always returns
// an envelope.
type ToolRunner interface {
	Run(ctx context.Context, call ToolCall) ToolResult
}

// ToolGateway executes a batch of calls in order with per-call isolation.
// The iterative planner feeds each round of model tool calls through it.
type ToolGateway interface {
	ExecuteCalls(ctx context.Context, calls []ToolCall) []ActionResult
}

// Executor runs a full plan, applying its bindings.
type Executor interface {
	Execute(ctx context.Context, plan Plan) Execution
}

// ToolLoopPlanner is the iterative function-calling variant: planning and
// execution interleave for up to a bounded number of rounds, so it
// returns both the plan-shaped outcome and what actually ran.
type ToolLoopPlanner interface {
	Converse(ctx context.Context, req PlanRequest) (Plan, Execution, error)
}
