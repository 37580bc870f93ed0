// Package executor runs planned tool calls in order against the tool
// registry. It owns the one cross-call data dependency in the system:
// threading a queried listing id into the following call.
package executor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
)

type Executor struct {
	tools contractx.ToolRunner
}

func New(tools contractx.ToolRunner) *Executor {
	return &Executor{tools: tools}
}

var (
	_ contractx.Executor    = (*Executor)(nil)
	_ contractx.ToolGateway = (*Executor)(nil)
)

// Execute runs the plan's calls strictly in order. Bindings are applied
// just before their target call runs; a failed or empty source simply
// leaves the slot unfilled and the target fails in its own envelope.
// There is no rollback: earlier effects stand even when later calls fail.
func (e *Executor) Execute(ctx context.Context, plan contractx.Plan) contractx.Execution {
	calls := make([]contractx.ToolCall, len(plan.ToolCalls))
	for i, c := range plan.ToolCalls {
		calls[i] = cloneCall(c)
	}

	exec := contractx.Execution{
		Results:         make([]contractx.ActionResult, 0, len(calls)),
		ExecutedTools:   make([]contractx.ToolName, 0, len(calls)),
		UpdatedListings: []int64{},
	}
	seen := map[int64]struct{}{}

	for i := range calls {
		applyBindings(plan.Bindings, exec.Results, &calls[i], i)

		res := e.runIsolated(ctx, calls[i])
		exec.Results = append(exec.Results, contractx.ActionResult{
			Tool:   calls[i].Name,
			Params: calls[i].Args(),
			Result: res,
		})
		exec.ExecutedTools = append(exec.ExecutedTools, calls[i].Name)

		if res.Success && res.ListingID != 0 {
			if _, dup := seen[res.ListingID]; !dup {
				seen[res.ListingID] = struct{}{}
				exec.UpdatedListings = append(exec.UpdatedListings, res.ListingID)
			}
		}
	}

	exec.Success = len(exec.Results) > 0
	return exec
}

// ExecuteCalls runs a batch without plan bindings; the iterative planner
// supplies concrete ids itself.
func (e *Executor) ExecuteCalls(ctx context.Context, calls []contractx.ToolCall) []contractx.ActionResult {
	results := make([]contractx.ActionResult, 0, len(calls))
	for _, call := range calls {
		res := e.runIsolated(ctx, call)
		results = append(results, contractx.ActionResult{
			Tool:   call.Name,
			Params: call.Args(),
			Result: res,
		})
	}
	return results
}

// runIsolated converts a panicking tool into a failed envelope so one bad
// call cannot take down the rest of the plan.
func (e *Executor) runIsolated(ctx context.Context, call contractx.ToolCall) (res contractx.ToolResult) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("tool", string(call.Name)).Interface("panic", p).Msg("tool call panicked")
			res = contractx.ToolResult{
				Success: false,
				Message: fmt.Sprintf("Tool 실행 오류: %v", p),
			}
		}
	}()
	return e.tools.Run(ctx, call)
}

func applyBindings(bindings []contractx.Binding, done []contractx.ActionResult, target *contractx.ToolCall, idx int) {
	for _, b := range bindings {
		if b.TargetCall != idx || b.TargetParam != contractx.BindingParamListingID {
			continue
		}
		if b.SourceCall < 0 || b.SourceCall >= len(done) {
			continue
		}
		src := done[b.SourceCall].Result
		if !src.Success || len(src.Listings) == 0 {
			continue
		}
		// Only fill a slot the planner left open.
		if id, ok := target.ListingID(); ok && id == nil {
			target.SetListingID(src.Listings[0].ID)
		}
	}
}

func cloneCall(c contractx.ToolCall) contractx.ToolCall {
	out := contractx.ToolCall{Name: c.Name}
	if c.Query != nil {
		q := *c.Query
		out.Query = &q
	}
	if c.AdjustPrice != nil {
		p := *c.AdjustPrice
		out.AdjustPrice = &p
	}
	if c.Boost != nil {
		b := *c.Boost
		out.Boost = &b
	}
	if c.UpdateContent != nil {
		u := *c.UpdateContent
		out.UpdateContent = &u
	}
	if c.Insights != nil {
		in := *c.Insights
		out.Insights = &in
	}
	return out
}
