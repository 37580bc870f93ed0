// Package planner converts one user utterance into a validated Plan.
// Two variants exist: single-shot structured output, and an iterative
// function-calling loop that reconsults the model after tool results.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
)

// Structured is the single-shot planner: one model call commits to the
// whole plan before anything executes.
type Structured struct {
	run func(ctx context.Context, input map[string]any) (plannerLLMOutput, error)
}

var _ contractx.Planner = (*Structured)(nil)

func NewStructured(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Structured, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: structured planner prompt", contractx.ErrPromptMissing)
	}

	runner, err := compileStructuredLLMGraph[plannerLLMOutput](ctx, chatModel, systemPrompt, "planner.structured_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile structured planner graph: %v", contractx.ErrModelInvoke, err)
	}

	return &Structured{
		run: func(ctx context.Context, input map[string]any) (plannerLLMOutput, error) {
			return runner.Invoke(ctx, input)
		},
	}, nil
}

// Plan maps the request to a Plan. Model failures and off-shape output
// degrade to the fallback plan instead of failing the turn; the returned
// error is reserved for an invalid request.
func (p *Structured) Plan(ctx context.Context, req contractx.PlanRequest) (contractx.Plan, error) {
	if strings.TrimSpace(req.Message) == "" {
		return contractx.Plan{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message": req.Message,
		"history":      req.History,
		"current_date": req.Now.Format("2006-01-02"),
		"listings":     req.ListingsContext,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.Plan{}, fmt.Errorf("%w: marshal planner payload: %v", contractx.ErrValidation, err)
	}

	out, err := p.run(ctx, map[string]any{"input": string(inputBytes)})
	if err != nil {
		log.Warn().Err(err).Msg("planner invoke failed, using fallback plan")
		return Fallback(fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)), nil
	}

	plan, err := buildPlan(out)
	if err != nil {
		log.Warn().Err(err).Msg("planner output rejected, using fallback plan")
		return Fallback(err), nil
	}
	return plan, nil
}

// Fallback is the fixed degraded plan: general chat, no tools, an
// apology carrying the error detail. It must never fail itself.
func Fallback(err error) contractx.Plan {
	detail := "알 수 없는 오류"
	if err != nil {
		detail = err.Error()
	}
	return contractx.Plan{
		Intent:           contractx.IntentGeneralChat,
		Reasoning:        fmt.Sprintf("에러 발생: %s", detail),
		ToolCalls:        nil,
		ResponseText:     fmt.Sprintf("죄송합니다. 요청을 처리하는 중 오류가 발생했습니다: %s", detail),
		SuggestedActions: []contractx.SuggestedAction{},
	}
}
