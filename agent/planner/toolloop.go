package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	toolx "github.com/jolmarket/listing-agent/agent/tool"
)

// DefaultMaxRounds bounds the reconsultation loop so an oscillating
// model cannot keep a turn alive forever.
const DefaultMaxRounds = 5

// ToolLoop is the function-calling planner variant: it lets the model
// request tool calls, executes each batch through the gateway, feeds the
// results back, and repeats until the model stops calling tools or the
// round cap is hit.
type ToolLoop struct {
	model        einomodel.ToolCallingChatModel
	gateway      contractx.ToolGateway
	systemPrompt string
	maxRounds    int
}

var _ contractx.ToolLoopPlanner = (*ToolLoop)(nil)

type ToolLoopOption func(*ToolLoop)

func WithMaxRounds(n int) ToolLoopOption {
	return func(t *ToolLoop) {
		if n > 0 {
			t.maxRounds = n
		}
	}
}

func NewToolLoop(
	chatModel einomodel.ToolCallingChatModel,
	gateway contractx.ToolGateway,
	systemPrompt string,
	opts ...ToolLoopOption,
) (*ToolLoop, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: tool loop prompt", contractx.ErrPromptMissing)
	}
	if gateway == nil {
		return nil, fmt.Errorf("%w: tool gateway is required", contractx.ErrValidation)
	}

	bound, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tool catalog: %v", contractx.ErrModelInvoke, err)
	}

	t := &ToolLoop{
		model:        bound,
		gateway:      gateway,
		systemPrompt: systemPrompt,
		maxRounds:    DefaultMaxRounds,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// Converse runs the bounded plan/execute loop for one turn. Tool calls
// already executed stand even when a later model round fails; in that
// case the reply degrades to the fallback apology.
func (t *ToolLoop) Converse(ctx context.Context, req contractx.PlanRequest) (contractx.Plan, contractx.Execution, error) {
	exec := contractx.Execution{
		Results:         []contractx.ActionResult{},
		ExecutedTools:   []contractx.ToolName{},
		UpdatedListings: []int64{},
	}

	if strings.TrimSpace(req.Message) == "" {
		return contractx.Plan{}, exec, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	msgs := t.openingMessages(req)
	seen := map[int64]struct{}{}
	finalText := ""

	for round := 0; round < t.maxRounds; round++ {
		msg, err := t.model.Generate(ctx, msgs)
		if err != nil {
			log.Warn().Err(err).Int("round", round).Msg("tool loop invoke failed, using fallback plan")
			exec.Success = len(exec.Results) > 0
			return Fallback(fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)), exec, nil
		}

		if len(msg.ToolCalls) == 0 {
			finalText = strings.TrimSpace(msg.Content)
			break
		}

		msgs = append(msgs, msg)
		for _, tc := range msg.ToolCalls {
			result := t.runModelCall(ctx, tc)
			exec.Results = append(exec.Results, result)
			exec.ExecutedTools = append(exec.ExecutedTools, result.Tool)
			if result.Result.Success && result.Result.ListingID != 0 {
				if _, dup := seen[result.Result.ListingID]; !dup {
					seen[result.Result.ListingID] = struct{}{}
					exec.UpdatedListings = append(exec.UpdatedListings, result.Result.ListingID)
				}
			}
			msgs = append(msgs, toolResponseMessage(tc.ID, result.Result))
		}
	}

	if finalText == "" {
		finalText = "처리 완료"
	}

	exec.Success = len(exec.Results) > 0
	plan := contractx.Plan{
		Intent:           intentFromExecution(exec),
		Reasoning:        "함수 호출로 자동 처리되었습니다.",
		ResponseText:     finalText,
		SuggestedActions: []contractx.SuggestedAction{},
	}
	return plan, exec, nil
}

func (t *ToolLoop) openingMessages(req contractx.PlanRequest) []*schema.Message {
	system := t.systemPrompt
	if ctxBlock := strings.TrimSpace(req.ListingsContext); ctxBlock != "" {
		system += "\n\n[현재 매물 목록]\n" + ctxBlock
	}
	system += "\n\n[현재 날짜]\n" + req.Now.Format("2006-01-02")

	msgs := []*schema.Message{schema.SystemMessage(system)}
	for _, turn := range req.History {
		switch turn.Role {
		case contractx.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		}
	}
	return append(msgs, schema.UserMessage(req.Message))
}

// runModelCall decodes one model-emitted call and executes it. A call
// that fails to decode becomes a failed envelope rather than an error:
// the model sees its own mistake and can correct course next round.
func (t *ToolLoop) runModelCall(ctx context.Context, tc schema.ToolCall) contractx.ActionResult {
	name := strings.TrimSpace(tc.Function.Name)
	call, err := decodeToolCall(name, json.RawMessage(tc.Function.Arguments))
	if err != nil {
		return contractx.ActionResult{
			Tool:   contractx.ToolName(name),
			Params: map[string]any{},
			Result: contractx.ToolResult{
				Success: false,
				Message: fmt.Sprintf("Tool 파라미터 오류: %v", err),
			},
		}
	}
	return t.gateway.ExecuteCalls(ctx, []contractx.ToolCall{call})[0]
}

func toolResponseMessage(callID string, res contractx.ToolResult) *schema.Message {
	payload, err := json.Marshal(map[string]any{"result": res})
	if err != nil {
		payload = []byte(`{"result":{"success":false,"message":"internal marshal error"}}`)
	}
	return schema.ToolMessage(string(payload), callID)
}

// intentFromExecution classifies the turn by the first tool that ran;
// the function-calling mode has no model-declared intent label.
func intentFromExecution(exec contractx.Execution) contractx.Intent {
	if len(exec.ExecutedTools) == 0 {
		return contractx.IntentGeneralChat
	}
	switch exec.ExecutedTools[0] {
	case contractx.ToolQueryListings:
		return contractx.IntentQueryListings
	case contractx.ToolAdjustPrice:
		return contractx.IntentAdjustPrice
	case contractx.ToolBoostListing:
		return contractx.IntentBoostListing
	case contractx.ToolUpdateContent:
		return contractx.IntentUpdateContent
	case contractx.ToolGetMarketInsights:
		return contractx.IntentGetInsights
	default:
		return contractx.IntentGeneralChat
	}
}
