package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
)

// plannerLLMOutput is the raw JSON shape the structured planner asks the
// model for.
type plannerLLMOutput struct {
	Intent           string                      `json:"intent"`
	Reasoning        string                      `json:"reasoning"`
	Tools            []rawToolCall               `json:"tools_to_execute"`
	ResponseText     string                      `json:"response_text"`
	SuggestedActions []contractx.SuggestedAction `json:"suggested_actions"`
}

type rawToolCall struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
}

// buildPlan validates the raw model output and lifts it into the typed
// Plan: closed intent, typed tool calls, derived bindings, capped
// suggestions. Anything off-shape is a schema violation; the caller
// decides whether that degrades to the fallback plan.
func buildPlan(out plannerLLMOutput) (contractx.Plan, error) {
	intent := contractx.Intent(strings.TrimSpace(out.Intent))
	if !intent.Valid() {
		return contractx.Plan{}, fmt.Errorf("%w: unsupported intent=%q", contractx.ErrSchemaViolation, out.Intent)
	}

	if strings.TrimSpace(out.ResponseText) == "" {
		return contractx.Plan{}, fmt.Errorf("%w: response_text is empty", contractx.ErrSchemaViolation)
	}

	calls := make([]contractx.ToolCall, 0, len(out.Tools))
	for i, raw := range out.Tools {
		call, err := decodeToolCall(raw.Name, raw.Params)
		if err != nil {
			return contractx.Plan{}, fmt.Errorf("tool call %d: %w", i, err)
		}
		calls = append(calls, call)
	}

	actions := out.SuggestedActions
	if len(actions) > contractx.MaxSuggestedActions {
		actions = actions[:contractx.MaxSuggestedActions]
	}
	if actions == nil {
		actions = []contractx.SuggestedAction{}
	}

	return contractx.Plan{
		Intent:           intent,
		Reasoning:        strings.TrimSpace(out.Reasoning),
		ToolCalls:        calls,
		ResponseText:     strings.TrimSpace(out.ResponseText),
		SuggestedActions: actions,
		Bindings:         deriveBindings(calls),
	}, nil
}

// decodeToolCall turns one (name, params-JSON) pair into a typed call.
// Required keys must be present; listing_id may be JSON null, which marks
// an injection slot for the executor.
func decodeToolCall(name string, raw json.RawMessage) (contractx.ToolCall, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return contractx.ToolCall{}, fmt.Errorf("%w: invalid params for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
	}

	toolName := contractx.ToolName(strings.TrimSpace(name))
	switch toolName {
	case contractx.ToolQueryListings:
		var p contractx.QueryListingsParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return contractx.ToolCall{}, decodeErr(toolName, err)
		}
		return contractx.ToolCall{Name: toolName, Query: &p}, nil

	case contractx.ToolAdjustPrice:
		if err := requireKeys(toolName, keys, "listing_id", "new_price"); err != nil {
			return contractx.ToolCall{}, err
		}
		var p contractx.AdjustPriceParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return contractx.ToolCall{}, decodeErr(toolName, err)
		}
		return contractx.ToolCall{Name: toolName, AdjustPrice: &p}, nil

	case contractx.ToolBoostListing:
		if err := requireKeys(toolName, keys, "listing_id"); err != nil {
			return contractx.ToolCall{}, err
		}
		var p contractx.BoostListingParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return contractx.ToolCall{}, decodeErr(toolName, err)
		}
		return contractx.ToolCall{Name: toolName, Boost: &p}, nil

	case contractx.ToolUpdateContent:
		if err := requireKeys(toolName, keys, "listing_id"); err != nil {
			return contractx.ToolCall{}, err
		}
		var p contractx.UpdateContentParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return contractx.ToolCall{}, decodeErr(toolName, err)
		}
		return contractx.ToolCall{Name: toolName, UpdateContent: &p}, nil

	case contractx.ToolGetMarketInsights:
		if err := requireKeys(toolName, keys, "category", "region"); err != nil {
			return contractx.ToolCall{}, err
		}
		var p contractx.MarketInsightsParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return contractx.ToolCall{}, decodeErr(toolName, err)
		}
		return contractx.ToolCall{Name: toolName, Insights: &p}, nil
	}

	return contractx.ToolCall{}, fmt.Errorf("%w: unknown tool=%q", contractx.ErrSchemaViolation, name)
}

func requireKeys(tool contractx.ToolName, keys map[string]json.RawMessage, required ...string) error {
	for _, k := range required {
		if _, ok := keys[k]; !ok {
			return fmt.Errorf("%w: tool=%s missing required param %q", contractx.ErrSchemaViolation, tool, k)
		}
	}
	return nil
}

func decodeErr(tool contractx.ToolName, err error) error {
	return fmt.Errorf("%w: decode params for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
}

// deriveBindings declares the query→next-call id dependency explicitly
// on the plan: when a query is immediately followed by a call whose
// listing_id slot is open, the executor fills it from the first query
// result. One step of lookahead, nothing more.
func deriveBindings(calls []contractx.ToolCall) []contractx.Binding {
	var bindings []contractx.Binding
	for i := 0; i+1 < len(calls); i++ {
		if calls[i].Name != contractx.ToolQueryListings {
			continue
		}
		next := calls[i+1]
		if id, ok := next.ListingID(); ok && id == nil {
			bindings = append(bindings, contractx.Binding{
				SourceCall:  i,
				TargetCall:  i + 1,
				TargetParam: contractx.BindingParamListingID,
			})
		}
	}
	return bindings
}
