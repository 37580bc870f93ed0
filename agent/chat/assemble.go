package chat

import (
	contractx "github.com/jolmarket/listing-agent/agent/contract"
)

// assemble merges a plan and its execution into the turn payload.
// Pure projection; no business logic happens here.
func assemble(plan contractx.Plan, exec contractx.Execution) contractx.ChatResult {
	results := exec.Results
	if results == nil {
		results = []contractx.ActionResult{}
	}
	updated := exec.UpdatedListings
	if updated == nil {
		updated = []int64{}
	}
	suggestions := plan.SuggestedActions
	if suggestions == nil {
		suggestions = []contractx.SuggestedAction{}
	}

	return contractx.ChatResult{
		Intent:           plan.Intent,
		Response:         plan.ResponseText,
		Reasoning:        plan.Reasoning,
		ActionsTaken:     results,
		SuggestedActions: suggestions,
		UpdatedListings:  updated,
	}
}
