package contract

import (
	"encoding/json"
	"time"

	"github.com/jolmarket/listing-agent/listing"
	"github.com/jolmarket/listing-agent/market"
)

type Intent string

const (
	IntentQueryListings Intent = "QUERY_LISTINGS"
	IntentAdjustPrice   Intent = "ADJUST_PRICE"
	IntentBoostListing  Intent = "BOOST_LISTING"
	IntentUpdateContent Intent = "UPDATE_CONTENT"
	IntentGetInsights   Intent = "GET_INSIGHTS"
	IntentGeneralChat   Intent = "GENERAL_CHAT"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentQueryListings, IntentAdjustPrice, IntentBoostListing,
		IntentUpdateContent, IntentGetInsights, IntentGeneralChat:
		return true
	}
	return false
}

type ToolName string

const (
	ToolQueryListings     ToolName = "query_listings"
	ToolAdjustPrice       ToolName = "adjust_price"
	ToolBoostListing      ToolName = "boost_listing"
	ToolUpdateContent     ToolName = "update_content"
	ToolGetMarketInsights ToolName = "get_market_insights"
)

// ToolNames lists the closed catalog in a stable order.
var ToolNames = []ToolName{
	ToolQueryListings,
	ToolAdjustPrice,
	ToolBoostListing,
	ToolUpdateContent,
	ToolGetMarketInsights,
}

// QueryListingsParams keeps the original wire keys so the model-facing
// schema and the typed form stay in sync.
type QueryListingsParams struct {
	RecencyWindowDays *int   `json:"days_ago,omitempty"`
	ExactDayOffset    *int   `json:"exact_day_ago,omitempty"`
	Category          string `json:"category,omitempty"`
	Region            string `json:"region,omitempty"`
	Status            string `json:"status,omitempty"`
	SortBy            string `json:"sort_by,omitempty"`
	SortOrder         string `json:"sort_order,omitempty"`
}

// AdjustPriceParams; a nil ListingID is a declared injection slot filled
// from an earlier query result, not a missing parameter.
type AdjustPriceParams struct {
	ListingID *int64 `json:"listing_id"`
	NewPrice  int64  `json:"new_price"`
}

type BoostListingParams struct {
	ListingID *int64 `json:"listing_id"`
}

type UpdateContentParams struct {
	ListingID *int64  `json:"listing_id"`
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
}

type MarketInsightsParams struct {
	Category string `json:"category"`
	Region   string `json:"region"`
}

// ToolCall is a tagged union over the tool catalog: Name selects which of
// the typed param fields is set. Validation happens at the plan boundary,
// not inside tool bodies.
type ToolCall struct {
	Name          ToolName              `json:"name"`
	Query         *QueryListingsParams  `json:"query,omitempty"`
	AdjustPrice   *AdjustPriceParams    `json:"adjust_price,omitempty"`
	Boost         *BoostListingParams   `json:"boost,omitempty"`
	UpdateContent *UpdateContentParams  `json:"update_content,omitempty"`
	Insights      *MarketInsightsParams `json:"insights,omitempty"`
}

// Args flattens the active param variant into a key-value map for the
// user-facing payload.
func (c ToolCall) Args() map[string]any {
	var v any
	switch c.Name {
	case ToolQueryListings:
		v = c.Query
	case ToolAdjustPrice:
		v = c.AdjustPrice
	case ToolBoostListing:
		v = c.Boost
	case ToolUpdateContent:
		v = c.UpdateContent
	case ToolGetMarketInsights:
		v = c.Insights
	}
	out := map[string]any{}
	if v == nil {
		return out
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// ListingID returns the call's listing id slot, if the tool has one.
func (c ToolCall) ListingID() (*int64, bool) {
	switch c.Name {
	case ToolAdjustPrice:
		if c.AdjustPrice != nil {
			return c.AdjustPrice.ListingID, true
		}
	case ToolBoostListing:
		if c.Boost != nil {
			return c.Boost.ListingID, true
		}
	case ToolUpdateContent:
		if c.UpdateContent != nil {
			return c.UpdateContent.ListingID, true
		}
	}
	return nil, false
}

// SetListingID fills the call's listing id slot. Reports whether the call
// has such a slot.
func (c *ToolCall) SetListingID(id int64) bool {
	switch c.Name {
	case ToolAdjustPrice:
		if c.AdjustPrice != nil {
			c.AdjustPrice.ListingID = &id
			return true
		}
	case ToolBoostListing:
		if c.Boost != nil {
			c.Boost.ListingID = &id
			return true
		}
	case ToolUpdateContent:
		if c.UpdateContent != nil {
			c.UpdateContent.ListingID = &id
			return true
		}
	}
	return false
}

// Binding declares the one cross-call data dependency the planner may
// emit: the first listing id of SourceCall's query result fills
// TargetParam of TargetCall before it runs.
type Binding struct {
	SourceCall  int    `json:"source_call"`
	TargetCall  int    `json:"target_call"`
	TargetParam string `json:"target_param"`
}

const BindingParamListingID = "listing_id"

// MaxSuggestedActions caps follow-up suggestions per turn.
const MaxSuggestedActions = 3

type SuggestedAction struct {
	Label  string         `json:"label"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// Plan is the planner's output for one user turn. Ephemeral; nothing in
// it is persisted.
type Plan struct {
	Intent           Intent            `json:"intent"`
	Reasoning        string            `json:"reasoning"`
	ToolCalls        []ToolCall        `json:"tool_calls"`
	ResponseText     string            `json:"response_text"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	Bindings         []Binding         `json:"bindings,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior conversation message. The caller owns the history;
// the agent treats it as opaque context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PlanRequest is everything a planner may consult. Planners are pure
// functions of this input; side effects happen in the executor.
type PlanRequest struct {
	Message         string
	History         []Turn
	ListingsContext string
	Now             time.Time
}

// ToolResult is the uniform result envelope. Expected business failures
// (not found, cooldown, invalid price) travel here with Success=false;
// they are never raised as errors past the tool boundary.
type ToolResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`

	Listings []listing.Listing `json:"listings,omitempty"`
	Count    int               `json:"count,omitempty"`

	ListingID    int64  `json:"listing_id,omitempty"`
	ListingTitle string `json:"listing_title,omitempty"`

	OldPrice      int64   `json:"old_price,omitempty"`
	NewPrice      int64   `json:"new_price,omitempty"`
	ChangeAmount  int64   `json:"change_amount,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`

	BoostedAt      string  `json:"boosted_at,omitempty"`
	BoostCount     int     `json:"boost_count,omitempty"`
	HoursRemaining float64 `json:"hours_remaining,omitempty"`

	UpdatedFields []string `json:"updated_fields,omitempty"`

	Category string          `json:"category,omitempty"`
	Region   string          `json:"region,omitempty"`
	Insight  *market.Insight `json:"insight,omitempty"`
}

// ActionResult records one executed call: the tool, the params as
// actually used (after binding injection), and its envelope.
type ActionResult struct {
	Tool   ToolName       `json:"tool"`
	Params map[string]any `json:"params"`
	Result ToolResult     `json:"result"`
}

// Execution aggregates one plan's run. Success means at least one call
// ran; individual failures stay in their envelopes.
type Execution struct {
	Success         bool           `json:"success"`
	Results         []ActionResult `json:"results"`
	ExecutedTools   []ToolName     `json:"executed_tools"`
	UpdatedListings []int64        `json:"updated_listings"`
}

// ChatResult is the assembled payload for one turn.
type ChatResult struct {
	Intent           Intent            `json:"intent"`
	Response         string            `json:"response"`
	Reasoning        string            `json:"reasoning"`
	ActionsTaken     []ActionResult    `json:"actions_taken"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	UpdatedListings  []int64           `json:"updated_listings"`
}
