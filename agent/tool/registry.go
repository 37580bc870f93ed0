package tool

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	"github.com/jolmarket/listing-agent/listing"
	marketx "github.com/jolmarket/listing-agent/market"
)

// BoostCooldown is the minimum gap between boosts of one listing.
const BoostCooldown = 24 * time.Hour

// Registry dispatches the fixed tool catalog against the listing store
// and the market table. Adding a tool means extending the ToolName enum,
// this dispatcher, and the catalog — a compile-time-checked change.
type Registry struct {
	store  listing.Store
	market *marketx.Table
	now    func() time.Time
}

type Option func(*Registry)

// WithClock overrides the registry clock, mainly for cooldown tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func New(store listing.Store, market *marketx.Table, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		market: market,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var _ contractx.ToolRunner = (*Registry)(nil)

// Run executes one call and always returns an envelope. Unexpected store
// failures are converted here; expected business failures are produced by
// the tools themselves.
func (r *Registry) Run(ctx context.Context, call contractx.ToolCall) contractx.ToolResult {
	log.Debug().Str("tool", string(call.Name)).Interface("args", call.Args()).Msg("run tool")

	switch call.Name {
	case contractx.ToolQueryListings:
		return r.queryListings(ctx, call.Query)
	case contractx.ToolAdjustPrice:
		return r.adjustPrice(ctx, call.AdjustPrice)
	case contractx.ToolBoostListing:
		return r.boostListing(ctx, call.Boost)
	case contractx.ToolUpdateContent:
		return r.updateContent(ctx, call.UpdateContent)
	case contractx.ToolGetMarketInsights:
		return r.marketInsights(call.Insights)
	default:
		return fail(fmt.Sprintf("알 수 없는 Tool: %s", call.Name))
	}
}

func fail(msg string) contractx.ToolResult {
	return contractx.ToolResult{Success: false, Message: msg}
}

// won renders a KRW amount with thousands separators.
func won(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, ch := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, ch)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
