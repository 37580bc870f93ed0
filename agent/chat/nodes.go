package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	"github.com/jolmarket/listing-agent/listing"
)

// contextListingCap bounds how many listings are rendered into the
// model-facing context block.
const contextListingCap = 10

// TurnRequest is the graph input for one user turn.
type TurnRequest struct {
	Message string
	History []contractx.Turn
}

type turnState struct {
	Req             TurnRequest
	Now             time.Time
	ListingsContext string
}

func (s *Service) validateAndPrepare(ctx context.Context, req TurnRequest) (*turnState, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	state := &turnState{Req: req, Now: s.now()}
	state.ListingsContext = s.loadListingsContext(ctx)
	return state, nil
}

// loadListingsContext renders the seller's active listings as a short
// text block. A store failure degrades to an empty context; the turn
// still runs, the model just plans without listing ids.
func (s *Service) loadListingsContext(ctx context.Context) string {
	listings, err := s.store.List(ctx, listing.StatusActive, listing.SortCreated, listing.OrderDesc)
	if err != nil {
		log.Warn().Err(err).Msg("load listings context failed, continuing without it")
		return ""
	}
	return listingsSummary(listings)
}

func listingsSummary(listings []listing.Listing) string {
	if len(listings) == 0 {
		return ""
	}
	if len(listings) > contextListingCap {
		listings = listings[:contextListingCap]
	}

	var b strings.Builder
	for i, l := range listings {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- ID %d: %s (%d원, %s, %s, %s 등록)",
			l.ID, l.Title, l.Price, l.Category, l.Region, l.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}

func (s *Service) planRequest(state *turnState) contractx.PlanRequest {
	return contractx.PlanRequest{
		Message:         state.Req.Message,
		History:         state.Req.History,
		ListingsContext: state.ListingsContext,
		Now:             state.Now,
	}
}

func (s *Service) planAndExecute(ctx context.Context, state *turnState) (contractx.ChatResult, error) {
	plan, err := s.planner.Plan(ctx, s.planRequest(state))
	if err != nil {
		return contractx.ChatResult{}, err
	}
	exec := s.exec.Execute(ctx, plan)
	return assemble(plan, exec), nil
}

func (s *Service) converse(ctx context.Context, state *turnState) (contractx.ChatResult, error) {
	plan, exec, err := s.loop.Converse(ctx, s.planRequest(state))
	if err != nil {
		return contractx.ChatResult{}, err
	}
	return assemble(plan, exec), nil
}
