package engine

import (
	"context"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	"github.com/louisbranch/claimledger/internal/storage"
)

// ClaimView is a claim together with its ownership and tag state.
type ClaimView struct {
	Claim  claim.Claim
	Holder string
	Tag    storage.Tag
}

// GetClaim returns the claim, its current holder, and its tags.
func (e *Engine) GetClaim(ctx context.Context, id uint64) (ClaimView, error) {
	c, err := e.store.GetClaim(ctx, id)
	if err != nil {
		return ClaimView{}, err
	}
	holder, err := e.store.HolderOf(ctx, id)
	if err != nil {
		return ClaimView{}, err
	}
	tag, err := e.store.GetTag(ctx, id)
	if err != nil {
		return ClaimView{}, err
	}
	return ClaimView{Claim: c, Holder: holder, Tag: tag}, nil
}

// HolderOf returns the current owner of a claim.
func (e *Engine) HolderOf(ctx context.Context, id uint64) (string, error) {
	return e.store.HolderOf(ctx, id)
}

// ListClaims returns a page of claims matching the query.
func (e *Engine) ListClaims(ctx context.Context, query storage.ListClaimsQuery) (storage.ClaimPage, error) {
	return e.store.ListClaims(ctx, query)
}

// ListEvents returns the journal for a claim, oldest first. A zero claim
// identifier selects registry-level events.
func (e *Engine) ListEvents(ctx context.Context, claimID uint64, limit int) ([]event.Event, error) {
	return e.store.ListEvents(ctx, claimID, limit)
}
