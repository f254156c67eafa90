package engine

import (
	"context"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	"github.com/louisbranch/claimledger/internal/storage"
)

// UpdateTag writes the caller's tag on a claim. The caller must be the
// claim's creditor or debtor; each role owns its own tag slot. Tags are
// metadata and settable in any claim state, terminal included.
func (e *Engine) UpdateTag(ctx context.Context, caller string, id uint64, tag string) error {
	ctx, span := e.tracer.Start(ctx, "engine.UpdateTag")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.store.InTx(ctx, func(tx storage.Store) error {
		c, err := tx.GetClaim(ctx, id)
		if err != nil {
			return err
		}
		return e.putTagTx(ctx, tx, c, caller, tag)
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (e *Engine) putTagTx(ctx context.Context, tx storage.Store, c claim.Claim, caller, tag string) error {
	var role string
	switch caller {
	case c.Creditor:
		role = "creditor"
	case c.Debtor:
		role = "debtor"
	default:
		return ErrCallerNotParty
	}

	existing, err := tx.GetTag(ctx, c.ID)
	if err != nil {
		return err
	}
	if role == "creditor" {
		existing.CreditorTag = tag
	} else {
		existing.DebtorTag = tag
	}
	existing.UpdatedAt = e.clock().UTC()
	if err := tx.PutTag(ctx, c.ID, existing); err != nil {
		return err
	}
	return e.appendEvent(ctx, tx, c.ID, event.TypeTagUpdated, caller, event.TagUpdatedPayload{
		Updater: caller,
		Role:    role,
		Tag:     tag,
	})
}
