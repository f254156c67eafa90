package engine

import (
	"context"
	"fmt"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/telemetry"
)

// SetTransferPrice sets the price the current owner demands to transfer the
// claim. Zero makes the claim transferable for free.
func (e *Engine) SetTransferPrice(ctx context.Context, caller string, id uint64, price uint64) (claim.Claim, error) {
	ctx, span := e.tracer.Start(ctx, "engine.SetTransferPrice")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	var updated claim.Claim
	err := e.store.InTx(ctx, func(tx storage.Store) error {
		c, err := tx.GetClaim(ctx, id)
		if err != nil {
			return err
		}
		holder, err := tx.HolderOf(ctx, id)
		if err != nil {
			return err
		}
		if caller != holder {
			return ErrNotOwner
		}
		old := c.TransferPrice
		updated = claim.WithTransferPrice(c, price, e.clock)
		if err := tx.UpdateClaim(ctx, updated); err != nil {
			return err
		}
		return e.appendEvent(ctx, tx, id, event.TypeTransferPriceUpdated, caller, event.TransferPriceUpdatedPayload{
			OldPrice: old,
			NewPrice: price,
		})
	})
	if err != nil {
		span.RecordError(err)
		return claim.Claim{}, err
	}
	return updated, nil
}

// TransferOwnership sells the claim to newOwner. The tendered value must
// match the transfer price exactly and is paid by the new owner to the
// previous owner in the claim's medium. The price resets to zero so the new
// owner must set their own before a further sale.
func (e *Engine) TransferOwnership(ctx context.Context, caller string, id uint64, newOwner string, tenderedValue uint64) error {
	ctx, span := e.tracer.Start(ctx, "engine.TransferOwnership")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.store.InTx(ctx, func(tx storage.Store) error {
		c, err := tx.GetClaim(ctx, id)
		if err != nil {
			return err
		}
		holder, err := tx.HolderOf(ctx, id)
		if err != nil {
			return err
		}
		if caller != holder {
			return ErrNotOwner
		}
		if newOwner == "" {
			return claim.ErrZeroAddress
		}
		if tenderedValue != c.TransferPrice {
			return ErrIncorrectValue
		}

		if err := tx.SetHolder(ctx, id, newOwner); err != nil {
			return err
		}
		price := c.TransferPrice
		updated := claim.WithTransferPrice(c, 0, e.clock)
		if err := tx.UpdateClaim(ctx, updated); err != nil {
			return err
		}
		if err := e.appendEvent(ctx, tx, id, event.TypeClaimTransferred, caller, event.ClaimTransferredPayload{
			From:  holder,
			To:    newOwner,
			Price: price,
		}); err != nil {
			return err
		}

		if price > 0 {
			if err := e.ledger.Transfer(ctx, c.Medium, newOwner, holder, price); err != nil {
				return fmt.Errorf("transfer sale price to previous owner: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	e.emit(ctx, telemetry.ClaimTransferred, telemetry.SeverityInfo, id, caller,
		fmt.Sprintf("to=%s price=%d", newOwner, tenderedValue))
	return nil
}

// AddAttachment records the claim's content-hash descriptor. Only the
// current owner may attach, and only once.
func (e *Engine) AddAttachment(ctx context.Context, caller string, id uint64, attachment claim.Multihash) (claim.Claim, error) {
	ctx, span := e.tracer.Start(ctx, "engine.AddAttachment")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	var updated claim.Claim
	err := e.store.InTx(ctx, func(tx storage.Store) error {
		c, err := tx.GetClaim(ctx, id)
		if err != nil {
			return err
		}
		holder, err := tx.HolderOf(ctx, id)
		if err != nil {
			return err
		}
		if caller != holder {
			return ErrNotOwner
		}
		updated, err = claim.WithAttachment(c, attachment, e.clock)
		if err != nil {
			return err
		}
		if err := tx.UpdateClaim(ctx, updated); err != nil {
			return err
		}
		return e.appendEvent(ctx, tx, id, event.TypeAttachmentAdded, caller, event.AttachmentAddedPayload{
			Hash:         attachment.Hash,
			HashFunction: attachment.HashFunction,
			Size:         attachment.Size,
		})
	})
	if err != nil {
		span.RecordError(err)
		return claim.Claim{}, err
	}
	return updated, nil
}
