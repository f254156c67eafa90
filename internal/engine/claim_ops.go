package engine

import (
	"context"
	"fmt"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	"github.com/louisbranch/claimledger/internal/registry"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/telemetry"
	"github.com/louisbranch/claimledger/internal/token"
)

// CreateClaim records a new pending claim. The caller must be one of the
// claim's parties and becomes the initial creator of record. A non-empty
// tag is written as the caller's tag alongside the creation.
func (e *Engine) CreateClaim(ctx context.Context, caller string, input claim.CreateInput, tag string) (claim.Claim, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CreateClaim")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	var created claim.Claim
	err := e.store.InTx(ctx, func(tx storage.Store) error {
		var err error
		created, err = e.createClaimTx(ctx, tx, caller, input, tag)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return claim.Claim{}, err
	}

	e.emit(ctx, telemetry.ClaimCreated, telemetry.SeverityInfo, created.ID, caller,
		fmt.Sprintf("amount=%d medium=%s", created.Amount, created.Medium.Label()))
	return created, nil
}

// createClaimTx runs the creation inside an open transaction so batch
// creation shares the single-claim path verbatim.
func (e *Engine) createClaimTx(ctx context.Context, tx storage.Store, caller string, input claim.CreateInput, tag string) (claim.Claim, error) {
	c, err := claim.New(input, e.clock)
	if err != nil {
		return claim.Claim{}, err
	}
	if caller != c.Creditor && caller != c.Debtor {
		return claim.Claim{}, ErrCallerNotParty
	}
	if c.Medium.Kind == token.KindToken && e.directory != nil {
		isContract, err := e.directory.IsContract(ctx, c.Medium.Contract)
		if err != nil {
			return claim.Claim{}, fmt.Errorf("resolve token contract %q: %w", c.Medium.Contract, err)
		}
		if !isContract {
			return claim.Claim{}, ErrTokenNotContract
		}
	}

	id, err := tx.CreateClaim(ctx, c)
	if err != nil {
		return claim.Claim{}, err
	}
	c.ID = id

	payload := event.ClaimCreatedPayload{
		Creditor:    c.Creditor,
		Debtor:      c.Debtor,
		Creator:     caller,
		Description: c.Description,
		Amount:      c.Amount,
		Medium:      c.Medium.Label(),
	}
	if !c.DueBy.IsZero() {
		payload.DueBy = c.DueBy.UTC().UnixMilli()
	}
	if err := e.appendEvent(ctx, tx, id, event.TypeClaimCreated, caller, payload); err != nil {
		return claim.Claim{}, err
	}

	if tag != "" {
		if err := e.putTagTx(ctx, tx, c, caller, tag); err != nil {
			return claim.Claim{}, err
		}
	}
	return c, nil
}

// PayClaim applies a payment increment by the debtor. The increment splits
// into a fee for the registry collector and the remainder for the current
// claim owner; both legs transfer atomically with the state update.
func (e *Engine) PayClaim(ctx context.Context, caller string, id uint64, amount uint64) (claim.Claim, error) {
	ctx, span := e.tracer.Start(ctx, "engine.PayClaim")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		updated claim.Claim
		fee     uint64
	)
	err := e.store.InTx(ctx, func(tx storage.Store) error {
		c, err := tx.GetClaim(ctx, id)
		if err != nil {
			return err
		}
		holder, err := tx.HolderOf(ctx, id)
		if err != nil {
			return err
		}
		updated, err = claim.ApplyPayment(c, caller, amount, e.clock)
		if err != nil {
			return err
		}

		bps, collector, err := e.registry.FeeFor(ctx, caller)
		if err != nil {
			return err
		}
		fee = registry.ComputeFee(amount, bps)
		net := amount - fee

		if err := tx.UpdateClaim(ctx, updated); err != nil {
			return err
		}
		if err := e.appendEvent(ctx, tx, id, event.TypeClaimPayment, caller, event.ClaimPaymentPayload{
			Payer:      caller,
			Amount:     amount,
			Fee:        fee,
			PaidAmount: updated.PaidAmount,
			Status:     updated.Status.Label(),
		}); err != nil {
			return err
		}

		// Value moves last so a storage failure above rolls back with no
		// transfer outstanding. A failed fee leg refunds the payment leg,
		// leaving both balances and the rolled-back claim state untouched.
		if err := e.ledger.Transfer(ctx, c.Medium, caller, holder, net); err != nil {
			return fmt.Errorf("transfer payment to owner: %w", err)
		}
		if fee > 0 {
			if err := e.ledger.Transfer(ctx, c.Medium, caller, collector, fee); err != nil {
				if refundErr := e.ledger.Transfer(ctx, c.Medium, holder, caller, net); refundErr != nil {
					return fmt.Errorf("transfer fee to collector: %w (refund failed: %v)", err, refundErr)
				}
				return fmt.Errorf("transfer fee to collector: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return claim.Claim{}, err
	}

	e.emit(ctx, telemetry.ClaimPaid, telemetry.SeverityInfo, id, caller,
		fmt.Sprintf("amount=%d fee=%d status=%s", amount, fee, updated.Status.Label()))
	return updated, nil
}

// RejectClaim marks a pending claim rejected by its debtor.
func (e *Engine) RejectClaim(ctx context.Context, caller string, id uint64, reason string) (claim.Claim, error) {
	ctx, span := e.tracer.Start(ctx, "engine.RejectClaim")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	var updated claim.Claim
	err := e.store.InTx(ctx, func(tx storage.Store) error {
		c, err := tx.GetClaim(ctx, id)
		if err != nil {
			return err
		}
		updated, err = claim.Reject(c, caller, e.clock)
		if err != nil {
			return err
		}
		if err := tx.UpdateClaim(ctx, updated); err != nil {
			return err
		}
		return e.appendEvent(ctx, tx, id, event.TypeClaimRejected, caller, event.ClaimRejectedPayload{
			Reason: reason,
		})
	})
	if err != nil {
		span.RecordError(err)
		return claim.Claim{}, err
	}

	e.emit(ctx, telemetry.ClaimRejected, telemetry.SeverityInfo, id, caller, reason)
	return updated, nil
}

// RescindClaim marks a pending claim rescinded by its current owner.
func (e *Engine) RescindClaim(ctx context.Context, caller string, id uint64) (claim.Claim, error) {
	ctx, span := e.tracer.Start(ctx, "engine.RescindClaim")
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
		updated, err = claim.Rescind(c, holder, caller, e.clock)
		if err != nil {
			return err
		}
		if err := tx.UpdateClaim(ctx, updated); err != nil {
			return err
		}
		return e.appendEvent(ctx, tx, id, event.TypeClaimRescinded, caller, struct{}{})
	})
	if err != nil {
		span.RecordError(err)
		return claim.Claim{}, err
	}

	e.emit(ctx, telemetry.ClaimRescinded, telemetry.SeverityInfo, id, caller, "")
	return updated, nil
}
