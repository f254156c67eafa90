package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/claimledger/internal/claim"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/telemetry"
)

// BatchRequest is one claim-creation request inside a batch. Tag, when
// non-empty, is written as the creator's tag on the created claim.
type BatchRequest struct {
	Input claim.CreateInput
	Tag   string
}

// BatchCreate creates every request atomically, in order, so the first
// request receives the lowest new identifier. If any request fails its own
// preconditions the whole batch rolls back and no claim is created.
func (e *Engine) BatchCreate(ctx context.Context, caller string, requests []BatchRequest) ([]uint64, error) {
	ctx, span := e.tracer.Start(ctx, "engine.BatchCreate")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(requests) == 0 {
		return nil, ErrZeroLength
	}
	if len(requests) > e.maxBatch {
		return nil, apperrors.WithMetadata(apperrors.CodeBatchTooLarge,
			fmt.Sprintf("batch of %d exceeds the %d operation cap", len(requests), e.maxBatch),
			map[string]string{
				"Size": fmt.Sprintf("%d", len(requests)),
				"Max":  fmt.Sprintf("%d", e.maxBatch),
			})
	}

	ids := make([]uint64, 0, len(requests))
	err := e.store.InTx(ctx, func(tx storage.Store) error {
		for i, request := range requests {
			created, err := e.createClaimTx(ctx, tx, caller, request.Input, request.Tag)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeBatchFailed,
					fmt.Sprintf("batch request %d failed", i), err)
			}
			ids = append(ids, created.ID)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	e.emit(ctx, telemetry.BatchCreated, telemetry.SeverityInfo, ids[0], caller,
		fmt.Sprintf("count=%d", len(ids)))
	return ids, nil
}

// MaxBatchOperations returns the current batch operation cap.
func (e *Engine) MaxBatchOperations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxBatch
}

// BatchOwner returns the identity allowed to adjust the batch cap.
func (e *Engine) BatchOwner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batchOwner
}

// UpdateMaxOperations replaces the batch operation cap. Only the batch
// owner may call it.
func (e *Engine) UpdateMaxOperations(ctx context.Context, caller string, max int) error {
	_, span := e.tracer.Start(ctx, "engine.UpdateMaxOperations")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.batchOwner {
		return ErrNotOwner
	}
	if max <= 0 {
		return apperrors.New(apperrors.CodeValueMustBePositive, "batch operation cap must be greater than zero")
	}
	e.maxBatch = max
	return nil
}

// TransferBatchOwnership reassigns who controls the batch cap.
func (e *Engine) TransferBatchOwnership(ctx context.Context, caller, newOwner string) error {
	_, span := e.tracer.Start(ctx, "engine.TransferBatchOwnership")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.batchOwner {
		return ErrNotOwner
	}
	newOwner = strings.TrimSpace(newOwner)
	if newOwner == "" {
		return claim.ErrZeroAddress
	}
	e.batchOwner = newOwner
	return nil
}
