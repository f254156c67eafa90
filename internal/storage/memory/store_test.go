package memory

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/claimledger/internal/claim"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/storage/storagetest"
	"github.com/louisbranch/claimledger/internal/token"
)

func pendingClaim() claim.Claim {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return claim.Claim{
		Creditor:  "alice",
		Debtor:    "bob",
		Amount:    100,
		Medium:    token.Native(),
		Status:    claim.StatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestListClaimsRejectsFilters(t *testing.T) {
	store := New()
	_, err := store.ListClaims(context.Background(), storage.ListClaimsQuery{Filter: `status = "PENDING"`})
	if !apperrors.IsCode(err, apperrors.CodeInvalidFilter) {
		t.Fatalf("expected invalid-filter error, got %v", err)
	}
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := New()

	err := store.InTx(ctx, func(outer storage.Store) error {
		return outer.InTx(ctx, func(inner storage.Store) error {
			_, err := inner.CreateClaim(ctx, pendingClaim())
			return err
		})
	})
	if err != nil {
		t.Fatalf("nested transaction: %v", err)
	}
	if _, err := store.GetClaim(ctx, 1); err != nil {
		t.Fatalf("expected committed claim from nested transaction, got %v", err)
	}
}
