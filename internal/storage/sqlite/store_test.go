package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/claimledger/internal/claim"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/storage/storagetest"
	"github.com/louisbranch/claimledger/internal/token"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "claims.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func seedClaim(t *testing.T, store *Store, creditor, debtor string, amount uint64, status claim.Status) uint64 {
	t.Helper()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := store.CreateClaim(context.Background(), claim.Claim{
		Creditor:  creditor,
		Debtor:    debtor,
		Amount:    amount,
		Medium:    token.Native(),
		Status:    status,
		CreatedAt: at,
		UpdatedAt: at,
	})
	if err != nil {
		t.Fatalf("seed claim: %v", err)
	}
	return id
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return openTestStore(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	seedClaim(t, store, "alice", "bob", 100, claim.StatusPending)
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Reopening applies no migrations twice and keeps existing rows.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if _, err := reopened.GetClaim(context.Background(), 1); err != nil {
		t.Fatalf("get claim after reopen: %v", err)
	}
}

func TestTimesRoundTripUTC(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dueBy := createdAt.AddDate(0, 1, 0)
	id, err := store.CreateClaim(ctx, claim.Claim{
		Creditor:  "alice",
		Debtor:    "bob",
		Amount:    100,
		Medium:    token.Native(),
		DueBy:     dueBy,
		Status:    claim.StatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	got, err := store.GetClaim(ctx, id)
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if !got.CreatedAt.Equal(createdAt) || got.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC created at %v, got %v", createdAt, got.CreatedAt)
	}
	if !got.DueBy.Equal(dueBy) {
		t.Fatalf("expected due by %v, got %v", dueBy, got.DueBy)
	}

	// The zero due date survives as zero, not as the epoch.
	noDue, err := store.GetClaim(ctx, seedClaim(t, store, "alice", "bob", 50, claim.StatusPending))
	if err != nil {
		t.Fatalf("get claim without due date: %v", err)
	}
	if !noDue.DueBy.IsZero() {
		t.Fatalf("expected zero due date, got %v", noDue.DueBy)
	}
}

func TestListClaimsFilter(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	seedClaim(t, store, "alice", "bob", 100, claim.StatusPending)
	seedClaim(t, store, "alice", "carol", 200, claim.StatusPaid)
	seedClaim(t, store, "dave", "bob", 300, claim.StatusPending)

	tests := []struct {
		name   string
		filter string
		want   int
	}{
		{"by creditor", `creditor = "alice"`, 2},
		{"by status", `status = "PENDING"`, 2},
		{"by debtor and status", `debtor = "bob" AND status = "PENDING"`, 2},
		{"by amount", `amount >= 200`, 2},
		{"no match", `creditor = "nobody"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := store.ListClaims(ctx, storage.ListClaimsQuery{Filter: tt.filter})
			if err != nil {
				t.Fatalf("list claims: %v", err)
			}
			if len(page.Claims) != tt.want {
				t.Fatalf("expected %d claims, got %d", tt.want, len(page.Claims))
			}
		})
	}

	t.Run("invalid filter", func(t *testing.T) {
		_, err := store.ListClaims(ctx, storage.ListClaimsQuery{Filter: "creditor ==="})
		if !apperrors.IsCode(err, apperrors.CodeInvalidFilter) {
			t.Fatalf("expected invalid-filter error, got %v", err)
		}
	})
}

func TestTelemetryEvents(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	err := store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{
		Name:      "claim.pay",
		Severity:  "INFO",
		ClaimID:   1,
		Actor:     "bob",
		Detail:    "amount=100",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("append telemetry event: %v", err)
	}
}
