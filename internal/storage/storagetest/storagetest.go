// Package storagetest runs the Store contract against an implementation.
// Both the memory and sqlite stores must pass it unchanged.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/token"
)

func testClaim(creditor, debtor string, amount uint64) claim.Claim {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return claim.Claim{
		Creditor:  creditor,
		Debtor:    debtor,
		Amount:    amount,
		Medium:    token.Native(),
		Status:    claim.StatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Run exercises the Store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("identifiers increase from one", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		for want := uint64(1); want <= 3; want++ {
			id, err := store.CreateClaim(ctx, testClaim("alice", "bob", 100))
			if err != nil {
				t.Fatalf("create claim: %v", err)
			}
			if id != want {
				t.Fatalf("expected identifier %d, got %d", want, id)
			}
		}
	})

	t.Run("get and update round trip", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		id, err := store.CreateClaim(ctx, testClaim("alice", "bob", 100))
		if err != nil {
			t.Fatalf("create claim: %v", err)
		}
		got, err := store.GetClaim(ctx, id)
		if err != nil {
			t.Fatalf("get claim: %v", err)
		}
		if got.Creditor != "alice" || got.Debtor != "bob" || got.Amount != 100 {
			t.Fatalf("unexpected claim %+v", got)
		}
		if got.Status != claim.StatusPending {
			t.Fatalf("expected pending status, got %s", got.Status.Label())
		}

		got.PaidAmount = 40
		got.Status = claim.StatusRepaying
		if err := store.UpdateClaim(ctx, got); err != nil {
			t.Fatalf("update claim: %v", err)
		}
		updated, err := store.GetClaim(ctx, id)
		if err != nil {
			t.Fatalf("get updated claim: %v", err)
		}
		if updated.PaidAmount != 40 || updated.Status != claim.StatusRepaying {
			t.Fatalf("unexpected updated claim %+v", updated)
		}
	})

	t.Run("missing claim", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		if _, err := store.GetClaim(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected not-found error, got %v", err)
		}
		if err := store.UpdateClaim(ctx, testClaim("alice", "bob", 1)); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected not-found error on update, got %v", err)
		}
		if _, err := store.HolderOf(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected not-found error on holder, got %v", err)
		}
	})

	t.Run("holder starts as creditor and reassigns", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		id, err := store.CreateClaim(ctx, testClaim("alice", "bob", 100))
		if err != nil {
			t.Fatalf("create claim: %v", err)
		}
		holder, err := store.HolderOf(ctx, id)
		if err != nil {
			t.Fatalf("holder of: %v", err)
		}
		if holder != "alice" {
			t.Fatalf("expected creditor as holder, got %q", holder)
		}
		if err := store.SetHolder(ctx, id, "carol"); err != nil {
			t.Fatalf("set holder: %v", err)
		}
		holder, err = store.HolderOf(ctx, id)
		if err != nil {
			t.Fatalf("holder of: %v", err)
		}
		if holder != "carol" {
			t.Fatalf("expected carol as holder, got %q", holder)
		}
	})

	t.Run("tags default to zero and persist", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		id, err := store.CreateClaim(ctx, testClaim("alice", "bob", 100))
		if err != nil {
			t.Fatalf("create claim: %v", err)
		}
		tag, err := store.GetTag(ctx, id)
		if err != nil {
			t.Fatalf("get tag: %v", err)
		}
		if tag.CreditorTag != "" || tag.DebtorTag != "" {
			t.Fatalf("expected zero tag, got %+v", tag)
		}

		tag.CreditorTag = "receivable"
		tag.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		if err := store.PutTag(ctx, id, tag); err != nil {
			t.Fatalf("put tag: %v", err)
		}
		got, err := store.GetTag(ctx, id)
		if err != nil {
			t.Fatalf("get tag: %v", err)
		}
		if got.CreditorTag != "receivable" {
			t.Fatalf("expected persisted tag, got %+v", got)
		}
	})

	t.Run("journal orders events per claim", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		id, err := store.CreateClaim(ctx, testClaim("alice", "bob", 100))
		if err != nil {
			t.Fatalf("create claim: %v", err)
		}
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			err := store.AppendEvent(ctx, event.Event{
				ClaimID:     id,
				Type:        event.TypeClaimPayment,
				Actor:       "bob",
				Timestamp:   at.Add(time.Duration(i) * time.Minute),
				PayloadJSON: []byte(fmt.Sprintf(`{"amount":%d}`, i+1)),
			})
			if err != nil {
				t.Fatalf("append event %d: %v", i, err)
			}
		}

		events, err := store.ListEvents(ctx, id, 0)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(events))
		}
		for i := 1; i < len(events); i++ {
			if events[i].Seq <= events[i-1].Seq {
				t.Fatalf("expected increasing sequence, got %d after %d", events[i].Seq, events[i-1].Seq)
			}
		}

		limited, err := store.ListEvents(ctx, id, 2)
		if err != nil {
			t.Fatalf("list events limited: %v", err)
		}
		if len(limited) != 2 {
			t.Fatalf("expected 2 events with limit, got %d", len(limited))
		}
	})

	t.Run("list paginates by identifier", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		for i := 0; i < 5; i++ {
			if _, err := store.CreateClaim(ctx, testClaim("alice", "bob", uint64(10+i))); err != nil {
				t.Fatalf("create claim %d: %v", i, err)
			}
		}
		page, err := store.ListClaims(ctx, storage.ListClaimsQuery{PageSize: 2})
		if err != nil {
			t.Fatalf("list claims: %v", err)
		}
		if len(page.Claims) != 2 || page.NextPageToken == "" {
			t.Fatalf("expected page of 2 with token, got %d %q", len(page.Claims), page.NextPageToken)
		}
		var seen []uint64
		for _, c := range page.Claims {
			seen = append(seen, c.ID)
		}
		for page.NextPageToken != "" {
			page, err = store.ListClaims(ctx, storage.ListClaimsQuery{PageSize: 2, PageToken: page.NextPageToken})
			if err != nil {
				t.Fatalf("list claims: %v", err)
			}
			for _, c := range page.Claims {
				seen = append(seen, c.ID)
			}
		}
		if len(seen) != 5 {
			t.Fatalf("expected all 5 claims across pages, got %v", seen)
		}
		for i := 1; i < len(seen); i++ {
			if seen[i] <= seen[i-1] {
				t.Fatalf("expected ascending identifiers, got %v", seen)
			}
		}
	})

	t.Run("transaction rolls back on failure", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		failure := errors.New("boom")
		err := store.InTx(ctx, func(tx storage.Store) error {
			if _, err := tx.CreateClaim(ctx, testClaim("alice", "bob", 100)); err != nil {
				return err
			}
			if err := tx.AppendEvent(ctx, event.Event{
				ClaimID:   1,
				Type:      event.TypeClaimCreated,
				Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			}); err != nil {
				return err
			}
			return failure
		})
		if !errors.Is(err, failure) {
			t.Fatalf("expected propagated failure, got %v", err)
		}

		if _, err := store.GetClaim(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected rolled-back claim, got %v", err)
		}
		events, err := store.ListEvents(ctx, 1, 0)
		if err != nil {
			t.Fatalf("list events: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("expected rolled-back events, got %d", len(events))
		}

		// A later transaction commits normally.
		var committed uint64
		err = store.InTx(ctx, func(tx storage.Store) error {
			var err error
			committed, err = tx.CreateClaim(ctx, testClaim("alice", "bob", 100))
			return err
		})
		if err != nil {
			t.Fatalf("commit transaction: %v", err)
		}
		if _, err := store.GetClaim(ctx, committed); err != nil {
			t.Fatalf("expected committed claim, got %v", err)
		}
	})
}
