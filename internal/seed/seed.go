// Package seed populates a local database with demo claims by exercising
// the engine's own operations.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/engine"
	"github.com/louisbranch/claimledger/internal/registry"
	"github.com/louisbranch/claimledger/internal/storage/sqlite"
	"github.com/louisbranch/claimledger/internal/telemetry"
	"github.com/louisbranch/claimledger/internal/token"
)

// Config holds seed run options.
type Config struct {
	DBPath  string
	Verbose bool
}

// DefaultConfig returns the default seed configuration.
func DefaultConfig() Config {
	return Config{DBPath: "claimledger.db"}
}

// Run seeds the database with demo claims: a paid invoice, a partially
// repaid loan, a rejected bill, and a small batch.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ledger := token.NewMemoryLedger()
	ledger.Mint(token.Native(), "alice", 10_000)
	ledger.Mint(token.Native(), "bob", 10_000)
	ledger.Mint(token.Native(), "carol", 10_000)

	reg, err := registry.New(ctx, registry.Config{
		Description: "claimledger demo",
		Owner:       "operator",
		Collector:   "collector",
		BaseFeeBps:  1000,
	}, engine.JournalSink(store), ledger, nil)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Config{
		Store:     store,
		Registry:  reg,
		Ledger:    ledger,
		Directory: ledger,
		Telemetry: telemetry.NewEmitter(store),
	})
	if err != nil {
		return err
	}

	paid, err := eng.CreateClaim(ctx, "alice", claim.CreateInput{
		Creditor:    "alice",
		Debtor:      "bob",
		Description: "consulting invoice",
		Amount:      100,
		Medium:      token.Native(),
	}, "invoices")
	if err != nil {
		return fmt.Errorf("seed paid claim: %w", err)
	}
	if _, err := eng.PayClaim(ctx, "bob", paid.ID, 100); err != nil {
		return fmt.Errorf("seed paid claim payment: %w", err)
	}

	repaying, err := eng.CreateClaim(ctx, "alice", claim.CreateInput{
		Creditor:    "alice",
		Debtor:      "carol",
		Description: "personal loan",
		Amount:      500,
		Medium:      token.Native(),
		DueBy:       time.Now().AddDate(0, 1, 0),
	}, "")
	if err != nil {
		return fmt.Errorf("seed repaying claim: %w", err)
	}
	if _, err := eng.PayClaim(ctx, "carol", repaying.ID, 200); err != nil {
		return fmt.Errorf("seed repaying claim payment: %w", err)
	}

	rejected, err := eng.CreateClaim(ctx, "carol", claim.CreateInput{
		Creditor:    "carol",
		Debtor:      "bob",
		Description: "disputed bill",
		Amount:      75,
		Medium:      token.Native(),
	}, "")
	if err != nil {
		return fmt.Errorf("seed rejected claim: %w", err)
	}
	if _, err := eng.RejectClaim(ctx, "bob", rejected.ID, "duplicate"); err != nil {
		return fmt.Errorf("seed rejection: %w", err)
	}

	batch := make([]engine.BatchRequest, 0, 3)
	for i := 1; i <= 3; i++ {
		batch = append(batch, engine.BatchRequest{
			Input: claim.CreateInput{
				Creditor:    "alice",
				Debtor:      "bob",
				Description: fmt.Sprintf("subscription month %d", i),
				Amount:      25,
				Medium:      token.Native(),
			},
			Tag: "subscriptions",
		})
	}
	ids, err := eng.BatchCreate(ctx, "alice", batch)
	if err != nil {
		return fmt.Errorf("seed batch: %w", err)
	}

	if cfg.Verbose && out != nil {
		fmt.Fprintf(out, "seeded claims: paid=%d repaying=%d rejected=%d batch=%v\n",
			paid.ID, repaying.ID, rejected.ID, ids)
	}
	return nil
}
