// Package claimledgerd parses daemon flags and starts the claim engine
// runtime.
package claimledgerd

import (
	"context"
	"flag"
	"log"

	"github.com/louisbranch/claimledger/internal/engine"
	"github.com/louisbranch/claimledger/internal/platform/config"
	"github.com/louisbranch/claimledger/internal/platform/otel"
	"github.com/louisbranch/claimledger/internal/registry"
	"github.com/louisbranch/claimledger/internal/storage/sqlite"
	"github.com/louisbranch/claimledger/internal/telemetry"
	"github.com/louisbranch/claimledger/internal/token"
)

// Config holds daemon configuration.
type Config struct {
	DBPath           string `env:"CLAIMLEDGER_DB_PATH" envDefault:"claimledger.db"`
	Description      string `env:"CLAIMLEDGER_DESCRIPTION" envDefault:"claimledger"`
	Owner            string `env:"CLAIMLEDGER_OWNER" envDefault:"owner"`
	Collector        string `env:"CLAIMLEDGER_COLLECTOR" envDefault:"collector"`
	BaseFeeBps       uint64 `env:"CLAIMLEDGER_BASE_FEE_BPS" envDefault:"0"`
	ReducedFeeBps    uint64 `env:"CLAIMLEDGER_REDUCED_FEE_BPS" envDefault:"0"`
	LoyaltyThreshold uint64 `env:"CLAIMLEDGER_LOYALTY_THRESHOLD" envDefault:"0"`
	MaxBatch         int    `env:"CLAIMLEDGER_MAX_BATCH" envDefault:"20"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Owner, "owner", cfg.Owner, "Registry owner identity")
	fs.StringVar(&cfg.Collector, "collector", cfg.Collector, "Fee collector identity")
	fs.Uint64Var(&cfg.BaseFeeBps, "base-fee-bps", cfg.BaseFeeBps, "Base fee rate in basis points")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run wires the storage, registry, and engine and blocks until the context
// is cancelled.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "claimledgerd")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shutdown otel: %v", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	// The value-medium collaborator is external in production; the daemon
	// hosts an in-process ledger until one is attached.
	ledger := token.NewMemoryLedger()

	reg, err := registry.New(ctx, registry.Config{
		Description:      cfg.Description,
		Owner:            cfg.Owner,
		Collector:        cfg.Collector,
		BaseFeeBps:       cfg.BaseFeeBps,
		ReducedFeeBps:    cfg.ReducedFeeBps,
		LoyaltyThreshold: cfg.LoyaltyThreshold,
	}, engine.JournalSink(store), ledger, nil)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Config{
		Store:              store,
		Registry:           reg,
		Ledger:             ledger,
		Directory:          ledger,
		Telemetry:          telemetry.NewEmitter(store),
		MaxBatchOperations: cfg.MaxBatch,
	})
	if err != nil {
		return err
	}

	log.Printf("claim engine ready: db=%s owner=%s base_fee_bps=%d max_batch=%d",
		cfg.DBPath, reg.Owner(), cfg.BaseFeeBps, eng.MaxBatchOperations())

	<-ctx.Done()
	return nil
}
