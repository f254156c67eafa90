// Package engine composes the claim state machine, registry, value-medium
// ledger, and storage into the serialized settlement operations. Every
// mutating operation runs under one engine-wide mutex and one storage
// transaction, so no two operations interleave and no partial effects
// survive a failure.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/claimledger/internal/claim/event"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/registry"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/telemetry"
	"github.com/louisbranch/claimledger/internal/token"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxBatchOperations bounds batch creation when no cap is configured.
const DefaultMaxBatchOperations = 20

var (
	// ErrNotOwner indicates the caller does not hold the claim.
	ErrNotOwner = apperrors.New(apperrors.CodeNotOwner, "caller is not the claim owner")
	// ErrCallerNotParty indicates the creator is neither creditor nor debtor.
	ErrCallerNotParty = apperrors.New(apperrors.CodeCallerNotParty, "caller is neither creditor nor debtor")
	// ErrIncorrectValue indicates a tendered value that does not match the
	// transfer price exactly.
	ErrIncorrectValue = apperrors.New(apperrors.CodeIncorrectValue, "tendered value does not match the transfer price")
	// ErrTokenNotContract indicates a token medium whose handle does not
	// resolve to a contract.
	ErrTokenNotContract = apperrors.New(apperrors.CodeClaimTokenNotContract, "token handle does not resolve to a contract")
	// ErrZeroLength indicates an empty batch.
	ErrZeroLength = apperrors.New(apperrors.CodeZeroLength, "batch must contain at least one request")
)

// Config describes the engine's collaborators.
type Config struct {
	Store    storage.Store
	Registry *registry.Registry
	Ledger   token.Ledger
	// Directory resolves token contract handles; optional. When set, claim
	// creation against a token medium verifies the handle is a contract.
	Directory token.Directory
	Telemetry *telemetry.Emitter
	// BatchOwner may adjust the batch operation cap; defaults to the
	// registry owner.
	BatchOwner string
	// MaxBatchOperations caps batch creation; defaults to
	// DefaultMaxBatchOperations.
	MaxBatchOperations int
	Clock              func() time.Time
}

// Engine executes claim settlement operations.
type Engine struct {
	mu        sync.Mutex
	store     storage.Store
	registry  *registry.Registry
	ledger    token.Ledger
	directory token.Directory
	emitter   *telemetry.Emitter
	tracer    trace.Tracer
	clock     func() time.Time

	batchOwner string
	maxBatch   int
}

// New creates an engine from its collaborators.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine store is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("engine registry is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("engine value ledger is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	maxBatch := cfg.MaxBatchOperations
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchOperations
	}
	batchOwner := strings.TrimSpace(cfg.BatchOwner)
	if batchOwner == "" {
		batchOwner = cfg.Registry.Owner()
	}
	return &Engine{
		store:      cfg.Store,
		registry:   cfg.Registry,
		ledger:     cfg.Ledger,
		directory:  cfg.Directory,
		emitter:    cfg.Telemetry,
		tracer:     otel.Tracer("claimledger/engine"),
		clock:      clock,
		batchOwner: batchOwner,
		maxBatch:   maxBatch,
	}, nil
}

// Registry returns the registry the engine settles against.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// JournalSink adapts a store's event journal to the registry's event sink.
func JournalSink(store storage.Store) registry.EventSink {
	return journalSink{store: store}
}

type journalSink struct {
	store storage.Store
}

func (s journalSink) Append(ctx context.Context, evt event.Event) error {
	return s.store.AppendEvent(ctx, evt)
}

// appendEvent marshals a payload and appends the journal event inside tx.
func (e *Engine) appendEvent(ctx context.Context, tx storage.Store, claimID uint64, typ event.Type, actor string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return tx.AppendEvent(ctx, event.Event{
		ClaimID:     claimID,
		Type:        typ,
		Actor:       actor,
		Timestamp:   e.clock().UTC(),
		PayloadJSON: payloadJSON,
	})
}

// emit records an operational telemetry event after a committed operation.
// Telemetry failures never affect the operation's outcome.
func (e *Engine) emit(ctx context.Context, name string, severity telemetry.Severity, claimID uint64, actor, detail string) {
	_ = e.emitter.Emit(ctx, storage.TelemetryEvent{
		Name:     name,
		Severity: string(severity),
		ClaimID:  claimID,
		Actor:    actor,
		Detail:   detail,
	})
}
