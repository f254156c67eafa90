// Package registry holds the engine-wide configuration: owning authority,
// fee schedule, and human-readable description. It is the single source of
// truth other components query for current fee terms.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/claimledger/internal/claim/event"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/token"
)

var (
	// ErrNotContractOwner indicates a mutation by someone other than the owner.
	ErrNotContractOwner = apperrors.New(apperrors.CodeNotContractOwner, "caller is not the registry owner")
	// ErrInvalidBasisPoints indicates a fee rate above 100%.
	ErrInvalidBasisPoints = apperrors.New(apperrors.CodeInvalidBasisPoints, "fee basis points exceed 10000")
	// ErrZeroCollector indicates a missing collector identity.
	ErrZeroCollector = apperrors.New(apperrors.CodeZeroAddress, "collector identity is required")
	// ErrZeroOwner indicates a missing owner identity.
	ErrZeroOwner = apperrors.New(apperrors.CodeZeroAddress, "owner identity is required")
)

// EventSink receives configuration-change events.
type EventSink interface {
	Append(ctx context.Context, evt event.Event) error
}

// Config describes the initial registry state.
type Config struct {
	Description      string
	Owner            string
	Collector        string
	BaseFeeBps       uint64
	ReducedFeeBps    uint64
	LoyaltyThreshold uint64
	// LoyaltyToken is the medium whose balance grants the reduced rate.
	LoyaltyToken token.Medium
}

// Registry is the process-wide claim configuration. Field mutations are
// owner-gated, atomic, and individually event-logged.
type Registry struct {
	mu           sync.RWMutex
	description  string
	owner        string
	fees         FeeSchedule
	loyaltyToken token.Medium
	sink         EventSink
	ledger       token.Ledger
	clock        func() time.Time
}

// New creates a registry and logs its initial fee, collector, and owner
// configuration, mirroring a deployment-time initialization.
func New(ctx context.Context, cfg Config, sink EventSink, ledger token.Ledger, now func() time.Time) (*Registry, error) {
	if now == nil {
		now = time.Now
	}
	cfg.Owner = strings.TrimSpace(cfg.Owner)
	cfg.Collector = strings.TrimSpace(cfg.Collector)
	if cfg.Owner == "" {
		return nil, ErrZeroOwner
	}
	if cfg.Collector == "" {
		return nil, ErrZeroCollector
	}
	if cfg.BaseFeeBps > MaxBasisPoints || cfg.ReducedFeeBps > MaxBasisPoints {
		return nil, ErrInvalidBasisPoints
	}

	r := &Registry{
		description: strings.TrimSpace(cfg.Description),
		owner:       cfg.Owner,
		fees: FeeSchedule{
			BaseFeeBps:       cfg.BaseFeeBps,
			ReducedFeeBps:    cfg.ReducedFeeBps,
			LoyaltyThreshold: cfg.LoyaltyThreshold,
			Collector:        cfg.Collector,
		},
		loyaltyToken: cfg.LoyaltyToken,
		sink:         sink,
		ledger:       ledger,
		clock:        now,
	}

	r.append(ctx, cfg.Owner, event.TypeFeeChanged, event.FeeChangedPayload{
		Field: "base", OldBps: 0, NewBps: cfg.BaseFeeBps,
	})
	r.append(ctx, cfg.Owner, event.TypeCollectorChanged, event.CollectorChangedPayload{
		NewCollector: cfg.Collector,
	})
	r.append(ctx, cfg.Owner, event.TypeOwnerChanged, event.OwnerChangedPayload{
		NewOwner: cfg.Owner,
	})
	return r, nil
}

// Description returns the immutable registry description.
func (r *Registry) Description() string {
	return r.description
}

// Owner returns the current registry owner.
func (r *Registry) Owner() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// Fees returns a copy of the current fee schedule.
func (r *Registry) Fees() FeeSchedule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fees
}

// LoyaltyToken returns the loyalty token medium, which may be zero.
func (r *Registry) LoyaltyToken() token.Medium {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loyaltyToken
}

// FeeFor returns the fee rate and collector applicable to a payer right now.
// This is a live read of the current schedule: rate changes apply to all
// future payments, including claims created under an older schedule.
func (r *Registry) FeeFor(ctx context.Context, payer string) (bps uint64, collector string, err error) {
	r.mu.RLock()
	fees := r.fees
	loyalty := r.loyaltyToken
	r.mu.RUnlock()

	bps = fees.BaseFeeBps
	if fees.LoyaltyThreshold > 0 && !loyalty.IsZero() && r.ledger != nil {
		balance, err := r.ledger.BalanceOf(ctx, loyalty, payer)
		if err != nil {
			return 0, "", fmt.Errorf("read loyalty balance: %w", err)
		}
		if balance >= fees.LoyaltyThreshold {
			bps = fees.ReducedFeeBps
		}
	}
	return bps, fees.Collector, nil
}

// SetOwner reassigns registry ownership. Only the current owner may call it.
func (r *Registry) SetOwner(ctx context.Context, caller, newOwner string) error {
	newOwner = strings.TrimSpace(newOwner)
	if newOwner == "" {
		return ErrZeroOwner
	}
	r.mu.Lock()
	if caller != r.owner {
		r.mu.Unlock()
		return ErrNotContractOwner
	}
	old := r.owner
	r.owner = newOwner
	r.mu.Unlock()

	r.append(ctx, caller, event.TypeOwnerChanged, event.OwnerChangedPayload{
		OldOwner: old, NewOwner: newOwner,
	})
	return nil
}

// SetBaseFee replaces the base fee rate.
func (r *Registry) SetBaseFee(ctx context.Context, caller string, bps uint64) error {
	if bps > MaxBasisPoints {
		return ErrInvalidBasisPoints
	}
	r.mu.Lock()
	if caller != r.owner {
		r.mu.Unlock()
		return ErrNotContractOwner
	}
	old := r.fees.BaseFeeBps
	r.fees.BaseFeeBps = bps
	r.mu.Unlock()

	r.append(ctx, caller, event.TypeFeeChanged, event.FeeChangedPayload{
		Field: "base", OldBps: old, NewBps: bps,
	})
	return nil
}

// SetReducedFee replaces the reduced fee rate.
func (r *Registry) SetReducedFee(ctx context.Context, caller string, bps uint64) error {
	if bps > MaxBasisPoints {
		return ErrInvalidBasisPoints
	}
	r.mu.Lock()
	if caller != r.owner {
		r.mu.Unlock()
		return ErrNotContractOwner
	}
	old := r.fees.ReducedFeeBps
	r.fees.ReducedFeeBps = bps
	r.mu.Unlock()

	r.append(ctx, caller, event.TypeFeeChanged, event.FeeChangedPayload{
		Field: "reduced", OldBps: old, NewBps: bps,
	})
	return nil
}

// SetLoyaltyThreshold replaces the loyalty balance threshold.
func (r *Registry) SetLoyaltyThreshold(ctx context.Context, caller string, threshold uint64) error {
	r.mu.Lock()
	if caller != r.owner {
		r.mu.Unlock()
		return ErrNotContractOwner
	}
	old := r.fees.LoyaltyThreshold
	r.fees.LoyaltyThreshold = threshold
	r.mu.Unlock()

	r.append(ctx, caller, event.TypeFeeThresholdChanged, event.FeeThresholdChangedPayload{
		OldThreshold: old, NewThreshold: threshold,
	})
	return nil
}

// SetCollector replaces the fee collector identity.
func (r *Registry) SetCollector(ctx context.Context, caller, collector string) error {
	collector = strings.TrimSpace(collector)
	if collector == "" {
		return ErrZeroCollector
	}
	r.mu.Lock()
	if caller != r.owner {
		r.mu.Unlock()
		return ErrNotContractOwner
	}
	old := r.fees.Collector
	r.fees.Collector = collector
	r.mu.Unlock()

	r.append(ctx, caller, event.TypeCollectorChanged, event.CollectorChangedPayload{
		OldCollector: old, NewCollector: collector,
	})
	return nil
}

// SetLoyaltyToken replaces the loyalty token medium.
func (r *Registry) SetLoyaltyToken(ctx context.Context, caller string, medium token.Medium) error {
	if err := medium.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	if caller != r.owner {
		r.mu.Unlock()
		return ErrNotContractOwner
	}
	old := r.loyaltyToken
	r.loyaltyToken = medium
	r.mu.Unlock()

	r.append(ctx, caller, event.TypeLoyaltyTokenChanged, event.LoyaltyTokenChangedPayload{
		OldToken: old.Label(), NewToken: medium.Label(),
	})
	return nil
}

// append logs a configuration event. Configuration reads never depend on the
// journal, so a nil sink only drops the audit trail.
func (r *Registry) append(ctx context.Context, actor string, typ event.Type, payload any) {
	if r.sink == nil {
		return
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = r.sink.Append(ctx, event.Event{
		Type:        typ,
		Actor:       actor,
		Timestamp:   r.clock().UTC(),
		PayloadJSON: payloadJSON,
	})
}
