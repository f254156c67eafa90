package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/claimledger/internal/claim/event"
	"github.com/louisbranch/claimledger/internal/token"
)

type sinkRecorder struct {
	events []event.Event
}

func (s *sinkRecorder) Append(_ context.Context, evt event.Event) error {
	s.events = append(s.events, evt)
	return nil
}

func testClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newTestRegistry(t *testing.T, sink EventSink, ledger token.Ledger) *Registry {
	t.Helper()
	r, err := New(context.Background(), Config{
		Description: "test registry",
		Owner:       "operator",
		Collector:   "collector",
		BaseFeeBps:  1000,
	}, sink, ledger, testClock())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r
}

func TestNewValidation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing owner",
			cfg:     Config{Collector: "collector"},
			wantErr: ErrZeroOwner,
		},
		{
			name:    "missing collector",
			cfg:     Config{Owner: "operator"},
			wantErr: ErrZeroCollector,
		},
		{
			name:    "base fee above 100%",
			cfg:     Config{Owner: "operator", Collector: "collector", BaseFeeBps: 10001},
			wantErr: ErrInvalidBasisPoints,
		},
		{
			name:    "reduced fee above 100%",
			cfg:     Config{Owner: "operator", Collector: "collector", ReducedFeeBps: 10001},
			wantErr: ErrInvalidBasisPoints,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.cfg, nil, nil, testClock())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewEmitsInitialConfiguration(t *testing.T) {
	sink := &sinkRecorder{}
	newTestRegistry(t, sink, nil)

	want := []event.Type{
		event.TypeFeeChanged,
		event.TypeCollectorChanged,
		event.TypeOwnerChanged,
	}
	if len(sink.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(sink.events))
	}
	for i, typ := range want {
		if sink.events[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, sink.events[i].Type)
		}
	}
}

func TestOwnerGatedMutations(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t, &sinkRecorder{}, nil)

	tests := []struct {
		name string
		call func() error
	}{
		{"set owner", func() error { return r.SetOwner(ctx, "mallory", "mallory") }},
		{"set base fee", func() error { return r.SetBaseFee(ctx, "mallory", 500) }},
		{"set reduced fee", func() error { return r.SetReducedFee(ctx, "mallory", 100) }},
		{"set threshold", func() error { return r.SetLoyaltyThreshold(ctx, "mallory", 10) }},
		{"set collector", func() error { return r.SetCollector(ctx, "mallory", "mallory") }},
		{"set loyalty token", func() error { return r.SetLoyaltyToken(ctx, "mallory", token.Native()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrNotContractOwner) {
				t.Fatalf("expected not-contract-owner error, got %v", err)
			}
		})
	}
}

func TestSetOwnerReassigns(t *testing.T) {
	ctx := context.Background()
	sink := &sinkRecorder{}
	r := newTestRegistry(t, sink, nil)

	if err := r.SetOwner(ctx, "operator", "successor"); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if r.Owner() != "successor" {
		t.Fatalf("expected successor owner, got %q", r.Owner())
	}
	// The previous owner lost control.
	if err := r.SetBaseFee(ctx, "operator", 500); !errors.Is(err, ErrNotContractOwner) {
		t.Fatalf("expected not-contract-owner error, got %v", err)
	}
	if err := r.SetBaseFee(ctx, "successor", 500); err != nil {
		t.Fatalf("set base fee as successor: %v", err)
	}

	last := sink.events[len(sink.events)-1]
	if last.Type != event.TypeFeeChanged {
		t.Fatalf("expected fee-changed event, got %s", last.Type)
	}
}

func TestFeeForBaseRate(t *testing.T) {
	r := newTestRegistry(t, nil, nil)

	bps, collector, err := r.FeeFor(context.Background(), "bob")
	if err != nil {
		t.Fatalf("fee for: %v", err)
	}
	if bps != 1000 {
		t.Fatalf("expected 1000 bps, got %d", bps)
	}
	if collector != "collector" {
		t.Fatalf("expected collector, got %q", collector)
	}
}

func TestFeeForLoyaltyDiscount(t *testing.T) {
	ctx := context.Background()
	ledger := token.NewMemoryLedger()
	loyalty := token.Contract("loyalty")
	ledger.RegisterContract("loyalty")
	ledger.Mint(loyalty, "bob", 50)

	r := newTestRegistry(t, nil, ledger)
	if err := r.SetReducedFee(ctx, "operator", 200); err != nil {
		t.Fatalf("set reduced fee: %v", err)
	}
	if err := r.SetLoyaltyThreshold(ctx, "operator", 50); err != nil {
		t.Fatalf("set threshold: %v", err)
	}
	if err := r.SetLoyaltyToken(ctx, "operator", loyalty); err != nil {
		t.Fatalf("set loyalty token: %v", err)
	}

	bps, _, err := r.FeeFor(ctx, "bob")
	if err != nil {
		t.Fatalf("fee for bob: %v", err)
	}
	if bps != 200 {
		t.Fatalf("expected reduced 200 bps for loyal payer, got %d", bps)
	}

	bps, _, err = r.FeeFor(ctx, "carol")
	if err != nil {
		t.Fatalf("fee for carol: %v", err)
	}
	if bps != 1000 {
		t.Fatalf("expected base 1000 bps for payer below threshold, got %d", bps)
	}
}

func TestComputeFee(t *testing.T) {
	tests := []struct {
		amount uint64
		bps    uint64
		want   uint64
	}{
		{100, 1000, 10},
		{100, 0, 0},
		{1, 1, 0},
		{9999, 1, 0},
		{10000, 1, 1},
		{100, 10000, 100},
		{33, 1000, 3},
		{1 << 60, 10000, 1 << 60},
	}
	for _, tt := range tests {
		if got := ComputeFee(tt.amount, tt.bps); got != tt.want {
			t.Fatalf("ComputeFee(%d, %d): expected %d, got %d", tt.amount, tt.bps, tt.want, got)
		}
	}
}
