package claim

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/token"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func pendingClaim() Claim {
	c, err := New(CreateInput{
		Creditor: "alice",
		Debtor:   "bob",
		Amount:   100,
		Medium:   token.Native(),
	}, fixedClock())
	if err != nil {
		panic(err)
	}
	return c
}

func TestNewValidation(t *testing.T) {
	clock := fixedClock()
	tests := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{
			name:    "missing creditor",
			input:   CreateInput{Debtor: "bob", Amount: 100, Medium: token.Native()},
			wantErr: ErrZeroAddress,
		},
		{
			name:    "missing debtor",
			input:   CreateInput{Creditor: "alice", Amount: 100, Medium: token.Native()},
			wantErr: ErrZeroAddress,
		},
		{
			name:    "zero amount",
			input:   CreateInput{Creditor: "alice", Debtor: "bob", Medium: token.Native()},
			wantErr: ErrZeroAmount,
		},
		{
			name: "past due date",
			input: CreateInput{
				Creditor: "alice", Debtor: "bob", Amount: 100,
				Medium: token.Native(),
				DueBy:  clock().Add(-time.Hour),
			},
			wantErr: ErrPastDueDate,
		},
		{
			name: "missing medium",
			input: CreateInput{
				Creditor: "alice", Debtor: "bob", Amount: 100,
			},
			wantErr: apperrors.New(apperrors.CodeInvalidMedium, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.input, clock)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	clock := fixedClock()
	c, err := New(CreateInput{
		Creditor: "  alice  ",
		Debtor:   "bob",
		Amount:   100,
		Medium:   token.Native(),
		DueBy:    clock().Add(24 * time.Hour),
	}, clock)
	if err != nil {
		t.Fatalf("new claim: %v", err)
	}
	if c.Creditor != "alice" {
		t.Fatalf("expected trimmed creditor, got %q", c.Creditor)
	}
	if c.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", c.Status.Label())
	}
	if c.PaidAmount != 0 {
		t.Fatalf("expected zero paid amount, got %d", c.PaidAmount)
	}
	if !c.CreatedAt.Equal(clock().UTC()) {
		t.Fatalf("expected created at %v, got %v", clock().UTC(), c.CreatedAt)
	}
}

func TestApplyPaymentPartialThenFull(t *testing.T) {
	clock := fixedClock()
	c := pendingClaim()

	c, err := ApplyPayment(c, "bob", 20, clock)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if c.Status != StatusRepaying {
		t.Fatalf("expected repaying after partial payment, got %s", c.Status.Label())
	}
	if c.PaidAmount != 20 {
		t.Fatalf("expected paid amount 20, got %d", c.PaidAmount)
	}

	c, err = ApplyPayment(c, "bob", 80, clock)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if c.Status != StatusPaid {
		t.Fatalf("expected paid after full payment, got %s", c.Status.Label())
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected zero remaining, got %d", c.Remaining())
	}
}

func TestApplyPaymentErrors(t *testing.T) {
	clock := fixedClock()

	t.Run("not debtor", func(t *testing.T) {
		_, err := ApplyPayment(pendingClaim(), "mallory", 10, clock)
		if !errors.Is(err, ErrNotDebtor) {
			t.Fatalf("expected not-debtor error, got %v", err)
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := ApplyPayment(pendingClaim(), "bob", 0, clock)
		if !apperrors.IsCode(err, apperrors.CodeValueMustBePositive) {
			t.Fatalf("expected zero-value error, got %v", err)
		}
	})

	t.Run("overpayment", func(t *testing.T) {
		c, err := ApplyPayment(pendingClaim(), "bob", 20, clock)
		if err != nil {
			t.Fatalf("partial payment: %v", err)
		}
		_, err = ApplyPayment(c, "bob", 81, clock)
		if !apperrors.IsCode(err, apperrors.CodeRepayingTooMuch) {
			t.Fatalf("expected overpayment error, got %v", err)
		}
		meta := apperrors.GetMetadata(err)
		if meta["Remaining"] != "80" {
			t.Fatalf("expected remaining 80 in metadata, got %q", meta["Remaining"])
		}
	})

	t.Run("terminal claim", func(t *testing.T) {
		c, err := ApplyPayment(pendingClaim(), "bob", 100, clock)
		if err != nil {
			t.Fatalf("full payment: %v", err)
		}
		_, err = ApplyPayment(c, "bob", 1, clock)
		if !errors.Is(err, ErrCompleted) {
			t.Fatalf("expected completed error, got %v", err)
		}
	})
}

func TestRejectPendingOnly(t *testing.T) {
	clock := fixedClock()

	c, err := Reject(pendingClaim(), "bob", clock)
	if err != nil {
		t.Fatalf("reject pending: %v", err)
	}
	if c.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", c.Status.Label())
	}

	if _, err := Reject(pendingClaim(), "alice", clock); !errors.Is(err, ErrNotDebtor) {
		t.Fatalf("expected not-debtor error, got %v", err)
	}

	repaying, err := ApplyPayment(pendingClaim(), "bob", 20, clock)
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if _, err := Reject(repaying, "bob", clock); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected not-pending error, got %v", err)
	}
}

func TestRescindHolderOnly(t *testing.T) {
	clock := fixedClock()

	c, err := Rescind(pendingClaim(), "alice", "alice", clock)
	if err != nil {
		t.Fatalf("rescind pending: %v", err)
	}
	if c.Status != StatusRescinded {
		t.Fatalf("expected rescinded, got %s", c.Status.Label())
	}

	// The creditor loses the right to rescind after selling the claim.
	if _, err := Rescind(pendingClaim(), "carol", "alice", clock); !errors.Is(err, ErrNotCreditor) {
		t.Fatalf("expected not-creditor error, got %v", err)
	}

	repaying, err := ApplyPayment(pendingClaim(), "bob", 20, clock)
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if _, err := Rescind(repaying, "alice", "alice", clock); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected not-pending error, got %v", err)
	}
}

func TestWithAttachmentOnce(t *testing.T) {
	clock := fixedClock()
	attachment := Multihash{Hash: "Qm1234", HashFunction: 0x12, Size: 32}

	c, err := WithAttachment(pendingClaim(), attachment, clock)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if c.Attachment != attachment {
		t.Fatalf("expected attachment %+v, got %+v", attachment, c.Attachment)
	}

	if _, err := WithAttachment(c, attachment, clock); !errors.Is(err, ErrAttachmentSet) {
		t.Fatalf("expected attachment-set error, got %v", err)
	}

	terminal, err := Reject(pendingClaim(), "bob", clock)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := WithAttachment(terminal, attachment, clock); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected completed error, got %v", err)
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusRepaying, false},
		{StatusPaid, true},
		{StatusRejected, true},
		{StatusRescinded, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Fatalf("%s terminal: expected %v, got %v", tt.status.Label(), tt.want, got)
		}
	}
}
