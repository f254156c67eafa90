// Package claim implements the state machine for a single claim: parties,
// amount, due date, attachment, status, and transfer price. All functions are
// pure; callers supply the clock and persist the returned value.
package claim

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/token"
)

// Status describes the lifecycle of a claim.
type Status int

const (
	// StatusUnspecified represents an invalid claim status value.
	StatusUnspecified Status = iota
	// StatusPending indicates the claim awaits its first payment or action.
	StatusPending
	// StatusRepaying indicates the claim is partially repaid.
	StatusRepaying
	// StatusPaid indicates the claim is fully repaid. Terminal.
	StatusPaid
	// StatusRejected indicates the debtor rejected the claim. Terminal.
	StatusRejected
	// StatusRescinded indicates the creditor withdrew the claim. Terminal.
	StatusRescinded
)

// Terminal reports whether the status permits no further mutation of
// paidAmount, status, or attachment.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusRejected || s == StatusRescinded
}

// Label returns a stable label for a claim status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRepaying:
		return "REPAYING"
	case StatusPaid:
		return "PAID"
	case StatusRejected:
		return "REJECTED"
	case StatusRescinded:
		return "RESCINDED"
	default:
		return "UNSPECIFIED"
	}
}

var (
	// ErrZeroAddress indicates a missing creditor or debtor identity.
	ErrZeroAddress = apperrors.New(apperrors.CodeZeroAddress, "creditor and debtor are required")
	// ErrZeroAmount indicates a claim amount of zero.
	ErrZeroAmount = apperrors.New(apperrors.CodeValueMustBePositive, "claim amount must be greater than zero")
	// ErrPastDueDate indicates a due date strictly in the past.
	ErrPastDueDate = apperrors.New(apperrors.CodePastDueDate, "due date cannot be in the past")
	// ErrNotDebtor indicates the caller is not the claim's debtor.
	ErrNotDebtor = apperrors.New(apperrors.CodeNotDebtor, "caller is not the debtor")
	// ErrNotCreditor indicates the caller is not the claim's creditor.
	ErrNotCreditor = apperrors.New(apperrors.CodeNotCreditor, "caller is not the creditor")
	// ErrNotPending indicates the claim is past the pending state.
	ErrNotPending = apperrors.New(apperrors.CodeClaimNotPending, "claim is not pending")
	// ErrCompleted indicates a payment against a terminal claim.
	ErrCompleted = apperrors.New(apperrors.CodeClaimCompleted, "claim is already completed")
	// ErrAttachmentSet indicates an attachment was already recorded.
	ErrAttachmentSet = apperrors.New(apperrors.CodeAttachmentAlreadySet, "attachment is already set")
)

// Multihash is the opaque content-hash descriptor attached to a claim.
type Multihash struct {
	Hash         string
	HashFunction uint8
	Size         uint8
}

// IsZero reports whether no attachment is set.
func (m Multihash) IsZero() bool {
	return m == Multihash{}
}

// Claim is the state of one claim. The current holder ("owner") is tracked
// by the store's ownership ledger, not on the claim itself, so transfers
// never touch this record.
type Claim struct {
	ID          uint64
	Creditor    string
	Debtor      string
	Description string
	Amount      uint64
	PaidAmount  uint64
	Medium      token.Medium
	// DueBy is the due date; the zero time means no due date.
	DueBy         time.Time
	Status        Status
	Attachment    Multihash
	TransferPrice uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Remaining returns the unpaid portion of the claim amount.
func (c Claim) Remaining() uint64 {
	return c.Amount - c.PaidAmount
}

// CreateInput describes the data needed to create a claim.
type CreateInput struct {
	Creditor    string
	Debtor      string
	Description string
	Amount      uint64
	Medium      token.Medium
	DueBy       time.Time
	Attachment  Multihash
}

// NormalizeCreateInput trims identities and validates claim creation input.
func NormalizeCreateInput(input CreateInput, now func() time.Time) (CreateInput, error) {
	if now == nil {
		now = time.Now
	}
	input.Creditor = strings.TrimSpace(input.Creditor)
	input.Debtor = strings.TrimSpace(input.Debtor)
	input.Description = strings.TrimSpace(input.Description)
	if input.Creditor == "" || input.Debtor == "" {
		return CreateInput{}, ErrZeroAddress
	}
	if input.Amount == 0 {
		return CreateInput{}, ErrZeroAmount
	}
	if err := input.Medium.Validate(); err != nil {
		return CreateInput{}, err
	}
	if !input.DueBy.IsZero() && !input.DueBy.After(now()) {
		return CreateInput{}, ErrPastDueDate
	}
	return input, nil
}

// New creates a pending claim from validated input. The store assigns the
// identifier on insert and the creditor starts as the claim's owner.
func New(input CreateInput, now func() time.Time) (Claim, error) {
	if now == nil {
		now = time.Now
	}
	normalized, err := NormalizeCreateInput(input, now)
	if err != nil {
		return Claim{}, err
	}
	createdAt := now().UTC()
	return Claim{
		Creditor:    normalized.Creditor,
		Debtor:      normalized.Debtor,
		Description: normalized.Description,
		Amount:      normalized.Amount,
		Medium:      normalized.Medium,
		DueBy:       normalized.DueBy,
		Status:      StatusPending,
		Attachment:  normalized.Attachment,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// ApplyPayment records a payment increment by the caller and returns the
// updated claim. The caller must be the debtor, the claim must still be
// payable, and the increment must not exceed the remaining amount.
func ApplyPayment(c Claim, caller string, amount uint64, now func() time.Time) (Claim, error) {
	if now == nil {
		now = time.Now
	}
	if caller != c.Debtor {
		return Claim{}, ErrNotDebtor
	}
	if amount == 0 {
		return Claim{}, apperrors.New(apperrors.CodeValueMustBePositive, "payment must be greater than zero")
	}
	if c.Status.Terminal() {
		return Claim{}, ErrCompleted
	}
	if amount > c.Remaining() {
		return Claim{}, apperrors.WithMetadata(
			apperrors.CodeRepayingTooMuch,
			fmt.Sprintf("payment %d exceeds remaining %d", amount, c.Remaining()),
			map[string]string{
				"Amount":    fmt.Sprintf("%d", amount),
				"Remaining": fmt.Sprintf("%d", c.Remaining()),
			},
		)
	}

	updated := c
	updated.PaidAmount += amount
	if updated.PaidAmount < updated.Amount {
		updated.Status = StatusRepaying
	} else {
		updated.Status = StatusPaid
	}
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// Reject marks a pending claim as rejected by its debtor.
// A partially repaid claim can no longer be rejected.
func Reject(c Claim, caller string, now func() time.Time) (Claim, error) {
	if now == nil {
		now = time.Now
	}
	if caller != c.Debtor {
		return Claim{}, ErrNotDebtor
	}
	if c.Status != StatusPending {
		return Claim{}, ErrNotPending
	}
	updated := c
	updated.Status = StatusRejected
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// Rescind marks a pending claim as rescinded. The holder acts economically
// as the creditor, so the caller must be the claim's current owner.
// A partially repaid claim can no longer be rescinded.
func Rescind(c Claim, holder, caller string, now func() time.Time) (Claim, error) {
	if now == nil {
		now = time.Now
	}
	if caller != holder {
		return Claim{}, ErrNotCreditor
	}
	if c.Status != StatusPending {
		return Claim{}, ErrNotPending
	}
	updated := c
	updated.Status = StatusRescinded
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// WithAttachment sets the attachment once. Terminal claims and claims that
// already carry an attachment reject the update.
func WithAttachment(c Claim, attachment Multihash, now func() time.Time) (Claim, error) {
	if now == nil {
		now = time.Now
	}
	if c.Status.Terminal() {
		return Claim{}, ErrCompleted
	}
	if !c.Attachment.IsZero() {
		return Claim{}, ErrAttachmentSet
	}
	updated := c
	updated.Attachment = attachment
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// WithTransferPrice sets the price the current owner demands for transfer.
// Zero means transferable for free.
func WithTransferPrice(c Claim, price uint64, now func() time.Time) Claim {
	if now == nil {
		now = time.Now
	}
	updated := c
	updated.TransferPrice = price
	updated.UpdatedAt = now().UTC()
	return updated
}
