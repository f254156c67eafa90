// Package storage defines the persistence interfaces for the claim engine:
// the claim arena, the ownership ledger, tags, the event journal, and
// operational telemetry. Implementations live in the memory and sqlite
// sub-packages.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Tag is the per-claim label pair set independently by creditor and debtor.
type Tag struct {
	CreditorTag string
	DebtorTag   string
	UpdatedAt   time.Time
}

// ListClaimsQuery describes a paged, optionally filtered claim listing.
// Filter is an AIP-160 expression over creditor, debtor, status, and medium.
type ListClaimsQuery struct {
	PageSize  int
	PageToken string
	Filter    string
}

// ClaimPage is one page of claims ordered by ascending identifier.
type ClaimPage struct {
	Claims        []claim.Claim
	NextPageToken string
}

// TelemetryEvent records one operational occurrence for diagnostics.
type TelemetryEvent struct {
	Name      string
	Severity  string
	ClaimID   uint64
	Actor     string
	Detail    string
	TraceID   string
	SpanID    string
	Timestamp time.Time
}

// Store persists claims, holders, tags, and the event journal.
//
// Identifier allocation is strictly increasing from 1 and identifiers are
// never reused; 0 is the reserved "no claim" sentinel. Every existing claim
// has exactly one holder at any time.
type Store interface {
	// CreateClaim inserts a claim, allocates its identifier, and records the
	// creditor as the initial holder. Returns the allocated identifier.
	CreateClaim(ctx context.Context, c claim.Claim) (uint64, error)
	// GetClaim returns the claim for an identifier or ErrNotFound.
	GetClaim(ctx context.Context, id uint64) (claim.Claim, error)
	// UpdateClaim replaces the stored claim state for its identifier.
	UpdateClaim(ctx context.Context, c claim.Claim) error
	// ListClaims returns a page of claims matching the query.
	ListClaims(ctx context.Context, query ListClaimsQuery) (ClaimPage, error)

	// HolderOf returns the current holder of a claim's unique token.
	HolderOf(ctx context.Context, id uint64) (string, error)
	// SetHolder atomically reassigns the holder of a claim.
	SetHolder(ctx context.Context, id uint64, holder string) error

	// GetTag returns the tag pair for a claim; missing tags are zero.
	GetTag(ctx context.Context, id uint64) (Tag, error)
	// PutTag replaces the tag pair for a claim.
	PutTag(ctx context.Context, id uint64, tag Tag) error

	// AppendEvent appends to the journal, assigning the sequence number.
	AppendEvent(ctx context.Context, evt event.Event) error
	// ListEvents returns journal events, oldest first. A claimID of zero
	// selects registry-level events.
	ListEvents(ctx context.Context, claimID uint64, limit int) ([]event.Event, error)

	// InTx runs fn against a transactional view of the store. If fn returns
	// an error every write made inside fn is rolled back.
	InTx(ctx context.Context, fn func(Store) error) error

	// Close releases the underlying resources.
	Close() error
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}
