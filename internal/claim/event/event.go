// Package event defines the append-only journal events emitted by the claim
// engine. External indexers consume this journal; the engine never reads it
// back for state.
package event

import (
	"strings"
	"time"
)

// Type identifies the type of a journal event.
type Type string

// Claim lifecycle events.
const (
	// TypeClaimCreated records the creation of a claim.
	TypeClaimCreated Type = "claim.created"
	// TypeClaimPayment records a payment against a claim.
	TypeClaimPayment Type = "claim.payment"
	// TypeClaimRejected records a debtor rejecting a pending claim.
	TypeClaimRejected Type = "claim.rejected"
	// TypeClaimRescinded records a creditor withdrawing a pending claim.
	TypeClaimRescinded Type = "claim.rescinded"
	// TypeClaimTransferred records an ownership transfer.
	TypeClaimTransferred Type = "claim.transferred"
	// TypeTransferPriceUpdated records a transfer price change.
	TypeTransferPriceUpdated Type = "claim.transfer_price_updated"
	// TypeAttachmentAdded records the one-time attachment write.
	TypeAttachmentAdded Type = "claim.attachment_added"
)

// Tag events.
const (
	// TypeTagUpdated records a creditor or debtor tag write.
	TypeTagUpdated Type = "tag.updated"
)

// Registry configuration events.
const (
	// TypeFeeChanged records a base or reduced fee rate change.
	TypeFeeChanged Type = "registry.fee_changed"
	// TypeFeeThresholdChanged records a loyalty threshold change.
	TypeFeeThresholdChanged Type = "registry.fee_threshold_changed"
	// TypeCollectorChanged records a fee collector change.
	TypeCollectorChanged Type = "registry.collector_changed"
	// TypeOwnerChanged records a registry ownership change.
	TypeOwnerChanged Type = "registry.owner_changed"
	// TypeLoyaltyTokenChanged records a loyalty token handle change.
	TypeLoyaltyTokenChanged Type = "registry.loyalty_token_changed"
)

// Event represents an immutable event in the journal.
type Event struct {
	// ClaimID is the claim this event belongs to; zero for registry events.
	ClaimID uint64
	// Seq is the journal sequence number, assigned by storage on append.
	Seq uint64
	// Type identifies the event.
	Type Type
	// Actor is the identity whose operation produced the event.
	Actor string
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// PayloadJSON carries the type-specific payload.
	PayloadJSON []byte
}

// Validate reports whether the event carries the minimum required fields.
func (e Event) Validate() bool {
	return strings.TrimSpace(string(e.Type)) != "" && !e.Timestamp.IsZero()
}
