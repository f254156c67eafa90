package event

// ClaimCreatedPayload captures the payload for claim.created events.
type ClaimCreatedPayload struct {
	Creditor    string `json:"creditor"`
	Debtor      string `json:"debtor"`
	Creator     string `json:"creator"`
	Description string `json:"description,omitempty"`
	Amount      uint64 `json:"amount"`
	Medium      string `json:"medium"`
	DueBy       int64  `json:"due_by,omitempty"`
}

// ClaimPaymentPayload captures the payload for claim.payment events.
type ClaimPaymentPayload struct {
	Payer      string `json:"payer"`
	Amount     uint64 `json:"amount"`
	Fee        uint64 `json:"fee"`
	PaidAmount uint64 `json:"paid_amount"`
	Status     string `json:"status"`
}

// ClaimRejectedPayload captures the payload for claim.rejected events.
type ClaimRejectedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ClaimTransferredPayload captures the payload for claim.transferred events.
type ClaimTransferredPayload struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Price uint64 `json:"price"`
}

// TransferPriceUpdatedPayload captures the payload for
// claim.transfer_price_updated events.
type TransferPriceUpdatedPayload struct {
	OldPrice uint64 `json:"old_price"`
	NewPrice uint64 `json:"new_price"`
}

// AttachmentAddedPayload captures the payload for claim.attachment_added events.
type AttachmentAddedPayload struct {
	Hash         string `json:"hash"`
	HashFunction uint8  `json:"hash_function"`
	Size         uint8  `json:"size"`
}

// TagUpdatedPayload captures the payload for tag.updated events.
type TagUpdatedPayload struct {
	Updater string `json:"updater"`
	Role    string `json:"role"`
	Tag     string `json:"tag"`
}

// FeeChangedPayload captures the payload for registry.fee_changed events.
type FeeChangedPayload struct {
	Field  string `json:"field"`
	OldBps uint64 `json:"old_bps"`
	NewBps uint64 `json:"new_bps"`
}

// FeeThresholdChangedPayload captures the payload for
// registry.fee_threshold_changed events.
type FeeThresholdChangedPayload struct {
	OldThreshold uint64 `json:"old_threshold"`
	NewThreshold uint64 `json:"new_threshold"`
}

// CollectorChangedPayload captures the payload for
// registry.collector_changed events.
type CollectorChangedPayload struct {
	OldCollector string `json:"old_collector"`
	NewCollector string `json:"new_collector"`
}

// OwnerChangedPayload captures the payload for registry.owner_changed events.
type OwnerChangedPayload struct {
	OldOwner string `json:"old_owner"`
	NewOwner string `json:"new_owner"`
}

// LoyaltyTokenChangedPayload captures the payload for
// registry.loyalty_token_changed events.
type LoyaltyTokenChangedPayload struct {
	OldToken string `json:"old_token"`
	NewToken string `json:"new_token"`
}
