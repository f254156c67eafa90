// Package delegation lets registered signers of a multi-party account invoke
// claim operations as if the account itself were the caller. The module only
// re-derives the logical caller; the engine's own authorization checks stay
// unaware of delegation.
package delegation

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/engine"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
)

// ErrNotSafeOwner indicates the signer is not a member of the account's
// signer set.
var ErrNotSafeOwner = apperrors.New(apperrors.CodeNotSafeOwner, "signer is not an account owner")

// Membership is the multi-party account collaborator. The module only
// queries membership, never manages it.
type Membership interface {
	// IsOwner reports whether signer belongs to the account's signer set.
	IsOwner(ctx context.Context, account, signer string) (bool, error)
}

// Credentials identifies the physical caller of a delegated operation.
// Grant carries the optional offline signer grant and may be empty when the
// module has no grant verifier configured.
type Credentials struct {
	Signer string
	Grant  string
}

// Module forwards claim operations to the engine with the account
// substituted as caller.
type Module struct {
	engine     *engine.Engine
	account    string
	membership Membership
	grants     *GrantConfig
}

// Option configures optional module behavior.
type Option func(*Module)

// WithGrantVerification requires every delegated call to present a valid
// signer grant in addition to passing the live membership query.
func WithGrantVerification(cfg GrantConfig) Option {
	return func(m *Module) {
		m.grants = &cfg
	}
}

// New creates a delegation module bound to one account.
func New(eng *engine.Engine, account string, membership Membership, opts ...Option) (*Module, error) {
	if eng == nil {
		return nil, fmt.Errorf("delegation engine is required")
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, claim.ErrZeroAddress
	}
	if membership == nil {
		return nil, fmt.Errorf("delegation membership collaborator is required")
	}
	m := &Module{engine: eng, account: account, membership: membership}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Account returns the account the module acts for.
func (m *Module) Account() string {
	return m.account
}

// authorize checks the signer against the account's live signer set and,
// when configured, the offline grant. Module-level failures are distinct
// from failures of the forwarded operation.
func (m *Module) authorize(ctx context.Context, creds Credentials) error {
	signer := strings.TrimSpace(creds.Signer)
	if signer == "" {
		return ErrNotSafeOwner
	}
	isOwner, err := m.membership.IsOwner(ctx, m.account, signer)
	if err != nil {
		return fmt.Errorf("query account membership: %w", err)
	}
	if !isOwner {
		return ErrNotSafeOwner
	}
	if m.grants != nil {
		if _, err := ValidateSignerGrant(creds.Grant, GrantExpectation{
			Account: m.account,
			Signer:  signer,
		}, *m.grants); err != nil {
			return err
		}
	}
	return nil
}

// CreateClaim creates a claim with the account as creator of record. The
// account must be one of the claim's parties.
func (m *Module) CreateClaim(ctx context.Context, creds Credentials, input claim.CreateInput, tag string) (claim.Claim, error) {
	if err := m.authorize(ctx, creds); err != nil {
		return claim.Claim{}, err
	}
	created, err := m.engine.CreateClaim(ctx, m.account, input, tag)
	if err != nil {
		return claim.Claim{}, apperrors.Wrap(apperrors.CodeDelegatedCreateFailed, "create claim failed", err)
	}
	return created, nil
}

// BatchCreate creates a batch of claims with the account as creator.
func (m *Module) BatchCreate(ctx context.Context, creds Credentials, requests []engine.BatchRequest) ([]uint64, error) {
	if err := m.authorize(ctx, creds); err != nil {
		return nil, err
	}
	ids, err := m.engine.BatchCreate(ctx, m.account, requests)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDelegatedBatchFailed, "batch create failed", err)
	}
	return ids, nil
}

// UpdateTag writes the account's tag on a claim where the account is a party.
func (m *Module) UpdateTag(ctx context.Context, creds Credentials, id uint64, tag string) error {
	if err := m.authorize(ctx, creds); err != nil {
		return err
	}
	return m.engine.UpdateTag(ctx, m.account, id, tag)
}

// RejectClaim rejects a pending claim where the account is the debtor.
func (m *Module) RejectClaim(ctx context.Context, creds Credentials, id uint64, reason string) (claim.Claim, error) {
	if err := m.authorize(ctx, creds); err != nil {
		return claim.Claim{}, err
	}
	return m.engine.RejectClaim(ctx, m.account, id, reason)
}

// RescindClaim rescinds a pending claim the account currently owns.
func (m *Module) RescindClaim(ctx context.Context, creds Credentials, id uint64) (claim.Claim, error) {
	if err := m.authorize(ctx, creds); err != nil {
		return claim.Claim{}, err
	}
	return m.engine.RescindClaim(ctx, m.account, id)
}
