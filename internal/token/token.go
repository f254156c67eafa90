// Package token models the value mediums a claim can settle in and the
// collaborator interface the engine uses to move value between parties.
package token

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/claimledger/internal/errors"
)

// Kind discriminates the payment medium variants.
type Kind int

const (
	// KindUnspecified represents an invalid medium value.
	KindUnspecified Kind = iota
	// KindNative indicates the host ledger's native value.
	KindNative
	// KindToken indicates a fungible-token contract.
	KindToken
)

// Medium identifies the value medium a claim settles in.
// Contract is the token contract handle and is empty for native value.
type Medium struct {
	Kind     Kind
	Contract string
}

// Native returns the native-value medium.
func Native() Medium {
	return Medium{Kind: KindNative}
}

// Contract returns a fungible-token medium for the given contract handle.
func Contract(handle string) Medium {
	return Medium{Kind: KindToken, Contract: strings.TrimSpace(handle)}
}

// IsZero reports whether the medium is unset.
func (m Medium) IsZero() bool {
	return m.Kind == KindUnspecified
}

// Label returns a stable label for the medium, used in events and telemetry.
func (m Medium) Label() string {
	switch m.Kind {
	case KindNative:
		return "native"
	case KindToken:
		return m.Contract
	default:
		return "unspecified"
	}
}

// Validate checks the medium is well formed. Token mediums must name a
// contract handle; native mediums must not.
func (m Medium) Validate() error {
	switch m.Kind {
	case KindNative:
		if m.Contract != "" {
			return apperrors.New(apperrors.CodeInvalidMedium, "native medium must not name a contract")
		}
		return nil
	case KindToken:
		if strings.TrimSpace(m.Contract) == "" {
			return apperrors.New(apperrors.CodeInvalidMedium, "token medium requires a contract handle")
		}
		return nil
	default:
		return apperrors.New(apperrors.CodeInvalidMedium, "payment medium is required")
	}
}

// Ledger is the value-medium collaborator. Implementations are external to
// the engine; failures must surface as errors with no partial transfers.
type Ledger interface {
	// BalanceOf returns the balance an account holds in the given medium.
	BalanceOf(ctx context.Context, medium Medium, account string) (uint64, error)
	// Transfer moves amount from one account to another in the given medium.
	Transfer(ctx context.Context, medium Medium, from, to string, amount uint64) error
}

// Directory resolves whether a handle refers to a token contract. The engine
// uses it to reject claim creation against non-contract token handles.
type Directory interface {
	IsContract(ctx context.Context, handle string) (bool, error)
}
