package delegation

import "context"

// StaticMembership is a fixed account-to-signers table. It serves tests and
// local tooling; production deployments query the account collaborator.
type StaticMembership map[string][]string

// IsOwner reports whether signer is registered for account.
func (m StaticMembership) IsOwner(_ context.Context, account, signer string) (bool, error) {
	for _, owner := range m[account] {
		if owner == signer {
			return true, nil
		}
	}
	return false, nil
}
