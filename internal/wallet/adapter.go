package wallet

import (
	"context"

	dErrors "evidgate/pkg/domain-errors"
)

// Adapter translates raw provider interactions into domain results the
// registration flow can act on.
type Adapter struct {
	provider Provider
}

func NewAdapter(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

// Connect requests account access and returns the primary account.
//
// Errors: CodeNoAccounts when the provider returns an empty account list
// (typically a locked wallet); CodeProviderFailure wrapping any provider
// rejection, including the user declining the prompt.
func (a *Adapter) Connect(ctx context.Context) (Address, error) {
	accounts, err := a.provider.RequestAccounts(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeProviderFailure, "failed to connect wallet")
	}
	if len(accounts) == 0 {
		return "", dErrors.New(dErrors.CodeNoAccounts, "no accounts found; unlock the wallet")
	}
	return accounts[0], nil
}

// ActiveAccounts performs the non-intrusive account check used for
// auto-connect and change detection. It never prompts.
func (a *Adapter) ActiveAccounts(ctx context.Context) ([]Address, error) {
	accounts, err := a.provider.Accounts(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeProviderFailure, "failed to list accounts")
	}
	return accounts, nil
}
