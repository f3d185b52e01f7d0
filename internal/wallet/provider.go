// Package wallet adapts an external wallet provider into the account
// operations the registration flow needs: a prompting connect, a
// non-intrusive account check, and change notifications.
package wallet

import "context"

// Address is a wallet account identifier, case-sensitive as supplied by the
// provider.
type Address = string

// Provider is the external wallet collaborator. RequestAccounts may prompt
// the user; Accounts must not.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]Address, error)
	Accounts(ctx context.Context) ([]Address, error)
}
