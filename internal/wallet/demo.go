package wallet

import (
	"context"
	"time"
)

// DemoAddress is the fixed placeholder identity used when no wallet provider
// is configured.
const DemoAddress Address = "0x1234567890123456789012345678901234567890"

// demoConnectDelay models real provider latency so downstream loading states
// stay exercised.
const demoConnectDelay = 1500 * time.Millisecond

// DemoProvider substitutes a well-known placeholder account when no provider
// is present. This is a deliberate fallback, not an error path: connect
// succeeds after an artificial delay and always yields DemoAddress.
type DemoProvider struct {
	delay time.Duration
}

func NewDemoProvider() *DemoProvider {
	return &DemoProvider{delay: demoConnectDelay}
}

// NewDemoProviderWithDelay lets tests shrink the artificial latency.
func NewDemoProviderWithDelay(delay time.Duration) *DemoProvider {
	return &DemoProvider{delay: delay}
}

func (p *DemoProvider) RequestAccounts(ctx context.Context) ([]Address, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.delay):
	}
	return []Address{DemoAddress}, nil
}

func (p *DemoProvider) Accounts(context.Context) ([]Address, error) {
	return []Address{DemoAddress}, nil
}
