package reasoning

import (
	"context"
	"fmt"
)

// FailureClass distinguishes reasoning-backend failures for retry decisions.
type FailureClass string

const (
	FailureTimeout     FailureClass = "timeout"
	FailureRateLimited FailureClass = "rate_limited"
	FailureUnavailable FailureClass = "unavailable"
	FailureOther       FailureClass = "other"
)

// Provider is the single capability a reasoning backend must offer: turn a
// prompt into raw text. Implementations must honor the context deadline.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderError wraps a backend failure with its class and provider name.
type ProviderError struct {
	Provider string
	Class    FailureClass
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (%s): %v", e.Provider, e.Class, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying on the same
// provider before advancing the chain.
func (e *ProviderError) Transient() bool {
	switch e.Class {
	case FailureTimeout, FailureRateLimited, FailureUnavailable:
		return true
	}
	return false
}
