// Package reasoning defines the contract with the external inference engine
// that translates questions into SQL and results into prose, along with the
// hosted providers that implement it.
package reasoning

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by every call on an Unconfigured service.
var ErrNotConfigured = errors.New("reasoning service not configured")

// Request is the provider-independent shape of one reasoning call.
type Request struct {
	// Instructions carry grounding: schema, rules and examples.
	Instructions string
	// TaskInput carries the raw question or the consolidated results.
	TaskInput string
}

// Service is the two-operation contract the pipeline depends on.
type Service interface {
	Translate(ctx context.Context, req Request) (string, error)
	Summarize(ctx context.Context, req Request) (string, error)
}

// Unconfigured is the explicit state of a service without a credential.
type Unconfigured struct {
	Reason string
}

func (u Unconfigured) Translate(context.Context, Request) (string, error) {
	return "", u.err()
}

func (u Unconfigured) Summarize(context.Context, Request) (string, error) {
	return "", u.err()
}

func (u Unconfigured) err() error {
	if u.Reason == "" {
		return ErrNotConfigured
	}
	return fmt.Errorf("%w: %s", ErrNotConfigured, u.Reason)
}

// Configured reports whether s can reach a provider.
func Configured(s Service) bool {
	switch s.(type) {
	case nil, Unconfigured, *Unconfigured:
		return false
	default:
		return true
	}
}
