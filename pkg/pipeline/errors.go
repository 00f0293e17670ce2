package pipeline

import (
	"errors"
	"strings"
)

var (
	// ErrReasoningUnavailable covers an unconfigured reasoning service as
	// well as timeouts and provider errors at call time.
	ErrReasoningUnavailable = errors.New("reasoning service unavailable")

	// ErrTranslationMalformed is returned when the translation reply does not
	// follow the {"SQL", "additional"} contract.
	ErrTranslationMalformed = errors.New("translation reply malformed")

	// ErrExecution wraps the store error of a generated query.
	ErrExecution = errors.New("query execution failed")
)

const apologyPrefix = "I apologize, but I encountered an error while processing your question: "

// userMessage maps a stage error to text that is safe to show to an end user.
// Provider and network detail stay out of it.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrReasoningUnavailable):
		return "the reasoning service is not available"
	case errors.Is(err, ErrTranslationMalformed):
		return "the generated query could not be understood"
	case errors.Is(err, ErrExecution):
		msg := strings.TrimPrefix(err.Error(), ErrExecution.Error()+": ")
		return "the generated query could not be executed: " + msg
	default:
		return "an unexpected error occurred"
	}
}

func apology(err error) string {
	return apologyPrefix + userMessage(err)
}
