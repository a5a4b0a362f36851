package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when neither provider produced valid content
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse is returned when the model output cannot be parsed or
	// does not satisfy the schema
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for rate limits and server-side errors
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when a provider configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrNoProvider is returned when a client is built without a primary provider
	ErrNoProvider = errors.New("no generation provider configured")
)

// ProviderError records which provider failed and why.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// FailedError is returned when every attempt failed. It matches
// ErrGenerationFailed and each attempt's cause under errors.Is and errors.As.
type FailedError struct {
	Schema   string
	Attempts []error
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("%v for %s", ErrGenerationFailed, e.Schema)
	for _, err := range e.Attempts {
		msg += "; " + err.Error()
	}
	return msg
}

func (e *FailedError) Unwrap() []error {
	return append([]error{ErrGenerationFailed}, e.Attempts...)
}
