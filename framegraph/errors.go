package framegraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks registration-time misuse: duplicate pass names or
	// registering against an already-compiled graph.
	ErrConfiguration = errors.New("frame graph configuration error")

	// ErrCycle marks a dependency cycle found during Compile.
	ErrCycle = errors.New("frame graph cycle detected")

	// ErrPrecondition marks lifecycle misuse: Execute before Compile, or
	// Compile again without Reset.
	ErrPrecondition = errors.New("frame graph precondition violated")
)

// ConfigurationError wraps ErrConfiguration with registration context.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Msg)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// CycleError reports one witness cycle found during Compile.
// Members holds the pass names along the cycle in edge order, without the
// closing repetition. The witness is deterministic for identical registrations.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	if len(e.Members) == 0 {
		return ErrCycle.Error()
	}
	return fmt.Sprintf("%s: %s -> %s", ErrCycle.Error(), strings.Join(e.Members, " -> "), e.Members[0])
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// PreconditionError wraps ErrPrecondition with lifecycle context.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPrecondition.Error(), e.Msg)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}
