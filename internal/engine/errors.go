package engine

import (
	"errors"
	"fmt"
)

var (
	errNoWriter  = errors.New("no text service configured")
	errEmptyBody = errors.New("text service returned an empty body")
)

// Failure is the error every command returns when it refuses to act. The
// world is never mutated when a Failure is returned.
type Failure struct {
	Kind      FailureKind
	Reason    string
	Shortfall int // resource failures: how much is missing
	Err       error
}

func (f *Failure) Error() string {
	if f.Kind == FailResource && f.Shortfall > 0 {
		return fmt.Sprintf("%s (short by %d)", f.Reason, f.Shortfall)
	}
	return f.Reason
}

func (f *Failure) Unwrap() error { return f.Err }

func invalid(format string, args ...any) error {
	return &Failure{Kind: FailValidation, Reason: fmt.Sprintf(format, args...)}
}

func shortOf(what string, need, have int) error {
	return &Failure{
		Kind:      FailResource,
		Reason:    fmt.Sprintf("not enough %s: need %d, have %d", what, need, have),
		Shortfall: need - have,
	}
}

// GenerationError is a typed text-generation failure.
type GenerationError struct {
	Category GenerationCategory
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return string(e.Category)
	}
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// externalFailure turns a ghostwriter error into a recoverable Failure whose
// reason is prefixed with the generation category.
func externalFailure(err error) error {
	var ge *GenerationError
	if !errors.As(err, &ge) {
		ge = &GenerationError{Category: GenNetwork, Err: err}
	}
	return &Failure{Kind: FailExternal, Reason: ge.Error(), Err: err}
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

// PersistenceFailure reports a failed save or load. It is never fatal;
// gameplay continues in memory.
func PersistenceFailure(op string, err error) error {
	return &Failure{Kind: FailPersistence, Reason: fmt.Sprintf("%s: %v", op, err), Err: err}
}
