package dispatch

import "fmt"

// ArityMismatchError is returned when the argument count does not equal the
// member's declared parameter count.
type ArityMismatchError struct {
	FullKey  string
	Want, Got int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("dispatch: %s expects %d argument(s), got %d", e.FullKey, e.Want, e.Got)
}

// InvocationFailureError wraps any error or panic raised by the target
// method, or by asynchronous/reactive result unwrapping.
type InvocationFailureError struct {
	FullKey string
	Cause   error
}

func (e *InvocationFailureError) Error() string {
	return fmt.Sprintf("dispatch: %s failed: %v", e.FullKey, e.Cause)
}

func (e *InvocationFailureError) Unwrap() error { return e.Cause }

// WrongKindForWriteError is returned when a write is attempted on a
// CALLABLE member.
type WrongKindForWriteError struct {
	FullKey string
}

func (e *WrongKindForWriteError) Error() string {
	return fmt.Sprintf("dispatch: %s is a callable, not writable", e.FullKey)
}

// ImmutableTargetError is returned when a write is attempted on an
// immutable DATUM.
type ImmutableTargetError struct {
	FullKey string
}

func (e *ImmutableTargetError) Error() string {
	return fmt.Sprintf("dispatch: %s is immutable", e.FullKey)
}
