package registry

import "fmt"

// NotFoundError is returned when no canonical or alias key matches a lookup
// at any level.
type NotFoundError struct {
	ContainerName string
	MemberName    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registry: no member %s.%s", e.ContainerName, e.MemberName)
}

// AmbiguousInvocationError is a recoverable signal, not a terminal failure:
// it carries the full overload candidate set so the dispatcher can narrow
// further by argument-shape inference.
type AmbiguousInvocationError struct {
	ContainerName string
	MemberName    string
	Candidates    []*ExposableMember
}

func (e *AmbiguousInvocationError) Error() string {
	return fmt.Sprintf("registry: %d ambiguous candidates for %s.%s", len(e.Candidates), e.ContainerName, e.MemberName)
}

// DescribeError wraps a malformed MemberDescriptor encountered during Register
// (an unknown GoMember name, or a shape mismatch between descriptor.Kind and
// the underlying Go member).
type DescribeError struct {
	ContainerName string
	GoMember      string
	Cause         error
}

func (e *DescribeError) Error() string {
	return fmt.Sprintf("registry: container %s member %s: %v", e.ContainerName, e.GoMember, e.Cause)
}

func (e *DescribeError) Unwrap() error { return e.Cause }
