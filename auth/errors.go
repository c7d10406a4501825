package auth

import "fmt"

// NotAuthenticatedError covers every credential-related failure except a
// well-formed credential of a disallowed family: missing, malformed,
// expired, signature-invalid, issuer/audience-mismatch.
type NotAuthenticatedError struct {
	Reason string
}

func (e *NotAuthenticatedError) Error() string {
	return fmt.Sprintf("auth: not authenticated: %s", e.Reason)
}

// WrongFamilyError is DESIGN.md's Open Question 1 resolution: a
// credential that is well-formed and verifiable, but belongs to a family
// the member does not accept.
type WrongFamilyError struct {
	Member string
	Family string
}

func (e *WrongFamilyError) Error() string {
	return fmt.Sprintf("auth: %s requires %s, a valid credential of a different family was supplied", e.Member, e.Family)
}

// MisconfiguredAuthError is returned when a member declares a credential
// family whose validator was never instantiated.
type MisconfiguredAuthError struct {
	Family string
}

func (e *MisconfiguredAuthError) Error() string {
	return fmt.Sprintf("auth: no validator configured for family %s", e.Family)
}
