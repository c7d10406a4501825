package rpcserver

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jeeves-cluster-organization/exposerpc/auth"
	"github.com/jeeves-cluster-organization/exposerpc/dispatch"
	"github.com/jeeves-cluster-organization/exposerpc/registry"
)

// toStatus implements spec.md §6's error code mapping table and §9 Open
// Question 1's resolution (PERMISSION_DENIED only for a well-formed
// credential of a disallowed family; UNAUTHENTICATED otherwise). Grounded
// on coreengine/grpc/validation.go's builder-function set, one branch per
// spec.md §7 error kind rather than string matching.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		return status.Error(codes.NotFound, err.Error())
	}

	var ambiguous *registry.AmbiguousInvocationError
	if errors.As(err, &ambiguous) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	var arity *dispatch.ArityMismatchError
	if errors.As(err, &arity) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	var wrongKind *dispatch.WrongKindForWriteError
	if errors.As(err, &wrongKind) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	var immutable *dispatch.ImmutableTargetError
	if errors.As(err, &immutable) {
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	var invocationFailure *dispatch.InvocationFailureError
	if errors.As(err, &invocationFailure) {
		return status.Error(codes.Internal, err.Error())
	}

	var wrongFamily *auth.WrongFamilyError
	if errors.As(err, &wrongFamily) {
		return status.Error(codes.PermissionDenied, err.Error())
	}

	var misconfigured *auth.MisconfiguredAuthError
	if errors.As(err, &misconfigured) {
		return status.Error(codes.Unauthenticated, err.Error())
	}

	var notAuthenticated *auth.NotAuthenticatedError
	if errors.As(err, &notAuthenticated) {
		return status.Error(codes.Unauthenticated, err.Error())
	}

	return status.Error(codes.Internal, err.Error())
}
