// Package rpcserver implements spec.md §4.4's four-operation RPC Surface:
// InvokeCallable, WriteDatum, DescribeAll, and InvokeCallableStream, plus
// the metadata-to-context interceptor and §4.5's introspection payload.
package rpcserver

import (
	"context"
	"errors"
	"time"

	"github.com/jeeves-cluster-organization/exposerpc/auth"
	"github.com/jeeves-cluster-organization/exposerpc/dispatch"
	"github.com/jeeves-cluster-organization/exposerpc/eventbus"
	"github.com/jeeves-cluster-organization/exposerpc/registry"
	"github.com/jeeves-cluster-organization/exposerpc/rpcserver/pb"
)

// Service implements pb.ExposeRPCServer against a frozen Registry and a
// configured Authenticator.
type Service struct {
	pb.UnimplementedExposeRPCServer

	reg    *registry.Registry
	authn  *auth.Authenticator
	bus    eventbus.Bus
	logger Logger
}

// New creates a Service. bus and logger may be nil; a nil bus publishes
// nowhere, a nil logger discards output.
func New(reg *registry.Registry, authn *auth.Authenticator, bus eventbus.Bus, logger Logger) *Service {
	if logger == nil {
		logger = NoopLogger()
	}
	return &Service{reg: reg, authn: authn, bus: bus, logger: logger}
}

// resolve implements spec.md §4.1's lookup followed, on an
// AmbiguousInvocationError, by §4.2's argument-shape narrowing.
func (s *Service) resolve(containerName, memberName string, parameterTypeNames []string, args []any) (*registry.ExposableMember, error) {
	m, err := s.reg.Resolve(containerName, memberName, parameterTypeNames)
	if err == nil {
		return m, nil
	}
	var ambiguous *registry.AmbiguousInvocationError
	if errors.As(err, &ambiguous) {
		return dispatch.NarrowByArgs(ambiguous.Candidates, args)
	}
	return nil, err
}

// InvokeCallable resolves, authenticates, dispatches, and responds. Per
// spec.md's S3 scenario, InvokeCallable also reads a DATUM's current value
// when memberName resolves to one.
func (s *Service) InvokeCallable(ctx context.Context, req *pb.InvokeRequest) (*pb.InvokeResponse, error) {
	start := time.Now()
	m, err := s.resolve(req.ContainerName, req.MemberName, req.ParameterTypeNames, req.Arguments)
	if err != nil {
		return nil, toStatus(err)
	}

	if err := s.authenticate(ctx, m); err != nil {
		s.publishAuthFailure(ctx, m, err)
		return nil, toStatus(err)
	}

	var result any
	if m.Kind == registry.Datum {
		result, err = dispatch.Read(m)
	} else {
		result, err = dispatch.Invoke(ctx, m, req.Arguments)
	}

	s.publishInvoked(ctx, m, err, time.Since(start))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.InvokeResponse{Result: result}, nil
}

// WriteDatum resolves (no parameter types), authenticates, rejects wrong
// kind or immutable targets, and responds with the previous value. Per
// spec.md invariant 3, authentication is checked before the immutable
// gate so credentials remain the primary gate.
func (s *Service) WriteDatum(ctx context.Context, req *pb.WriteRequest) (*pb.WriteResponse, error) {
	m, err := s.reg.Resolve(req.ContainerName, req.DatumName, nil)
	if err != nil {
		return nil, toStatus(err)
	}

	if err := s.authenticate(ctx, m); err != nil {
		s.publishAuthFailure(ctx, m, err)
		return nil, toStatus(err)
	}

	previous, err := dispatch.Write(m, req.Value)
	if err != nil {
		s.publishWriteRejected(ctx, m, err)
		return nil, toStatus(err)
	}

	s.publishWritten(ctx, m)
	return &pb.WriteResponse{PreviousValue: previous}, nil
}

// DescribeAll returns the introspection payload of spec.md §4.5: every
// canonical member, in scan order, aliases excluded.
func (s *Service) DescribeAll(ctx context.Context, _ *pb.DescribeRequest) (*pb.DescribeResponse, error) {
	members := s.reg.All()
	out := make([]pb.MemberInfo, 0, len(members))
	for _, m := range members {
		out = append(out, describeMember(m))
	}
	return &pb.DescribeResponse{Members: out}, nil
}

func describeMember(m *registry.ExposableMember) pb.MemberInfo {
	params := make([]pb.ParameterInfo, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		params = append(params, pb.ParameterInfo{Name: p.Name, TypeName: p.TypeName, Index: p.Index})
	}
	return pb.MemberInfo{
		ContainerName:  m.ContainerName,
		MemberName:     m.MemberName,
		Secured:        m.Secured,
		ReturnTypeName: m.ReturnTypeName,
		Parameters:     params,
		Description:    m.Description,
		Kind:           m.Kind.String(),
		Writeable:      m.Kind == registry.Datum && !m.Immutable,
		Static:         m.Static,
		Immutable:      m.Immutable,
	}
}

func (s *Service) authenticate(ctx context.Context, m *registry.ExposableMember) error {
	cc := auth.FromContext(ctx)
	return s.authn.Check(ctx, m, cc)
}
