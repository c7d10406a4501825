package rpcserver

import (
	"context"
	"io"
	"time"

	"google.golang.org/grpc/status"

	"github.com/jeeves-cluster-organization/exposerpc/dispatch"
	"github.com/jeeves-cluster-organization/exposerpc/registry"
	"github.com/jeeves-cluster-organization/exposerpc/rpcserver/pb"
)

// InvokeCallableStream implements spec.md §4.4/§9's bidirectional stream:
// credentials are read once at stream open by StreamCredentialInterceptor
// and never refreshed; each inbound InvokeRequest is resolved, authenticated,
// and dispatched independently, in request order, with a per-message
// recoverable error embedded in InvokeResponse.Error rather than tearing the
// stream down. Only a transport error (including io.EOF) ends the stream.
func (s *Service) InvokeCallableStream(stream pb.ExposeRPC_InvokeCallableStreamServer) error {
	ctx := stream.Context()
	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		resp := s.handleStreamRequest(ctx, req)
		if err := stream.Send(resp); err != nil {
			return err
		}
	}
}

func (s *Service) handleStreamRequest(ctx context.Context, req *pb.InvokeRequest) *pb.InvokeResponse {
	start := time.Now()
	m, err := s.resolve(req.ContainerName, req.MemberName, req.ParameterTypeNames, req.Arguments)
	if err != nil {
		return errResponse(err)
	}

	if err := s.authenticate(ctx, m); err != nil {
		s.publishAuthFailure(ctx, m, err)
		return errResponse(err)
	}

	var result any
	if m.Kind == registry.Datum {
		result, err = dispatch.Read(m)
	} else {
		result, err = dispatch.Invoke(ctx, m, req.Arguments)
	}

	s.publishInvoked(ctx, m, err, time.Since(start))
	if err != nil {
		return errResponse(err)
	}
	return &pb.InvokeResponse{Result: result}
}

func errResponse(err error) *pb.InvokeResponse {
	st, _ := status.FromError(toStatus(err))
	return &pb.InvokeResponse{Error: &pb.ErrorInfo{Code: st.Code().String(), Message: st.Message()}}
}
