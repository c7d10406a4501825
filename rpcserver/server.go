package rpcserver

import (
	"context"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/jeeves-cluster-organization/exposerpc/config"
	"github.com/jeeves-cluster-organization/exposerpc/rpcserver/pb"
)

// GracefulServer wraps a *grpc.Server bound to the RPC Surface with
// graceful-shutdown support, adapted from coreengine/grpc/server.go's
// GracefulServer: same Start/StartBackground/GracefulStop/
// ShutdownWithTimeout/Address shape, wired to pb.RegisterExposeRPCServer
// and config.TransportConfig instead of the teacher's EngineServiceServer.
type GracefulServer struct {
	grpcServer *grpc.Server
	service    *Service
	address    string
	listener   net.Listener
	logger     Logger

	shutdownMu sync.Mutex
	isShutdown bool
}

// NewGracefulServer builds the grpc.Server, applying transport tuning from
// cfg (zero values mean unlimited, matching TransportConfig's doc comment)
// and the standard recovery/logging/credential interceptor chain.
func NewGracefulServer(service *Service, address string, cfg config.TransportConfig, logger Logger) *GracefulServer {
	if logger == nil {
		logger = NoopLogger()
	}

	// gRPC reads a zero size or keepalive time/timeout as "use its default",
	// so zero is mapped to an explicit no-limit value here.
	maxRecvMsgSize := cfg.MaxInboundMessageSize
	if maxRecvMsgSize <= 0 {
		maxRecvMsgSize = math.MaxInt32
	}
	keepaliveTime, keepaliveTimeout := cfg.KeepaliveTime, cfg.KeepaliveTimeout
	if keepaliveTime == 0 {
		keepaliveTime = time.Duration(math.MaxInt64)
	}
	if keepaliveTimeout == 0 {
		keepaliveTimeout = time.Duration(math.MaxInt64)
	}

	opts := ServerOptions(logger)
	opts = append(opts, grpc.MaxRecvMsgSize(maxRecvMsgSize))
	if cfg.MaxConcurrentCallsPerConn > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.MaxConcurrentCallsPerConn)))
	}
	opts = append(opts, grpc.KeepaliveParams(keepalive.ServerParameters{
		Time:                  keepaliveTime,
		Timeout:               keepaliveTimeout,
		MaxConnectionIdle:     cfg.MaxConnectionIdle,
		MaxConnectionAge:      cfg.MaxConnectionAge,
	}))
	opts = append(opts, grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
		PermitWithoutStream: cfg.PermitKeepaliveWithoutCalls,
	}))
	opts = append(opts, grpc.StatsHandler(otelgrpc.NewServerHandler()))

	grpcServer := grpc.NewServer(opts...)
	pb.RegisterExposeRPCServer(grpcServer, service)
	if cfg.EnableReflection {
		reflection.Register(grpcServer)
	}

	return &GracefulServer{
		grpcServer: grpcServer,
		service:    service,
		address:    address,
		logger:     logger,
	}
}

// Start starts the server and blocks until ctx is cancelled, then performs
// graceful shutdown.
func (s *GracefulServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("rpcserver: listen: %w", err)
	}
	s.listener = lis

	s.logger.Info("rpc_server_started", "address", s.address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("rpc_server_shutdown_initiated", "reason", ctx.Err().Error())
		s.GracefulStop()
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("rpcserver: serve: %w", err)
		}
		return nil
	}
}

// StartBackground starts the server in a goroutine, returning an error
// channel the caller can select on.
func (s *GracefulServer) StartBackground() (<-chan error, error) {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return nil, fmt.Errorf("rpcserver: listen: %w", err)
	}
	s.listener = lis

	errCh := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("rpc_server_started_background", "address", s.address)
	return errCh, nil
}

// GracefulStop stops accepting new connections and waits for in-flight
// calls to complete.
func (s *GracefulServer) GracefulStop() {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.isShutdown {
		return
	}
	s.isShutdown = true

	s.logger.Info("rpc_server_graceful_stop_started")
	s.grpcServer.GracefulStop()
	s.logger.Info("rpc_server_graceful_stop_completed")
}

// Stop halts the server immediately, dropping in-flight calls.
func (s *GracefulServer) Stop() {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.isShutdown {
		return
	}
	s.isShutdown = true

	s.logger.Warn("rpc_server_immediate_stop")
	s.grpcServer.Stop()
}

// ShutdownWithTimeout attempts a graceful stop, forcing an immediate stop if
// it does not complete within timeout.
func (s *GracefulServer) ShutdownWithTimeout(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(timeout):
		s.logger.Warn("rpc_server_shutdown_timeout", "timeout_ms", timeout.Milliseconds())
		s.grpcServer.Stop()
	}
}

// GRPCServer returns the underlying *grpc.Server.
func (s *GracefulServer) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// Address returns the configured listen address.
func (s *GracefulServer) Address() string {
	return s.address
}
