package pb

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "exposerpc.ExposeRPC"

// ExposeRPCServer is the service interface the RPC Surface implements: the
// four operations of spec.md §4.4. Matches the split protoc-gen-go-grpc
// would have produced had a .proto compiler been available.
type ExposeRPCServer interface {
	InvokeCallable(context.Context, *InvokeRequest) (*InvokeResponse, error)
	WriteDatum(context.Context, *WriteRequest) (*WriteResponse, error)
	DescribeAll(context.Context, *DescribeRequest) (*DescribeResponse, error)
	InvokeCallableStream(ExposeRPC_InvokeCallableStreamServer) error
}

// UnimplementedExposeRPCServer can be embedded to satisfy ExposeRPCServer
// for types that only implement a subset of methods, matching the
// forward-compatibility convention generated servers ship with.
type UnimplementedExposeRPCServer struct{}

func (UnimplementedExposeRPCServer) InvokeCallable(context.Context, *InvokeRequest) (*InvokeResponse, error) {
	return nil, errUnimplemented("InvokeCallable")
}
func (UnimplementedExposeRPCServer) WriteDatum(context.Context, *WriteRequest) (*WriteResponse, error) {
	return nil, errUnimplemented("WriteDatum")
}
func (UnimplementedExposeRPCServer) DescribeAll(context.Context, *DescribeRequest) (*DescribeResponse, error) {
	return nil, errUnimplemented("DescribeAll")
}
func (UnimplementedExposeRPCServer) InvokeCallableStream(ExposeRPC_InvokeCallableStreamServer) error {
	return errUnimplemented("InvokeCallableStream")
}

func errUnimplemented(method string) error {
	return grpcUnimplementedError{method: method}
}

type grpcUnimplementedError struct{ method string }

func (e grpcUnimplementedError) Error() string { return "pb: method " + e.method + " not implemented" }

// ExposeRPC_InvokeCallableStreamServer is the bidi-stream server-side
// handle: read inbound InvokeRequests, send InvokeResponses, in any order
// relative to each other beyond FIFO per spec.md's ordering guarantee.
type ExposeRPC_InvokeCallableStreamServer interface {
	Send(*InvokeResponse) error
	Recv() (*InvokeRequest, error)
	grpc.ServerStream
}

type exposeRPCInvokeCallableStreamServer struct {
	grpc.ServerStream
}

func (x *exposeRPCInvokeCallableStreamServer) Send(m *InvokeResponse) error {
	return x.ServerStream.SendMsg(m)
}

func (x *exposeRPCInvokeCallableStreamServer) Recv() (*InvokeRequest, error) {
	m := new(InvokeRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func _ExposeRPC_InvokeCallable_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InvokeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExposeRPCServer).InvokeCallable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/InvokeCallable"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExposeRPCServer).InvokeCallable(ctx, req.(*InvokeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExposeRPC_WriteDatum_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(WriteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExposeRPCServer).WriteDatum(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/WriteDatum"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExposeRPCServer).WriteDatum(ctx, req.(*WriteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExposeRPC_DescribeAll_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DescribeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExposeRPCServer).DescribeAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/DescribeAll"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExposeRPCServer).DescribeAll(ctx, req.(*DescribeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ExposeRPC_InvokeCallableStream_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(ExposeRPCServer).InvokeCallableStream(&exposeRPCInvokeCallableStreamServer{stream})
}

// ServiceDesc is the grpc.ServiceDesc for ExposeRPCServer, the hand-written
// equivalent of what protoc-gen-go-grpc emits as _ExposeRPC_serviceDesc.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ExposeRPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InvokeCallable", Handler: _ExposeRPC_InvokeCallable_Handler},
		{MethodName: "WriteDatum", Handler: _ExposeRPC_WriteDatum_Handler},
		{MethodName: "DescribeAll", Handler: _ExposeRPC_DescribeAll_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "InvokeCallableStream",
			Handler:       _ExposeRPC_InvokeCallableStream_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "exposerpc.proto",
}

// RegisterExposeRPCServer registers srv on s, matching the generated
// registration function's name and shape.
func RegisterExposeRPCServer(s grpc.ServiceRegistrar, srv ExposeRPCServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ExposeRPCClient is the client-side stub, included for parity with a real
// generated package even though the RPC Surface itself only plays server.
type ExposeRPCClient interface {
	InvokeCallable(ctx context.Context, in *InvokeRequest, opts ...grpc.CallOption) (*InvokeResponse, error)
	WriteDatum(ctx context.Context, in *WriteRequest, opts ...grpc.CallOption) (*WriteResponse, error)
	DescribeAll(ctx context.Context, in *DescribeRequest, opts ...grpc.CallOption) (*DescribeResponse, error)
	InvokeCallableStream(ctx context.Context, opts ...grpc.CallOption) (ExposeRPC_InvokeCallableStreamClient, error)
}

type exposeRPCClient struct {
	cc grpc.ClientConnInterface
}

// NewExposeRPCClient creates a client stub bound to cc.
func NewExposeRPCClient(cc grpc.ClientConnInterface) ExposeRPCClient {
	return &exposeRPCClient{cc}
}

func (c *exposeRPCClient) InvokeCallable(ctx context.Context, in *InvokeRequest, opts ...grpc.CallOption) (*InvokeResponse, error) {
	out := new(InvokeResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/InvokeCallable", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *exposeRPCClient) WriteDatum(ctx context.Context, in *WriteRequest, opts ...grpc.CallOption) (*WriteResponse, error) {
	out := new(WriteResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/WriteDatum", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *exposeRPCClient) DescribeAll(ctx context.Context, in *DescribeRequest, opts ...grpc.CallOption) (*DescribeResponse, error) {
	out := new(DescribeResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/DescribeAll", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *exposeRPCClient) InvokeCallableStream(ctx context.Context, opts ...grpc.CallOption) (ExposeRPC_InvokeCallableStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+serviceName+"/InvokeCallableStream", opts...)
	if err != nil {
		return nil, err
	}
	return &exposeRPCInvokeCallableStreamClient{stream}, nil
}

// ExposeRPC_InvokeCallableStreamClient is the bidi-stream client-side
// handle.
type ExposeRPC_InvokeCallableStreamClient interface {
	Send(*InvokeRequest) error
	Recv() (*InvokeResponse, error)
	grpc.ClientStream
}

type exposeRPCInvokeCallableStreamClient struct {
	grpc.ClientStream
}

func (x *exposeRPCInvokeCallableStreamClient) Send(m *InvokeRequest) error {
	return x.ClientStream.SendMsg(m)
}

func (x *exposeRPCInvokeCallableStreamClient) Recv() (*InvokeResponse, error) {
	m := new(InvokeResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
