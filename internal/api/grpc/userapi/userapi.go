// Package userapi describes the users.v1.Users gRPC service.
//
// Messages are protobuf well-known types, so the service needs no generated
// code: users travel as structpb.Struct, ids as wrapperspb.Int64Value.
package userapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "users.v1.Users"

// Full method names.
const (
	CreateUserMethod = "/" + ServiceName + "/CreateUser"
	ListUsersMethod  = "/" + ServiceName + "/ListUsers"
	GetUserMethod    = "/" + ServiceName + "/GetUser"
	UpdateUserMethod = "/" + ServiceName + "/UpdateUser"
	RemoveUserMethod = "/" + ServiceName + "/RemoveUser"
)

// UsersServer is the server API for the Users service.
type UsersServer interface {
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUsers(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetUser(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	UpdateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveUser(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// UnimplementedUsersServer answers every method with codes.Unimplemented.
type UnimplementedUsersServer struct{}

func (UnimplementedUsersServer) CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateUser not implemented")
}

func (UnimplementedUsersServer) ListUsers(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUsers not implemented")
}

func (UnimplementedUsersServer) GetUser(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUser not implemented")
}

func (UnimplementedUsersServer) UpdateUser(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateUser not implemented")
}

func (UnimplementedUsersServer) RemoveUser(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveUser not implemented")
}

// unary builds a grpc.MethodHandler that decodes Req and dispatches to call.
func unary[Req proto.Message, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(UsersServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UsersServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UsersServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newStruct() *structpb.Struct       { return new(structpb.Struct) }
func newEmpty() *emptypb.Empty          { return new(emptypb.Empty) }
func newInt64() *wrapperspb.Int64Value  { return new(wrapperspb.Int64Value) }

// ServiceDesc is the grpc.ServiceDesc for the Users service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UsersServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateUser", Handler: unary(CreateUserMethod, newStruct, UsersServer.CreateUser)},
		{MethodName: "ListUsers", Handler: unary(ListUsersMethod, newEmpty, UsersServer.ListUsers)},
		{MethodName: "GetUser", Handler: unary(GetUserMethod, newInt64, UsersServer.GetUser)},
		{MethodName: "UpdateUser", Handler: unary(UpdateUserMethod, newStruct, UsersServer.UpdateUser)},
		{MethodName: "RemoveUser", Handler: unary(RemoveUserMethod, newInt64, UsersServer.RemoveUser)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterUsersServer registers srv on s.
func RegisterUsersServer(s grpc.ServiceRegistrar, srv UsersServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// UsersClient is the client API for the Users service.
type UsersClient interface {
	CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	GetUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RemoveUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type usersClient struct {
	cc grpc.ClientConnInterface
}

// NewUsersClient creates a UsersClient over cc.
func NewUsersClient(cc grpc.ClientConnInterface) UsersClient {
	return &usersClient{cc: cc}
}

func (c *usersClient) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CreateUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *usersClient) ListUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListUsersMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *usersClient) GetUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *usersClient) UpdateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UpdateUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *usersClient) RemoveUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RemoveUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
