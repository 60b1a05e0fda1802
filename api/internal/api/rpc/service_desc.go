package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service. Requests and responses are
// google.protobuf.Struct values mirroring the HTTP JSON bodies.
const ServiceName = "decryptapi.v1.CipherService"

const (
	CipherService_Encrypt_FullMethodName      = "/" + ServiceName + "/Encrypt"
	CipherService_Decrypt_FullMethodName      = "/" + ServiceName + "/Decrypt"
	CipherService_DecryptBatch_FullMethodName = "/" + ServiceName + "/DecryptBatch"
)

// CipherServer is the server API for the cipher service.
type CipherServer interface {
	Encrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Decrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DecryptBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterCipherServer(s grpc.ServiceRegistrar, srv CipherServer) {
	s.RegisterService(&CipherService_ServiceDesc, srv)
}

type unaryCall func(CipherServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CipherServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CipherServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CipherService_ServiceDesc is the grpc.ServiceDesc for the cipher service.
var CipherService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CipherServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Encrypt",
			Handler:    unaryHandler(CipherService_Encrypt_FullMethodName, CipherServer.Encrypt),
		},
		{
			MethodName: "Decrypt",
			Handler:    unaryHandler(CipherService_Decrypt_FullMethodName, CipherServer.Decrypt),
		},
		{
			MethodName: "DecryptBatch",
			Handler:    unaryHandler(CipherService_DecryptBatch_FullMethodName, CipherServer.DecryptBatch),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "decryptapi/v1/cipher.proto",
}

// CipherClient is the client API for the cipher service.
type CipherClient struct {
	cc grpc.ClientConnInterface
}

func NewCipherClient(cc grpc.ClientConnInterface) *CipherClient {
	return &CipherClient{cc: cc}
}

func (c *CipherClient) Encrypt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CipherService_Encrypt_FullMethodName, in, opts...)
}

func (c *CipherClient) Decrypt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CipherService_Decrypt_FullMethodName, in, opts...)
}

func (c *CipherClient) DecryptBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CipherService_DecryptBatch_FullMethodName, in, opts...)
}

func (c *CipherClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
