package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "medreminder.v1.ReminderService"

// Full method names.
const (
	ReminderService_ListActive_FullMethodName = "/" + ServiceName + "/ListActive"
	ReminderService_Clear_FullMethodName      = "/" + ServiceName + "/Clear"
	ReminderService_Setup_FullMethodName      = "/" + ServiceName + "/Setup"
	ReminderService_Reload_FullMethodName     = "/" + ServiceName + "/Reload"
	ReminderService_Test_FullMethodName       = "/" + ServiceName + "/Test"
	ReminderService_Voices_FullMethodName     = "/" + ServiceName + "/Voices"
	ReminderService_Say_FullMethodName        = "/" + ServiceName + "/Say"
	ReminderService_History_FullMethodName    = "/" + ServiceName + "/History"
)

// ReminderServiceServer is the server API for ReminderService.
type ReminderServiceServer interface {
	ListActive(context.Context, *ListActiveRequest) (*ListActiveResponse, error)
	Clear(context.Context, *OwnerRequest) (*CountResponse, error)
	Setup(context.Context, *OwnerRequest) (*CountResponse, error)
	Reload(context.Context, *ReloadRequest) (*ReloadResponse, error)
	Test(context.Context, *TestRequest) (*TestResponse, error)
	Voices(context.Context, *VoicesRequest) (*VoicesResponse, error)
	Say(context.Context, *SayRequest) (*SayResponse, error)
	History(context.Context, *HistoryRequest) (*HistoryResponse, error)
}

// ReminderServiceClient is the client API for ReminderService.
type ReminderServiceClient interface {
	ListActive(ctx context.Context, in *ListActiveRequest, opts ...grpc.CallOption) (*ListActiveResponse, error)
	Clear(ctx context.Context, in *OwnerRequest, opts ...grpc.CallOption) (*CountResponse, error)
	Setup(ctx context.Context, in *OwnerRequest, opts ...grpc.CallOption) (*CountResponse, error)
	Reload(ctx context.Context, in *ReloadRequest, opts ...grpc.CallOption) (*ReloadResponse, error)
	Test(ctx context.Context, in *TestRequest, opts ...grpc.CallOption) (*TestResponse, error)
	Voices(ctx context.Context, in *VoicesRequest, opts ...grpc.CallOption) (*VoicesResponse, error)
	Say(ctx context.Context, in *SayRequest, opts ...grpc.CallOption) (*SayResponse, error)
	History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error)
}

type reminderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReminderServiceClient creates a client bound to cc.
func NewReminderServiceClient(cc grpc.ClientConnInterface) ReminderServiceClient {
	return &reminderServiceClient{cc: cc}
}

func (c *reminderServiceClient) ListActive(
	ctx context.Context,
	in *ListActiveRequest,
	opts ...grpc.CallOption,
) (*ListActiveResponse, error) {
	return invoke[ListActiveRequest, ListActiveResponse](ctx, c.cc, ReminderService_ListActive_FullMethodName, in, opts)
}

func (c *reminderServiceClient) Clear(ctx context.Context, in *OwnerRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[OwnerRequest, CountResponse](ctx, c.cc, ReminderService_Clear_FullMethodName, in, opts)
}

func (c *reminderServiceClient) Setup(ctx context.Context, in *OwnerRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[OwnerRequest, CountResponse](ctx, c.cc, ReminderService_Setup_FullMethodName, in, opts)
}

func (c *reminderServiceClient) Reload(ctx context.Context, in *ReloadRequest, opts ...grpc.CallOption) (*ReloadResponse, error) {
	return invoke[ReloadRequest, ReloadResponse](ctx, c.cc, ReminderService_Reload_FullMethodName, in, opts)
}

func (c *reminderServiceClient) Test(ctx context.Context, in *TestRequest, opts ...grpc.CallOption) (*TestResponse, error) {
	return invoke[TestRequest, TestResponse](ctx, c.cc, ReminderService_Test_FullMethodName, in, opts)
}

func (c *reminderServiceClient) Voices(ctx context.Context, in *VoicesRequest, opts ...grpc.CallOption) (*VoicesResponse, error) {
	return invoke[VoicesRequest, VoicesResponse](ctx, c.cc, ReminderService_Voices_FullMethodName, in, opts)
}

func (c *reminderServiceClient) Say(ctx context.Context, in *SayRequest, opts ...grpc.CallOption) (*SayResponse, error) {
	return invoke[SayRequest, SayResponse](ctx, c.cc, ReminderService_Say_FullMethodName, in, opts)
}

func (c *reminderServiceClient) History(
	ctx context.Context,
	in *HistoryRequest,
	opts ...grpc.CallOption,
) (*HistoryResponse, error) {
	return invoke[HistoryRequest, HistoryResponse](ctx, c.cc, ReminderService_History_FullMethodName, in, opts)
}

// invoke encodes in, performs the unary call and decodes the reply.
func invoke[Req, Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in *Req,
	opts []grpc.CallOption,
) (*Resp, error) {
	request, err := Encode(in)
	if err != nil {
		return nil, err
	}

	reply := new(structpb.Struct)
	if err = cc.Invoke(ctx, method, request, reply, opts...); err != nil {
		return nil, err
	}

	out := new(Resp)
	if err = Decode(reply, out); err != nil {
		return nil, err
	}

	return out, nil
}

// handler adapts a typed method to a grpc.MethodHandler.
func handler[Req, Resp any](
	method string,
	call func(ReminderServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		request := new(Req)
		if err := Decode(in, request); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		unary := func(ctx context.Context, req any) (any, error) {
			response, err := call(srv.(ReminderServiceServer), ctx, req.(*Req)) //nolint:forcetypeassert // Guaranteed by the descriptor.
			if err != nil {
				return nil, err
			}

			reply, err := Encode(response)
			if err != nil {
				return nil, status.Error(codes.Internal, err.Error())
			}

			return reply, nil
		}

		if interceptor == nil {
			return unary(ctx, request)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}

		return interceptor(ctx, request, info, unary)
	}
}

// ReminderService_ServiceDesc is the grpc.ServiceDesc for ReminderService.
var ReminderService_ServiceDesc = grpc.ServiceDesc{ //nolint:gochecknoglobals // Service descriptors are package-level by convention.
	ServiceName: ServiceName,
	HandlerType: (*ReminderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListActive",
			Handler:    handler(ReminderService_ListActive_FullMethodName, ReminderServiceServer.ListActive),
		},
		{
			MethodName: "Clear",
			Handler:    handler(ReminderService_Clear_FullMethodName, ReminderServiceServer.Clear),
		},
		{
			MethodName: "Setup",
			Handler:    handler(ReminderService_Setup_FullMethodName, ReminderServiceServer.Setup),
		},
		{
			MethodName: "Reload",
			Handler:    handler(ReminderService_Reload_FullMethodName, ReminderServiceServer.Reload),
		},
		{
			MethodName: "Test",
			Handler:    handler(ReminderService_Test_FullMethodName, ReminderServiceServer.Test),
		},
		{
			MethodName: "Voices",
			Handler:    handler(ReminderService_Voices_FullMethodName, ReminderServiceServer.Voices),
		},
		{
			MethodName: "Say",
			Handler:    handler(ReminderService_Say_FullMethodName, ReminderServiceServer.Say),
		},
		{
			MethodName: "History",
			Handler:    handler(ReminderService_History_FullMethodName, ReminderServiceServer.History),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "medreminder/v1/reminder",
}

// RegisterReminderServiceServer registers srv on s.
func RegisterReminderServiceServer(s grpc.ServiceRegistrar, srv ReminderServiceServer) {
	s.RegisterService(&ReminderService_ServiceDesc, srv)
}
