package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const AvailabilityServiceName = "chazas.v1.AvailabilityService"

type AvailabilityServiceServer interface {
	GetSchedule(context.Context, *GetScheduleRequest) (*ScheduleResponse, error)
	ReplaceSchedule(context.Context, *ReplaceScheduleRequest) (*ScheduleResponse, error)
	OpenDraft(context.Context, *OpenDraftRequest) (*DraftResponse, error)
	ToggleCell(context.Context, *ToggleCellRequest) (*DraftResponse, error)
	ToggleDay(context.Context, *ToggleDayRequest) (*DraftResponse, error)
	ToggleHour(context.Context, *ToggleHourRequest) (*DraftResponse, error)
	CommitDraft(context.Context, *CommitDraftRequest) (*ScheduleResponse, error)
	DiscardDraft(context.Context, *DiscardDraftRequest) (*DiscardDraftResponse, error)
	MatchListings(context.Context, *MatchListingsRequest) (*MatchListingsResponse, error)
}

var AvailabilityServiceDesc = grpc.ServiceDesc{
	ServiceName: AvailabilityServiceName,
	HandlerType: (*AvailabilityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("GetSchedule", AvailabilityServiceServer.GetSchedule),
		unaryMethod("ReplaceSchedule", AvailabilityServiceServer.ReplaceSchedule),
		unaryMethod("OpenDraft", AvailabilityServiceServer.OpenDraft),
		unaryMethod("ToggleCell", AvailabilityServiceServer.ToggleCell),
		unaryMethod("ToggleDay", AvailabilityServiceServer.ToggleDay),
		unaryMethod("ToggleHour", AvailabilityServiceServer.ToggleHour),
		unaryMethod("CommitDraft", AvailabilityServiceServer.CommitDraft),
		unaryMethod("DiscardDraft", AvailabilityServiceServer.DiscardDraft),
		unaryMethod("MatchListings", AvailabilityServiceServer.MatchListings),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chazas/v1/availability",
}

func RegisterAvailabilityServiceServer(s grpc.ServiceRegistrar, srv AvailabilityServiceServer) {
	s.RegisterService(&AvailabilityServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + AvailabilityServiceName + "/" + method
}

func unaryMethod[Req, Resp any](method string, call func(AvailabilityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AvailabilityServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AvailabilityServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type AvailabilityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAvailabilityServiceClient(cc grpc.ClientConnInterface) *AvailabilityServiceClient {
	return &AvailabilityServiceClient{cc: cc}
}

func (c *AvailabilityServiceClient) GetSchedule(ctx context.Context, in *GetScheduleRequest, opts ...grpc.CallOption) (*ScheduleResponse, error) {
	return invoke[ScheduleResponse](ctx, c.cc, "GetSchedule", in, opts)
}

func (c *AvailabilityServiceClient) ReplaceSchedule(ctx context.Context, in *ReplaceScheduleRequest, opts ...grpc.CallOption) (*ScheduleResponse, error) {
	return invoke[ScheduleResponse](ctx, c.cc, "ReplaceSchedule", in, opts)
}

func (c *AvailabilityServiceClient) OpenDraft(ctx context.Context, in *OpenDraftRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "OpenDraft", in, opts)
}

func (c *AvailabilityServiceClient) ToggleCell(ctx context.Context, in *ToggleCellRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "ToggleCell", in, opts)
}

func (c *AvailabilityServiceClient) ToggleDay(ctx context.Context, in *ToggleDayRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "ToggleDay", in, opts)
}

func (c *AvailabilityServiceClient) ToggleHour(ctx context.Context, in *ToggleHourRequest, opts ...grpc.CallOption) (*DraftResponse, error) {
	return invoke[DraftResponse](ctx, c.cc, "ToggleHour", in, opts)
}

func (c *AvailabilityServiceClient) CommitDraft(ctx context.Context, in *CommitDraftRequest, opts ...grpc.CallOption) (*ScheduleResponse, error) {
	return invoke[ScheduleResponse](ctx, c.cc, "CommitDraft", in, opts)
}

func (c *AvailabilityServiceClient) DiscardDraft(ctx context.Context, in *DiscardDraftRequest, opts ...grpc.CallOption) (*DiscardDraftResponse, error) {
	return invoke[DiscardDraftResponse](ctx, c.cc, "DiscardDraft", in, opts)
}

func (c *AvailabilityServiceClient) MatchListings(ctx context.Context, in *MatchListingsRequest, opts ...grpc.CallOption) (*MatchListingsResponse, error) {
	return invoke[MatchListingsResponse](ctx, c.cc, "MatchListings", in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
