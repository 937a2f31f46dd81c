package clubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ClubService_UpsertClub_FullMethodName      = "/club.v1.ClubService/UpsertClub"
	ClubService_GetClub_FullMethodName         = "/club.v1.ClubService/GetClub"
	ClubService_UpsertClubTiers_FullMethodName = "/club.v1.ClubService/UpsertClubTiers"
	ClubService_ListClubTiers_FullMethodName   = "/club.v1.ClubService/ListClubTiers"
	ClubService_UpsertClubAdmin_FullMethodName = "/club.v1.ClubService/UpsertClubAdmin"
	ClubService_DeleteClubAdmin_FullMethodName = "/club.v1.ClubService/DeleteClubAdmin"
)

// ClubServiceClient is the client API for ClubService
type ClubServiceClient interface {
	UpsertClub(ctx context.Context, in *UpsertClubRequest, opts ...grpc.CallOption) (*UpsertClubResponse, error)
	GetClub(ctx context.Context, in *GetClubRequest, opts ...grpc.CallOption) (*GetClubResponse, error)
	UpsertClubTiers(ctx context.Context, in *UpsertClubTiersRequest, opts ...grpc.CallOption) (*UpsertClubTiersResponse, error)
	ListClubTiers(ctx context.Context, in *ListClubTiersRequest, opts ...grpc.CallOption) (*ListClubTiersResponse, error)
	UpsertClubAdmin(ctx context.Context, in *UpsertClubAdminRequest, opts ...grpc.CallOption) (*UpsertClubAdminResponse, error)
	DeleteClubAdmin(ctx context.Context, in *DeleteClubAdminRequest, opts ...grpc.CallOption) (*DeleteClubAdminResponse, error)
}

type clubServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewClubServiceClient(cc grpc.ClientConnInterface) ClubServiceClient {
	return &clubServiceClient{cc}
}

func (c *clubServiceClient) UpsertClub(ctx context.Context, in *UpsertClubRequest, opts ...grpc.CallOption) (*UpsertClubResponse, error) {
	return invoke[UpsertClubResponse](ctx, c.cc, ClubService_UpsertClub_FullMethodName, in, opts)
}

func (c *clubServiceClient) GetClub(ctx context.Context, in *GetClubRequest, opts ...grpc.CallOption) (*GetClubResponse, error) {
	return invoke[GetClubResponse](ctx, c.cc, ClubService_GetClub_FullMethodName, in, opts)
}

func (c *clubServiceClient) UpsertClubTiers(ctx context.Context, in *UpsertClubTiersRequest, opts ...grpc.CallOption) (*UpsertClubTiersResponse, error) {
	return invoke[UpsertClubTiersResponse](ctx, c.cc, ClubService_UpsertClubTiers_FullMethodName, in, opts)
}

func (c *clubServiceClient) ListClubTiers(ctx context.Context, in *ListClubTiersRequest, opts ...grpc.CallOption) (*ListClubTiersResponse, error) {
	return invoke[ListClubTiersResponse](ctx, c.cc, ClubService_ListClubTiers_FullMethodName, in, opts)
}

func (c *clubServiceClient) UpsertClubAdmin(ctx context.Context, in *UpsertClubAdminRequest, opts ...grpc.CallOption) (*UpsertClubAdminResponse, error) {
	return invoke[UpsertClubAdminResponse](ctx, c.cc, ClubService_UpsertClubAdmin_FullMethodName, in, opts)
}

func (c *clubServiceClient) DeleteClubAdmin(ctx context.Context, in *DeleteClubAdminRequest, opts ...grpc.CallOption) (*DeleteClubAdminResponse, error) {
	return invoke[DeleteClubAdminResponse](ctx, c.cc, ClubService_DeleteClubAdmin_FullMethodName, in, opts)
}

// ClubServiceServer is the server API for ClubService.
// Implementations must embed UnimplementedClubServiceServer.
type ClubServiceServer interface {
	UpsertClub(context.Context, *UpsertClubRequest) (*UpsertClubResponse, error)
	GetClub(context.Context, *GetClubRequest) (*GetClubResponse, error)
	UpsertClubTiers(context.Context, *UpsertClubTiersRequest) (*UpsertClubTiersResponse, error)
	ListClubTiers(context.Context, *ListClubTiersRequest) (*ListClubTiersResponse, error)
	UpsertClubAdmin(context.Context, *UpsertClubAdminRequest) (*UpsertClubAdminResponse, error)
	DeleteClubAdmin(context.Context, *DeleteClubAdminRequest) (*DeleteClubAdminResponse, error)
	mustEmbedUnimplementedClubServiceServer()
}

// UnimplementedClubServiceServer answers every method with codes.Unimplemented
type UnimplementedClubServiceServer struct{}

func (UnimplementedClubServiceServer) UpsertClub(context.Context, *UpsertClubRequest) (*UpsertClubResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertClub not implemented")
}
func (UnimplementedClubServiceServer) GetClub(context.Context, *GetClubRequest) (*GetClubResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetClub not implemented")
}
func (UnimplementedClubServiceServer) UpsertClubTiers(context.Context, *UpsertClubTiersRequest) (*UpsertClubTiersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertClubTiers not implemented")
}
func (UnimplementedClubServiceServer) ListClubTiers(context.Context, *ListClubTiersRequest) (*ListClubTiersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListClubTiers not implemented")
}
func (UnimplementedClubServiceServer) UpsertClubAdmin(context.Context, *UpsertClubAdminRequest) (*UpsertClubAdminResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertClubAdmin not implemented")
}
func (UnimplementedClubServiceServer) DeleteClubAdmin(context.Context, *DeleteClubAdminRequest) (*DeleteClubAdminResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteClubAdmin not implemented")
}
func (UnimplementedClubServiceServer) mustEmbedUnimplementedClubServiceServer() {}

func RegisterClubServiceServer(s grpc.ServiceRegistrar, srv ClubServiceServer) {
	s.RegisterService(&ClubService_ServiceDesc, srv)
}

// ClubService_ServiceDesc is the grpc.ServiceDesc for ClubService
var ClubService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "club.v1.ClubService",
	HandlerType: (*ClubServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "UpsertClub",
			Handler:    unaryHandler(ClubService_UpsertClub_FullMethodName, ClubServiceServer.UpsertClub),
		},
		{
			MethodName: "GetClub",
			Handler:    unaryHandler(ClubService_GetClub_FullMethodName, ClubServiceServer.GetClub),
		},
		{
			MethodName: "UpsertClubTiers",
			Handler:    unaryHandler(ClubService_UpsertClubTiers_FullMethodName, ClubServiceServer.UpsertClubTiers),
		},
		{
			MethodName: "ListClubTiers",
			Handler:    unaryHandler(ClubService_ListClubTiers_FullMethodName, ClubServiceServer.ListClubTiers),
		},
		{
			MethodName: "UpsertClubAdmin",
			Handler:    unaryHandler(ClubService_UpsertClubAdmin_FullMethodName, ClubServiceServer.UpsertClubAdmin),
		},
		{
			MethodName: "DeleteClubAdmin",
			Handler:    unaryHandler(ClubService_DeleteClubAdmin_FullMethodName, ClubServiceServer.DeleteClubAdmin),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "club/v1/club.proto",
}
