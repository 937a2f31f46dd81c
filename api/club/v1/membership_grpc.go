package clubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ClubMembershipService_CreateClubMembership_FullMethodName    = "/club.v1.ClubMembershipService/CreateClubMembership"
	ClubMembershipService_UpdateClubMembership_FullMethodName    = "/club.v1.ClubMembershipService/UpdateClubMembership"
	ClubMembershipService_CancelClubMembership_FullMethodName    = "/club.v1.ClubMembershipService/CancelClubMembership"
	ClubMembershipService_RestoreClubMembership_FullMethodName   = "/club.v1.ClubMembershipService/RestoreClubMembership"
	ClubMembershipService_GetClubMembershipOnClub_FullMethodName = "/club.v1.ClubMembershipService/GetClubMembershipOnClub"
)

// ClubMembershipServiceClient is the client API for ClubMembershipService
type ClubMembershipServiceClient interface {
	CreateClubMembership(ctx context.Context, in *CreateClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error)
	UpdateClubMembership(ctx context.Context, in *UpdateClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error)
	CancelClubMembership(ctx context.Context, in *CancelClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error)
	RestoreClubMembership(ctx context.Context, in *RestoreClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error)
	GetClubMembershipOnClub(ctx context.Context, in *GetClubMembershipOnClubRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error)
}

type clubMembershipServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewClubMembershipServiceClient(cc grpc.ClientConnInterface) ClubMembershipServiceClient {
	return &clubMembershipServiceClient{cc}
}

func (c *clubMembershipServiceClient) CreateClubMembership(ctx context.Context, in *CreateClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error) {
	return invoke[ClubMembershipResponse](ctx, c.cc, ClubMembershipService_CreateClubMembership_FullMethodName, in, opts)
}

func (c *clubMembershipServiceClient) UpdateClubMembership(ctx context.Context, in *UpdateClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error) {
	return invoke[ClubMembershipResponse](ctx, c.cc, ClubMembershipService_UpdateClubMembership_FullMethodName, in, opts)
}

func (c *clubMembershipServiceClient) CancelClubMembership(ctx context.Context, in *CancelClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error) {
	return invoke[ClubMembershipResponse](ctx, c.cc, ClubMembershipService_CancelClubMembership_FullMethodName, in, opts)
}

func (c *clubMembershipServiceClient) RestoreClubMembership(ctx context.Context, in *RestoreClubMembershipRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error) {
	return invoke[ClubMembershipResponse](ctx, c.cc, ClubMembershipService_RestoreClubMembership_FullMethodName, in, opts)
}

func (c *clubMembershipServiceClient) GetClubMembershipOnClub(ctx context.Context, in *GetClubMembershipOnClubRequest, opts ...grpc.CallOption) (*ClubMembershipResponse, error) {
	return invoke[ClubMembershipResponse](ctx, c.cc, ClubMembershipService_GetClubMembershipOnClub_FullMethodName, in, opts)
}

// ClubMembershipServiceServer is the server API for ClubMembershipService.
// Implementations must embed UnimplementedClubMembershipServiceServer.
type ClubMembershipServiceServer interface {
	CreateClubMembership(context.Context, *CreateClubMembershipRequest) (*ClubMembershipResponse, error)
	UpdateClubMembership(context.Context, *UpdateClubMembershipRequest) (*ClubMembershipResponse, error)
	CancelClubMembership(context.Context, *CancelClubMembershipRequest) (*ClubMembershipResponse, error)
	RestoreClubMembership(context.Context, *RestoreClubMembershipRequest) (*ClubMembershipResponse, error)
	GetClubMembershipOnClub(context.Context, *GetClubMembershipOnClubRequest) (*ClubMembershipResponse, error)
	mustEmbedUnimplementedClubMembershipServiceServer()
}

// UnimplementedClubMembershipServiceServer answers every method with codes.Unimplemented
type UnimplementedClubMembershipServiceServer struct{}

func (UnimplementedClubMembershipServiceServer) CreateClubMembership(context.Context, *CreateClubMembershipRequest) (*ClubMembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateClubMembership not implemented")
}
func (UnimplementedClubMembershipServiceServer) UpdateClubMembership(context.Context, *UpdateClubMembershipRequest) (*ClubMembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateClubMembership not implemented")
}
func (UnimplementedClubMembershipServiceServer) CancelClubMembership(context.Context, *CancelClubMembershipRequest) (*ClubMembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelClubMembership not implemented")
}
func (UnimplementedClubMembershipServiceServer) RestoreClubMembership(context.Context, *RestoreClubMembershipRequest) (*ClubMembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RestoreClubMembership not implemented")
}
func (UnimplementedClubMembershipServiceServer) GetClubMembershipOnClub(context.Context, *GetClubMembershipOnClubRequest) (*ClubMembershipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetClubMembershipOnClub not implemented")
}
func (UnimplementedClubMembershipServiceServer) mustEmbedUnimplementedClubMembershipServiceServer() {}

func RegisterClubMembershipServiceServer(s grpc.ServiceRegistrar, srv ClubMembershipServiceServer) {
	s.RegisterService(&ClubMembershipService_ServiceDesc, srv)
}

// ClubMembershipService_ServiceDesc is the grpc.ServiceDesc for ClubMembershipService
var ClubMembershipService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "club.v1.ClubMembershipService",
	HandlerType: (*ClubMembershipServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateClubMembership",
			Handler:    unaryHandler(ClubMembershipService_CreateClubMembership_FullMethodName, ClubMembershipServiceServer.CreateClubMembership),
		},
		{
			MethodName: "UpdateClubMembership",
			Handler:    unaryHandler(ClubMembershipService_UpdateClubMembership_FullMethodName, ClubMembershipServiceServer.UpdateClubMembership),
		},
		{
			MethodName: "CancelClubMembership",
			Handler:    unaryHandler(ClubMembershipService_CancelClubMembership_FullMethodName, ClubMembershipServiceServer.CancelClubMembership),
		},
		{
			MethodName: "RestoreClubMembership",
			Handler:    unaryHandler(ClubMembershipService_RestoreClubMembership_FullMethodName, ClubMembershipServiceServer.RestoreClubMembership),
		},
		{
			MethodName: "GetClubMembershipOnClub",
			Handler:    unaryHandler(ClubMembershipService_GetClubMembershipOnClub_FullMethodName, ClubMembershipServiceServer.GetClubMembershipOnClub),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "club/v1/membership.proto",
}
