package clubv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ClubPostService_ListClubPosts_FullMethodName  = "/club.v1.ClubPostService/ListClubPosts"
	ClubPostService_GetClubPost_FullMethodName    = "/club.v1.ClubPostService/GetClubPost"
	ClubPostService_UpsertClubPost_FullMethodName = "/club.v1.ClubPostService/UpsertClubPost"
	ClubPostService_DeleteClubPost_FullMethodName = "/club.v1.ClubPostService/DeleteClubPost"
)

// ClubPostServiceClient is the client API for ClubPostService
type ClubPostServiceClient interface {
	ListClubPosts(ctx context.Context, in *ListClubPostsRequest, opts ...grpc.CallOption) (*ListClubPostsResponse, error)
	GetClubPost(ctx context.Context, in *GetClubPostRequest, opts ...grpc.CallOption) (*GetClubPostResponse, error)
	UpsertClubPost(ctx context.Context, in *UpsertClubPostRequest, opts ...grpc.CallOption) (*UpsertClubPostResponse, error)
	DeleteClubPost(ctx context.Context, in *DeleteClubPostRequest, opts ...grpc.CallOption) (*DeleteClubPostResponse, error)
}

type clubPostServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewClubPostServiceClient(cc grpc.ClientConnInterface) ClubPostServiceClient {
	return &clubPostServiceClient{cc}
}

func (c *clubPostServiceClient) ListClubPosts(ctx context.Context, in *ListClubPostsRequest, opts ...grpc.CallOption) (*ListClubPostsResponse, error) {
	return invoke[ListClubPostsResponse](ctx, c.cc, ClubPostService_ListClubPosts_FullMethodName, in, opts)
}

func (c *clubPostServiceClient) GetClubPost(ctx context.Context, in *GetClubPostRequest, opts ...grpc.CallOption) (*GetClubPostResponse, error) {
	return invoke[GetClubPostResponse](ctx, c.cc, ClubPostService_GetClubPost_FullMethodName, in, opts)
}

func (c *clubPostServiceClient) UpsertClubPost(ctx context.Context, in *UpsertClubPostRequest, opts ...grpc.CallOption) (*UpsertClubPostResponse, error) {
	return invoke[UpsertClubPostResponse](ctx, c.cc, ClubPostService_UpsertClubPost_FullMethodName, in, opts)
}

func (c *clubPostServiceClient) DeleteClubPost(ctx context.Context, in *DeleteClubPostRequest, opts ...grpc.CallOption) (*DeleteClubPostResponse, error) {
	return invoke[DeleteClubPostResponse](ctx, c.cc, ClubPostService_DeleteClubPost_FullMethodName, in, opts)
}

// ClubPostServiceServer is the server API for ClubPostService.
// Implementations must embed UnimplementedClubPostServiceServer.
type ClubPostServiceServer interface {
	ListClubPosts(context.Context, *ListClubPostsRequest) (*ListClubPostsResponse, error)
	GetClubPost(context.Context, *GetClubPostRequest) (*GetClubPostResponse, error)
	UpsertClubPost(context.Context, *UpsertClubPostRequest) (*UpsertClubPostResponse, error)
	DeleteClubPost(context.Context, *DeleteClubPostRequest) (*DeleteClubPostResponse, error)
	mustEmbedUnimplementedClubPostServiceServer()
}

// UnimplementedClubPostServiceServer answers every method with codes.Unimplemented
type UnimplementedClubPostServiceServer struct{}

func (UnimplementedClubPostServiceServer) ListClubPosts(context.Context, *ListClubPostsRequest) (*ListClubPostsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListClubPosts not implemented")
}
func (UnimplementedClubPostServiceServer) GetClubPost(context.Context, *GetClubPostRequest) (*GetClubPostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetClubPost not implemented")
}
func (UnimplementedClubPostServiceServer) UpsertClubPost(context.Context, *UpsertClubPostRequest) (*UpsertClubPostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertClubPost not implemented")
}
func (UnimplementedClubPostServiceServer) DeleteClubPost(context.Context, *DeleteClubPostRequest) (*DeleteClubPostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteClubPost not implemented")
}
func (UnimplementedClubPostServiceServer) mustEmbedUnimplementedClubPostServiceServer() {}

func RegisterClubPostServiceServer(s grpc.ServiceRegistrar, srv ClubPostServiceServer) {
	s.RegisterService(&ClubPostService_ServiceDesc, srv)
}

// ClubPostService_ServiceDesc is the grpc.ServiceDesc for ClubPostService
var ClubPostService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "club.v1.ClubPostService",
	HandlerType: (*ClubPostServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListClubPosts",
			Handler:    unaryHandler(ClubPostService_ListClubPosts_FullMethodName, ClubPostServiceServer.ListClubPosts),
		},
		{
			MethodName: "GetClubPost",
			Handler:    unaryHandler(ClubPostService_GetClubPost_FullMethodName, ClubPostServiceServer.GetClubPost),
		},
		{
			MethodName: "UpsertClubPost",
			Handler:    unaryHandler(ClubPostService_UpsertClubPost_FullMethodName, ClubPostServiceServer.UpsertClubPost),
		},
		{
			MethodName: "DeleteClubPost",
			Handler:    unaryHandler(ClubPostService_DeleteClubPost_FullMethodName, ClubPostServiceServer.DeleteClubPost),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "club/v1/post.proto",
}
