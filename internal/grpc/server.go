package grpc

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	clubv1 "github.com/parsascontentcorner/clubserver/api/club/v1"
)

// Services bundles the handlers and cross-cutting dependencies of the gRPC server
type Services struct {
	Clubs       ClubOperations
	Posts       PostOperations
	Memberships MembershipOperations
	Sessions    SessionResolver
	Metrics     RequestObserver
}

// Server wraps the gRPC server
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	logger     *zap.Logger
	port       string
}

// NewServer creates a new gRPC server listening on port
func NewServer(svcs Services, port string, logger *zap.Logger) (*Server, error) {
	// Create listener - net.Listen is standard for gRPC server setup
	lis, err := net.Listen("tcp", ":"+port) //nolint:noctx // Server initialization doesn't require context
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	s := newServer(lis, svcs, logger)
	s.port = port

	logger.Info("gRPC server configured", zap.String("port", port))

	return s, nil
}

func newServer(lis net.Listener, svcs Services, logger *zap.Logger) *Server {
	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(logger)}
	if svcs.Metrics != nil {
		interceptors = append(interceptors, metricsInterceptor(svcs.Metrics))
	}
	interceptors = append(interceptors, sessionInterceptor(svcs.Sessions, logger))

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors...),
	)

	clubv1.RegisterClubServiceServer(grpcServer, NewClubServer(svcs.Clubs, logger))
	clubv1.RegisterClubPostServiceServer(grpcServer, NewPostServer(svcs.Posts, logger))
	clubv1.RegisterClubMembershipServiceServer(grpcServer, NewMembershipServer(svcs.Memberships, logger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	for _, name := range []string{
		"",
		clubv1.ClubService_ServiceDesc.ServiceName,
		clubv1.ClubPostService_ServiceDesc.ServiceName,
		clubv1.ClubMembershipService_ServiceDesc.ServiceName,
	} {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	// Register reflection service for development (allows tools like grpcurl)
	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		listener:   lis,
		logger:     logger,
	}
}

// Addr is the address the server listens on
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve starts the gRPC server
func (s *Server) Serve() error {
	s.logger.Info("starting gRPC server", zap.String("address", s.listener.Addr().String()))

	if err := s.grpcServer.Serve(s.listener); err != nil {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop marks the server as not serving and drains in-flight calls
func (s *Server) GracefulStop() {
	s.logger.Info("gracefully stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// Stop immediately stops the gRPC server
func (s *Server) Stop() {
	s.logger.Info("stopping gRPC server")
	s.grpcServer.Stop()
}
