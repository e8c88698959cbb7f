package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported alongside the
// server-wide "" entry.
const ServiceName = "ipinfo"

// HealthServer exposes grpc.health.v1.Health for orchestrators that probe over gRPC.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
}

// NewHealthServer creates a gRPC server with the health service registered
// and reporting SERVING.
func NewHealthServer() *HealthServer {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &HealthServer{srv: srv, health: hs}
}

// Serve accepts connections on lis until Stop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
