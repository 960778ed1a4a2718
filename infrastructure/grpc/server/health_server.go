package server

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name under which the room reports its health.
const ServiceName = "chat.Room"

// HealthServer publishes the outcome of the sweep cycles through the
// standard grpc.health.v1 service, for the room and for the server as a whole.
type HealthServer struct {
	log     *slog.Logger
	health  *health.Server
	server  *grpc.Server
	serving atomic.Bool
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	s := &HealthServer{
		log:    log,
		health: health.NewServer(),
		server: grpc.NewServer(),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	s.SetServing(true)
	return s
}

// SetServing is called after every sweep cycle.
func (s *HealthServer) SetServing(serving bool) {
	if s.serving.Swap(serving) != serving {
		s.log.Info("Health status changed", "serving", serving)
	}
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

func (s *HealthServer) Serving() bool {
	return s.serving.Load()
}

// Serve blocks on l until ctx is done, then stops gracefully.
func (s *HealthServer) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.server.Serve(l) }()
	s.log.Info("Starting gRPC health server", "address", l.Addr().String())

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.server.GracefulStop()
		return nil
	case err := <-errCh:
		if err == grpc.ErrServerStopped {
			return nil
		}
		return err
	}
}

func (s *HealthServer) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}
