package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName identifies this service in health responses.
const ServiceName = "StorefrontService"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /api/v1/healthz.
type HealthResponse struct {
	Status      string `json:"status"`
	ServiceName string `json:"serviceName"`
	Timestamp   string `json:"timestamp"`
	Database    string `json:"database"`
}

// RegisterHealthCheck mounts /api/v1/healthz. The endpoint always answers
// 200; the payload reports the database state.
func RegisterHealthCheck(r chi.Router, db Pinger, logger *zap.Logger) {
	r.Get("/api/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
			logger.Warn("health check database ping failed", zap.Error(err))
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{
			Status:      "healthy",
			ServiceName: ServiceName,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Database:    dbStatus,
		})
	})
}

// NewGRPCServer builds the gRPC server with the standard health service and
// reflection. The returned health server starts NOT_SERVING; callers flip it
// once their dependencies are up.
func NewGRPCServer(logger *zap.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(s, hs)
	logger.Info("gRPC health check service registered")

	reflection.Register(s)
	logger.Info("gRPC reflection service registered")

	return s, hs
}

// SetServing updates the overall and per-service health status.
func SetServing(hs *health.Server, serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(ServiceName, status)
}
