package grpc

import (
	"log/slog"
	"time"

	"notes-api/internal/api/grpc/interceptors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// NotesServiceName имя сервиса в gRPC health протоколе
const NotesServiceName = "notes.v1.NotesService"

// Options параметры gRPC сервера
type Options struct {
	UseReflection bool
	Log           *slog.Logger
}

// NewServer создает gRPC сервер со служебными сервисами: health и (опционально) reflection.
// Возвращает также health сервер, через который приложение переключает статус обслуживания.
func NewServer(opts Options) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.MaxConcurrentStreams(25),
		// KeepAlive параметры для защиты от зависших соединений
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     30 * time.Minute,
			MaxConnectionAge:      1 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  10 * time.Minute,
			Timeout:               20 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggerUnaryInterceptor(opts.Log),
		),
		grpc.ChainStreamInterceptor(
			interceptors.LoggerStreamInterceptor(opts.Log),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(NotesServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	opts.Log.Debug("registered grpc health service")

	// Настройка reflection (для grpcurl/grpcui)
	if opts.UseReflection {
		reflection.Register(grpcServer)
		opts.Log.Info("enabled gRPC reflection")
	}

	return grpcServer, healthServer
}
