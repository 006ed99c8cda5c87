package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"notes-api/internal/api/gateway"
	grpcapi "notes-api/internal/api/grpc"
	"notes-api/internal/config"
	"notes-api/internal/metrics"
	"notes-api/internal/repository"
	"notes-api/internal/repository/memory"
	"notes-api/internal/repository/mongo"
	"notes-api/internal/repository/sqlstore"
	notesService "notes-api/internal/service/notes"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// storageCheckInterval период проверки хранилища для gRPC health статуса
const storageCheckInterval = 10 * time.Second

// Server представляет сервер приложения: REST API и служебный gRPC (health, reflection)
type Server struct {
	// HTTP компоненты
	Handler      http.Handler
	HTTPListener net.Listener

	// gRPC компоненты
	GRPCServer   *grpc.Server
	GRPCListener net.Listener
	Health       *health.Server

	Repo repository.NoteRepository

	// Контекст сервера: отменяется при shutdown и останавливает HTTP сервер и проверку хранилища
	Ctx    context.Context
	Cancel context.CancelFunc

	Config *config.Config

	log *slog.Logger
	wg  sync.WaitGroup
}

// NewServer создает сервер и открывает listeners. Порт 0 означает произвольный свободный порт.
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	grpcAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortGRPC)
	httpAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortHTTP)

	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		_ = grpcListener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", httpAddr, err)
	}

	log.Info("config loaded",
		"grpc_addr", grpcListener.Addr().String(),
		"http_addr", httpListener.Addr().String(),
		"storage", cfg.Storage.Driver,
		"swagger", cfg.Swagger.Enabled,
		"metrics", cfg.Metrics.Enabled,
		"auth", cfg.Auth.Enabled)

	serverCtx, serverCancel := context.WithCancel(context.Background())

	return &Server{
		HTTPListener: httpListener,
		GRPCListener: grpcListener,
		Ctx:          serverCtx,
		Cancel:       serverCancel,
		Config:       cfg,
		log:          log,
	}, nil
}

// Initialize инициализирует компоненты сервера (Repository → Service → Handler)
func (s *Server) Initialize(ctx context.Context) error {
	repo, err := NewRepository(ctx, s.Config.Storage, s.log)
	if err != nil {
		return err
	}
	s.Repo = repo
	s.log.Info("initialized repository", "driver", s.Config.Storage.Driver)

	noteSvc := notesService.NewNoteService(repo)

	var httpMetrics *metrics.HTTPMetrics
	if s.Config.Metrics.Enabled {
		httpMetrics, err = metrics.NewHTTPMetrics()
		if err != nil {
			return fmt.Errorf("metrics.NewHTTPMetrics: %w", err)
		}
	}

	s.Handler, err = gateway.NewHandler(s.Config, gateway.Deps{
		NoteService: noteSvc,
		Ping:        repo.Ping,
		Metrics:     httpMetrics,
		Log:         s.log,
	})
	if err != nil {
		return err
	}

	s.GRPCServer, s.Health = grpcapi.NewServer(grpcapi.Options{
		UseReflection: s.Config.Server.UseReflection,
		Log:           s.log,
	})

	return nil
}

// NewRepository создает хранилище заметок по настройке storage.driver
func NewRepository(ctx context.Context, cfg *config.ConfigStorage, log *slog.Logger) (repository.NoteRepository, error) {
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second

	switch cfg.Driver {
	case config.StorageMemory:
		return memory.NewRepository(), nil
	case config.StorageMongo:
		return mongo.Connect(ctx, mongo.Options{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			Collection:     cfg.MongoCollection,
			ConnectTimeout: timeout,
		})
	case config.StorageSQLite:
		return sqlstore.Open(ctx, sqlstore.DriverSQLite, cfg.SQLDSN, log)
	case config.StorageMySQL:
		return sqlstore.Open(ctx, sqlstore.DriverMySQL, cfg.SQLDSN, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Start запускает gRPC и HTTP серверы в горутинах.
// Возвращает канал ошибок для отслеживания ошибок серверов.
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 2)

	s.wg.Go(func() {
		s.log.Info("gRPC server listening", "addr", s.GRPCListener.Addr().String())
		if err := s.GRPCServer.Serve(s.GRPCListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	})

	s.wg.Go(func() {
		if err := gateway.Serve(s.Ctx, s.HTTPListener, s.Handler, s.Config.Server, s.log); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	})

	s.wg.Go(func() {
		s.watchStorage(s.Ctx, storageCheckInterval)
	})

	return errChan
}

// watchStorage периодически пингует хранилище и переключает gRPC health статус
func (s *Server) watchStorage(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, interval/2)
		err := s.Repo.Ping(pingCtx)
		cancel()

		switch {
		case err != nil && serving:
			s.log.Warn("storage ping failed", "error", err)
			s.Health.SetServingStatus(grpcapi.NotesServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			s.log.Info("storage is reachable again")
			s.Health.SetServingStatus(grpcapi.NotesServiceName, healthpb.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}

// Shutdown выполняет graceful shutdown сервера
func (s *Server) Shutdown() error {
	s.log.Info("starting graceful shutdown")

	// Сначала сообщаем клиентам health протокола, что сервис уходит
	s.Health.Shutdown()
	// Отмена контекста останавливает HTTP сервер и проверку хранилища
	s.Cancel()

	shutdownTimeout := time.Duration(s.Config.Server.GracefulShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.GRPCServer.GracefulStop()
		s.wg.Wait()
		close(stopped)
	}()

	var errs []error
	select {
	case <-stopped:
		s.log.Info("servers stopped gracefully")
	case <-ctx.Done():
		s.log.Warn("graceful shutdown timeout, forcing stop")
		s.GRPCServer.Stop()
		errs = append(errs, ctx.Err())
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := s.Repo.Close(closeCtx); err != nil {
		errs = append(errs, fmt.Errorf("repository close: %w", err))
	}

	return errors.Join(errs...)
}
