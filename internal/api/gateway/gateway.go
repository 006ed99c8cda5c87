package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"notes-api/internal/api/http/middleware"
	"notes-api/internal/api/swagger"
	"notes-api/internal/config"
	"notes-api/internal/metrics"
	svc "notes-api/internal/service"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
)

const healthTimeout = 2 * time.Second

// Deps зависимости HTTP слоя
type Deps struct {
	NoteService svc.NoteService
	// Ping проверяет доступность хранилища для /healthz
	Ping    func(ctx context.Context) error
	Metrics *metrics.HTTPMetrics // nil, если метрики выключены
	Log     *slog.Logger
}

// route описание одного REST маршрута
type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

// NewHandler собирает HTTP обработчик: маршруты заметок, служебные эндпоинты и middleware
func NewHandler(cfg *config.Config, deps Deps) (http.Handler, error) {
	notes := NewNotesHandler(deps.NoteService, deps.Log)

	// runtime.ServeMux маршрутизирует по шаблонам вида /notes/{noteId}
	// и отвечает 404/405 в едином формате ошибок
	gwMux := runtime.NewServeMux(
		runtime.WithRoutingErrorHandler(routingErrorHandler),
	)

	routes := []route{
		{method: http.MethodPost, pattern: "/notes", handler: notes.CreateNote},
		{method: http.MethodGet, pattern: "/notes", handler: notes.GetNotes},
		{method: http.MethodGet, pattern: "/notes/{noteId}", handler: notes.GetNote},
		{method: http.MethodPatch, pattern: "/notes/{noteId}", handler: notes.UpdateNote},
		{method: http.MethodDelete, pattern: "/notes/{noteId}", handler: notes.DeleteNote},
	}
	for _, rt := range routes {
		h := deps.Metrics.Instrument(rt.method, rt.pattern, rt.handler)
		if err := gwMux.HandlePath(rt.method, rt.pattern, h); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	var notesHandler http.Handler = gwMux
	if cfg.Auth.Enabled {
		notesHandler = middleware.Auth(notesHandler, []byte(cfg.Auth.JWTSecret), deps.Log)
		deps.Log.Info("JWT auth enabled for /notes routes")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler(deps.Ping, deps.Log))
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}
	if cfg.Swagger.Enabled {
		swagger.ServeSwagger(mux)
	}
	mux.Handle("/", notesHandler)

	// Применение middleware (в обратном порядке выполнения):
	// RequestID → RealIP → Recoverer → StripSlashes → CORS → Logging → Rate Limiting → mux
	// StripSlashes: /notes/ обслуживается как /notes
	var handler http.Handler = mux
	handler = middleware.RateLimit(handler, cfg.Gateway.RateLimitRPS, cfg.Gateway.RateLimitBurst, deps.Log)
	handler = middleware.Logging(handler, deps.Log)
	handler = setupCORS(cfg.Gateway).Handler(handler)
	handler = chimw.StripSlashes(handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)

	return handler, nil
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigGateway) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}

func routingErrorHandler(_ context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, _ *http.Request, httpStatus int) {
	msg := http.StatusText(httpStatus)
	if httpStatus == http.StatusNotFound {
		msg = "Not found"
	}
	middleware.WriteError(w, httpStatus, msg)
}

// healthHandler отвечает 503 без подробностей, если хранилище недоступно; причина только в логе
func healthHandler(ping func(ctx context.Context) error, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.WarnContext(r.Context(), "health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Serve обслуживает HTTP на lis и выполняет graceful shutdown при отмене ctx
func Serve(ctx context.Context, lis net.Listener, handler http.Handler, cfg *config.ConfigServer, log *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.GracefulShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("HTTP server stopped gracefully")
	return nil
}
