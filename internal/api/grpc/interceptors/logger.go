package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggerUnaryInterceptor логирует unary запросы:
// метод, код ответа и затраченное время
func LoggerUnaryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		log.DebugContext(ctx, "incoming grpc request", "method", info.FullMethod)

		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)

		st, _ := status.FromError(err)
		if err != nil {
			log.WarnContext(ctx, "grpc request failed",
				"method", info.FullMethod,
				"code", st.Code().String(),
				"error", st.Message(),
				"duration", duration)
			return resp, err
		}

		log.InfoContext(ctx, "grpc request",
			"method", info.FullMethod,
			"code", st.Code().String(),
			"duration", duration)
		return resp, nil
	}
}
