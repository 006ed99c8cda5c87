package interceptors

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// wrappedServerStream считает сообщения в стриме
type wrappedServerStream struct {
	grpc.ServerStream
	log      *slog.Logger
	method   string
	received int
	sent     int
}

func (w *wrappedServerStream) RecvMsg(m any) error {
	err := w.ServerStream.RecvMsg(m)
	switch {
	case err == nil:
		w.received++
	case !errors.Is(err, io.EOF):
		w.log.Debug("stream recv error", "method", w.method, "error", err)
	}
	return err
}

func (w *wrappedServerStream) SendMsg(m any) error {
	err := w.ServerStream.SendMsg(m)
	if err != nil {
		w.log.Debug("stream send error", "method", w.method, "error", err)
		return err
	}
	w.sent++
	return nil
}

// LoggerStreamInterceptor логирует стриминговые вызовы (например, grpc.health.v1.Health/Watch)
// с количеством принятых и отправленных сообщений
func LoggerStreamInterceptor(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		log.Debug("grpc stream established", "method", info.FullMethod)

		wrapped := &wrappedServerStream{ServerStream: ss, log: log, method: info.FullMethod}
		start := time.Now()
		err := handler(srv, wrapped)

		st, _ := status.FromError(err)
		log.Info("grpc stream closed",
			"method", info.FullMethod,
			"code", st.Code().String(),
			"received", wrapped.received,
			"sent", wrapped.sent,
			"duration", time.Since(start))
		return err
	}
}
