package grpc

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"notes-api/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, opts Options) (healthpb.HealthClient, func(service string, status healthpb.HealthCheckResponse_ServingStatus)) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv, hs := NewServer(opts)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn), hs.SetServingStatus
}

func TestNewServer_Health(t *testing.T) {
	client, setStatus := startServer(t, Options{Log: logger.Discard()})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: NotesServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	setStatus(NotesServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: NotesServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestNewServer_UnknownServiceIsNotFound(t *testing.T) {
	client, _ := startServer(t, Options{Log: logger.Discard()})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	require.Error(t, err)
}

func TestNewServer_LogsUnaryCalls(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New("info", logger.FormatText, &buf)
	require.NoError(t, err)

	client, _ := startServer(t, Options{Log: log, UseReflection: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "/grpc.health.v1.Health/Check")
	assert.Contains(t, buf.String(), "code=OK")
}
