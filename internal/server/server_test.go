package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"notes-api/internal/config"
	"notes-api/internal/logger"
	"notes-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.PortHTTP = 0
	cfg.Server.PortGRPC = 0
	cfg.Server.GracefulShutdownTimeout = 5
	return cfg
}

func TestNewRepository(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *config.ConfigStorage
		wantErr bool
	}{
		{name: "memory", cfg: &config.ConfigStorage{Driver: config.StorageMemory}},
		{name: "sqlite", cfg: &config.ConfigStorage{Driver: config.StorageSQLite, SQLDSN: ":memory:"}},
		{name: "unknown", cfg: &config.ConfigStorage{Driver: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewRepository(ctx, tt.cfg, logger.Discard())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = repo.Close(ctx) })

			created, err := repo.Create(ctx, model.Note{Title: "t", Description: "d", IsEnabled: true})
			require.NoError(t, err)
			assert.Len(t, created.ID, 24)
			assert.NoError(t, repo.Ping(ctx))
		})
	}
}

func TestServer_Lifecycle(t *testing.T) {
	srv, err := NewServer(testConfig(), logger.Discard())
	require.NoError(t, err)
	require.NoError(t, srv.Initialize(context.Background()))

	errChan := srv.Start()
	baseURL := "http://" + srv.HTTPListener.Addr().String()

	// HTTP: health и создание заметки
	resp, err := http.Get(baseURL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(baseURL+"/notes", "application/json",
		strings.NewReader(`{"title":"Buy milk","description":"2 liters"}`))
	require.NoError(t, err)
	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, created["isEnabled"])

	resp, err = http.Get(fmt.Sprintf("%s/notes/%s", baseURL, created["id"]))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// gRPC health
	conn, err := grpc.NewClient(srv.GRPCListener.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: "notes.v1.NotesService"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.GetStatus())

	require.NoError(t, srv.Shutdown())

	select {
	case err := <-errChan:
		t.Fatalf("unexpected server error: %v", err)
	default:
	}

	_, err = http.Get(baseURL + "/healthz")
	assert.Error(t, err)
}
