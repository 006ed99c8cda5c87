package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultHTTPAddress = "http://localhost:8080"
	defaultGRPCAddress = "localhost:50051"
)

type note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsEnabled   bool      `json:"isEnabled"`
	IsFavorite  bool      `json:"isFavorite"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// client REST клиент Notes API
type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	// Адреса серверов из переменных окружения или значения по умолчанию
	httpAddress := os.Getenv("SERVER_HTTP_ADDRESS")
	if httpAddress == "" {
		httpAddress = defaultHTTPAddress
	}
	grpcAddress := os.Getenv("SERVER_GRPC_ADDRESS")
	if grpcAddress == "" {
		grpcAddress = defaultGRPCAddress
	}

	c := &client{
		baseURL: httpAddress,
		token:   os.Getenv("AUTH_TOKEN"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Выбираем, какой тест запустить через переменную окружения или аргумент
	testType := os.Getenv("TEST_TYPE")
	if testType == "" && len(os.Args) > 1 {
		testType = os.Args[1]
	}

	var err error
	switch testType {
	case "health":
		err = testHealth(ctx, grpcAddress)
	case "error":
		err = testErrorHandling(ctx, c)
	case "scenario", "":
		err = testScenario(ctx, c)
	default:
		log.Println("Available test types: scenario, health, error")
		log.Println("Usage: TEST_TYPE=health go run . OR go run . health")
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", testType, err)
	}
	log.Println("✅ done")
}

// testScenario проходит полный жизненный цикл заметки через REST
func testScenario(ctx context.Context, c *client) error {
	log.Println("=== Testing note lifecycle ===")

	var created note
	if err := c.do(ctx, http.MethodPost, "/notes", map[string]any{
		"title":       "Buy milk",
		"description": "2 liters",
	}, http.StatusCreated, &created); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	log.Printf("Created note %s (isEnabled=%v, isFavorite=%v)", created.ID, created.IsEnabled, created.IsFavorite)

	var updated note
	if err := c.do(ctx, http.MethodPatch, "/notes/"+created.ID, map[string]any{
		"isFavorite": false,
	}, http.StatusOK, &updated); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	log.Printf("Updated note: isFavorite=%v, title=%q", updated.IsFavorite, updated.Title)

	var list struct {
		Results []note `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/notes", nil, http.StatusOK, &list); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	log.Printf("Listed %d note(s)", len(list.Results))

	if err := c.do(ctx, http.MethodDelete, "/notes/"+created.ID, nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	log.Printf("Deleted note %s", created.ID)

	var notFound apiError
	if err := c.do(ctx, http.MethodGet, "/notes/"+created.ID, nil, http.StatusNotFound, &notFound); err != nil {
		return fmt.Errorf("get after delete: %w", err)
	}
	log.Printf("Get after delete: %d %s", notFound.Code, notFound.Message)
	return nil
}

// testErrorHandling проверяет ответы на невалидные запросы
func testErrorHandling(ctx context.Context, c *client) error {
	log.Println("=== Testing error responses ===")

	cases := []struct {
		method string
		path   string
		body   any
		want   int
	}{
		{http.MethodPost, "/notes", map[string]any{"description": "no title"}, http.StatusBadRequest},
		{http.MethodGet, "/notes/not-an-id", nil, http.StatusBadRequest},
		{http.MethodPatch, "/notes/5f1e1b9b9c9d440000a1b2c3", map[string]any{}, http.StatusBadRequest},
		{http.MethodGet, "/notes/5f1e1b9b9c9d440000a1b2c3", nil, http.StatusNotFound},
	}

	for _, tc := range cases {
		var apiErr apiError
		if err := c.do(ctx, tc.method, tc.path, tc.body, tc.want, &apiErr); err != nil {
			return fmt.Errorf("%s %s: %w", tc.method, tc.path, err)
		}
		log.Printf("%s %s → %d %s", tc.method, tc.path, apiErr.Code, apiErr.Message)
	}
	return nil
}

// testHealth запрашивает статус сервиса по gRPC health протоколу
func testHealth(ctx context.Context, address string) error {
	log.Printf("Connecting to gRPC server at %s...", address)

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: "notes.v1.NotesService"})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	log.Printf("Health status: %s", resp.GetStatus())
	return nil
}

// do выполняет запрос и проверяет статус ответа; тело ответа декодируется в out, если он задан
func (c *client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("unexpected status %d (want %d): %s", resp.StatusCode, wantStatus, raw)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
