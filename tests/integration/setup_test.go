package integration

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/config"
	backendhttp "github.com/Osomudeya/retoucher-demo/internal/infrastructure/http"
)

const testAdminKey = "integration-admin-key"

var (
	testServer        *backendhttp.Server
	testServerURL     string
	postgresContainer testcontainers.Container
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	if err := setupPostgresContainer(ctx); err != nil {
		log.Fatalf("failed to setup postgres container: %v", err)
	}

	if err := setupBackend(); err != nil {
		log.Fatalf("failed to setup backend: %v", err)
	}

	code := m.Run()

	cleanup(ctx)
	os.Exit(code)
}

func setupPostgresContainer(ctx context.Context) error {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "webapp",
			"POSTGRES_USER":     "adminuser",
			"POSTGRES_PASSWORD": "localdevpassword",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	postgresContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return fmt.Errorf("failed to get postgres port: %w", err)
	}

	for k, v := range map[string]string{
		"DB_HOST":     host,
		"DB_PORT":     port.Port(),
		"DB_NAME":     "webapp",
		"DB_USER":     "adminuser",
		"DB_PASSWORD": "localdevpassword",
		"DB_SSL":      "false",
	} {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return nil
}

func setupBackend() error {
	port, err := getFreePort()
	if err != nil {
		return fmt.Errorf("failed to get free port: %w", err)
	}

	for k, v := range map[string]string{
		"PORT":      fmt.Sprintf("%d", port),
		"ENV":       "test",
		"LOG_LEVEL": "error",
		"ADMIN_KEY": testAdminKey,
	} {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}

	cfg, err := config.Load("test", "none", "unknown")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	server, err := backendhttp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	testServer = server

	go func() {
		if err := server.Run(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()

	testServerURL = fmt.Sprintf("http://localhost:%d", port)

	if err := waitForServer(testServerURL, 10*time.Second); err != nil {
		return fmt.Errorf("server didn't start in time: %w", err)
	}
	return nil
}

func cleanup(ctx context.Context) {
	if testServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := testServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("failed to shutdown server: %v", err)
		}
	}

	if postgresContainer != nil {
		if err := postgresContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate postgres container: %v", err)
		}
	}
}

func getFreePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = listener.Close() }()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

func waitForServer(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(url + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not respond within %v", timeout)
}
