package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dom/whats-cookin/internal/ai"
	"github.com/dom/whats-cookin/internal/api"
	"github.com/dom/whats-cookin/internal/config"
	"github.com/dom/whats-cookin/internal/metrics"
	"github.com/dom/whats-cookin/internal/repository"
	repoPostgres "github.com/dom/whats-cookin/internal/repository/postgres"
	"github.com/dom/whats-cookin/internal/service"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated connection.
// The test is skipped when no container runtime is reachable.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_whats_cookin"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		testDB.Cleanup()
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	testDB.DSN = dsn

	db, err := repoPostgres.Open(gormPostgres.Open(dsn), false, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	testDB.DB = db

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	if err := tdb.DB.Exec("TRUNCATE TABLE recipes, users RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// NewSQLiteDB returns a migrated in-memory SQLite database private to the test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := repoPostgres.Open(sqlite.Open(dsn), false, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A single connection keeps the in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// NewMockDB returns a gorm handle speaking the PostgreSQL dialect over sqlmock.
func NewMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := repoPostgres.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB}), false, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}
	return db, mock
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:            "0", // Random port
		Environment:     "test",
		LogLevel:        "debug",
		JWTSecret:       "test-jwt-secret-key-for-testing-only",
		BcryptCost:      bcrypt.MinCost,
		OpenAIAPIKey:    "sk-test",
		OpenAIModel:     "gpt-4o-mini",
		AITimeout:       2 * time.Second,
		AIMaxRetries:    0,
		AIRatePerMinute: 0,
		MaxUploadBytes:  1 << 20,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Repos    *repository.Repositories
	Services *service.Services
	Metrics  *metrics.Metrics
	AI       *FakeAI
	Config   *config.Config
}

type ServerOption func(*config.Config)

// WithAIRateLimit enables the per-user AI rate limit.
func WithAIRateLimit(perMinute int) ServerOption {
	return func(cfg *config.Config) {
		cfg.AIRatePerMinute = perMinute
	}
}

func WithMaxUploadBytes(n int64) ServerOption {
	return func(cfg *config.Config) {
		cfg.MaxUploadBytes = n
	}
}

// NewTestServer creates a complete test server backed by SQLite and a fake AI provider.
func NewTestServer(t *testing.T, opts ...ServerOption) *TestServer {
	t.Helper()

	db := NewSQLiteDB(t)
	fakeAI := NewFakeAI(t)
	cfg := TestConfig()
	cfg.OpenAIBaseURL = fakeAI.URL()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := zaptest.NewLogger(t)
	m := metrics.New()
	repos := repoPostgres.NewRepositories(db)

	client := ai.NewClient(ai.ClientOptions{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.OpenAIModel,
		Timeout:    cfg.AITimeout,
		MaxRetries: cfg.AIMaxRetries,
	}, logger)
	gateway := ai.NewGateway(client, m, logger)

	services := service.NewServices(repos, gateway, cfg, m)
	router := api.NewRouter(services, cfg, m, logger)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Repos:    repos,
		Services: services,
		Metrics:  m,
		AI:       fakeAI,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// URL returns the full URL for a given path
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// Do sends a request with an optional JSON body and bearer token.
func (ts *TestServer) Do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.URL(path), reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.send(t, req)
}

// Upload posts data as a multipart file part with the given content type.
func (ts *TestServer) Upload(t *testing.T, path, token, field, filename, contentType string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write multipart part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL(path), &body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.send(t, req)
}

func (ts *TestServer) send(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() {
		resp.Body.Close()
	})
	return resp
}
