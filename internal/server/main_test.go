package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"firenet/internal/auth"
	"firenet/internal/config"
	"firenet/internal/database"
	"firenet/internal/models"
	"firenet/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:    testSecret,
		JWTTTLHours:  1,
		Port:         "0",
		Env:          "test",
		StoreDriver:  config.DriverSQLite,
		CascadeLimit: 4,
		StaticDir:    "client/build",
	}
}

func newSQLiteStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "firenet.db")))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return repository.NewGormStore(db)
}

// newTestServer builds a server over a fresh sqlite store without Redis or NATS.
func newTestServer(t *testing.T, cfg *config.Config) (*Server, *repository.Store) {
	t.Helper()
	store := newSQLiteStore(t)
	s, err := NewServerWithDeps(cfg, store, nil, nil)
	require.NoError(t, err)
	return s, store
}

// tokenFor registers a user with the given handle and returns a bearer token for it.
func tokenFor(t *testing.T, store *repository.Store, handle string) string {
	t.Helper()
	user := &models.User{
		Handle:    handle,
		Email:     handle + "@example.com",
		Password:  "x",
		ImageURL:  "https://img.example/" + handle + ".png",
		CreatedAt: models.Timestamp(time.Now()),
	}
	require.NoError(t, store.Users.Create(context.Background(), user))

	token, err := auth.NewIssuer(testSecret, time.Hour).Issue(user.ID, user.Handle)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Msg     string          `json:"msg"`
}

// do sends a request through the app and decodes the response envelope.
func do(t *testing.T, s *Server, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}
