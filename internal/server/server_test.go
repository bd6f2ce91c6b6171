package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:          0,
		SessionSecret: "0123456789abcdef0123456789abcdef",
		UploadDir:     t.TempDir(),
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func serve(s *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, testConfig(t))

	rr := serve(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	serve(s, http.MethodGet, "/api/jobs", "")
	rr = serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/api/jobs"`)
}

func TestServer_ProtectedRoutesNeedSession(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	for _, path := range []string{"/api/auth/me", "/api/my/jobs", "/api/my/applications", "/api/my/activities"} {
		rr := serve(s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

// TestServer_SQLiteEndToEnd walks the main flow against the relational
// backend, sessions included.
func TestServer_SQLiteEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseURL = "file:" + filepath.Join(t.TempDir(), "jobboard.db")
	s := newTestServer(t, cfg)

	rr := serve(s, http.MethodPost, "/api/auth/register",
		`{"username":"alice","password":"password123","franchiseName":"Store 12","franchiseeId":"F-12","location":"Austin, TX"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cookie := rr.Result().Cookies()[0]

	rr = serve(s, http.MethodPost, "/api/my/jobs",
		`{"title":"Cashier","location":"Austin, TX","type":"part_time","tags":["retail"]}`, cookie)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = serve(s, http.MethodGet, "/api/jobs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title":"Cashier"`)

	rr = serve(s, http.MethodPost, "/api/applications",
		`{"jobId":"1","firstName":"Jane","lastName":"Doe","email":"jane@example.com","phone":"555-0100"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"referenceId":"SEV-`)

	rr = serve(s, http.MethodGet, "/api/my/applications", "", cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"firstName":"Jane"`)

	rr = serve(s, http.MethodPost, "/api/auth/logout", "", cookie)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = serve(s, http.MethodGet, "/api/auth/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestServer_BadDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseURL = "whatever"
	cfg.DatabaseDriver = "oracle"
	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	assert.Error(t, err)
}
