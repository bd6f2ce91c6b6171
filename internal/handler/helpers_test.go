package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/auth"
	"github.com/sakif/jobboard/internal/handler"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/repository/memory"
	"github.com/sakif/jobboard/internal/service"
	"github.com/sakif/jobboard/internal/session"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type nopNotifier struct{}

func (nopNotifier) ApplicationSubmitted(context.Context, *model.Application, *model.Job) error {
	return nil
}

func (nopNotifier) StatusChanged(context.Context, *model.Application, *model.Job) error {
	return nil
}

// testAPI is the full /api surface over a memory store, routed the same
// way the server routes it.
type testAPI struct {
	router   chi.Router
	store    *memory.Store
	links    *auth.LinkSigner
	sessions *session.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store := memory.New()
	sessions, err := session.NewStore(session.NewMemoryBackend(), session.Config{Secret: testSecret})
	require.NoError(t, err)
	links, err := auth.NewLinkSigner(testSecret, 0)
	require.NoError(t, err)

	sanitizer := service.NewSanitizer()
	acts := service.NewActivityService(store, logger)
	jobs := service.NewJobService(store, acts, sanitizer, logger)
	apps := service.NewApplicationService(store, jobs, acts, nopNotifier{}, sanitizer, logger)
	authSvc := service.NewAuthService(store, auth.NewPasswordServiceWithCost(4), acts, logger)

	v := handler.NewValidator()
	authH := handler.NewAuthHandler(authSvc, sessions, v, logger)
	jobH := handler.NewJobHandler(jobs, v, logger)
	appH := handler.NewApplicationHandler(apps, links, v, logger)
	actH := handler.NewActivityHandler(acts, logger)
	upH, err := handler.NewUploadHandler(t.TempDir(), links, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.HandleRegister)
		r.Post("/auth/login", authH.HandleLogin)
		r.Post("/auth/logout", authH.HandleLogout)
		r.Get("/jobs", jobH.HandleList)
		r.Get("/jobs/{id}", jobH.HandleGet)
		r.Post("/applications", appH.HandleSubmit)
		r.Post("/uploads/resume", upH.HandleUploadResume)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(sessions))
			r.Get("/auth/me", authH.HandleMe)
			r.Get("/my/jobs", jobH.HandleListMine)
			r.Post("/my/jobs", jobH.HandleCreate)
			r.Patch("/my/jobs/{id}", jobH.HandleUpdate)
			r.Delete("/my/jobs/{id}", jobH.HandleDelete)
			r.Get("/my/jobs/{id}/applications", appH.HandleListForJob)
			r.Get("/my/applications", appH.HandleListMine)
			r.Get("/my/applications/{id}", appH.HandleGet)
			r.Patch("/my/applications/{id}/status", appH.HandleUpdateStatus)
			r.Get("/my/applications/{id}/resume", appH.HandleResume)
			r.Get("/my/activities", actH.HandleList)
		})
	})
	r.Get("/uploads/resumes/{name}", upH.HandleServeResume)

	return &testAPI{router: r, store: store, links: links, sessions: sessions}
}

// do sends a request through the router. body may be nil, a string, or
// anything JSON-encodable.
func (a *testAPI) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// register creates an account and returns its session cookie.
func (a *testAPI) register(t *testing.T, username, franchiseeID string) *http.Cookie {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username":      username,
		"password":      "password123",
		"franchiseName": "Store " + username,
		"franchiseeId":  franchiseeID,
		"location":      "Austin, TX",
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (a *testAPI) createJob(t *testing.T, cookie *http.Cookie, title string) model.Job {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/my/jobs", map[string]any{
		"title":    title,
		"location": "Austin, TX",
		"type":     "part_time",
	}, cookie)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var job model.Job
	decode(t, rr, &job)
	return job
}

func (a *testAPI) submit(t *testing.T, jobID int64, extra map[string]any) model.Application {
	t.Helper()
	body := map[string]any{
		"jobId":     jobID,
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"phone":     "555-0100",
	}
	for k, v := range extra {
		body[k] = v
	}
	rr := a.do(t, http.MethodPost, "/api/applications", body, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var app model.Application
	decode(t, rr, &app)
	return app
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dst))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var e handler.ErrorResponse
	decode(t, rr, &e)
	return e
}
