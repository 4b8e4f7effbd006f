package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collab-novel-api/internal/application/account"
	"collab-novel-api/internal/application/novel"
	"collab-novel-api/internal/config"
	"collab-novel-api/internal/interfaces/http/handler"
	"collab-novel-api/internal/testutil"
	"collab-novel-api/pkg/utils"
)

type okChecker struct{}

func (okChecker) HealthCheck(context.Context) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *utils.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Name = "collab-novel-api"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Security.AuthEnabled = true
	cfg.Security.BasicAuth = config.BasicAuthConfig{Enabled: true, Username: "admin", Password: "s3cret"}

	store := testutil.NewStore()
	txm := &testutil.Transactor{}
	jwt := utils.NewJWTManager("test-secret", "collab-novel-api", time.Hour)

	handlers := Handlers{
		Health: handler.NewHealthHandler(okChecker{}, nil),
		Auth:   handler.NewAuthHandler(account.NewService(txm, testutil.UserRepo{S: store}, jwt, nil)),
		Story: handler.NewStoryHandler(novel.NewService(novel.Deps{
			Transactor:  txm,
			StoryInputs: testutil.StoryInputRepo{S: store},
			Iterations:  testutil.IterationRepo{S: store},
			Feedback:    testutil.FeedbackRepo{S: store},
			Generator:   &testutil.Generator{Output: "text"},
		})),
	}
	return New(cfg, handlers, jwt).Engine(), jwt
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPublicEndpointsSkipAuth(t *testing.T) {
	engine, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/ready", "/health/live", "/metrics"} {
		w := serve(engine, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/sessions",
		strings.NewReader(`{"email":"nobody@example.com","password":"Validpass1"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIRequiresCredentials(t *testing.T) {
	engine, jwt := newTestRouter(t)

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/latest-iteration", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/latest-iteration", nil)
	req.SetBasicAuth("admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(engine, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/latest-iteration", nil)
	req.SetBasicAuth("admin", "s3cret")
	assert.Equal(t, http.StatusNotFound, serve(engine, req).Code)

	token, err := jwt.GenerateToken("00000000-0000-0000-0000-000000000001", "validuser")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/latest-iteration", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, serve(engine, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/latest-iteration", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(engine, req).Code)
}

func TestSignupThenAuthenticatedIterate(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"username":"validuser","email":"valid@example.com","password":"Validpass1"}`)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/sessions",
		strings.NewReader(`{"email":"valid@example.com","password":"Validpass1"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	token := extractToken(t, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/iterate-novel", strings.NewReader(`{"input":"Begin"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, serve(engine, req).Code)
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	_, rest, ok := strings.Cut(body, `"token":"`)
	require.True(t, ok, body)
	token, _, ok := strings.Cut(rest, `"`)
	require.True(t, ok)
	return token
}
