package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/service"
	"github.com/kyzmat/marketplace/internal/i18n"
	"github.com/kyzmat/marketplace/internal/infrastructure/db/memory"
)

const testSecret = "router-test-secret"

// newTestServer wires the real services over in-memory repositories and
// seeds one admin account (admin@kyzmat.kg / admin123).
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	repos := memory.NewRepositories()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, repos.Users.Create(context.Background(), &domain.User{
		ID: "user_admin", Name: "Админ / Admin", Email: "admin@kyzmat.kg",
		PasswordHash: string(hash), Role: domain.RoleAdmin, CreatedAt: now, UpdatedAt: now,
	}))

	notifications := service.NewNotificationService(repos.Notifications, log)
	return NewRouter(Dependencies{
		Auth:          service.NewAuthService(repos.Users, testSecret, time.Hour),
		Jobs:          service.NewJobService(repos.Jobs, repos.Idempotency, nil, log),
		Chat:          service.NewChatService(repos.Chats, repos.Jobs, repos.Users, nil, nil, nil, log),
		Notifications: notifications,
		Moderation:    service.NewModerationService(repos.Users, repos.Jobs, repos.Reports, log),
		Preferences:   service.NewPreferenceService(repos.Preferences),
		Translator:    i18n.MustNew("ru"),
		JWTSecret:     testSecret,
		Version:       "test",
		Log:           log,
		Registry:      prometheus.NewRegistry(),
	})
}

type apiCall struct {
	method string
	path   string
	body   string
	token  string
	lang   string
}

func do(t *testing.T, e *echo.Echo, call apiCall) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if call.body != "" {
		req = httptest.NewRequest(call.method, call.path, strings.NewReader(call.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(call.method, call.path, nil)
	}
	if call.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+call.token)
	}
	if call.lang != "" {
		req.Header.Set("Accept-Language", call.lang)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, e *echo.Echo, name, email, role string) string {
	t.Helper()
	rec := do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/auth/register",
		body: `{"name":"` + name + `","email":"` + email + `","password":"secret123","role":"` + role + `"}`})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return login(t, e, email, "secret123")
}

func login(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()
	rec := do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/auth/login",
		body: `{"email":"` + email + `","password":"` + password + `"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func jobBody(title string) string {
	deadline := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	return `{"title":"` + title + `","description":"Нужен современный логотип для кофейни в центре",` +
		`"category":"Дизайн","price":5000,"currency":"сом","deadline":"` + deadline + `","location":"Бишкек"}`
}

func TestRouter_Health(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, apiCall{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)

	rec = do(t, e, apiCall{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_JobLifecycle(t *testing.T) {
	e := newTestServer(t)
	client := register(t, e, "Иван / Ivan", "ivan@example.kg", domain.RoleClient)
	executor := register(t, e, "Айбек / Aibek", "aibek@example.kg", domain.RoleExecutor)

	rec := do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/jobs", body: jobBody("Первый заказ"), token: client})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/jobs", body: jobBody("Второй заказ"), token: client})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// The newest job is at the head of the public listing.
	rec = do(t, e, apiCall{method: http.MethodGet, path: "/api/v1/jobs"})
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Currency string `json:"currency"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, created.ID, list.Items[0].ID)
	assert.Equal(t, "KGS", list.Items[0].Currency)

	// Executors cannot post jobs.
	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/jobs", body: jobBody("Чужой заказ"), token: executor})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/jobs/" + created.ID + "/accept", token: executor})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"in_progress"`)

	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/jobs/" + created.ID + "/complete", token: client})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A completed job is terminal.
	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/jobs/" + created.ID + "/cancel", token: client, lang: "ky"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var envelope errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "invalid_transition", envelope.Code)
	assert.Equal(t, "Статусту мындай өзгөртүүгө болбойт", envelope.Error)
	assert.Equal(t, "ky", rec.Header().Get("Content-Language"))
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	e := newTestServer(t)
	client := register(t, e, "Иван / Ivan", "ivan@example.kg", domain.RoleClient)

	tests := []struct {
		name      string
		call      apiCall
		status    int
		code      string
		localized string
	}{
		{"unknown job", apiCall{method: http.MethodGet, path: "/api/v1/jobs/job_missing"}, http.StatusNotFound, "not_found", "Не найдено"},
		{"unknown job in ky", apiCall{method: http.MethodGet, path: "/api/v1/jobs/job_missing?lang=ky"}, http.StatusNotFound, "not_found", "Табылган жок"},
		{"no token", apiCall{method: http.MethodGet, path: "/api/v1/me"}, http.StatusUnauthorized, "unauthorized", "Требуется авторизация"},
		{"wrong password", apiCall{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"email":"ivan@example.kg","password":"nope"}`}, http.StatusUnauthorized, "invalid_credentials", "Неверный email или пароль"},
		{"unknown email", apiCall{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"email":"ghost@example.kg","password":"secret123"}`}, http.StatusUnauthorized, "invalid_credentials", "Неверный email или пароль"},
		{"duplicate email", apiCall{method: http.MethodPost, path: "/api/v1/auth/register", body: `{"name":"Иван","email":"ivan@example.kg","password":"secret123","role":"client"}`}, http.StatusConflict, "user_exists", "Пользователь с таким email уже существует"},
		{"admin area", apiCall{method: http.MethodGet, path: "/api/v1/admin/users", token: client}, http.StatusForbidden, "forbidden", "Доступ запрещён"},
		{"bad job", apiCall{method: http.MethodPost, path: "/api/v1/jobs", body: `{"title":"x"}`, token: client}, http.StatusBadRequest, "validation", "Проверьте правильность заполнения полей"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, tt.call)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var envelope errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tt.code, envelope.Code)
			assert.Equal(t, tt.localized, envelope.Error)
		})
	}
}

func TestRouter_AdminModeration(t *testing.T) {
	e := newTestServer(t)
	client := register(t, e, "Иван / Ivan", "ivan@example.kg", domain.RoleClient)
	admin := login(t, e, "admin@kyzmat.kg", "admin123")

	rec := do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/jobs", body: jobBody("Логотип для кофейни"), token: client})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/admin/jobs/" + created.ID + "/block", token: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Blocked jobs disappear from the public feed.
	rec = do(t, e, apiCall{method: http.MethodGet, path: "/api/v1/jobs"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":0`)

	rec = do(t, e, apiCall{method: http.MethodGet, path: "/api/v1/admin/statistics", token: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Contains(t, stats, "generated_at")
}

func TestRouter_BlockedAccountLosesAccess(t *testing.T) {
	e := newTestServer(t)
	client := register(t, e, "Иван / Ivan", "ivan@example.kg", domain.RoleClient)
	admin := login(t, e, "admin@kyzmat.kg", "admin123")

	rec := do(t, e, apiCall{method: http.MethodGet, path: "/api/v1/me", token: client})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))

	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/admin/users/" + me.ID + "/block", token: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The token issued before the block is still well-formed and unexpired.
	for _, call := range []apiCall{
		{method: http.MethodPost, path: "/api/v1/jobs", body: jobBody("Заказ после блокировки"), token: client},
		{method: http.MethodGet, path: "/api/v1/me", token: client},
		{method: http.MethodGet, path: "/api/v1/notifications", token: client},
	} {
		rec = do(t, e, call)
		require.Equal(t, http.StatusForbidden, rec.Code, "%s %s: %s", call.method, call.path, rec.Body.String())
		var envelope errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "user_blocked", envelope.Code)
		assert.Equal(t, "Аккаунт заблокирован", envelope.Error)
	}

	rec = do(t, e, apiCall{method: http.MethodPost, path: "/api/v1/admin/users/" + me.ID + "/unblock", token: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, e, apiCall{method: http.MethodGet, path: "/api/v1/me", token: client})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, apiCall{method: http.MethodDelete, path: "/api/v1/admin/users/" + me.ID, token: admin})
	require.Less(t, rec.Code, 300, rec.Body.String())
	rec = do(t, e, apiCall{method: http.MethodGet, path: "/api/v1/me", token: client})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	e := newTestServer(t)
	do(t, e, apiCall{method: http.MethodGet, path: "/health"})

	rec := do(t, e, apiCall{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_requests_total")
}
