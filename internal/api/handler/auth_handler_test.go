package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/api/middleware"
	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/i18n"
)

var testTranslator = i18n.MustNew("ru")

// newTestContext builds an echo context with the validator installed and a
// JSON body when body is non-empty.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, id, name, role string) {
	c.Set(middleware.KeyUserID, id)
	c.Set(middleware.KeyName, name)
	c.Set(middleware.KeyRole, role)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
}

func httpStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	profileFn  func(ctx context.Context, userID string) (*domain.User, error)
	updateFn   func(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	return s.updateFn(ctx, userID, in)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Айгуль / Aigul" || in.Role != "client" || in.Email != "aigul@example.kg" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "user_1", Name: in.Name, Email: in.Email, Role: in.Role}, nil
		},
	}
	handler := NewAuthHandler(stub, testTranslator)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/register?lang=ky",
		`{"name":"Айгуль / Aigul","email":"aigul@example.kg","password":"secret123","role":"client"}`)
	c.Set(middleware.KeyLang, i18n.KY)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		User userResponse `json:"user"`
	}
	decode(t, rec, &resp)
	if resp.User.Name != "Aigul" || resp.User.FullName != "Айгуль / Aigul" {
		t.Fatalf("unexpected name: %+v", resp.User)
	}
	if resp.User.RoleLabel != "Буйрутмачы" {
		t.Fatalf("unexpected role label: %q", resp.User.RoleLabel)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, testTranslator)

	bodies := []string{
		`{"name":"A","email":"a@example.kg","password":"secret123","role":"client"}`,
		`{"name":"Admin","email":"a@example.kg","password":"secret123","role":"admin"}`,
		`{"name":"Bob","email":"not-an-email","password":"secret123","role":"executor"}`,
		`{"name":"Bob","email":"b@example.kg","password":"123","role":"executor"}`,
	}
	for _, body := range bodies {
		c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register", body)
		if err := handler.Register(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("body %s: expected validation error, got %v", body, err)
		}
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, testTranslator)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register",
		`{"name":"Bob","email":"b@example.kg","password":"secret123","role":"executor"}`)

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, testTranslator)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register", "not-json")

	if code := httpStatus(handler.Register(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "admin@kyzmat.kg" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{ID: "user_admin", Name: "Админ", Role: domain.RoleAdmin}, nil
		},
	}
	handler := NewAuthHandler(stub, testTranslator)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@kyzmat.kg","password":"secret"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Token string       `json:"token"`
		User  userResponse `json:"user"`
	}
	decode(t, rec, &resp)
	if resp.Token != "token123" || resp.User.Role != "admin" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrUserBlocked} {
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
				return "", nil, want
			},
		}
		handler := NewAuthHandler(stub, testTranslator)

		c, _ := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"a@example.kg","password":"bad"}`)
		if err := handler.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, testTranslator)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/login", "{")

	if code := httpStatus(handler.Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		profileFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return &domain.User{ID: userID, Name: "Иван / Ivan", Role: domain.RoleClient}, nil
		},
		updateFn: func(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
			if in.Name == nil || *in.Name != "Иван Петров" || in.Avatar != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: userID, Name: *in.Name, Role: domain.RoleClient}, nil
		},
	}
	handler := NewAuthHandler(stub, testTranslator)

	c, _ := newTestContext(http.MethodGet, "/api/v1/me", "")
	if code := httpStatus(handler.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", code)
	}

	c, rec := newTestContext(http.MethodGet, "/api/v1/me", "")
	withActor(c, "user_ivan", "Иван / Ivan", domain.RoleClient)
	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var me userResponse
	decode(t, rec, &me)
	if me.ID != "user_ivan" || me.Name != "Иван" {
		t.Fatalf("unexpected profile: %+v", me)
	}

	c, rec = newTestContext(http.MethodPatch, "/api/v1/me", `{"name":"Иван Петров"}`)
	withActor(c, "user_ivan", "Иван / Ivan", domain.RoleClient)
	if err := handler.UpdateMe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	decode(t, rec, &me)
	if me.Name != "Иван Петров" {
		t.Fatalf("unexpected profile: %+v", me)
	}
}
