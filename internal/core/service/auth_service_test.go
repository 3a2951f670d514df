package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch, at time.Time) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	patch.Apply(u)
	u.UpdatedAt = at
	return cloneUser(u), nil
}

func (r *stubUserRepo) TouchLastActivity(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastActivity = at
	return nil
}

func (r *stubUserRepo) SetBlocked(_ context.Context, id string, blocked bool) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.IsBlocked = blocked
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func register(t *testing.T, svc *AuthService, name, email, password, role string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), ports.RegisterInput{Name: name, Email: email, Password: password, Role: role})
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return u
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	user := register(t, svc, "Алия", " Aliya@Example.com ", "pass123", domain.RoleClient)
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Email != "aliya@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Role != domain.RoleClient {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	cases := []struct {
		in   ports.RegisterInput
		want error
	}{
		{ports.RegisterInput{Name: "", Email: "a@b.kg", Password: "x", Role: domain.RoleClient}, domain.ErrValidation},
		{ports.RegisterInput{Name: "Bob", Email: " ", Password: "x", Role: domain.RoleClient}, domain.ErrValidation},
		{ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pass", Role: "wrong"}, domain.ErrValidation},
		{ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pass", Role: domain.RoleAdmin}, domain.ErrForbidden},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Errorf("Register(%+v): expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	register(t, svc, "Bob", "bob@example.com", "pass", domain.RoleClient)
	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bob 2", Email: "bob@example.com", Password: "pass2", Role: domain.RoleExecutor})
	if err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	registered := register(t, svc, "Carol", "carol@example.com", "s3cret", domain.RoleExecutor)

	token, user, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleExecutor {
		t.Fatalf("expected role %s, got %v", domain.RoleExecutor, claims["role"])
	}
	if claims["sub"] != registered.ID {
		t.Fatalf("expected sub %s, got %v", registered.ID, claims["sub"])
	}
	if claims["name"] != "Carol" {
		t.Fatalf("expected name claim, got %v", claims["name"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	register(t, svc, "Dave", "dave@example.com", "goodpass", domain.RoleClient)
	if _, _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Blocked(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	u := register(t, svc, "Erlan", "erlan@example.com", "pass", domain.RoleExecutor)

	if _, err := repo.SetBlocked(context.Background(), u.ID, true); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "erlan@example.com", "pass"); !errors.Is(err, domain.ErrUserBlocked) {
		t.Fatalf("expected ErrUserBlocked, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)
	u := register(t, svc, "Fatima", "fatima@example.com", "pass", domain.RoleClient)

	name := "Фатима"
	updated, err := svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected name %q, got %q", name, updated.Name)
	}

	empty := "  "
	if _, err := svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{Name: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// blockOnRead blocks the user right after the service has read it, the way
// an admin acting between the read and the write would.
type blockOnRead struct {
	ports.UserRepository
	once sync.Once
}

func (r *blockOnRead) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.UserRepository.FindByID(ctx, id)
	r.once.Do(func() { _, _ = r.UserRepository.SetBlocked(ctx, id, true) })
	return u, err
}

func (r *blockOnRead) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.UserRepository.FindByEmail(ctx, email)
	if err == nil {
		r.once.Do(func() { _, _ = r.UserRepository.SetBlocked(ctx, u.ID, true) })
	}
	return u, err
}

func TestAuthService_ProfileEditKeepsConcurrentBlock(t *testing.T) {
	repo := newStubUserRepo()
	u := register(t, NewAuthService(repo, "secret", time.Hour), "Gulnara", "gulnara@example.com", "pass", domain.RoleClient)

	svc := NewAuthService(&blockOnRead{UserRepository: repo}, "secret", time.Hour)
	name := "Гульнара"
	updated, err := svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != name || !updated.IsBlocked {
		t.Fatalf("expected renamed and still blocked, got %+v", updated)
	}
	stored, _ := repo.FindByID(context.Background(), u.ID)
	if !stored.IsBlocked {
		t.Fatalf("block was reverted by the profile edit")
	}
}

func TestAuthService_LoginKeepsConcurrentBlock(t *testing.T) {
	repo := newStubUserRepo()
	u := register(t, NewAuthService(repo, "secret", time.Hour), "Nurlan", "nurlan@example.com", "pass", domain.RoleExecutor)

	svc := NewAuthService(&blockOnRead{UserRepository: repo}, "secret", time.Hour)
	fixed := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	if _, _, err := svc.Login(context.Background(), "nurlan@example.com", "pass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), u.ID)
	if !stored.IsBlocked {
		t.Fatalf("block was reverted by the login")
	}
	if !stored.LastActivity.Equal(fixed) {
		t.Fatalf("last activity not recorded: %v", stored.LastActivity)
	}
}

func TestAuthService_UpdateProfile_Blocked(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	u := register(t, svc, "Aziz", "aziz@example.com", "pass", domain.RoleClient)
	if _, err := repo.SetBlocked(context.Background(), u.ID, true); err != nil {
		t.Fatalf("block: %v", err)
	}

	name := "Азиз"
	if _, err := svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{Name: &name}); !errors.Is(err, domain.ErrUserBlocked) {
		t.Fatalf("expected ErrUserBlocked, got %v", err)
	}
}
