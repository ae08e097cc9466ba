package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/middleware"
	"github.com/interview-prep/backend/internal/models"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	next  int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return ErrEmailTaken
	}
	m.next++
	u.ID = "user-" + strings.Repeat("x", m.next)
	stored := *u
	m.users[u.Email] = &stored
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (m *memUsers) UpsertAdmin(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[u.Email]; ok {
		existing.Role = models.RoleAdmin
		existing.PasswordHash = u.PasswordHash
		found := *existing
		return &found, nil
	}
	u.ID = "admin"
	u.Role = models.RoleAdmin
	stored := *u
	m.users[u.Email] = &stored
	return u, nil
}

func newTestService() (*Service, *memUsers) {
	users := newMemUsers()
	svc := NewService(users, NewTokens("test-secret", time.Hour))
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := tokens.Verify(raw)
	if err != nil || id != "user-1" {
		t.Errorf("Verify() = %q, %v, want user-1", id, err)
	}

	if _, err := NewTokens("other", time.Hour).Verify(raw); err == nil {
		t.Error("token signed with another secret should not verify")
	}
	if _, err := tokens.Verify("not-a-token"); err == nil {
		t.Error("garbage should not verify")
	}
}

func TestTokensExpire(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := tokens.Verify(raw); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{Name: " Ada ", Email: "Ada@Example.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Email != "ada@example.com" || resp.User.Name != "Ada" || resp.User.Role != models.RoleStudent {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.Token == "" {
		t.Error("Register returned no token")
	}
	if stored := users.users["ada@example.com"]; stored.PasswordHash == "pw" {
		t.Error("password stored in clear")
	}

	_, err = svc.Register(ctx, models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "Email already registered" {
		t.Errorf("duplicate Register error = %v", err)
	}

	login, err := svc.Login(ctx, models.LoginRequest{Email: "ADA@example.com", Password: "pw"})
	if err != nil || login.User.ID != resp.User.ID {
		t.Errorf("Login() = %+v, %v", login, err)
	}

	for _, req := range []models.LoginRequest{
		{Email: "ada@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "pw"},
	} {
		_, err := svc.Login(ctx, req)
		if !errors.Is(err, apperr.ErrUnauthorized) || apperr.Message(err) != "Invalid credentials" {
			t.Errorf("Login(%s) error = %v, want Invalid credentials", req.Email, err)
		}
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "a@b.c", Password: "pw"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestCreateAdminPromotesExisting(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterRequest{Name: "Grace", Email: "grace@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.CreateAdmin(ctx, "Grace", "grace@example.com", "short"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("short password error = %v", err)
	}

	admin, err := svc.CreateAdmin(ctx, "Grace", "grace@example.com", "long-enough")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("role = %q, want admin", admin.Role)
	}
	if _, err := svc.Login(ctx, models.LoginRequest{Email: "grace@example.com", Password: "long-enough"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestHandlerRoutes(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	h.RegisterRoutes(api, api)

	rec := httptest.NewRecorder()
	body := `{"name":"Lin","email":"lin@example.com","password":"pw"}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks the password hash")
	}
	var auth models.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&auth); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"lin@example.com","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), &auth.User))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "lin@example.com") {
		t.Errorf("me = %d %s", rec.Code, rec.Body.String())
	}
}
