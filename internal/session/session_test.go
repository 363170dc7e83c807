package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/gateway"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestStoreRoundTrip(t *testing.T) {
	store := tempStore(t)
	want := State{Token: "tok", User: domain.User{ID: "u1", Name: "Ava", Role: domain.RoleAdmin}}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got == nil || got.Token != "tok" || got.User.ID != "u1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStoreMissingFileIsAbsent(t *testing.T) {
	store := tempStore(t)
	got, err := store.Load()
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing file, got %v, %v", got, err)
	}
}

func TestStoreDiscardsCorruptFile(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	got, err := store.Load()
	if err != nil || got != nil {
		t.Fatalf("corrupt file must read as absent, got %v, %v", got, err)
	}
	if _, statErr := os.Stat(store.path); !os.IsNotExist(statErr) {
		t.Fatal("corrupt file must be removed")
	}
}

func TestStoreDiscardsEmptyToken(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.path, []byte(`{"token":"","user":{"id":"u1"}}`), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	got, err := store.Load()
	if err != nil || got != nil {
		t.Fatalf("tokenless session must read as absent, got %v, %v", got, err)
	}
}

func TestRestoreDiscardsExpiredSession(t *testing.T) {
	store := tempStore(t)
	state := State{Token: signedToken(t, time.Now().Add(-time.Hour)), User: domain.User{ID: "u1", Role: domain.RoleAdmin}}
	if err := store.Save(state); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	client := gateway.NewClient("http://localhost:0", time.Second)
	m := NewManager(store, client, zap.NewNop())

	got, err := m.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if got != nil {
		t.Fatalf("expired session must be dropped, got %+v", got)
	}
	if _, statErr := os.Stat(store.path); !os.IsNotExist(statErr) {
		t.Fatal("expired session file must be cleared")
	}
}

func TestRestoreChecksInNonClients(t *testing.T) {
	checkIns := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/attendance/check-in" {
			checkIns++
		}
	}))
	defer srv.Close()

	store := tempStore(t)
	state := State{Token: signedToken(t, time.Now().Add(time.Hour)), User: domain.User{ID: "u1", Role: domain.RoleEmployee}}
	if err := store.Save(state); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m := NewManager(store, gateway.NewClient(srv.URL, time.Second), zap.NewNop())
	got, err := m.Restore(context.Background())
	if err != nil || got == nil {
		t.Fatalf("Restore() = %v, %v", got, err)
	}
	if checkIns != 1 {
		t.Fatalf("expected one check-in, got %d", checkIns)
	}
}

func TestRestoreSkipsCheckInForClients(t *testing.T) {
	attendanceHit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attendanceHit = true
	}))
	defer srv.Close()

	store := tempStore(t)
	state := State{Token: signedToken(t, time.Now().Add(time.Hour)), User: domain.User{ID: "u9", Role: domain.RoleClient}}
	if err := store.Save(state); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m := NewManager(store, gateway.NewClient(srv.URL, time.Second), zap.NewNop())
	if got, err := m.Restore(context.Background()); err != nil || got == nil {
		t.Fatalf("Restore() = %v, %v", got, err)
	}
	if attendanceHit {
		t.Fatal("clients have no attendance records")
	}
}

func TestRestoreToleratesDuplicateCheckIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already checked in today.
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	store := tempStore(t)
	state := State{Token: signedToken(t, time.Now().Add(time.Hour)), User: domain.User{ID: "u1", Role: domain.RoleEmployee}}
	if err := store.Save(state); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m := NewManager(store, gateway.NewClient(srv.URL, time.Second), zap.NewNop())
	got, err := m.Restore(context.Background())
	if err != nil || got == nil {
		t.Fatalf("duplicate check-in must not break restore: %v, %v", got, err)
	}
}

func TestLoginPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"data":{"token":"tok-1","user":{"id":"u2","name":"Ava","role":"Admin"}}}`))
		case "/api/attendance/check-in":
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := tempStore(t)
	m := NewManager(store, gateway.NewClient(srv.URL, time.Second), zap.NewNop())

	state, err := m.Login(context.Background(), "ava@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if state.Token != "tok-1" || state.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected state: %+v", state)
	}

	persisted, err := store.Load()
	if err != nil || persisted == nil || persisted.Token != "tok-1" {
		t.Fatalf("session not persisted: %v, %v", persisted, err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	store := tempStore(t)
	if err := store.Save(State{Token: "tok", User: domain.User{ID: "u1"}}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m := NewManager(store, gateway.NewClient(srv.URL, time.Second), zap.NewNop())
	if err := m.Logout(context.Background(), domain.User{ID: "u1", Role: domain.RoleEmployee}); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if got, _ := store.Load(); got != nil {
		t.Fatalf("session must be cleared, got %+v", got)
	}
}
