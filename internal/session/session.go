package session

import (
	"context"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-console/internal/domain"
	"github.com/spec-kit/crm-console/internal/gateway"
)

// Manager owns the login/logout contract and session bootstrap. The
// workflow engine never touches it; it only receives the resulting actor.
type Manager struct {
	store  *Store
	client *gateway.Client
	logger *zap.Logger
}

// NewManager builds a session manager.
func NewManager(store *Store, client *gateway.Client, logger *zap.Logger) *Manager {
	return &Manager{store: store, client: client, logger: logger}
}

// Restore rehydrates a stored session. Expired or corrupted sessions are
// dropped silently. On success the gateway client carries the token and an
// attendance check-in is attempted.
func (m *Manager) Restore(ctx context.Context) (*State, error) {
	state, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	if tokenExpired(state.Token) {
		m.logger.Info("stored session expired, discarding")
		_ = m.store.Clear()
		return nil, nil
	}
	m.client.SetToken(state.Token)
	m.checkIn(ctx, state.User)
	return state, nil
}

// Login authenticates against the backend, persists the session, and fires
// the attendance check-in.
func (m *Manager) Login(ctx context.Context, email, password string) (*State, error) {
	result, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	state := State{Token: result.Token, User: result.User}
	if err := m.store.Save(state); err != nil {
		return nil, err
	}
	m.client.SetToken(state.Token)
	m.checkIn(ctx, state.User)
	return &state, nil
}

// Logout fires the attendance check-out (best effort) and clears the
// stored session.
func (m *Manager) Logout(ctx context.Context, user domain.User) error {
	m.checkOut(ctx, user)
	return m.store.Clear()
}

// checkIn records attendance. Clients have no attendance; a 400 means the
// record already exists for today. Neither outcome blocks the session.
func (m *Manager) checkIn(ctx context.Context, user domain.User) {
	if user.Role == domain.RoleClient {
		return
	}
	if err := m.client.CheckIn(ctx, user.ID); err != nil {
		if gateway.StatusOf(err) == 400 {
			return
		}
		m.logger.Warn("auto check-in skipped", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (m *Manager) checkOut(ctx context.Context, user domain.User) {
	if user.Role == domain.RoleClient {
		return
	}
	if err := m.client.CheckOut(ctx, user.ID); err != nil {
		m.logger.Warn("auto check-out failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// tokenExpired peeks at the token's exp claim without verifying the
// signature; the client holds no signing secret, so this is only a
// freshness check, not an authenticity check.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
