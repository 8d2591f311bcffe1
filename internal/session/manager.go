package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"teacherdash/internal/auth"
	"teacherdash/internal/logger"
)

// DefaultName is shown when the token carries no name.
const DefaultName = "O'qituvchi"

var (
	ErrNoToken      = errors.New("Serverdan token olinmadi.")
	ErrInvalidToken = errors.New("Olingan token yaroqsiz. Server administratatori bilan bog'laning.")
	errLoginFailed  = errors.New("Login amalga oshmadi.")
)

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, phone, password string) (string, error)
}

// Identity is what a valid stored token says about the teacher.
type Identity struct {
	TeacherID string
	Name      string
	ExpiresAt time.Time
}

// Manager reads and writes the session through a Storage port.
type Manager struct {
	store Storage
	log   logger.Logger
	now   func() time.Time
}

func NewManager(store Storage, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{store: store, log: log, now: time.Now}
}

type storageKey struct{}

// WithStorage returns a ctx whose session calls go to st instead of the manager's
// own storage. Request scoped backends such as Cookie travel this way.
func WithStorage(ctx context.Context, st Storage) context.Context {
	return context.WithValue(ctx, storageKey{}, st)
}

func (m *Manager) storage(ctx context.Context) Storage {
	if st, ok := ctx.Value(storageKey{}).(Storage); ok && st != nil {
		return st
	}
	return m.store
}

// Login authenticates, stores the token and the display name.
// Any failure leaves no token behind.
func (m *Manager) Login(ctx context.Context, a Authenticator, phone, password string) (Identity, error) {
	token, err := a.Login(ctx, phone, password)
	if err != nil {
		m.Clear(ctx)
		if err.Error() == "" {
			return Identity{}, errLoginFailed
		}
		return Identity{}, err
	}
	if token == "" {
		m.Clear(ctx)
		return Identity{}, ErrNoToken
	}

	store := m.storage(ctx)
	if err := store.Set(ctx, KeyToken, token); err != nil {
		m.Clear(ctx)
		return Identity{}, errors.Wrap(err, "storing token")
	}

	claims, decodeErr := auth.Decode(token)
	name := DefaultName
	if decodeErr == nil {
		name = claims.DisplayName(DefaultName)
	}
	if err := store.Set(ctx, KeyName, name); err != nil {
		m.log.Warn("storing teacher name", err)
	}

	if decodeErr != nil || claims.Identity() == "" {
		m.Clear(ctx)
		return Identity{}, ErrInvalidToken
	}
	id := Identity{TeacherID: claims.Identity(), Name: name}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Check validates the stored token. A token that does not decode, has no subject,
// or has expired logs the session out.
func (m *Manager) Check(ctx context.Context) (Identity, bool) {
	token, err := m.storage(ctx).Get(ctx, KeyToken)
	if err != nil {
		m.log.Error("reading session token", err)
		return Identity{}, false
	}
	if token == "" {
		return Identity{}, false
	}
	claims, err := auth.Decode(token)
	if err == nil {
		err = claims.Check(m.now())
	}
	if err != nil {
		m.log.Info("discarding stored token", err)
		if err := m.Logout(ctx); err != nil {
			m.log.Error("clearing session", err)
		}
		return Identity{}, false
	}
	return Identity{
		TeacherID: claims.Identity(),
		Name:      m.Name(ctx),
		ExpiresAt: claims.ExpiresAt.Time,
	}, true
}

// Token implements apiclient.TokenSource.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return m.storage(ctx).Get(ctx, KeyToken)
}

// Name is the stored display name, or DefaultName.
func (m *Manager) Name(ctx context.Context) string {
	name, err := m.storage(ctx).Get(ctx, KeyName)
	if err != nil || name == "" {
		return DefaultName
	}
	return name
}

// Clear drops the token and name; it is the client's 401 hook.
func (m *Manager) Clear(ctx context.Context) {
	if err := m.storage(ctx).Delete(ctx, KeyToken, KeyName); err != nil {
		m.log.Error("clearing session token", err)
	}
}

// Logout drops every persisted key.
func (m *Manager) Logout(ctx context.Context) error {
	return m.storage(ctx).Delete(ctx, KeyToken, KeyName, KeyScreen)
}

// Screen is the last persisted screen name, unvalidated.
func (m *Manager) Screen(ctx context.Context) string {
	s, err := m.storage(ctx).Get(ctx, KeyScreen)
	if err != nil {
		m.log.Warn("reading active screen", err)
		return ""
	}
	return s
}

func (m *Manager) SetScreen(ctx context.Context, screen string) {
	if err := m.storage(ctx).Set(ctx, KeyScreen, screen); err != nil {
		m.log.Warn("persisting active screen", err)
	}
}
