package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
)

// ErrNoSession is returned when no user is logged in.
var ErrNoSession = errors.New("no active session")

// LoginInput carries the sign-in form. There is no real authentication:
// any non-empty name, email and password are accepted, only the role is
// checked against the known set.
type LoginInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Manager stores the single local session in the persistent store, one key
// per field.
type Manager struct {
	store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Login validates the form and persists the session.
func (m *Manager) Login(ctx context.Context, in LoginInput) (models.Session, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return models.Session{}, fmt.Errorf("name, email and password are required")
	}
	role := models.Role(in.Role)
	if !models.ValidRole(role) {
		return models.Session{}, fmt.Errorf("unknown role %q", in.Role)
	}

	if err := m.setString(ctx, storage.KeyUserRole, string(role)); err != nil {
		return models.Session{}, err
	}
	if err := m.setString(ctx, storage.KeyUserName, in.Name); err != nil {
		return models.Session{}, err
	}
	return models.Session{Role: role, Name: in.Name}, nil
}

// Current returns the active session, or ErrNoSession when nobody is logged
// in.
func (m *Manager) Current(ctx context.Context) (models.Session, error) {
	role, err := m.getString(ctx, storage.KeyUserRole)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Session{}, ErrNoSession
	}
	if err != nil {
		return models.Session{}, err
	}
	name, err := m.getString(ctx, storage.KeyUserName)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Session{}, ErrNoSession
	}
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{Role: models.Role(role), Name: name}, nil
}

// Logout clears both session keys. Logging out with no session is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Delete(ctx, storage.KeyUserRole); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err := m.store.Delete(ctx, storage.KeyUserName); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func (m *Manager) setString(ctx context.Context, key, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return m.store.Set(ctx, key, raw)
}

func (m *Manager) getString(ctx context.Context, key string) (string, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &storage.DecodeError{Key: key, Err: err}
	}
	return s, nil
}
