package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Manager holds the authenticated-user slot per chat: set at login,
// cleared at logout. The account itself is always re-read from the store
// so permission edits take effect immediately.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]string // chat id -> user id
	store    *store.Store
}

func NewManager(st *store.Store) *Manager {
	return &Manager{sessions: make(map[int64]string), store: st}
}

// Login checks credentials and binds the chat to the account.
func (m *Manager) Login(chatID int64, email, password string) (users.User, error) {
	var (
		u     users.User
		found bool
	)
	m.store.View(func(d *store.Data) {
		if su, ok := d.UserByEmail(email); ok {
			u = *su
			found = true
		}
	})
	if !found {
		return users.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return users.User{}, ErrInvalidCredentials
	}
	m.mu.Lock()
	m.sessions[chatID] = u.ID
	m.mu.Unlock()
	return u, nil
}

func (m *Manager) Logout(chatID int64) {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
}

// Current resolves the chat's authenticated user, nil when logged out or
// when the account has since been deleted.
func (m *Manager) Current(chatID int64) *users.User {
	m.mu.Lock()
	id, ok := m.sessions[chatID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	var out *users.User
	m.store.View(func(d *store.Data) {
		if u, found := d.User(id); found {
			cp := *u
			cp.Permissions = append([]users.Permission(nil), u.Permissions...)
			out = &cp
		}
	})
	if out == nil {
		m.Logout(chatID)
	}
	return out
}
