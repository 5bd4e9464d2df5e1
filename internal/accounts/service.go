package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/metrics"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

var (
	ErrInvalid    = errors.New("invalid user")
	ErrEmailTaken = errors.New("email already registered")
	ErrSelfDelete = errors.New("cannot delete own account")
)

// Service manages staff accounts. The permission set on an account is the
// authority source; the role only seeds defaults at creation and on role
// change.
type Service struct {
	store *store.Store
	log   *slog.Logger
	met   *metrics.Metrics
}

func NewService(st *store.Store, log *slog.Logger, met *metrics.Metrics) *Service {
	return &Service{store: st, log: log, met: met}
}

// NewUser is the creation input. Permissions may be nil to take the role
// defaults.
type NewUser struct {
	Name        string
	Email       string
	Password    string
	Role        users.Role
	Phone       string
	Position    string
	Permissions []users.Permission
}

func (s *Service) Create(ctx context.Context, actor *users.User, in NewUser) (users.User, error) {
	if err := users.Require(actor, users.PermManageUsers); err != nil {
		s.met.Observe("user_create", err)
		return users.User{}, err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		err := fmt.Errorf("%w: name, email and password are required", ErrInvalid)
		s.met.Observe("user_create", err)
		return users.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.met.Observe("user_create", err)
		return users.User{}, fmt.Errorf("hash password: %w", err)
	}
	perms := in.Permissions
	if perms == nil {
		perms = users.DefaultPermissions(in.Role)
	}
	u := users.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Permissions:  perms,
		Phone:        in.Phone,
		Position:     in.Position,
	}
	err = s.store.Update(ctx, func(d *store.Data) error {
		if _, ok := d.UserByEmail(u.Email); ok {
			return fmt.Errorf("%s: %w", u.Email, ErrEmailTaken)
		}
		d.Users = append(d.Users, u)
		return nil
	}, store.ColUsers)
	s.met.Observe("user_create", err)
	if err != nil {
		return users.User{}, err
	}
	s.log.Info("user created", "user", u.ID, "role", u.Role)
	return u, nil
}

// Update carries optional account changes. A role change without an
// explicit permission set resets permissions to the new role's defaults.
type Update struct {
	Name        *string
	Email       *string
	Phone       *string
	Position    *string
	Password    *string
	Role        *users.Role
	Permissions []users.Permission
}

func (s *Service) Update(ctx context.Context, actor *users.User, id string, upd Update) error {
	if err := users.Require(actor, users.PermManageUsers); err != nil {
		s.met.Observe("user_update", err)
		return err
	}
	var hash string
	if upd.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			s.met.Observe("user_update", err)
			return fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		u, ok := d.User(id)
		if !ok {
			return fmt.Errorf("user %s: %w", id, store.ErrNotFound)
		}
		if upd.Email != nil && *upd.Email != u.Email {
			if _, taken := d.UserByEmail(*upd.Email); taken {
				return fmt.Errorf("%s: %w", *upd.Email, ErrEmailTaken)
			}
			u.Email = *upd.Email
		}
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Phone != nil {
			u.Phone = *upd.Phone
		}
		if upd.Position != nil {
			u.Position = *upd.Position
		}
		if upd.Password != nil {
			u.PasswordHash = hash
		}
		if upd.Role != nil && *upd.Role != u.Role {
			u.Role = *upd.Role
			if upd.Permissions == nil {
				u.Permissions = users.DefaultPermissions(*upd.Role)
			}
		}
		if upd.Permissions != nil {
			u.Permissions = upd.Permissions
		}
		return nil
	}, store.ColUsers)
	s.met.Observe("user_update", err)
	return err
}

// Delete removes an account. Actors cannot remove themselves.
func (s *Service) Delete(ctx context.Context, actor *users.User, id string) error {
	if err := users.Require(actor, users.PermManageUsers); err != nil {
		s.met.Observe("user_delete", err)
		return err
	}
	if actor.ID == id {
		s.met.Observe("user_delete", ErrSelfDelete)
		return ErrSelfDelete
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		for i := range d.Users {
			if d.Users[i].ID == id {
				d.Users = append(d.Users[:i], d.Users[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}, store.ColUsers)
	s.met.Observe("user_delete", err)
	return err
}

// Get returns a copy of one account.
func (s *Service) Get(id string) (users.User, error) {
	var (
		out   users.User
		found bool
	)
	s.store.View(func(d *store.Data) {
		if u, ok := d.User(id); ok {
			out = *u
			out.Permissions = append([]users.Permission(nil), u.Permissions...)
			found = true
		}
	})
	if !found {
		return users.User{}, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	return out, nil
}

// List returns copies of all accounts.
func (s *Service) List() []users.User {
	var out []users.User
	s.store.View(func(d *store.Data) {
		out = make([]users.User, len(d.Users))
		for i := range d.Users {
			out[i] = d.Users[i]
			out[i].Permissions = append([]users.Permission(nil), d.Users[i].Permissions...)
		}
	})
	return out
}
