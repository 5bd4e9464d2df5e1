package accounts

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/metrics"
	"github.com/jacekopitek-cloud/gymfix/internal/storage"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(fs, log)
	require.NoError(t, st.Load(context.Background()))
	return NewService(st, log, metrics.New(prometheus.NewRegistry()))
}

func adminActor() *users.User {
	return &users.User{ID: "test-admin", Permissions: users.DefaultPermissions(users.RoleAdmin)}
}

func TestCreate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	u, err := s.Create(ctx, adminActor(), NewUser{
		Name: "Ewa Technik", Email: "ewa@gymfix.pl", Password: "sekret", Role: users.RoleTechnician,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.ElementsMatch(t, users.DefaultPermissions(users.RoleTechnician), u.Permissions)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("sekret")))

	// An explicit permission set overrides the role defaults.
	u2, err := s.Create(ctx, adminActor(), NewUser{
		Name: "Ograniczony", Email: "ogr@gymfix.pl", Password: "x", Role: users.RoleTechnician,
		Permissions: []users.Permission{users.PermViewJobs},
	})
	require.NoError(t, err)
	assert.Equal(t, []users.Permission{users.PermViewJobs}, u2.Permissions)
}

func TestCreateValidation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, adminActor(), NewUser{Email: "x@gymfix.pl", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Create(ctx, adminActor(), NewUser{Name: "X", Email: "x@gymfix.pl"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Create(ctx, adminActor(), NewUser{Name: "X", Email: "admin@gymfix.pl", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	tech := &users.User{ID: "t", Permissions: users.DefaultPermissions(users.RoleTechnician)}
	_, err = s.Create(ctx, tech, NewUser{Name: "X", Email: "x@gymfix.pl", Password: "x"})
	assert.ErrorIs(t, err, users.ErrPermissionDenied)
}

func TestUpdateRoleResetsPermissions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// u3 is a seeded technician; promote to warehouse without an explicit set.
	role := users.RoleWarehouse
	require.NoError(t, s.Update(ctx, adminActor(), "u3", Update{Role: &role}))
	u, err := s.Get("u3")
	require.NoError(t, err)
	assert.Equal(t, users.RoleWarehouse, u.Role)
	assert.ElementsMatch(t, users.DefaultPermissions(users.RoleWarehouse), u.Permissions)

	// With an explicit set the defaults do not apply.
	role2 := users.RoleTechnician
	custom := []users.Permission{users.PermViewJobs, users.PermManageJobs}
	require.NoError(t, s.Update(ctx, adminActor(), "u3", Update{Role: &role2, Permissions: custom}))
	u, err = s.Get("u3")
	require.NoError(t, err)
	assert.ElementsMatch(t, custom, u.Permissions)
}

func TestUpdateEmailUniqueness(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	taken := "admin@gymfix.pl"
	err := s.Update(ctx, adminActor(), "u3", Update{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Re-submitting the own address is not a conflict.
	same := "serwis@gymfix.pl"
	assert.NoError(t, s.Update(ctx, adminActor(), "u3", Update{Email: &same}))
}

func TestDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	self := &users.User{ID: "u1", Permissions: users.DefaultPermissions(users.RoleAdmin)}
	assert.ErrorIs(t, s.Delete(ctx, self, "u1"), ErrSelfDelete)

	require.NoError(t, s.Delete(ctx, self, "u3"))
	_, err := s.Get("u3")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, self, "u3"), store.ErrNotFound)
}
