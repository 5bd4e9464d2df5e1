package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/storage"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	st := store.New(fs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, st.Load(context.Background()))
	return NewManager(st), st
}

func TestLogin(t *testing.T) {
	m, _ := newTestManager(t)

	u, err := m.Login(1, "admin@gymfix.pl", store.SeedPassword)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	cur := m.Current(1)
	require.NotNil(t, cur)
	assert.Equal(t, "u1", cur.ID)

	_, err = m.Login(2, "admin@gymfix.pl", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.Login(2, "nobody@gymfix.pl", store.SeedPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, m.Current(2))
}

func TestLogout(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Login(1, "serwis@gymfix.pl", store.SeedPassword)
	require.NoError(t, err)
	m.Logout(1)
	assert.Nil(t, m.Current(1))
}

func TestSessionsArePerChat(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Login(1, "admin@gymfix.pl", store.SeedPassword)
	require.NoError(t, err)
	_, err = m.Login(2, "magazyn@gymfix.pl", store.SeedPassword)
	require.NoError(t, err)

	assert.Equal(t, "u1", m.Current(1).ID)
	assert.Equal(t, "u2", m.Current(2).ID)
}

// Permission edits apply to live sessions because Current re-reads the
// account on every call.
func TestCurrentSeesPermissionChanges(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()

	_, err := m.Login(1, "serwis@gymfix.pl", store.SeedPassword)
	require.NoError(t, err)
	require.True(t, m.Current(1).Can(users.PermManageJobs))

	require.NoError(t, st.Update(ctx, func(d *store.Data) error {
		u, _ := d.User("u3")
		u.Permissions = []users.Permission{users.PermViewJobs}
		return nil
	}, store.ColUsers))

	cur := m.Current(1)
	require.NotNil(t, cur)
	assert.False(t, cur.Can(users.PermManageJobs))
}

func TestDeletedAccountLogsOut(t *testing.T) {
	m, st := newTestManager(t)
	ctx := context.Background()

	_, err := m.Login(1, "serwis@gymfix.pl", store.SeedPassword)
	require.NoError(t, err)

	require.NoError(t, st.Update(ctx, func(d *store.Data) error {
		for i := range d.Users {
			if d.Users[i].ID == "u3" {
				d.Users = append(d.Users[:i], d.Users[i+1:]...)
				break
			}
		}
		return nil
	}, store.ColUsers))

	assert.Nil(t, m.Current(1))
	assert.Nil(t, m.Current(1), "the stale session is dropped")
}
