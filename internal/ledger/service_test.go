package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/metrics"
	"github.com/jacekopitek-cloud/gymfix/internal/stock"
	"github.com/jacekopitek-cloud/gymfix/internal/storage"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(fs, log)
	require.NoError(t, st.Load(context.Background()))
	return NewService(st, log, metrics.New(prometheus.NewRegistry())), st
}

func adminActor() *users.User {
	return &users.User{ID: "test-admin", Permissions: users.DefaultPermissions(users.RoleAdmin)}
}

func technicianActor() *users.User {
	return &users.User{ID: "test-tech", Permissions: users.DefaultPermissions(users.RoleTechnician)}
}

func TestCreate(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	actor := technicianActor()

	j, err := s.Create(ctx, actor, "CityFit Centrum", "LifeFitness 95T", "Pas ślizga się.")
	require.NoError(t, err)
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, jobs.StatusPending, j.Status)
	assert.Empty(t, j.UsedParts)
	assert.Empty(t, j.Picklist)

	// Newest first.
	list := s.List()
	require.NotEmpty(t, list)
	assert.Equal(t, j.ID, list[0].ID)

	_, err = s.Create(ctx, actor, "", "LifeFitness 95T", "x")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.Create(ctx, actor, "CityFit", "", "x")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLifecycleTransitions(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	actor := technicianActor()

	// Seeded j1 is pending.
	assert.ErrorIs(t, s.Finish(ctx, actor, "j1", "n"), ErrInvalidTransition)
	require.NoError(t, s.Start(ctx, actor, "j1"))
	assert.ErrorIs(t, s.Start(ctx, actor, "j1"), ErrInvalidTransition)

	require.NoError(t, s.Finish(ctx, actor, "j1", "Wymieniono pas."))
	j, err := s.Job("j1")
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCompleted, j.Status)
	assert.Equal(t, "Wymieniono pas.", j.TechnicianNotes)

	// Terminal states accept nothing.
	assert.ErrorIs(t, s.Cancel(ctx, actor, "j1"), ErrInvalidTransition)
	assert.ErrorIs(t, s.Start(ctx, actor, "j1"), ErrInvalidTransition)
}

func TestCancelFromNonTerminal(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	actor := technicianActor()

	require.NoError(t, s.Cancel(ctx, actor, "j1")) // pending
	require.NoError(t, s.Cancel(ctx, actor, "j2")) // in progress

	assert.ErrorIs(t, s.Start(ctx, actor, "missing"), store.ErrNotFound)
}

func TestPicklistNeverTouchesStock(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	actor := technicianActor()

	before := stockQty(t, st, "p1")
	require.NoError(t, s.AddToPicklist(ctx, actor, "j2", "p1"))
	require.NoError(t, s.AddToPicklist(ctx, actor, "j2", "p1"))
	require.NoError(t, s.AddToPicklist(ctx, actor, "j2", "p6"))

	j, err := s.Job("j2")
	require.NoError(t, err)
	assert.Equal(t, 2, jobs.UsageQty(j.Picklist, "p1"))
	assert.Equal(t, 1, jobs.UsageQty(j.Picklist, "p6"))
	assert.Equal(t, before, stockQty(t, st, "p1"))

	// Removal drops the whole row regardless of quantity.
	require.NoError(t, s.RemoveFromPicklist(ctx, actor, "j2", "p1"))
	j, err = s.Job("j2")
	require.NoError(t, err)
	assert.Equal(t, 0, jobs.UsageQty(j.Picklist, "p1"))
	assert.Equal(t, before, stockQty(t, st, "p1"))

	assert.ErrorIs(t, s.AddToPicklist(ctx, actor, "j2", "missing"), store.ErrNotFound)
	assert.ErrorIs(t, s.AddToPicklist(ctx, actor, "missing", "p1"), store.ErrNotFound)
}

// Listed jobs are detached copies; editing their part lists must not
// reach the store.
func TestListCopiesAreDetached(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	actor := technicianActor()

	require.NoError(t, s.AddToPicklist(ctx, actor, "j2", "p1"))

	for _, listed := range s.List() {
		if listed.ID == "j2" {
			listed.Picklist[0].Quantity = 99
		}
	}

	j, err := s.Job("j2")
	require.NoError(t, err)
	assert.Equal(t, 1, jobs.UsageQty(j.Picklist, "p1"))
}

func TestAssign(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.Assign(ctx, adminActor(), "j1", "u3"))
	j, err := s.Job("j1")
	require.NoError(t, err)
	assert.Equal(t, "u3", j.AssignedTechnicianID)

	assert.ErrorIs(t, s.Assign(ctx, adminActor(), "j1", "missing"), store.ErrNotFound)
}

func TestAttachAnalysis(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.AttachAnalysis(ctx, technicianActor(), "j1", "Prawdopodobnie zużyty pas."))
	j, err := s.Job("j1")
	require.NoError(t, err)
	assert.Equal(t, "Prawdopodobnie zużyty pas.", j.AIAnalysis)

	noView := &users.User{ID: "x"}
	assert.ErrorIs(t, s.AttachAnalysis(ctx, noView, "j1", "x"), users.ErrPermissionDenied)
}

func TestPermissionGates(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	// Warehouse staff may view jobs but not manage them.
	wh := &users.User{ID: "test-wh", Permissions: users.DefaultPermissions(users.RoleWarehouse)}

	_, err := s.Create(ctx, wh, "CityFit", "95T", "x")
	assert.ErrorIs(t, err, users.ErrPermissionDenied)
	assert.ErrorIs(t, s.Start(ctx, wh, "j1"), users.ErrPermissionDenied)

	// Picklist staging only needs inventory view.
	assert.NoError(t, s.AddToPicklist(ctx, wh, "j1", "p1"))
}

// TestFullRepairFlow walks a ticket from intake to completion with real
// stock movement.
func TestFullRepairFlow(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	actor := technicianActor()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := stock.NewEngine(st, log, metrics.New(prometheus.NewRegistry()))

	j, err := s.Create(ctx, actor, "McFit Mokotów", "Matrix Aura Multi-Press", "Luz na prowadnicy.")
	require.NoError(t, err)

	// Stage parts, then start and consume.
	require.NoError(t, s.AddToPicklist(ctx, actor, j.ID, "p6"))
	require.NoError(t, s.AddToPicklist(ctx, actor, j.ID, "p6"))
	require.NoError(t, s.Start(ctx, actor, j.ID))

	require.NoError(t, eng.ConsumeForJob(ctx, actor, j.ID, "p6"))
	require.NoError(t, eng.ConsumeForJob(ctx, actor, j.ID, "p6"))
	require.NoError(t, eng.ConsumeForJob(ctx, actor, j.ID, "p4"))
	// One bearing turned out fine.
	require.NoError(t, eng.ReturnFromJob(ctx, actor, j.ID, "p6"))

	require.NoError(t, s.Finish(ctx, actor, j.ID, "Wymieniono łożysko, przesmarowano."))

	got, err := s.Job(j.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCompleted, got.Status)
	assert.Equal(t, 1, jobs.UsageQty(got.UsedParts, "p6"))
	assert.Equal(t, 1, jobs.UsageQty(got.UsedParts, "p4"))
	assert.Equal(t, 19, stockQty(t, st, "p6"))
	assert.Equal(t, 11, stockQty(t, st, "p4"))

	// The picklist stayed a plan: still two bearings staged.
	assert.Equal(t, 2, jobs.UsageQty(got.Picklist, "p6"))

	// Completed jobs accept no further consumption.
	assert.ErrorIs(t, eng.ConsumeForJob(ctx, actor, j.ID, "p6"), stock.ErrJobNotActive)
}

func stockQty(t *testing.T, st *store.Store, id string) int {
	t.Helper()
	var qty int
	st.View(func(d *store.Data) {
		if p, ok := d.Part(id); ok {
			qty = p.Quantity
		}
	})
	return qty
}
