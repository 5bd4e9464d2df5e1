package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/clients"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
)

type Collection string

const (
	ColUsers   Collection = "users"
	ColParts   Collection = "parts"
	ColJobs    Collection = "jobs"
	ColClients Collection = "clients"
)

// Persister stores each collection as one full JSON array snapshot,
// overwritten on every mutation to that collection.
type Persister interface {
	Load(ctx context.Context, col Collection) (data []byte, ok bool, err error)
	Save(ctx context.Context, col Collection, data []byte) error
	Reset(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")

// Data is the whole application object graph. Lookup helpers return
// pointers into the live slices; callers mutate them only inside
// Store.Update.
type Data struct {
	Users   []users.User
	Parts   []parts.Part
	Jobs    []jobs.ServiceJob
	Clients []clients.Client
}

func (d *Data) Part(id string) (*parts.Part, bool) {
	for i := range d.Parts {
		if d.Parts[i].ID == id {
			return &d.Parts[i], true
		}
	}
	return nil, false
}

func (d *Data) Job(id string) (*jobs.ServiceJob, bool) {
	for i := range d.Jobs {
		if d.Jobs[i].ID == id {
			return &d.Jobs[i], true
		}
	}
	return nil, false
}

func (d *Data) User(id string) (*users.User, bool) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], true
		}
	}
	return nil, false
}

func (d *Data) UserByEmail(email string) (*users.User, bool) {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i], true
		}
	}
	return nil, false
}

func (d *Data) Client(id string) (*clients.Client, bool) {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			return &d.Clients[i], true
		}
	}
	return nil, false
}

// Store owns the object graph under a single-writer lock. Every
// operation runs to completion before the next; persistence is
// write-through per mutated collection and failures are only logged.
type Store struct {
	mu        sync.RWMutex
	data      Data
	persister Persister
	log       *slog.Logger
}

func New(p Persister, log *slog.Logger) *Store {
	return &Store{persister: p, log: log}
}

// Load fills each collection from its persisted snapshot, falling back
// to the seed dataset when none exists yet.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed := SeedData()
	if err := loadCollection(ctx, s.persister, ColUsers, &s.data.Users, seed.Users); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.persister, ColParts, &s.data.Parts, seed.Parts); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.persister, ColJobs, &s.data.Jobs, seed.Jobs); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.persister, ColClients, &s.data.Clients, seed.Clients); err != nil {
		return err
	}
	return nil
}

func loadCollection[T any](ctx context.Context, p Persister, col Collection, dst *[]T, seed []T) error {
	raw, ok, err := p.Load(ctx, col)
	if err != nil {
		return fmt.Errorf("load %s: %w", col, err)
	}
	if !ok {
		*dst = seed
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", col, err)
	}
	return nil
}

// View runs fn with read access to the object graph.
func (s *Store) View(fn func(d *Data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

// Update runs fn under the writer lock. When fn succeeds, the named
// collections are persisted together; when it fails, nothing is written.
func (s *Store) Update(ctx context.Context, fn func(d *Data) error, cols ...Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.data); err != nil {
		return err
	}
	for _, col := range cols {
		s.persist(ctx, col)
	}
	return nil
}

// Reset drops all persisted state and restores the factory dataset.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persister.Reset(ctx); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}
	s.data = SeedData()
	for _, col := range []Collection{ColUsers, ColParts, ColJobs, ColClients} {
		s.persist(ctx, col)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, col Collection) {
	var v any
	switch col {
	case ColUsers:
		v = s.data.Users
	case ColParts:
		v = s.data.Parts
	case ColJobs:
		v = s.data.Jobs
	case ColClients:
		v = s.data.Clients
	default:
		s.log.Error("persist: unknown collection", "collection", col)
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error("persist: encode failed", "collection", col, "err", err)
		return
	}
	if err := s.persister.Save(ctx, col, raw); err != nil {
		s.log.Error("persist: save failed", "collection", col, "err", err)
	}
}
