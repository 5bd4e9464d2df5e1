package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/clients"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/metrics"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

var ErrInvalidClient = errors.New("invalid client")

const defaultLocation = "Magazyn"

// Service is the part catalog and client registry: create/read/update,
// no delete. Quantities are not editable here; that is stock engine
// territory.
type Service struct {
	store *store.Store
	log   *slog.Logger
	met   *metrics.Metrics
}

func NewService(st *store.Store, log *slog.Logger, met *metrics.Metrics) *Service {
	return &Service{store: st, log: log, met: met}
}

// AddPart validates and adds a catalog entry. BOM components must already
// exist and be single parts.
func (s *Service) AddPart(ctx context.Context, actor *users.User, p parts.Part) (parts.Part, error) {
	if err := users.Require(actor, users.PermManageInventory); err != nil {
		s.met.Observe("part_add", err)
		return parts.Part{}, err
	}
	p.ID = uuid.NewString()
	if strings.TrimSpace(p.Location) == "" {
		p.Location = defaultLocation
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		if err := p.Validate(func(id string) (*parts.Part, bool) { return d.Part(id) }); err != nil {
			return err
		}
		d.Parts = append(d.Parts, p)
		return nil
	}, store.ColParts)
	s.met.Observe("part_add", err)
	if err != nil {
		return parts.Part{}, err
	}
	s.log.Info("part added", "part", p.ID, "sku", p.SKU)
	return p, nil
}

// PartUpdate carries optional catalog field changes. Nil fields are left
// untouched.
type PartUpdate struct {
	Name     *string
	SKU      *string
	Category *parts.Category
	MinLevel *int
	Price    *decimal.Decimal
	Location *string
}

// UpdatePart edits catalog fields. A price change additionally requires
// the EDIT_PRICES flag.
func (s *Service) UpdatePart(ctx context.Context, actor *users.User, id string, upd PartUpdate) error {
	if err := users.Require(actor, users.PermManageInventory); err != nil {
		s.met.Observe("part_update", err)
		return err
	}
	if upd.Price != nil {
		if err := users.Require(actor, users.PermEditPrices); err != nil {
			s.met.Observe("part_update", err)
			return err
		}
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		p, ok := d.Part(id)
		if !ok {
			return fmt.Errorf("part %s: %w", id, store.ErrNotFound)
		}
		next := *p
		if upd.Name != nil {
			next.Name = *upd.Name
		}
		if upd.SKU != nil {
			next.SKU = *upd.SKU
		}
		if upd.Category != nil {
			next.Category = *upd.Category
		}
		if upd.MinLevel != nil {
			next.MinLevel = *upd.MinLevel
		}
		if upd.Price != nil {
			next.Price = *upd.Price
		}
		if upd.Location != nil {
			next.Location = *upd.Location
		}
		if err := next.Validate(func(id string) (*parts.Part, bool) { return d.Part(id) }); err != nil {
			return err
		}
		*p = next
		return nil
	}, store.ColParts)
	s.met.Observe("part_update", err)
	return err
}

// Part returns a copy of one catalog entry.
func (s *Service) Part(id string) (parts.Part, error) {
	var (
		out   parts.Part
		found bool
	)
	s.store.View(func(d *store.Data) {
		if p, ok := d.Part(id); ok {
			out = *p
			out.BOM = append([]parts.BOMLine(nil), p.BOM...)
			found = true
		}
	})
	if !found {
		return parts.Part{}, fmt.Errorf("part %s: %w", id, store.ErrNotFound)
	}
	return out, nil
}

// Parts returns a copy of the whole catalog.
func (s *Service) Parts() []parts.Part {
	var out []parts.Part
	s.store.View(func(d *store.Data) {
		out = make([]parts.Part, len(d.Parts))
		for i := range d.Parts {
			out[i] = d.Parts[i]
			out[i].BOM = append([]parts.BOMLine(nil), d.Parts[i].BOM...)
		}
	})
	return out
}

// SearchParts matches name or SKU, case-insensitive. A scanned barcode
// is just a SKU query here.
func (s *Service) SearchParts(query string) []parts.Part {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Parts()
	}
	var out []parts.Part
	s.store.View(func(d *store.Data) {
		for _, p := range d.Parts {
			if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
				out = append(out, p)
			}
		}
	})
	return out
}

// LowStock lists parts at or below their reorder threshold.
func (s *Service) LowStock() []parts.Part {
	var out []parts.Part
	s.store.View(func(d *store.Data) {
		for _, p := range d.Parts {
			if p.BelowMin() {
				out = append(out, p)
			}
		}
	})
	return out
}

// AddClient registers a gym.
func (s *Service) AddClient(ctx context.Context, actor *users.User, name, address, contactPerson, phone string) (clients.Client, error) {
	if err := users.Require(actor, users.PermManageClients); err != nil {
		s.met.Observe("client_add", err)
		return clients.Client{}, err
	}
	if strings.TrimSpace(name) == "" {
		err := fmt.Errorf("%w: name is required", ErrInvalidClient)
		s.met.Observe("client_add", err)
		return clients.Client{}, err
	}
	c := clients.Client{
		ID:            uuid.NewString(),
		Name:          name,
		Address:       address,
		ContactPerson: contactPerson,
		Phone:         phone,
		Machines:      []clients.ClientMachine{},
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		d.Clients = append(d.Clients, c)
		return nil
	}, store.ColClients)
	s.met.Observe("client_add", err)
	if err != nil {
		return clients.Client{}, err
	}
	return c, nil
}

// ClientUpdate carries optional client field changes.
type ClientUpdate struct {
	Name          *string
	Address       *string
	ContactPerson *string
	Phone         *string
}

func (s *Service) UpdateClient(ctx context.Context, actor *users.User, id string, upd ClientUpdate) error {
	if err := users.Require(actor, users.PermManageClients); err != nil {
		s.met.Observe("client_update", err)
		return err
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		c, ok := d.Client(id)
		if !ok {
			return fmt.Errorf("client %s: %w", id, store.ErrNotFound)
		}
		if upd.Name != nil {
			if strings.TrimSpace(*upd.Name) == "" {
				return fmt.Errorf("%w: name is required", ErrInvalidClient)
			}
			c.Name = *upd.Name
		}
		if upd.Address != nil {
			c.Address = *upd.Address
		}
		if upd.ContactPerson != nil {
			c.ContactPerson = *upd.ContactPerson
		}
		if upd.Phone != nil {
			c.Phone = *upd.Phone
		}
		return nil
	}, store.ColClients)
	s.met.Observe("client_update", err)
	return err
}

// AddMachine installs a machine at a client site.
func (s *Service) AddMachine(ctx context.Context, actor *users.User, clientID string, m clients.ClientMachine) (clients.ClientMachine, error) {
	if err := users.Require(actor, users.PermManageClients); err != nil {
		s.met.Observe("machine_add", err)
		return clients.ClientMachine{}, err
	}
	if strings.TrimSpace(m.Model) == "" || strings.TrimSpace(m.SerialNumber) == "" {
		err := fmt.Errorf("%w: machine model and serial number are required", ErrInvalidClient)
		s.met.Observe("machine_add", err)
		return clients.ClientMachine{}, err
	}
	m.ID = uuid.NewString()
	err := s.store.Update(ctx, func(d *store.Data) error {
		c, ok := d.Client(clientID)
		if !ok {
			return fmt.Errorf("client %s: %w", clientID, store.ErrNotFound)
		}
		c.Machines = append(c.Machines, m)
		return nil
	}, store.ColClients)
	s.met.Observe("machine_add", err)
	if err != nil {
		return clients.ClientMachine{}, err
	}
	return m, nil
}

// Client returns a copy of one client with its machines.
func (s *Service) Client(id string) (clients.Client, error) {
	var (
		out   clients.Client
		found bool
	)
	s.store.View(func(d *store.Data) {
		if c, ok := d.Client(id); ok {
			out = *c
			out.Machines = append([]clients.ClientMachine(nil), c.Machines...)
			found = true
		}
	})
	if !found {
		return clients.Client{}, fmt.Errorf("client %s: %w", id, store.ErrNotFound)
	}
	return out, nil
}

// Clients returns a copy of the registry.
func (s *Service) Clients() []clients.Client {
	var out []clients.Client
	s.store.View(func(d *store.Data) {
		out = make([]clients.Client, len(d.Clients))
		for i := range d.Clients {
			out[i] = d.Clients[i]
			out[i].Machines = append([]clients.ClientMachine(nil), d.Clients[i].Machines...)
		}
	})
	return out
}
