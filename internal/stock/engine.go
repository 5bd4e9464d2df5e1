package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/metrics"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

var (
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInsufficientComponents = errors.New("insufficient components")
	ErrInsufficientAssemblies = errors.New("insufficient assemblies")
	ErrJobNotActive           = errors.New("job is not in progress")
	ErrNotAssembly            = errors.New("part is not an assembly")
)

// Engine owns every quantity mutation on parts. All checks precede all
// writes; on failure no quantity changes at all.
type Engine struct {
	store *store.Store
	log   *slog.Logger
	met   *metrics.Metrics
}

func NewEngine(st *store.Store, log *slog.Logger, met *metrics.Metrics) *Engine {
	return &Engine{store: st, log: log, met: met}
}

func (e *Engine) finish(op string, err error) error {
	e.met.Observe(op, err)
	if err == nil {
		e.log.Debug("stock operation", "op", op)
	}
	return err
}

// AddStock applies a receipt or correction. Negative amounts are allowed
// but the resulting quantity must stay non-negative.
func (e *Engine) AddStock(ctx context.Context, actor *users.User, partID string, amount int) error {
	if err := users.Require(actor, users.PermManageInventory); err != nil {
		return e.finish("add_stock", err)
	}
	err := e.store.Update(ctx, func(d *store.Data) error {
		p, ok := d.Part(partID)
		if !ok {
			return fmt.Errorf("part %s: %w", partID, store.ErrNotFound)
		}
		if p.Quantity+amount < 0 {
			return fmt.Errorf("part %s: %w", partID, ErrInsufficientStock)
		}
		p.Quantity += amount
		return nil
	}, store.ColParts)
	return e.finish("add_stock", err)
}

// ConsumeForJob moves exactly one unit from shared stock into the job's
// usedParts ledger. The job must be in progress; batch quantities are
// achieved by repeated calls.
func (e *Engine) ConsumeForJob(ctx context.Context, actor *users.User, jobID, partID string) error {
	if err := users.Require(actor, users.PermManageJobs); err != nil {
		return e.finish("consume_for_job", err)
	}
	err := e.store.Update(ctx, func(d *store.Data) error {
		j, ok := d.Job(jobID)
		if !ok {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		if !j.Active() {
			return fmt.Errorf("job %s: %w", jobID, ErrJobNotActive)
		}
		p, ok := d.Part(partID)
		if !ok {
			return fmt.Errorf("part %s: %w", partID, store.ErrNotFound)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("part %s: %w", partID, ErrInsufficientStock)
		}
		p.Quantity--
		j.UsedParts = jobs.Increment(j.UsedParts, partID)
		return nil
	}, store.ColParts, store.ColJobs)
	return e.finish("consume_for_job", err)
}

// ReturnFromJob is the inverse of ConsumeForJob: one unit back to stock,
// the usedParts row decremented and dropped at zero. The job must be in
// progress, same as consumption; a job without a matching row is a no-op.
func (e *Engine) ReturnFromJob(ctx context.Context, actor *users.User, jobID, partID string) error {
	if err := users.Require(actor, users.PermManageJobs); err != nil {
		return e.finish("return_from_job", err)
	}
	err := e.store.Update(ctx, func(d *store.Data) error {
		j, ok := d.Job(jobID)
		if !ok {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		if !j.Active() {
			return fmt.Errorf("job %s: %w", jobID, ErrJobNotActive)
		}
		p, ok := d.Part(partID)
		if !ok {
			return fmt.Errorf("part %s: %w", partID, store.ErrNotFound)
		}
		rest, found := jobs.Decrement(j.UsedParts, partID)
		if !found {
			return nil
		}
		j.UsedParts = rest
		p.Quantity++
		return nil
	}, store.ColParts, store.ColJobs)
	return e.finish("return_from_job", err)
}

// Assemble builds count kits: every BOM line must be coverable before
// anything moves, then the assembly gains count and each component loses
// lineQty*count in one step.
func (e *Engine) Assemble(ctx context.Context, actor *users.User, assemblyID string, count int) error {
	if err := users.Require(actor, users.PermManageInventory); err != nil {
		return e.finish("assemble", err)
	}
	if count < 1 {
		return e.finish("assemble", fmt.Errorf("%w: count must be at least 1", parts.ErrInvalid))
	}
	err := e.store.Update(ctx, func(d *store.Data) error {
		asm, ok := d.Part(assemblyID)
		if !ok {
			return fmt.Errorf("part %s: %w", assemblyID, store.ErrNotFound)
		}
		if asm.Type != parts.TypeAssembly || len(asm.BOM) == 0 {
			return fmt.Errorf("part %s: %w", assemblyID, ErrNotAssembly)
		}
		comps := make([]*parts.Part, len(asm.BOM))
		for i, line := range asm.BOM {
			comp, ok := d.Part(line.PartID)
			if !ok {
				return fmt.Errorf("component %s: %w", line.PartID, store.ErrNotFound)
			}
			if comp.Quantity < line.Quantity*count {
				return fmt.Errorf("component %s: %w", comp.Name, ErrInsufficientComponents)
			}
			comps[i] = comp
		}
		for i, line := range asm.BOM {
			comps[i].Quantity -= line.Quantity * count
		}
		asm.Quantity += count
		return nil
	}, store.ColParts)
	return e.finish("assemble", err)
}

// Disassemble is the exact inverse of Assemble under the same BOM.
func (e *Engine) Disassemble(ctx context.Context, actor *users.User, assemblyID string, count int) error {
	if err := users.Require(actor, users.PermManageInventory); err != nil {
		return e.finish("disassemble", err)
	}
	if count < 1 {
		return e.finish("disassemble", fmt.Errorf("%w: count must be at least 1", parts.ErrInvalid))
	}
	err := e.store.Update(ctx, func(d *store.Data) error {
		asm, ok := d.Part(assemblyID)
		if !ok {
			return fmt.Errorf("part %s: %w", assemblyID, store.ErrNotFound)
		}
		if asm.Type != parts.TypeAssembly || len(asm.BOM) == 0 {
			return fmt.Errorf("part %s: %w", assemblyID, ErrNotAssembly)
		}
		if asm.Quantity < count {
			return fmt.Errorf("assembly %s: %w", asm.Name, ErrInsufficientAssemblies)
		}
		comps := make([]*parts.Part, len(asm.BOM))
		for i, line := range asm.BOM {
			comp, ok := d.Part(line.PartID)
			if !ok {
				return fmt.Errorf("component %s: %w", line.PartID, store.ErrNotFound)
			}
			comps[i] = comp
		}
		for i, line := range asm.BOM {
			comps[i].Quantity += line.Quantity * count
		}
		asm.Quantity -= count
		return nil
	}, store.ColParts)
	return e.finish("disassemble", err)
}
