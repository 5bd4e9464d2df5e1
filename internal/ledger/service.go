package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/users"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/metrics"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

var (
	ErrInvalid           = errors.New("invalid job")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Service owns job lifecycle and picklist bookkeeping. Stock never moves
// here; consumption and returns go through the stock engine.
type Service struct {
	store *store.Store
	log   *slog.Logger
	met   *metrics.Metrics
	now   func() time.Time
}

func NewService(st *store.Store, log *slog.Logger, met *metrics.Metrics) *Service {
	return &Service{store: st, log: log, met: met, now: time.Now}
}

// Create opens a PENDING ticket. Client name and machine model are
// stored as snapshots of the moment of creation.
func (s *Service) Create(ctx context.Context, actor *users.User, clientName, machineModel, description string) (jobs.ServiceJob, error) {
	if err := users.Require(actor, users.PermManageJobs); err != nil {
		s.met.Observe("job_create", err)
		return jobs.ServiceJob{}, err
	}
	if strings.TrimSpace(clientName) == "" || strings.TrimSpace(machineModel) == "" {
		err := fmt.Errorf("%w: client and machine are required", ErrInvalid)
		s.met.Observe("job_create", err)
		return jobs.ServiceJob{}, err
	}
	job := jobs.ServiceJob{
		ID:           uuid.NewString(),
		ClientName:   clientName,
		MachineModel: machineModel,
		Description:  description,
		Status:       jobs.StatusPending,
		DateCreated:  s.now(),
		UsedParts:    []jobs.PartUsage{},
		Picklist:     []jobs.PartUsage{},
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		d.Jobs = append([]jobs.ServiceJob{job}, d.Jobs...)
		return nil
	}, store.ColJobs)
	s.met.Observe("job_create", err)
	if err != nil {
		return jobs.ServiceJob{}, err
	}
	s.log.Info("job created", "job", job.ID, "client", clientName)
	return job, nil
}

func (s *Service) transition(ctx context.Context, actor *users.User, op, jobID string, next jobs.Status, mutate func(j *jobs.ServiceJob)) error {
	if err := users.Require(actor, users.PermManageJobs); err != nil {
		s.met.Observe(op, err)
		return err
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		j, ok := d.Job(jobID)
		if !ok {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		if !j.Status.CanTransitionTo(next) {
			return fmt.Errorf("%s -> %s: %w", j.Status, next, ErrInvalidTransition)
		}
		j.Status = next
		if mutate != nil {
			mutate(j)
		}
		return nil
	}, store.ColJobs)
	s.met.Observe(op, err)
	return err
}

// Start moves a pending job into progress.
func (s *Service) Start(ctx context.Context, actor *users.User, jobID string) error {
	return s.transition(ctx, actor, "job_start", jobID, jobs.StatusInProgress, nil)
}

// Finish completes an in-progress job and stores the technician notes.
// Stock is untouched: all debits already happened via ConsumeForJob.
func (s *Service) Finish(ctx context.Context, actor *users.User, jobID, notes string) error {
	return s.transition(ctx, actor, "job_finish", jobID, jobs.StatusCompleted, func(j *jobs.ServiceJob) {
		j.TechnicianNotes = notes
	})
}

// Cancel aborts a job from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, actor *users.User, jobID string) error {
	return s.transition(ctx, actor, "job_cancel", jobID, jobs.StatusCanceled, nil)
}

// Assign records the responsible technician.
func (s *Service) Assign(ctx context.Context, actor *users.User, jobID, technicianID string) error {
	if err := users.Require(actor, users.PermManageJobs); err != nil {
		s.met.Observe("job_assign", err)
		return err
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		j, ok := d.Job(jobID)
		if !ok {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		if _, ok := d.User(technicianID); !ok {
			return fmt.Errorf("user %s: %w", technicianID, store.ErrNotFound)
		}
		j.AssignedTechnicianID = technicianID
		return nil
	}, store.ColJobs)
	s.met.Observe("job_assign", err)
	return err
}

// AttachAnalysis stores advisor output on the job.
func (s *Service) AttachAnalysis(ctx context.Context, actor *users.User, jobID, text string) error {
	if err := users.Require(actor, users.PermViewJobs); err != nil {
		s.met.Observe("job_attach_analysis", err)
		return err
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		j, ok := d.Job(jobID)
		if !ok {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		j.AIAnalysis = text
		return nil
	}, store.ColJobs)
	s.met.Observe("job_attach_analysis", err)
	return err
}

// AddToPicklist stages one unit of a part on the job's pick list. The
// picklist never affects stock, whatever the call count or order.
func (s *Service) AddToPicklist(ctx context.Context, actor *users.User, jobID, partID string) error {
	if err := users.Require(actor, users.PermViewInventory); err != nil {
		s.met.Observe("picklist_add", err)
		return err
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		j, ok := d.Job(jobID)
		if !ok {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		if _, ok := d.Part(partID); !ok {
			return fmt.Errorf("part %s: %w", partID, store.ErrNotFound)
		}
		j.Picklist = jobs.Increment(j.Picklist, partID)
		return nil
	}, store.ColJobs)
	s.met.Observe("picklist_add", err)
	return err
}

// RemoveFromPicklist drops the whole picklist row for the part.
func (s *Service) RemoveFromPicklist(ctx context.Context, actor *users.User, jobID, partID string) error {
	if err := users.Require(actor, users.PermViewInventory); err != nil {
		s.met.Observe("picklist_remove", err)
		return err
	}
	err := s.store.Update(ctx, func(d *store.Data) error {
		j, ok := d.Job(jobID)
		if !ok {
			return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
		}
		j.Picklist = jobs.Remove(j.Picklist, partID)
		return nil
	}, store.ColJobs)
	s.met.Observe("picklist_remove", err)
	return err
}

// Job returns a copy of one ticket.
func (s *Service) Job(jobID string) (jobs.ServiceJob, error) {
	var (
		out   jobs.ServiceJob
		found bool
	)
	s.store.View(func(d *store.Data) {
		if j, ok := d.Job(jobID); ok {
			out = *j
			out.UsedParts = append([]jobs.PartUsage(nil), j.UsedParts...)
			out.Picklist = append([]jobs.PartUsage(nil), j.Picklist...)
			found = true
		}
	})
	if !found {
		return jobs.ServiceJob{}, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	return out, nil
}

// List returns copies of all tickets, newest first.
func (s *Service) List() []jobs.ServiceJob {
	var out []jobs.ServiceJob
	s.store.View(func(d *store.Data) {
		out = make([]jobs.ServiceJob, len(d.Jobs))
		for i := range d.Jobs {
			out[i] = d.Jobs[i]
			out[i].UsedParts = append([]jobs.PartUsage(nil), d.Jobs[i].UsedParts...)
			out[i].Picklist = append([]jobs.PartUsage(nil), d.Jobs[i].Picklist...)
		}
	})
	return out
}
