package jobs

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// CanTransitionTo encodes the job lifecycle:
// pending -> in_progress -> completed, with cancel allowed from any
// non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusInProgress:
		return s == StatusPending
	case StatusCompleted:
		return s == StatusInProgress
	case StatusCanceled:
		return s == StatusPending || s == StatusInProgress
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// PartUsage is one row of a per-job part list. Both usedParts and the
// picklist hold at most one row per part id; quantities accumulate.
type PartUsage struct {
	PartID   string `json:"partId"`
	Quantity int    `json:"quantity"`
}

// ServiceJob is one repair ticket. ClientName and MachineModel are
// deliberate snapshots of the client and machine as of creation time,
// not live references.
type ServiceJob struct {
	ID                   string      `json:"id"`
	ClientName           string      `json:"clientName"`
	MachineModel         string      `json:"machineModel"`
	Description          string      `json:"description"`
	Status               Status      `json:"status"`
	DateCreated          time.Time   `json:"dateCreated"`
	TechnicianNotes      string      `json:"technicianNotes,omitempty"`
	UsedParts            []PartUsage `json:"usedParts"`
	Picklist             []PartUsage `json:"picklist"`
	AIAnalysis           string      `json:"aiAnalysis,omitempty"`
	AssignedTechnicianID string      `json:"assignedTechnicianId,omitempty"`
}

// Active reports whether parts may be consumed against the job.
func (j *ServiceJob) Active() bool { return j.Status == StatusInProgress }

// UsageQty returns the recorded quantity for a part, 0 if absent.
func UsageQty(list []PartUsage, partID string) int {
	for _, u := range list {
		if u.PartID == partID {
			return u.Quantity
		}
	}
	return 0
}

// Increment adds one unit for the part, creating the row if absent.
func Increment(list []PartUsage, partID string) []PartUsage {
	for i := range list {
		if list[i].PartID == partID {
			list[i].Quantity++
			return list
		}
	}
	return append(list, PartUsage{PartID: partID, Quantity: 1})
}

// Decrement removes one unit for the part, dropping the row at zero.
// ok is false when no row matched.
func Decrement(list []PartUsage, partID string) (out []PartUsage, ok bool) {
	for i := range list {
		if list[i].PartID != partID {
			continue
		}
		if list[i].Quantity > 1 {
			list[i].Quantity--
			return list, true
		}
		return append(list[:i], list[i+1:]...), true
	}
	return list, false
}

// Remove drops the whole row for the part, if any.
func Remove(list []PartUsage, partID string) []PartUsage {
	for i := range list {
		if list[i].PartID == partID {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
