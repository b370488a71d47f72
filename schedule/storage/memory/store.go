// memory based implementation for testing purposes
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cyp0633/upkeep/schedule"
	"github.com/cyp0633/upkeep/schedule/storage"
)

// Store implements storage.Storage interface using in-memory maps
type Store struct {
	mu        sync.RWMutex
	instances map[string]*schedule.Instance // key: instance ID
	newID     func() string
}

// New creates a new in-memory storage
func New() *Store {
	return &Store{
		instances: make(map[string]*schedule.Instance),
		newID:     uuid.NewString,
	}
}

func (s *Store) ListInstances(_ context.Context, workOrderID string) ([]schedule.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.Instance
	for _, inst := range s.instances {
		if inst.WorkOrderID == workOrderID {
			out = append(out, *inst)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

func (s *Store) ApplyPlan(_ context.Context, plan schedule.Plan) ([]schedule.Instance, error) {
	for _, d := range plan.Create {
		if err := storage.ValidateDraft(d); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range plan.Delete {
		// rows that left pending since the plan was made are kept
		if inst, ok := s.instances[id]; ok && inst.Status == schedule.StatusPending {
			delete(s.instances, id)
		}
	}

	created := make([]schedule.Instance, 0, len(plan.Create))
	for _, d := range plan.Create {
		inst := schedule.Instance{
			ID:          s.newID(),
			WorkOrderID: d.WorkOrderID,
			AssigneeID:  d.AssigneeID,
			CreatedBy:   d.CreatedBy,
			Status:      d.Status,
			DueDate:     d.DueDate,
		}
		s.instances[inst.ID] = &inst
		created = append(created, inst)
	}
	return created, nil
}

func (s *Store) SetStatus(_ context.Context, instanceID string, status schedule.Status) error {
	if !status.Valid() {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "unknown status " + string(status)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[instanceID]
	if !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "instance not found",
		}
	}
	inst.Status = status
	return nil
}
