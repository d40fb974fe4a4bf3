package memory

import (
	"context"
	"sync"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/repository"
)

// DefaultCapacity bounds the log so a long-lived mock does not grow forever.
const DefaultCapacity = 10000

type actionLogRepo struct {
	mu       sync.Mutex
	actions  []entity.ReceivedAction
	capacity int
}

// NewActionLogRepo creates an in-memory log that keeps the newest capacity
// entries. A capacity of zero or less means DefaultCapacity.
func NewActionLogRepo(capacity int) repository.ActionLogRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &actionLogRepo{capacity: capacity}
}

func (r *actionLogRepo) Append(_ context.Context, action entity.ReceivedAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	if over := len(r.actions) - r.capacity; over > 0 {
		r.actions = append(r.actions[:0:0], r.actions[over:]...)
	}
	return nil
}

func (r *actionLogRepo) List(_ context.Context) ([]entity.ReceivedAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.ReceivedAction(nil), r.actions...), nil
}
