package repository

import (
	"context"

	"github.com/user/debugpanel/internal/entity"
)

// ActionLogRepository keeps the actions a mock node accepted.
type ActionLogRepository interface {
	Append(ctx context.Context, action entity.ReceivedAction) error
	// List returns the accepted actions, oldest first.
	List(ctx context.Context) ([]entity.ReceivedAction, error)
}
