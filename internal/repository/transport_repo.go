package repository

import (
	"context"
	"net/http"

	"github.com/user/debugpanel/internal/entity"
)

// TransportRepository sends one prepared DebugPanel request.
type TransportRepository interface {
	// Send performs req and reports the status line. Connection-level
	// failures are returned as *entity.TransportError; any HTTP answer,
	// whatever its status, is a Response.
	Send(ctx context.Context, req *http.Request) (*entity.Response, error)
}
