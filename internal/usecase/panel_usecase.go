package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/repository"
	"github.com/user/debugpanel/pkg/metrics"
)

var (
	ErrUnauthorized  = errors.New("bad username or password")
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingAUID   = errors.New("auid parameter is required")
)

// PanelCall is one incoming DebugPanel request as the mock node sees it.
type PanelCall struct {
	Username string
	Password string
	HasAuth  bool
	Query    url.Values
}

// Panel is the mock node's side of the DebugPanel contract.
type Panel interface {
	Accept(ctx context.Context, call PanelCall) (*entity.ReceivedAction, error)
	Received(ctx context.Context) ([]entity.ReceivedAction, error)
}

type panelUseCase struct {
	creds   entity.Credentials
	log     repository.ActionLogRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPanel creates the mock panel. Only creds are accepted. m may be nil.
func NewPanel(creds entity.Credentials, log repository.ActionLogRepository, m *metrics.Metrics, logger *zap.Logger) Panel {
	return &panelUseCase{creds: creds, log: log, metrics: m, logger: logger}
}

func (uc *panelUseCase) Accept(ctx context.Context, call PanelCall) (*entity.ReceivedAction, error) {
	if !call.HasAuth || !uc.authorized(call.Username, call.Password) {
		return nil, ErrUnauthorized
	}

	action := call.Query.Get("action")
	op, ok := entity.OperationForAction(action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	auid := call.Query.Get("auid")
	if op.Scope == entity.UnitScope && auid == "" {
		return nil, ErrMissingAUID
	}

	received := entity.ReceivedAction{
		ID:         uuid.NewString(),
		Action:     action,
		Operation:  op.Name,
		AUID:       auid,
		Username:   call.Username,
		ReceivedAt: time.Now().UTC(),
	}
	for key, values := range call.Query {
		if key == "action" || key == "auid" || len(values) == 0 {
			continue
		}
		if received.Params == nil {
			received.Params = make(map[string]string)
		}
		received.Params[key] = values[0]
	}

	if err := uc.log.Append(ctx, received); err != nil {
		return nil, fmt.Errorf("recording action: %w", err)
	}
	if uc.metrics != nil {
		uc.metrics.ActionsTotal.WithLabelValues(action).Inc()
	}
	uc.logger.Info("action accepted",
		zap.String("id", received.ID),
		zap.String("action", action),
		zap.String("auid", auid),
	)
	return &received, nil
}

func (uc *panelUseCase) Received(ctx context.Context) ([]entity.ReceivedAction, error) {
	return uc.log.List(ctx)
}

func (uc *panelUseCase) authorized(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(uc.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(uc.creds.Password)) == 1
	return userOK && passOK
}
