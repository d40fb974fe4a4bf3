package usecase

import (
	"context"
	"net/http"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/repository"
)

// JobRunner runs one job to completion. Implementations never return an
// error: every failure is folded into the outcome.
type JobRunner interface {
	RunJob(ctx context.Context, job entity.Job) entity.Outcome
}

type localRunner struct {
	transport repository.TransportRepository
}

// NewLocalRunner runs jobs in-process over transport.
func NewLocalRunner(transport repository.TransportRepository) JobRunner {
	return &localRunner{transport: transport}
}

func (r *localRunner) RunJob(ctx context.Context, job entity.Job) entity.Outcome {
	node := entity.NewNode(job.Key.Node, job.Credentials)
	req, err := BuildRequest(ctx, node, ActionRequestFor(job))
	if err != nil {
		return entity.Failed(&entity.TransportError{URL: node.BaseURL(), Err: err})
	}
	resp, err := r.transport.Send(ctx, req)
	if err != nil {
		return entity.Failed(err)
	}
	return Classify(resp)
}

// Classify maps a node's answer to an outcome: 200 is a success, 401 and
// 403 are authentication failures, anything else is an HTTP failure.
func Classify(resp *entity.Response) entity.Outcome {
	switch resp.StatusCode {
	case http.StatusOK:
		return entity.Succeeded(resp.StatusCode, resp.Reason)
	case http.StatusUnauthorized, http.StatusForbidden:
		return entity.Failed(&entity.AuthenticationFailure{StatusCode: resp.StatusCode, Reason: resp.Reason})
	default:
		return entity.Failed(&entity.RemoteHTTPError{StatusCode: resp.StatusCode, Reason: resp.Reason})
	}
}
