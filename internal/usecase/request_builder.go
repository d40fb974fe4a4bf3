package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/pkg/utils"
)

// ActionRequest is what one DebugPanel call asks for.
type ActionRequest struct {
	Action string
	// AUID is sent only when HasAUID is set.
	AUID    string
	HasAUID bool
	Params  []entity.Param
}

// ActionRequestFor derives the request of a job.
func ActionRequestFor(job entity.Job) ActionRequest {
	return ActionRequest{
		Action:  job.Action,
		AUID:    job.Key.AUID,
		HasAUID: job.Scope == entity.UnitScope,
		Params:  job.Params,
	}
}

// DebugPanelURL renders {base}/DebugPanel?action=...[&auid=...][&k=v...].
// Parameters keep their order. Only spaces in the action and the four
// reserved AUID characters are escaped.
func DebugPanelURL(node entity.Node, ar ActionRequest) string {
	var b strings.Builder
	b.WriteString(node.BaseURL())
	b.WriteString("/DebugPanel?action=")
	b.WriteString(utils.EscapeAction(ar.Action))
	if ar.HasAUID {
		b.WriteString("&auid=")
		b.WriteString(utils.EscapeAUID(ar.AUID))
	}
	for _, p := range ar.Params {
		b.WriteString("&")
		b.WriteString(p.Key)
		b.WriteString("=")
		b.WriteString(p.Value)
	}
	return b.String()
}

// BuildRequest prepares the authenticated GET for ar against node.
func BuildRequest(ctx context.Context, node entity.Node, ar ActionRequest) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, DebugPanelURL(node, ar), nil)
	if err != nil {
		return nil, err
	}
	node.Authenticate(req)
	return req, nil
}
