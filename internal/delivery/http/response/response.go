package response

import "time"

// ActionResponse acknowledges an accepted DebugPanel action.
type ActionResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Action string `json:"action"`
	AUID   string `json:"auid,omitempty"`
}

// ReceivedActionResponse is one entry of /api/requests.
type ReceivedActionResponse struct {
	ID         string            `json:"id"`
	Action     string            `json:"action"`
	Operation  string            `json:"operation"`
	AUID       string            `json:"auid,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

// ReceivedActionsResponse lists the actions a mock node accepted.
type ReceivedActionsResponse struct {
	Count   int                      `json:"count"`
	Actions []ReceivedActionResponse `json:"actions"`
}
