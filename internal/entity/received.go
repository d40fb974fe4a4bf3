package entity

import "time"

// ReceivedAction is one DebugPanel call accepted by the mock node.
type ReceivedAction struct {
	ID         string            `json:"id"`
	Action     string            `json:"action"`
	Operation  string            `json:"operation"`
	AUID       string            `json:"auid,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	Username   string            `json:"username"`
	ReceivedAt time.Time         `json:"received_at"`
}
