package entity

import (
	"encoding/base64"
	"net/http"

	"github.com/user/debugpanel/pkg/utils"
)

// Credentials is the UI username and password shared by every node of a run.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Node is one addressable DebugPanel endpoint. It is immutable once built.
type Node struct {
	address string
	baseURL string
	basic   string
}

// NewNode normalizes address and precomputes the Basic authentication value.
func NewNode(address string, creds Credentials) Node {
	return Node{
		address: address,
		baseURL: utils.NormalizeBaseURL(address),
		basic:   base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.Password)),
	}
}

// Address returns the node exactly as it was supplied.
func (n Node) Address() string {
	return n.address
}

// BaseURL returns the normalized base URL, without a trailing slash.
func (n Node) BaseURL() string {
	return n.baseURL
}

// Authenticate stamps req with the node's Basic authentication header.
func (n Node) Authenticate(req *http.Request) {
	req.Header.Set("Authorization", "Basic "+n.basic)
}
