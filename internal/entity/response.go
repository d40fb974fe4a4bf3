package entity

// Response is the part of a DebugPanel answer the core looks at.
type Response struct {
	StatusCode int
	Reason     string
}
