package utils

import (
	"strings"
)

// DefaultScheme is prefixed to node addresses that do not carry one.
const DefaultScheme = "http"

// auidEscaper replaces the characters the DebugPanel servlet cannot take
// verbatim in an AUID. strings.NewReplacer scans the input once, so a '%'
// introduced by a later replacement is never escaped again.
var auidEscaper = strings.NewReplacer(
	"%", "%25",
	"|", "%7C",
	"&", "%26",
	"~", "%7E",
)

// NormalizeBaseURL turns a node address such as "host:8081" into a base URL
// with a scheme and no trailing slash.
func NormalizeBaseURL(address string) string {
	if !strings.Contains(address, "://") {
		address = DefaultScheme + "://" + address
	}
	return strings.TrimSuffix(address, "/")
}

// EscapeAUID percent-escapes the four reserved AUID characters.
func EscapeAUID(auid string) string {
	return auidEscaper.Replace(auid)
}

// EscapeAction percent-escapes the spaces of an action name.
func EscapeAction(action string) string {
	return strings.ReplaceAll(action, " ", "%20")
}
