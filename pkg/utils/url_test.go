package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lockss.example.edu:8081", "http://lockss.example.edu:8081"},
		{"lockss.example.edu:8081/", "http://lockss.example.edu:8081"},
		{"https://lockss.example.edu", "https://lockss.example.edu"},
		{"https://lockss.example.edu:8081/", "https://lockss.example.edu:8081"},
		{"localhost", "http://localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.in))
		})
	}
}

func TestEscapeAUID(t *testing.T) {
	assert.Equal(t, "a%25b%7Cc%26d%7Ee", EscapeAUID("a%b|c&d~e"))
	assert.Equal(t,
		"org%7Clockss%7Cplugin%7CPlugin%26base_url%7Ehttp://x/",
		EscapeAUID("org|lockss|plugin|Plugin&base_url~http://x/"))
	assert.Equal(t, "plain", EscapeAUID("plain"))
	assert.Equal(t, "%2525", EscapeAUID("%25"))
}

func TestEscapeAction(t *testing.T) {
	assert.Equal(t, "Force%20Deep%20Crawl", EscapeAction("Force Deep Crawl"))
	assert.Equal(t, "Reload%20Config", EscapeAction("Reload Config"))
	assert.Equal(t, "a|b", EscapeAction("a|b"))
}
