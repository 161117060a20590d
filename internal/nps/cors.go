package nps

import (
	"net/http"
	"slices"
)

// CORSPolicy decides which browser origins may submit surveys.
type CORSPolicy struct {
	allowed []string
}

// NewCORSPolicy returns a policy for an already parsed allow-list.
func NewCORSPolicy(origins []string) CORSPolicy {
	return CORSPolicy{allowed: origins}
}

// Allows reports whether origin is on the allow-list. Matching is exact and
// case-sensitive; an empty list allows nothing.
func (p CORSPolicy) Allows(origin string) bool {
	return len(p.allowed) > 0 && slices.Contains(p.allowed, origin)
}

// setBaseHeaders writes the headers sent on every response.
func setBaseHeaders(h http.Header) {
	h.Set("Vary", "Origin")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "600")
}

// setAllowOrigin echoes origin back, or "*" when the request had none.
func setAllowOrigin(h http.Header, origin string) {
	if origin == "" {
		origin = "*"
	}
	h.Set("Access-Control-Allow-Origin", origin)
}
