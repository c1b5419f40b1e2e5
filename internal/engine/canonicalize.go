package engine

import (
	"regexp"
	"strings"

	"github.com/yenhunghuang/license-compliance-copilot/internal/graph"
)

// UnknownLicense is the canonical key for tokens the graph cannot resolve.
const UnknownLicense = "UNKNOWN"

// CanonicalLicense is the outcome of canonicalizing one raw license token.
// Original preserves the caller's input for diagnostics.
type CanonicalLicense struct {
	ID       string `json:"id"`
	Known    bool   `json:"known"`
	Original string `json:"original,omitempty"`
}

// trailing version segment, optionally followed by an -only/-or-later marker
var versionSuffixRe = regexp.MustCompile(`-\d+(\.\d+)*(-ONLY|-OR-LATER)?$`)

// Canonicalize resolves an arbitrary license string to its canonical graph
// key. Matching is case-insensitive; inner whitespace is stripped. When the
// token is not a direct key, a suffix-strip ladder is tried: drop
// -ONLY/-OR-LATER, drop a trailing version segment, truncate at the first
// hyphen, truncate at the first plus. Unresolvable tokens yield
// UnknownLicense with the original preserved.
func (e *Engine) Canonicalize(raw string) CanonicalLicense {
	token := graph.CanonicalID(raw)
	if token == "" || token == "NOASSERTION" || token == UnknownLicense {
		return CanonicalLicense{ID: UnknownLicense, Original: raw}
	}

	if node, ok := e.store.GetLicense(token); ok {
		return CanonicalLicense{ID: node.ID, Known: true, Original: raw}
	}

	for _, candidate := range e.candidateKeys(token) {
		if node, ok := e.store.GetLicense(candidate); ok {
			return CanonicalLicense{ID: node.ID, Known: true, Original: raw}
		}
	}

	return CanonicalLicense{ID: UnknownLicense, Original: raw}
}

// candidateKeys yields the suffix-strip ladder for a token that missed the
// direct lookup, in the order the candidates must be tried.
func (e *Engine) candidateKeys(token string) []string {
	var candidates []string

	if trimmed := strings.TrimSuffix(token, "-ONLY"); trimmed != token {
		candidates = append(candidates, trimmed)
	} else if trimmed := strings.TrimSuffix(token, "-OR-LATER"); trimmed != token {
		candidates = append(candidates, trimmed)
	}

	if stripped := versionSuffixRe.ReplaceAllString(token, ""); stripped != token && stripped != "" {
		candidates = append(candidates, stripped)
	}

	if i := strings.Index(token, "-"); i > 0 {
		candidates = append(candidates, token[:i])
	}
	if i := strings.Index(token, "+"); i > 0 {
		candidates = append(candidates, token[:i])
	}

	return candidates
}
