// Package resolve maps tokens found in a script to commands of a registry
// namespace. Resolution is a pure function of the token and the (immutable)
// registry, so results are identical on every call, including which candidate
// wins a score tie.
package resolve

import (
	"scenelint/internal/registry"
)

// Status classifies the outcome of a lookup.
type Status uint8

const (
	// StatusUnknown means the token matched nothing well enough to suggest.
	StatusUnknown Status = iota
	// StatusValid means the token is a canonical command of the namespace.
	StatusValid
	// StatusTypo means the token hit the curated misspelling map.
	StatusTypo
	// StatusSuggestion means a fuzzy candidate scored above the threshold.
	StatusSuggestion
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusTypo:
		return "typo"
	case StatusSuggestion:
		return "suggestion"
	case StatusUnknown:
		return "unknown"
	}
	return "invalid"
}

// Resolution is the result of resolving one token against one namespace.
// Canonical is set for StatusTypo and StatusSuggestion; Score only for
// StatusSuggestion.
type Resolution struct {
	Status    Status
	Canonical string
	Score     float64
}

// SuggestionThreshold is the minimum similarity score for a fuzzy candidate.
// Tunable; the figure comes from empirical tuning, not theory.
const SuggestionThreshold = 0.6

// lengthPenaltyWeight scales how much a length mismatch discounts the
// character-overlap ratio.
const lengthPenaltyWeight = 0.5

// Command resolves token against the namespace, in priority order: exact
// membership, curated typo map (always preferred over fuzzy scoring), then
// the best fuzzy candidate at or above SuggestionThreshold.
func Command(ns *registry.Namespace, token string) Resolution {
	if ns == nil || token == "" {
		return Resolution{Status: StatusUnknown}
	}
	if ns.Contains(token) {
		return Resolution{Status: StatusValid, Canonical: token}
	}
	if canonical, ok := ns.Canonical(token); ok {
		return Resolution{Status: StatusTypo, Canonical: canonical}
	}

	best, score := closest(ns, token)
	if best == "" || score < SuggestionThreshold {
		return Resolution{Status: StatusUnknown}
	}
	return Resolution{Status: StatusSuggestion, Canonical: best, Score: score}
}

// closest scans every command of the namespace and returns the highest
// scoring candidate. Ties break on shorter name first, then lexical order;
// iteration over the sorted command list makes both breaks deterministic.
func closest(ns *registry.Namespace, token string) (string, float64) {
	var best string
	var bestScore float64
	for _, candidate := range ns.Commands() {
		sc := Similarity(token, candidate)
		switch {
		case sc > bestScore:
			best, bestScore = candidate, sc
		case sc == bestScore && best != "":
			if len(candidate) < len(best) {
				best = candidate
			}
			// при равной длине остаётся лексикографически меньший
			// (список отсортирован, первый победитель уже меньший)
		}
	}
	return best, bestScore
}

// Similarity scores two tokens in [0, 1]: the character-overlap ratio of
// their multisets, discounted by a length-difference penalty.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	overlap := 2 * float64(common(a, b)) / float64(la+lb)

	longer := la
	if lb > longer {
		longer = lb
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	penalty := lengthPenaltyWeight * float64(diff) / float64(longer)

	return overlap * (1 - penalty)
}

// common counts the multiset intersection of the bytes of a and b,
// case-folded for ASCII.
func common(a, b string) int {
	var counts [256]int
	for i := 0; i < len(a); i++ {
		counts[foldByte(a[i])]++
	}
	n := 0
	for i := 0; i < len(b); i++ {
		c := foldByte(b[i])
		if counts[c] > 0 {
			counts[c]--
			n++
		}
	}
	return n
}

func foldByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
