package locate

import (
	"errors"

	"scenelint/internal/source"
)

var (
	// ErrStaleSnapshot is returned when the match was computed against an
	// older buffer version than the one being edited.
	ErrStaleSnapshot = errors.New("locate: match is stale, buffer changed since location")
	// ErrUnmatched is returned when the match result carries no location.
	ErrUnmatched = errors.New("locate: snippet was not located")
)

// Apply replaces the matched span of snap with the snippet lines and
// returns the updated snapshot. liveVersion is the version of the buffer
// the caller is about to mutate; if the match was computed against an
// earlier snapshot the merge is refused and the caller should re-Locate.
func Apply(snap source.Snapshot, liveVersion uint64, m MatchResult, snippet string) (source.Snapshot, error) {
	if !m.Matched {
		return snap, ErrUnmatched
	}
	if snap.Version() != liveVersion {
		return snap, ErrStaleSnapshot
	}
	lines := snippetToLines(snippet)
	return snap.Replace(m.StartLine, m.EndLine, lines), nil
}
