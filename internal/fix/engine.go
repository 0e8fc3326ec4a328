// Package fix turns diagnostic suggestions into buffer edits. Two fix
// shapes exist: replacing a misspelled command token in place, and
// inserting a missing import line at the top of the buffer. Fixes are
// applied to an immutable snapshot and the result is a fresh snapshot;
// writing the buffer back is the caller's business.
package fix

import (
	"errors"
	"fmt"
	"sort"

	"scenelint/internal/diag"
	"scenelint/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// Applicability grades how confident a fix is.
type Applicability uint8

const (
	// ApplicabilityAlwaysSafe marks fixes backed by the curated typo table.
	ApplicabilityAlwaysSafe Applicability = iota
	// ApplicabilityMaybeIncorrect marks fixes derived from fuzzy similarity.
	ApplicabilityMaybeIncorrect
)

func (a Applicability) String() string {
	switch a {
	case ApplicabilityAlwaysSafe:
		return "always-safe"
	case ApplicabilityMaybeIncorrect:
		return "maybe-incorrect"
	default:
		return "unknown"
	}
}

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// Unsafe additionally applies maybe-incorrect fixes in ApplyModeAll.
	Unsafe bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Kind          diag.Kind
	Message       string
	Applicability Applicability
	Line          uint32
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Reason string
}

// Result aggregates applied and skipped fixes plus the edited snapshot.
type Result struct {
	Applied  []AppliedFix
	Skipped  []SkippedFix
	Snapshot source.Snapshot
}

type editKind uint8

const (
	editReplaceToken editKind = iota
	editInsertImport
)

type candidate struct {
	diag  diag.Diagnostic
	kind  editKind
	appl  Applicability
	id    string
	order int
}

// Apply collects fixable diagnostics, selects a subset according to opts,
// and applies the edits to snap. The returned snapshot carries the next
// version when anything changed and the input snapshot otherwise.
func Apply(snap source.Snapshot, diagnostics []diag.Diagnostic, opts ApplyOptions) (*Result, error) {
	result := &Result{
		Applied:  make([]AppliedFix, 0),
		Skipped:  make([]SkippedFix, 0),
		Snapshot: snap,
	}

	candidates := gatherCandidates(diagnostics)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, applySkips, next := applyCandidates(snap, selected)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, applySkips...)
	result.Snapshot = next

	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates keeps the diagnostics a fix exists for. Typo hits from
// the curated table are always safe; fuzzy suggestions are not. Missing
// imports become insert fixes.
func gatherCandidates(diagnostics []diag.Diagnostic) []candidate {
	cands := make([]candidate, 0)
	for i, d := range diagnostics {
		if d.Suggested == "" {
			continue
		}
		var kind editKind
		var appl Applicability
		switch d.Kind {
		case diag.KindKnownTypo:
			kind, appl = editReplaceToken, ApplicabilityAlwaysSafe
		case diag.KindUnknownCommand, diag.KindMacroSyntax:
			kind, appl = editReplaceToken, ApplicabilityMaybeIncorrect
		case diag.KindMissingImport:
			kind, appl = editInsertImport, ApplicabilityAlwaysSafe
		default:
			continue
		}
		cands = append(cands, candidate{
			diag:  d,
			kind:  kind,
			appl:  appl,
			id:    fmt.Sprintf("%s-%d-%d", d.Kind.ID(), d.Pos.Line, d.Pos.Col),
			order: i,
		})
	}
	return cands
}

// sortCandidates orders candidates deterministically: позиция в буфере,
// затем порядок появления.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Pos.Line != dj.Pos.Line {
			return di.Pos.Line < dj.Pos.Line
		}
		if di.Pos.Col != dj.Pos.Col {
			return di.Pos.Col < dj.Pos.Col
		}
		return candidates[i].order < candidates[j].order
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.id == opts.TargetID {
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{
			ID:     opts.TargetID,
			Reason: "fix id not found",
		}}
	case ApplyModeAll:
		selected := make([]candidate, 0, len(candidates))
		skipped := make([]SkippedFix, 0)
		for _, cand := range candidates {
			if cand.appl == ApplicabilityAlwaysSafe || opts.Unsafe {
				selected = append(selected, cand)
				continue
			}
			skipped = append(skipped, SkippedFix{
				ID:     cand.id,
				Reason: fmt.Sprintf("applicability is %s", cand.appl),
			})
		}
		return selected, skipped
	case ApplyModeOnce:
		var fallback *candidate
		for i := range candidates {
			cand := candidates[i]
			if cand.appl == ApplicabilityAlwaysSafe {
				return []candidate{cand}, nil
			}
			if fallback == nil {
				fallback = &candidates[i]
			}
		}
		if fallback == nil {
			return nil, nil
		}
		if !opts.Unsafe {
			// Остались только maybe-incorrect кандидаты; без Unsafe они не
			// применяются ни в одном режиме.
			skipped := make([]SkippedFix, 0, len(candidates))
			for _, cand := range candidates {
				skipped = append(skipped, SkippedFix{
					ID:     cand.id,
					Reason: fmt.Sprintf("applicability is %s", cand.appl),
				})
			}
			return nil, skipped
		}
		return []candidate{*fallback}, nil
	default:
		return nil, nil
	}
}

// applyCandidates performs the selected edits. Token replacements on one
// line run right to left so earlier columns stay valid; import inserts are
// collected and prepended last so token positions keep referring to the
// original line numbers.
func applyCandidates(snap source.Snapshot, selected []candidate) ([]AppliedFix, []SkippedFix, source.Snapshot) {
	lines := append([]string(nil), snap.Lines()...)
	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)
	imports := make([]string, 0)
	importSeen := make(map[string]bool)
	// занятые диапазоны по строкам, чтобы два исправления не пересеклись
	claimed := make(map[uint32][][2]int)

	// Replacements right to left within the buffer.
	tokens := make([]candidate, 0, len(selected))
	for _, cand := range selected {
		if cand.kind == editInsertImport {
			if importSeen[cand.diag.Suggested] {
				skipped = append(skipped, SkippedFix{
					ID:     cand.id,
					Reason: "import already inserted",
				})
				continue
			}
			importSeen[cand.diag.Suggested] = true
			imports = append(imports, cand.diag.Suggested)
			applied = append(applied, AppliedFix{
				ID:            cand.id,
				Kind:          cand.diag.Kind,
				Message:       cand.diag.Message,
				Applicability: cand.appl,
				Line:          cand.diag.Pos.Line,
			})
			continue
		}
		tokens = append(tokens, cand)
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		cand := tokens[i]
		line := cand.diag.Pos.Line
		if line == 0 || int(line) > len(lines) {
			skipped = append(skipped, SkippedFix{ID: cand.id, Reason: "line out of range"})
			continue
		}
		text := lines[line-1]
		start := int(cand.diag.Pos.Col) - 1
		if start < 0 || start >= len(text) || !isIdentChar(text[start]) {
			skipped = append(skipped, SkippedFix{ID: cand.id, Reason: "no token at position"})
			continue
		}
		end := start
		for end < len(text) && isIdentChar(text[end]) {
			end++
		}
		if overlapsClaimed(claimed[line], start, end) {
			skipped = append(skipped, SkippedFix{ID: cand.id, Reason: "conflicts with previously applied edit"})
			continue
		}
		old := text[start:end]
		if old == cand.diag.Suggested {
			skipped = append(skipped, SkippedFix{ID: cand.id, Reason: "text already fixed"})
			continue
		}
		lines[line-1] = text[:start] + cand.diag.Suggested + text[end:]
		claimed[line] = append(claimed[line], [2]int{start, end})
		applied = append(applied, AppliedFix{
			ID:            cand.id,
			Kind:          cand.diag.Kind,
			Message:       cand.diag.Message,
			Applicability: cand.appl,
			Line:          line,
		})
	}

	if len(applied) == 0 {
		return applied, skipped, snap
	}
	if len(imports) > 0 {
		lines = append(imports, lines...)
	}
	// Applied list back in buffer order.
	sort.SliceStable(applied, func(i, j int) bool {
		return applied[i].Line < applied[j].Line
	})
	return applied, skipped, source.FromLines(lines, snap.Version()+1)
}

func overlapsClaimed(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
