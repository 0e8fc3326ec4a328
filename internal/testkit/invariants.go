// Package testkit holds shared helpers for validator and driver tests.
package testkit

import (
	"fmt"

	"scenelint/internal/diag"
	"scenelint/internal/source"
)

// CheckDiagnosticInvariants runs the structural checks every validation
// result must satisfy:
// 1) positions are 1-based and within the snapshot
// 2) diagnostics are sorted by line, then column, then kind rank
// 3) no exact duplicates
// 4) a suggestion never repeats the flagged text verbatim as the message
func CheckDiagnosticInvariants(snap source.Snapshot, ds []diag.Diagnostic) error {
	lineCount := snap.LineCount()
	for i, d := range ds {
		if d.Pos.Line == 0 || d.Pos.Col == 0 {
			return fmt.Errorf("diagnostic %d has zero position: %+v", i, d.Pos)
		}
		if d.Pos.Line > lineCount {
			return fmt.Errorf("diagnostic %d points past the buffer: line %d of %d", i, d.Pos.Line, lineCount)
		}
		if d.Message == "" {
			return fmt.Errorf("diagnostic %d has empty message (kind %s)", i, d.Kind.ID())
		}
		if d.Suggested != "" && d.Suggested == d.Message {
			return fmt.Errorf("diagnostic %d suggestion equals message: %q", i, d.Suggested)
		}
	}

	for i := 1; i < len(ds); i++ {
		prev, curr := ds[i-1], ds[i]
		if curr.Pos.Line < prev.Pos.Line {
			return fmt.Errorf("diagnostics out of order at %d: line %d after %d", i, curr.Pos.Line, prev.Pos.Line)
		}
		if curr.Pos.Line == prev.Pos.Line && curr.Pos.Col < prev.Pos.Col {
			return fmt.Errorf("diagnostics out of order at %d: col %d after %d on line %d", i, curr.Pos.Col, prev.Pos.Col, curr.Pos.Line)
		}
		if prev == curr {
			return fmt.Errorf("duplicate diagnostic at %d: %+v", i, curr)
		}
	}
	return nil
}

// MustNoErrors fails with a readable dump when the bag contains any
// error-severity diagnostics.
func MustNoErrors(ds []diag.Diagnostic) error {
	for _, d := range ds {
		if d.Severity == diag.SevError {
			return fmt.Errorf("unexpected error diagnostic %s at %d:%d: %s", d.Kind.ID(), d.Pos.Line, d.Pos.Col, d.Message)
		}
	}
	return nil
}
