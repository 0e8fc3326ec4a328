package diag

import (
	"scenelint/internal/source"
)

// Diagnostic is one reported issue in a buffer snapshot. Suggested, when
// non-empty, is replacement text the editor surface can offer as a
// one-click fix for the flagged token.
type Diagnostic struct {
	Severity  Severity
	Kind      Kind
	Pos       source.LineCol
	Message   string
	Suggested string
}

func New(sev Severity, kind Kind, pos source.LineCol, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Kind:     kind,
		Pos:      pos,
		Message:  msg,
	}
}

func NewError(kind Kind, pos source.LineCol, msg string) Diagnostic {
	return New(SevError, kind, pos, msg)
}

func NewWarning(kind Kind, pos source.LineCol, msg string) Diagnostic {
	return New(SevWarning, kind, pos, msg)
}

func (d Diagnostic) WithSuggestion(replacement string) Diagnostic {
	d.Suggested = replacement
	return d
}
