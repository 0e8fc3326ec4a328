package diag

import "scenelint/internal/source"

// Reporter — минимальный контракт получения диагностик от проверок.
// Реализации: BagReporter (кладёт в Bag), NopReporter.
type Reporter interface {
	Report(kind Kind, sev Severity, pos source.LineCol, msg string, suggested string)
}

// ReportError is a shortcut for SevError diagnostics without a suggestion.
func ReportError(r Reporter, kind Kind, pos source.LineCol, msg string) {
	if r == nil {
		return
	}
	r.Report(kind, SevError, pos, msg, "")
}

// ReportWarning is a shortcut for SevWarning diagnostics without a suggestion.
func ReportWarning(r Reporter, kind Kind, pos source.LineCol, msg string) {
	if r == nil {
		return
	}
	r.Report(kind, SevWarning, pos, msg, "")
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(kind Kind, sev Severity, pos source.LineCol, msg string, suggested string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Kind: kind, Pos: pos,
		Message: msg, Suggested: suggested,
	})
}

// NopReporter отбрасывает все диагностики.
type NopReporter struct{}

func (NopReporter) Report(Kind, Severity, source.LineCol, string, string) {}
