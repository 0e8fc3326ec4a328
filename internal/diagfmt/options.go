package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// ShowSource prints the offending line with a caret under the column.
	ShowSource bool
	// ShowSuggestions prints "did you mean" replacement hints.
	ShowSuggestions bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	// Max обрезает вывод, не сам набор диагностик.
	Max int
	// Indent switches pretty-printed JSON on.
	Indent bool
}
