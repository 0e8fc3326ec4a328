package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"scenelint/internal/diag"
	"scenelint/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	kindColor    = color.New(color.FgCyan)
	caretColor   = color.New(color.FgGreen, color.Bold)
	hintColor    = color.New(color.FgBlue)
)

// Pretty форматирует диагностики в человекочитаемый вид. Ожидается, что
// набор уже отсортирован (bag.Sort()).
// Для каждой диагностики печатает:
// <path>:<line>:<col>: <SEV> [<ID>]: <Message>
// затем, опционально, строку буфера с ^ под колонкой и подсказку.
func Pretty(w io.Writer, path string, snap source.Snapshot, ds []diag.Diagnostic, opts PrettyOpts) {
	sev := func(s diag.Severity) string {
		if !opts.Color {
			return s.String()
		}
		if s == diag.SevError {
			return errorColor.Sprint(s.String())
		}
		return warningColor.Sprint(s.String())
	}
	kind := func(k diag.Kind) string {
		if !opts.Color {
			return k.ID()
		}
		return kindColor.Sprint(k.ID())
	}

	for _, d := range ds {
		fmt.Fprintf(w, "%s:%d:%d: %s [%s]: %s\n",
			path, d.Pos.Line, d.Pos.Col, sev(d.Severity), kind(d.Kind), d.Message)

		if opts.ShowSource {
			line := snap.Line(d.Pos.Line)
			if line != "" {
				fmt.Fprintf(w, "  %s\n", line)
				caret := caretFor(line, d.Pos.Col)
				if opts.Color {
					caret = caretColor.Sprint(caret)
				}
				fmt.Fprintf(w, "  %s\n", caret)
			}
		}
		if opts.ShowSuggestions && d.Suggested != "" {
			hint := "fix: " + d.Suggested
			if opts.Color {
				hint = hintColor.Sprint(hint)
			}
			fmt.Fprintf(w, "  %s\n", hint)
		}
	}
}

// caretFor строит строку-указатель: табы сохраняем, остальное — пробелы.
func caretFor(line string, col uint32) string {
	if col == 0 {
		col = 1
	}
	var b strings.Builder
	for i := 0; i < int(col)-1 && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}

// Summary prints the closing error/warning count line.
func Summary(w io.Writer, ds []diag.Diagnostic, useColor bool) {
	errs, warns := 0, 0
	for _, d := range ds {
		if d.Severity == diag.SevError {
			errs++
		} else {
			warns++
		}
	}
	text := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	if !useColor {
		fmt.Fprintln(w, text)
		return
	}
	switch {
	case errs > 0:
		fmt.Fprintln(w, errorColor.Sprint(text))
	case warns > 0:
		fmt.Fprintln(w, warningColor.Sprint(text))
	default:
		fmt.Fprintln(w, text)
	}
}
