package diagfmt

import (
	"encoding/json"
	"io"

	"scenelint/internal/diag"
)

// DiagnosticJSON представляет диагностику в JSON формате.
type DiagnosticJSON struct {
	Severity  string `json:"severity"`
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	Line      uint32 `json:"line"`
	Col       uint32 `json:"col"`
	Message   string `json:"message"`
	Suggested string `json:"suggested,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода.
type DiagnosticsOutput struct {
	File        string           `json:"file,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// JSON сериализует диагностики одного файла.
func JSON(w io.Writer, path string, ds []diag.Diagnostic, opts JSONOpts) error {
	out := DiagnosticsOutput{
		File:        path,
		Diagnostics: make([]DiagnosticJSON, 0, len(ds)),
		Count:       len(ds),
	}
	for i, d := range ds {
		if opts.Max > 0 && i >= opts.Max {
			out.Truncated = true
			break
		}
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			Severity:  d.Severity.Slug(),
			Kind:      d.Kind.Slug(),
			Code:      d.Kind.ID(),
			Line:      d.Pos.Line,
			Col:       d.Pos.Col,
			Message:   d.Message,
			Suggested: d.Suggested,
		})
	}

	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
