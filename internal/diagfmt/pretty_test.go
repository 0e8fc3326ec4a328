package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"scenelint/internal/diag"
	"scenelint/internal/source"
)

func sample() (source.Snapshot, []diag.Diagnostic) {
	snap := source.FromLines([]string{
		"import maya.cmds as cmds",
		"cmds.setAttrs('pSphere1.tx', 5)",
	}, 1)
	ds := []diag.Diagnostic{{
		Severity:  diag.SevError,
		Kind:      diag.KindKnownTypo,
		Pos:       source.LineCol{Line: 2, Col: 6},
		Message:   `unknown command "setAttrs"; did you mean "setAttr"?`,
		Suggested: "setAttr",
	}}
	return snap, ds
}

func TestPrettyPlain(t *testing.T) {
	snap, ds := sample()
	var buf bytes.Buffer
	Pretty(&buf, "scene.py", snap, ds, PrettyOpts{ShowSource: true, ShowSuggestions: true})

	out := buf.String()
	if !strings.Contains(out, "scene.py:2:6: ERROR [USE3003]:") {
		t.Fatalf("missing header line:\n%s", out)
	}
	if !strings.Contains(out, "cmds.setAttrs('pSphere1.tx', 5)") {
		t.Fatalf("missing source line:\n%s", out)
	}
	if !strings.Contains(out, "\n       ^\n") {
		t.Fatalf("missing caret under column 6:\n%s", out)
	}
	if !strings.Contains(out, "fix: setAttr") {
		t.Fatalf("missing suggestion:\n%s", out)
	}
}

func TestPrettyWithoutSource(t *testing.T) {
	snap, ds := sample()
	var buf bytes.Buffer
	Pretty(&buf, "scene.py", snap, ds, PrettyOpts{})
	if strings.Contains(buf.String(), "cmds.setAttrs") {
		t.Fatalf("source line printed without ShowSource:\n%s", buf.String())
	}
}

func TestCaretPreservesTabs(t *testing.T) {
	got := caretFor("\tx = 1", 2)
	if got != "\t^" {
		t.Fatalf("caret = %q, want tab then caret", got)
	}
}

func TestSummaryCounts(t *testing.T) {
	_, ds := sample()
	ds = append(ds, diag.NewWarning(diag.KindUsageShape, source.LineCol{Line: 3, Col: 1}, "advisory"))
	var buf bytes.Buffer
	Summary(&buf, ds, false)
	if got := strings.TrimSpace(buf.String()); got != "1 error(s), 1 warning(s)" {
		t.Fatalf("summary = %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	_, ds := sample()
	var buf bytes.Buffer
	if err := JSON(&buf, "scene.py", ds, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("out = %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Code != "USE3003" || d.Line != 2 || d.Col != 6 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Suggested != "setAttr" {
		t.Fatalf("suggested = %q", d.Suggested)
	}
}

func TestJSONTruncation(t *testing.T) {
	ds := make([]diag.Diagnostic, 5)
	for i := range ds {
		ds[i] = diag.NewError(diag.KindHardSyntax,
			source.LineCol{Line: uint32(i + 1), Col: 1}, "unterminated string literal")
	}
	var buf bytes.Buffer
	if err := JSON(&buf, "scene.py", ds, JSONOpts{Max: 2}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Diagnostics) != 2 || !out.Truncated || out.Count != 5 {
		t.Fatalf("out = %+v", out)
	}
}
