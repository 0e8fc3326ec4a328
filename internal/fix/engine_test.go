package fix

import (
	"testing"

	"scenelint/internal/diag"
	"scenelint/internal/source"
)

func typoDiag(line, col uint32, msg, suggested string) diag.Diagnostic {
	return diag.Diagnostic{
		Severity:  diag.SevError,
		Kind:      diag.KindKnownTypo,
		Pos:       source.LineCol{Line: line, Col: col},
		Message:   msg,
		Suggested: suggested,
	}
}

func TestApplyReplacesTypoToken(t *testing.T) {
	snap := source.FromLines([]string{
		"import maya.cmds as cmds",
		"cmds.setAttrs('pSphere1.tx', 5)",
	}, 3)
	ds := []diag.Diagnostic{
		typoDiag(2, 6, `unknown command "setAttrs"; did you mean "setAttr"?`, "setAttr"),
	}
	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := res.Snapshot.Line(2); got != "cmds.setAttr('pSphere1.tx', 5)" {
		t.Fatalf("line 2 = %q", got)
	}
	if res.Snapshot.Version() != 4 {
		t.Fatalf("version = %d, want 4", res.Snapshot.Version())
	}
	if len(res.Applied) != 1 || res.Applied[0].Kind != diag.KindKnownTypo {
		t.Fatalf("applied = %+v", res.Applied)
	}
}

func TestApplyTwoTokensOnOneLine(t *testing.T) {
	snap := source.FromLines([]string{
		"cmds.setAttrs('a.tx', cmds.getAttrs('b.tx'))",
	}, 1)
	ds := []diag.Diagnostic{
		typoDiag(1, 6, "typo", "setAttr"),
		typoDiag(1, 28, "typo", "getAttr"),
	}
	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "cmds.setAttr('a.tx', cmds.getAttr('b.tx'))"
	if got := res.Snapshot.Line(1); got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("applied %d fixes, want 2", len(res.Applied))
	}
}

func TestApplyInsertsMissingImport(t *testing.T) {
	snap := source.FromLines([]string{"cmds.polySphere()"}, 1)
	ds := []diag.Diagnostic{{
		Severity:  diag.SevError,
		Kind:      diag.KindMissingImport,
		Pos:       source.LineCol{Line: 1, Col: 1},
		Message:   `"cmds" is used before maya.cmds is imported`,
		Suggested: "import maya.cmds as cmds",
	}}
	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := res.Snapshot.Line(1); got != "import maya.cmds as cmds" {
		t.Fatalf("line 1 = %q", got)
	}
	if got := res.Snapshot.Line(2); got != "cmds.polySphere()" {
		t.Fatalf("line 2 = %q", got)
	}
}

func TestApplyModeAllSkipsFuzzySuggestions(t *testing.T) {
	snap := source.FromLines([]string{"cmds.polySpere()"}, 1)
	ds := []diag.Diagnostic{{
		Severity:  diag.SevError,
		Kind:      diag.KindUnknownCommand,
		Pos:       source.LineCol{Line: 1, Col: 6},
		Message:   `unknown command "polySpere"`,
		Suggested: "polySphere",
	}}
	_, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeAll})
	if err != ErrNoFixes {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}

	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeAll, Unsafe: true})
	if err != nil {
		t.Fatalf("Apply unsafe: %v", err)
	}
	if got := res.Snapshot.Line(1); got != "cmds.polySphere()" {
		t.Fatalf("line = %q", got)
	}
}

func TestApplyModeOnceSkipsFuzzyWithoutUnsafe(t *testing.T) {
	snap := source.FromLines([]string{"cmds.polySpere(radius=2)"}, 1)
	ds := []diag.Diagnostic{{
		Severity:  diag.SevError,
		Kind:      diag.KindUnknownCommand,
		Pos:       source.LineCol{Line: 1, Col: 6},
		Message:   `unknown command "polySpere"`,
		Suggested: "polySphere",
	}}

	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeOnce})
	if err != ErrNoFixes {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
	if got := res.Snapshot.Line(1); got != "cmds.polySpere(radius=2)" {
		t.Fatalf("buffer changed without Unsafe: %q", got)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "USE3002-1-6" {
		t.Fatalf("skipped = %+v, want the fuzzy candidate", res.Skipped)
	}

	res, err = Apply(snap, ds, ApplyOptions{Mode: ApplyModeOnce, Unsafe: true})
	if err != nil {
		t.Fatalf("Apply unsafe: %v", err)
	}
	if got := res.Snapshot.Line(1); got != "cmds.polySphere(radius=2)" {
		t.Fatalf("line = %q", got)
	}
}

func TestApplyModeOncePrefersSafeFix(t *testing.T) {
	snap := source.FromLines([]string{
		"cmds.polySpere()",
		"cmds.setAttrs('a.tx', 1)",
	}, 1)
	ds := []diag.Diagnostic{
		{
			Severity:  diag.SevError,
			Kind:      diag.KindUnknownCommand,
			Pos:       source.LineCol{Line: 1, Col: 6},
			Message:   "fuzzy",
			Suggested: "polySphere",
		},
		typoDiag(2, 6, "typo", "setAttr"),
	}
	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].Line != 2 {
		t.Fatalf("applied = %+v, want only the safe fix on line 2", res.Applied)
	}
	if got := res.Snapshot.Line(1); got != "cmds.polySpere()" {
		t.Fatalf("line 1 changed: %q", got)
	}
}

func TestApplyModeIDSelectsOne(t *testing.T) {
	snap := source.FromLines([]string{
		"cmds.setAttrs('a.tx', 1)",
		"cmds.getAttrs('a.tx')",
	}, 1)
	ds := []diag.Diagnostic{
		typoDiag(1, 6, "typo", "setAttr"),
		typoDiag(2, 6, "typo", "getAttr"),
	}
	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeID, TargetID: "USE3003-2-6"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := res.Snapshot.Line(1); got != "cmds.setAttrs('a.tx', 1)" {
		t.Fatalf("line 1 changed: %q", got)
	}
	if got := res.Snapshot.Line(2); got != "cmds.getAttr('a.tx')" {
		t.Fatalf("line 2 = %q, want fixed", got)
	}
}

func TestApplyVerifiesTokenAtPosition(t *testing.T) {
	snap := source.FromLines([]string{"short"}, 1)
	ds := []diag.Diagnostic{typoDiag(1, 40, "typo", "setAttr")}
	res, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeAll})
	if err != ErrNoFixes {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %+v, want one entry", res.Skipped)
	}
}

func TestApplyWithoutSuggestionsReturnsErrNoFixes(t *testing.T) {
	snap := source.FromLines([]string{"x = 1"}, 1)
	ds := []diag.Diagnostic{{
		Severity: diag.SevError,
		Kind:     diag.KindHardSyntax,
		Pos:      source.LineCol{Line: 1, Col: 1},
		Message:  "unterminated string literal",
	}}
	if _, err := Apply(snap, ds, ApplyOptions{Mode: ApplyModeAll}); err != ErrNoFixes {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
}
