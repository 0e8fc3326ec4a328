package validate

import (
	"strings"
	"testing"

	"scenelint/internal/diag"
	"scenelint/internal/registry"
	"scenelint/internal/source"
	"scenelint/internal/testkit"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	return New(registry.Default(), Options{})
}

func validateText(t *testing.T, text string) []diag.Diagnostic {
	t.Helper()
	return newValidator(t).Validate(source.New(text, 1))
}

func ofKind(diags []diag.Diagnostic, kind diag.Kind) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func TestKnownTypoUnqualified(t *testing.T) {
	diags := validateText(t, `setAttrs("node.tx", 10)`)

	typos := ofKind(diags, diag.KindKnownTypo)
	if len(typos) != 1 {
		t.Fatalf("expected 1 known-typo diagnostic, got %d (%+v)", len(typos), diags)
	}
	d := typos[0]
	if d.Suggested != "setAttr" {
		t.Fatalf("expected suggested replacement setAttr, got %q", d.Suggested)
	}
	if d.Pos.Line != 1 {
		t.Fatalf("expected line 1, got %d", d.Pos.Line)
	}
	if d.Severity != diag.SevError {
		t.Fatalf("known typo must be an error")
	}
}

func TestPairReturningCapturedAsSingleValue(t *testing.T) {
	diags := validateText(t, `sphere = polySphere(radius=5)`)

	shapes := ofKind(diags, diag.KindUsageShape)
	if len(shapes) != 1 {
		t.Fatalf("expected 1 usage-shape diagnostic, got %d (%+v)", len(shapes), diags)
	}
	if !strings.Contains(shapes[0].Message, "pair") {
		t.Fatalf("unexpected message %q", shapes[0].Message)
	}
}

func TestPairReturningIndexedOrUnpackedIsClean(t *testing.T) {
	for _, text := range []string{
		`sphere = polySphere(radius=5)[0]`,
		`transform, shape = polySphere(radius=5)`,
		`polySphere(radius=5)`,
	} {
		diags := validateText(t, text)
		if shapes := ofKind(diags, diag.KindUsageShape); len(shapes) != 0 {
			t.Errorf("%q: expected no usage-shape diagnostics, got %+v", text, shapes)
		}
	}
}

func TestValidCommandsEmitNoUnknownDiagnostics(t *testing.T) {
	reg := registry.Default()
	primary, _ := reg.Namespace(registry.TagPrimary)
	v := newValidator(t)

	for _, name := range primary.Commands() {
		text := "import maya.cmds as cmds\ncmds." + name + "()"
		diags := v.Validate(source.New(text, 1))
		for _, d := range diags {
			if d.Kind == diag.KindUnknownCommand || d.Kind == diag.KindKnownTypo {
				t.Fatalf("%s: unexpected %s diagnostic: %s", name, d.Kind.Slug(), d.Message)
			}
		}
	}
}

func TestMissingImportBeforeFirstUse(t *testing.T) {
	diags := validateText(t, "cmds.ls(selection=True)\ncmds.select(clear=True)")

	missing := ofKind(diags, diag.KindMissingImport)
	if len(missing) != 1 {
		t.Fatalf("expected exactly 1 missing-import diagnostic, got %d", len(missing))
	}
	if missing[0].Pos.Line != 1 {
		t.Fatalf("missing-import must point at the first use, got line %d", missing[0].Pos.Line)
	}
	if !strings.Contains(missing[0].Suggested, "import maya.cmds") {
		t.Fatalf("unexpected suggestion %q", missing[0].Suggested)
	}
}

func TestImportSilencesMissingImport(t *testing.T) {
	for _, text := range []string{
		"import maya.cmds as cmds\ncmds.ls()",
		"from maya import cmds\ncmds.ls()",
		"import maya.cmds\nmaya.cmds.ls()",
	} {
		diags := validateText(t, text)
		if missing := ofKind(diags, diag.KindMissingImport); len(missing) != 0 {
			t.Errorf("%q: unexpected missing-import: %+v", text, missing)
		}
	}
}

func TestUnknownCommandWithFuzzySuggestion(t *testing.T) {
	diags := validateText(t, "import maya.cmds as cmds\ncmds.polySpere(radius=2)")

	unknown := ofKind(diags, diag.KindUnknownCommand)
	if len(unknown) != 1 {
		t.Fatalf("expected 1 unknown-command diagnostic, got %d (%+v)", len(unknown), diags)
	}
	if unknown[0].Suggested != "polySphere" {
		t.Fatalf("expected polySphere suggestion, got %q", unknown[0].Suggested)
	}
}

func TestUnknownBareNameIsIgnored(t *testing.T) {
	diags := validateText(t, "my_helper(1, 2)")
	if len(diags) != 0 {
		t.Fatalf("bare user functions must not be flagged, got %+v", diags)
	}
}

func TestSetAttrWithoutValue(t *testing.T) {
	diags := validateText(t, "import maya.cmds as cmds\ncmds.setAttr(\"node.tx\")")

	shapes := ofKind(diags, diag.KindUsageShape)
	if len(shapes) != 1 {
		t.Fatalf("expected 1 usage-shape diagnostic, got %d (%+v)", len(shapes), diags)
	}
	if !strings.Contains(shapes[0].Message, "value") {
		t.Fatalf("unexpected message %q", shapes[0].Message)
	}
}

func TestBareObjectWhereAttributePathRequired(t *testing.T) {
	diags := validateText(t, "import maya.cmds as cmds\ncmds.getAttr(\"node\")")

	shapes := ofKind(diags, diag.KindUsageShape)
	if len(shapes) != 1 {
		t.Fatalf("expected 1 usage-shape diagnostic, got %d (%+v)", len(shapes), diags)
	}
	if !strings.Contains(shapes[0].Message, "attribute path") {
		t.Fatalf("unexpected message %q", shapes[0].Message)
	}
}

func TestConnectiveWithOneBadSide(t *testing.T) {
	diags := validateText(t, "import maya.cmds as cmds\ncmds.connectAttr(\"a.output\", \"b\")")

	shapes := ofKind(diags, diag.KindUsageShape)
	if len(shapes) != 1 {
		t.Fatalf("expected 1 usage-shape diagnostic, got %d (%+v)", len(shapes), diags)
	}
	if !strings.Contains(shapes[0].Message, "links two attribute paths") {
		t.Fatalf("unexpected message %q", shapes[0].Message)
	}
}

func TestConnectiveCleanWhenBothSidesQualify(t *testing.T) {
	diags := validateText(t, "import maya.cmds as cmds\ncmds.connectAttr(\"a.output\", \"b.input\")")
	if shapes := ofKind(diags, diag.KindUsageShape); len(shapes) != 0 {
		t.Fatalf("expected no usage-shape diagnostics, got %+v", shapes)
	}
}

func TestNullableHandleAdvisory(t *testing.T) {
	text := "import maya.api.OpenMaya as om\nsel = om.MSelectionList()\nprint(sel)"
	diags := validateText(t, text)

	shapes := ofKind(diags, diag.KindUsageShape)
	if len(shapes) != 1 {
		t.Fatalf("expected 1 advisory, got %d (%+v)", len(shapes), diags)
	}
	if shapes[0].Severity != diag.SevWarning {
		t.Fatalf("advisory must be a warning")
	}

	guarded := "import maya.api.OpenMaya as om\nsel = om.MSelectionList()\nif not sel:\n    pass"
	diags = validateText(t, guarded)
	if shapes := ofKind(diags, diag.KindUsageShape); len(shapes) != 0 {
		t.Fatalf("guarded handle must not be flagged, got %+v", shapes)
	}
}

func TestMacroCallRequiresLiteralString(t *testing.T) {
	diags := validateText(t, "import maya.mel as mel\nmel.eval(command)")

	macro := ofKind(diags, diag.KindMacroSyntax)
	if len(macro) != 1 {
		t.Fatalf("expected 1 macro-syntax diagnostic, got %d (%+v)", len(macro), diags)
	}
	if !strings.Contains(macro[0].Message, "literal string") {
		t.Fatalf("unexpected message %q", macro[0].Message)
	}
}

func TestMacroSourceChecks(t *testing.T) {
	clean := "import maya.mel as mel\nmel.eval(\"sphere -r 5\")"
	if macro := ofKind(validateText(t, clean), diag.KindMacroSyntax); len(macro) != 0 {
		t.Fatalf("clean macro code flagged: %+v", macro)
	}

	typo := "import maya.mel as mel\nmel.eval(\"setAttrs node.tx 10\")"
	macro := ofKind(validateText(t, typo), diag.KindMacroSyntax)
	if len(macro) != 1 {
		t.Fatalf("expected 1 macro-syntax diagnostic, got %d", len(macro))
	}
	if macro[0].Suggested != "setAttr" {
		t.Fatalf("expected setAttr suggestion, got %q", macro[0].Suggested)
	}
}

func TestHardSyntaxSingleError(t *testing.T) {
	diags := validateText(t, "def f(x\n    return x")

	hard := ofKind(diags, diag.KindHardSyntax)
	if len(hard) != 1 {
		t.Fatalf("expected exactly 1 hard-syntax diagnostic, got %d (%+v)", len(hard), diags)
	}
	if hard[0].Pos.Line != 1 {
		t.Fatalf("expected the error at line 1, got %d", hard[0].Pos.Line)
	}

	// После исправления строки 1 повторный прогон чистый.
	fixed := validateText(t, "def f(x):\n    return x")
	if hard := ofKind(fixed, diag.KindHardSyntax); len(hard) != 0 {
		t.Fatalf("balanced buffer still reports hard-syntax: %+v", hard)
	}
}

func TestHardSyntaxAcceptsOneLineCompoundStatements(t *testing.T) {
	text := strings.Join([]string{
		"import maya.cmds as cmds",
		"if cmds.objExists('pSphere1'): cmds.delete('pSphere1')",
		"for i in range(3): cmds.polySphere()",
		"while pending: step()",
	}, "\n")
	diags := validateText(t, text)

	if hard := ofKind(diags, diag.KindHardSyntax); len(hard) != 0 {
		t.Fatalf("one-line compound statements flagged as hard syntax: %+v", hard)
	}
}

func TestHardSyntaxMultiPassFindsIndependentErrors(t *testing.T) {
	text := strings.Join([]string{
		"s = 'open",
		"y = 2",
		"if x",
		"z = 3",
		"t = 'also",
	}, "\n")
	diags := validateText(t, text)

	hard := ofKind(diags, diag.KindHardSyntax)
	if len(hard) != 3 {
		t.Fatalf("expected 3 hard-syntax diagnostics, got %d (%+v)", len(hard), hard)
	}
	gotLines := map[uint32]bool{}
	for _, d := range hard {
		gotLines[d.Pos.Line] = true
	}
	for _, want := range []uint32{1, 3, 5} {
		if !gotLines[want] {
			t.Fatalf("expected a diagnostic on line %d, got %+v", want, hard)
		}
	}
}

func TestHardSyntaxBudgetExhaustion(t *testing.T) {
	var lines []string
	for i := 0; i < 12; i++ {
		lines = append(lines, "x = 1)")
	}
	v := New(registry.Default(), Options{MaxDiagnostics: 64})
	diags := v.Validate(source.FromLines(lines, 1))

	hard := ofKind(diags, diag.KindHardSyntax)
	if len(hard) != MaxSyntaxPasses {
		t.Fatalf("expected %d hard-syntax diagnostics, got %d", MaxSyntaxPasses, len(hard))
	}
	marker := ofKind(diags, diag.KindAnalysisIncomplete)
	if len(marker) != 1 {
		t.Fatalf("expected the additional-errors marker, got %d (%+v)", len(marker), diags)
	}
	if !strings.Contains(marker[0].Message, "additional errors may exist") {
		t.Fatalf("unexpected marker message %q", marker[0].Message)
	}
}

func TestDiagnosticsAreOrderedAndDeterministic(t *testing.T) {
	text := strings.Join([]string{
		"cmds.setAttrs(\"node.tx\", 1)",
		"bad = (",
		"sphere = polySphere(radius=1)",
	}, "\n")

	first := validateText(t, text)
	for i := 0; i < 10; i++ {
		again := validateText(t, text)
		if len(again) != len(first) {
			t.Fatalf("diagnostic count changed between runs")
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("diagnostic %d changed between runs: %+v vs %+v", j, first[j], again[j])
			}
		}
	}

	for i := 1; i < len(first); i++ {
		if first[i].Pos.Line < first[i-1].Pos.Line {
			t.Fatalf("diagnostics are not line-ordered: %+v", first)
		}
	}
}

func TestCleanScriptPassesInvariants(t *testing.T) {
	text := strings.Join([]string{
		"import maya.cmds as cmds",
		"",
		"def build(radius):",
		"    transform, shape = cmds.polySphere(radius=radius)",
		"    cmds.setAttr(transform + '.ty', radius)",
		"    return transform",
	}, "\n")
	snap := source.New(text, 1)
	diags := newValidator(t).Validate(snap)

	if err := testkit.MustNoErrors(diags); err != nil {
		t.Fatalf("%v", err)
	}
	if err := testkit.CheckDiagnosticInvariants(snap, diags); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestMultipleChecksMayFireOnOneLine(t *testing.T) {
	// Отсутствующий импорт + пропущенное значение на одной строке.
	diags := validateText(t, "cmds.setAttr(\"node.tx\")")

	if len(ofKind(diags, diag.KindMissingImport)) != 1 {
		t.Fatalf("expected a missing-import diagnostic: %+v", diags)
	}
	if len(ofKind(diags, diag.KindUsageShape)) != 1 {
		t.Fatalf("expected a usage-shape diagnostic: %+v", diags)
	}
}
