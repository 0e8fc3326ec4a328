package validate

import (
	"fmt"
	"strings"

	"scenelint/internal/diag"
	"scenelint/internal/registry"
	"scenelint/internal/resolve"
	"scenelint/internal/source"
)

// macroKeywords are macro-language words that start statements without being
// commands; they never produce an unknown-command diagnostic.
var macroKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "break": true,
	"continue": true, "return": true, "proc": true, "global": true,
	"string": true, "int": true, "float": true, "vector": true,
	"matrix": true, "source": true, "catch": true,
}

// checkMacroCall validates the macro-language bridge: the command demands a
// literal string of macro code as its first argument, and the code inside
// the literal gets a shallow syntax check of its own.
func (v *Validator) checkMacroCall(r diag.Reporter, lineNum uint32, call callSite, name string) {
	pos := source.LineCol{Line: lineNum, Col: call.nameCol}

	if len(call.args) == 0 || !call.args[0].isString {
		diag.ReportError(r, diag.KindMacroSyntax, pos,
			fmt.Sprintf("%q requires a literal string of macro code as its first argument", name))
		return
	}

	macroNS, ok := v.reg.Namespace(registry.TagMacro)
	if !ok {
		return
	}
	arg := call.args[0]
	// +1 за открывающую кавычку: колонки указывают внутрь литерала.
	v.checkMacroSource(r, lineNum, arg.col+1, arg.unquoted, macroNS)
}

// checkMacroSource runs the macro-language checks over one literal of macro
// code: balanced quoting and known leading commands per statement.
func (v *Validator) checkMacroSource(
	r diag.Reporter,
	lineNum uint32,
	baseCol uint32,
	src string,
	macroNS *registry.Namespace,
) {
	if strings.Count(src, `\"`) == 0 && strings.Count(src, `"`)%2 == 1 {
		diag.ReportError(r, diag.KindMacroSyntax,
			source.LineCol{Line: lineNum, Col: baseCol},
			"unbalanced quote inside macro code")
		return
	}

	for _, stmt := range splitMacroStatements(src) {
		word, off := firstMacroWord(stmt.text)
		if word == "" || macroKeywords[word] {
			continue
		}
		pos := source.LineCol{Line: lineNum, Col: baseCol + uint32(stmt.off+off)}

		res := resolve.Command(macroNS, word)
		switch res.Status {
		case resolve.StatusValid:
		case resolve.StatusTypo:
			r.Report(diag.KindMacroSyntax, diag.SevError, pos,
				fmt.Sprintf("unknown macro command %q; did you mean %q?", word, res.Canonical),
				res.Canonical)
		case resolve.StatusSuggestion:
			r.Report(diag.KindMacroSyntax, diag.SevError, pos,
				fmt.Sprintf("unknown macro command %q; closest match is %q", word, res.Canonical),
				res.Canonical)
		default:
			diag.ReportError(r, diag.KindMacroSyntax, pos,
				fmt.Sprintf("unknown macro command %q", word))
		}
	}
}

type macroStmt struct {
	text string
	off  int // byte offset of the statement inside the literal
}

// splitMacroStatements splits macro code on top-level semicolons, honouring
// embedded (escaped) quotes.
func splitMacroStatements(src string) []macroStmt {
	var stmts []macroStmt
	start := 0
	inStr := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\':
			i++
		case c == '"':
			inStr = !inStr
		case c == ';' && !inStr:
			stmts = append(stmts, macroStmt{text: src[start:i], off: start})
			start = i + 1
		}
	}
	if start < len(src) {
		stmts = append(stmts, macroStmt{text: src[start:], off: start})
	}
	return stmts
}

// firstMacroWord returns the leading command word of a macro statement and
// its offset. Statements starting with a variable ($x = ...) or a flag
// yield "".
func firstMacroWord(stmt string) (string, int) {
	i := 0
	for i < len(stmt) && (stmt[i] == ' ' || stmt[i] == '\t') {
		i++
	}
	if i >= len(stmt) || !isIdentStart(stmt[i]) {
		return "", 0
	}
	start := i
	for i < len(stmt) && isIdentByte(stmt[i]) {
		i++
	}
	return stmt[start:i], start
}
