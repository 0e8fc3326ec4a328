package validate

import (
	"fmt"
	"strings"

	"scenelint/internal/diag"
	"scenelint/internal/registry"
	"scenelint/internal/source"
)

// checkShape runs the usage-shape rules for one resolved call. name is the
// canonical command (typos are checked against their canonical form so a
// misspelled setAttr still gets its arity checked).
func (v *Validator) checkShape(
	r diag.Reporter,
	lines []string,
	lineNum uint32,
	call callSite,
	ns *registry.Namespace,
	name string,
) {
	pos := source.LineCol{Line: lineNum, Col: call.nameCol}

	if ns.PairReturning(name) && call.assign.present && call.assign.single && !call.indexed {
		r.Report(diag.KindUsageShape, diag.SevWarning, pos,
			fmt.Sprintf("%q returns a (transform, shape) pair but %q captures it as a single value; index the result or unpack both",
				name, call.assign.target), "")
	}

	if minArgs, ok := ns.MinArgs(name); ok && call.closed && len(call.args) < minArgs {
		msg := fmt.Sprintf("%q requires at least %d arguments, got %d", name, minArgs, len(call.args))
		if name == "setAttr" && len(call.args) == 1 {
			msg = `"setAttr" is invoked without a value argument`
		}
		diag.ReportError(r, diag.KindUsageShape, pos, msg)
	}

	if idxs, ok := ns.AttrPathArgs(name); ok && call.closed {
		if len(idxs) == 2 {
			v.checkConnective(r, lineNum, call, name, idxs)
		} else {
			for _, idx := range idxs {
				if idx >= len(call.args) {
					continue
				}
				arg := call.args[idx]
				if arg.isString && !strings.Contains(arg.unquoted, ".") {
					diag.ReportError(r, diag.KindUsageShape,
						source.LineCol{Line: lineNum, Col: arg.col},
						fmt.Sprintf("%q expects an attribute path like \"node.attr\"; got %q", name, arg.unquoted))
				}
			}
		}
	}

	if ns.Tag() == registry.TagNative && ns.Nullable(name) &&
		call.assign.present && call.assign.single {
		if !hasNullGuard(lines, int(lineNum), call.assign.target) {
			r.Report(diag.KindUsageShape, diag.SevWarning, pos,
				fmt.Sprintf("%q may yield an invalid handle; check %q before using it",
					name, call.assign.target), "")
		}
	}

	if ns.RequiresLiteralString(name) {
		v.checkMacroCall(r, lineNum, call, name)
	}
}

// checkConnective validates a command that links two attribute paths, like
// connectAttr: both sides must be dotted paths.
func (v *Validator) checkConnective(
	r diag.Reporter,
	lineNum uint32,
	call callSite,
	name string,
	idxs []int,
) {
	type side struct {
		arg argInfo
		bad bool
	}
	var sides []side
	for _, idx := range idxs {
		if idx >= len(call.args) {
			return // неполный вызов; про арность скажет min_args
		}
		arg := call.args[idx]
		if !arg.isString {
			continue // про переменную ничего не знаем
		}
		sides = append(sides, side{arg: arg, bad: !strings.Contains(arg.unquoted, ".")})
	}
	for _, s := range sides {
		if s.bad {
			diag.ReportError(r, diag.KindUsageShape,
				source.LineCol{Line: lineNum, Col: s.arg.col},
				fmt.Sprintf("%q links two attribute paths; %q is a bare object reference, not an attribute path",
					name, s.arg.unquoted))
		}
	}
}

// hasNullGuard reports whether any later line checks the target for
// validity before use.
func hasNullGuard(lines []string, afterLine int, target string) bool {
	patterns := []string{
		target + " is None",
		target + " is not None",
		"if " + target,
		"if not " + target,
	}
	for i := afterLine; i < len(lines); i++ {
		for _, p := range patterns {
			if strings.Contains(lines[i], p) {
				return true
			}
		}
	}
	return false
}
