// Package validate runs the diagnostic rules over a buffer snapshot: a fixed,
// ordered set of registry-backed usage checks plus a bounded mask-and-reparse
// loop that recovers every hard syntax error a single parse would hide.
package validate

import (
	"fmt"
	"strings"

	"scenelint/internal/diag"
	"scenelint/internal/registry"
	"scenelint/internal/resolve"
	"scenelint/internal/source"
	"scenelint/internal/syntax"
)

// MaxSyntaxPasses bounds the mask-and-reparse loop. Tunable; it is the only
// latency guard the loop has, since passes are never aborted mid-flight.
const MaxSyntaxPasses = 10

// DefaultMaxDiagnostics bounds the size of one published diagnostic set.
const DefaultMaxDiagnostics = 100

// Options configures a Validator.
type Options struct {
	// ActiveNamespace is the tag used to resolve unqualified command tokens.
	// Defaults to the primary procedural API.
	ActiveNamespace string
	MaxDiagnostics  int
	MaxSyntaxPasses int
}

// Validator checks buffer snapshots against the command registry. It holds
// no per-buffer state: Validate is a pure function of the snapshot and the
// (immutable) registry, so one Validator may serve many buffers.
type Validator struct {
	reg    *registry.Registry
	active *registry.Namespace
	opts   Options
}

func New(reg *registry.Registry, opts Options) *Validator {
	if opts.ActiveNamespace == "" {
		opts.ActiveNamespace = registry.TagPrimary
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if opts.MaxSyntaxPasses <= 0 {
		opts.MaxSyntaxPasses = MaxSyntaxPasses
	}
	active, _ := reg.Namespace(opts.ActiveNamespace)
	return &Validator{reg: reg, active: active, opts: opts}
}

// Validate runs both passes over the snapshot and returns the diagnostics in
// publication order: line, then column, then kind priority. It never raises;
// if analysis breaks down it degrades to whatever partial results the rule
// pass produced plus a single could-not-analyze marker.
func (v *Validator) Validate(snap source.Snapshot) (out []diag.Diagnostic) {
	bag := diag.NewBag(v.opts.MaxDiagnostics)
	defer func() {
		if r := recover(); r != nil {
			bag.Add(diag.NewWarning(
				diag.KindAnalysisIncomplete,
				source.LineCol{Line: 1, Col: 1},
				"could not fully analyze the buffer",
			))
		}
		bag.Dedup()
		bag.Sort()
		out = bag.Items()
	}()

	v.rulePass(bag, snap)
	v.syntaxPass(bag, snap)
	return
}

// rulePass walks the buffer line by line, tracking import bindings and
// checking every call site. Several checks may fire on one line.
func (v *Validator) rulePass(bag *diag.Bag, snap source.Snapshot) {
	r := diag.BagReporter{Bag: bag}
	imported := make(map[string]*registry.Namespace)
	missingSeen := make(map[string]bool)

	lines := snap.Lines()
	for i, line := range lines {
		lineNum := uint32(i + 1)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if binds, isImport := parseImport(trimmed); isImport {
			for _, b := range binds {
				if ns, ok := v.reg.ByModule(b.module); ok {
					imported[b.alias] = ns
				}
			}
			continue
		}
		for _, call := range scanCalls(line) {
			v.checkCall(r, lines, lineNum, call, imported, missingSeen)
		}
	}
}

func (v *Validator) checkCall(
	r diag.Reporter,
	lines []string,
	lineNum uint32,
	call callSite,
	imported map[string]*registry.Namespace,
	missingSeen map[string]bool,
) {
	qualified := call.qualifier != ""

	var ns *registry.Namespace
	if qualified {
		ns = imported[call.qualifier]
		if ns == nil {
			known, ok := v.reg.ByAlias(call.qualifier)
			if !ok {
				known, ok = v.reg.ByModule(call.qualifier)
			}
			if !ok {
				// Чужой объект — не наша поляна.
				return
			}
			ns = known
			if !missingSeen[ns.Tag()] {
				missingSeen[ns.Tag()] = true
				r.Report(diag.KindMissingImport, diag.SevError,
					source.LineCol{Line: lineNum, Col: call.qualCol},
					fmt.Sprintf("%q is used before %s is imported", call.qualifier, ns.Module()),
					importSuggestion(ns, call.qualifier),
				)
			}
		}
	} else {
		ns = v.active
		if ns == nil {
			return
		}
	}

	name := call.name
	res := resolve.Command(ns, name)
	canonical := name
	pos := source.LineCol{Line: lineNum, Col: call.nameCol}

	switch res.Status {
	case resolve.StatusValid:
		// проверки формы ниже
	case resolve.StatusTypo:
		r.Report(diag.KindKnownTypo, diag.SevError, pos,
			fmt.Sprintf("unknown command %q; did you mean %q?", name, res.Canonical),
			res.Canonical)
		canonical = res.Canonical
	case resolve.StatusSuggestion:
		if !qualified {
			// Голое имя может быть функцией пользователя — не гадаем.
			return
		}
		r.Report(diag.KindUnknownCommand, diag.SevError, pos,
			fmt.Sprintf("unknown command %q in %s; closest match is %q (score %.2f)",
				name, ns.Tag(), res.Canonical, res.Score),
			res.Canonical)
		canonical = res.Canonical
	default:
		if !qualified {
			return
		}
		diag.ReportError(r, diag.KindUnknownCommand, pos,
			fmt.Sprintf("unknown command %q in namespace %s", name, ns.Tag()))
		return
	}

	v.checkShape(r, lines, lineNum, call, ns, canonical)
}

func importSuggestion(ns *registry.Namespace, alias string) string {
	if alias == ns.Module() {
		return "import " + ns.Module()
	}
	return "import " + ns.Module() + " as " + alias
}

// syntaxPass recovers every hard syntax error of the buffer, up to the pass
// budget. A single scan stops at the first error, so after recording it the
// offending line is replaced with an inert placeholder of identical line
// count and the buffer is rescanned. Line numbers therefore never shift.
func (v *Validator) syntaxPass(bag *diag.Bag, snap source.Snapshot) {
	lines := append([]string(nil), snap.Lines()...)

	var last source.LineCol
	for pass := 0; pass < v.opts.MaxSyntaxPasses; pass++ {
		serr, found := syntax.First(lines)
		if !found {
			return
		}
		idx := int(serr.Pos.Line) - 1
		if idx < 0 || idx >= len(lines) {
			return
		}
		masked := neutralize(lines[idx])
		if lines[idx] == masked {
			// Линия уже замаскирована, а ошибка осталась — дальше крутиться
			// бессмысленно.
			return
		}
		bag.Add(diag.NewError(diag.KindHardSyntax, serr.Pos, serr.Msg))
		last = serr.Pos
		lines[idx] = masked
	}

	if _, found := syntax.First(lines); found {
		bag.Add(diag.NewWarning(diag.KindAnalysisIncomplete, last,
			fmt.Sprintf("stopped after %d syntax passes; additional errors may exist",
				v.opts.MaxSyntaxPasses)))
	}
}

// neutralize replaces a line's content with an inert no-op, preserving the
// original indentation so block structure around it stays plausible.
func neutralize(line string) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	return indent + syntax.Placeholder
}
