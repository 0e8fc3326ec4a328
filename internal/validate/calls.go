package validate

import (
	"strings"
)

// argInfo is one top-level argument of a call site.
type argInfo struct {
	text     string // raw argument text, trimmed
	isString bool   // single- or double-quoted literal
	unquoted string // literal content when isString
	col      uint32 // 1-based column of the first argument character
}

// assignInfo describes the assignment target of a call, when the call's
// result is captured.
type assignInfo struct {
	present bool
	target  string
	single  bool // single bare identifier, no unpacking, no subscription
}

// callSite is one command invocation found on a physical line.
type callSite struct {
	qualifier string // dotted prefix, e.g. "cmds" or "maya.cmds"; "" when bare
	qualCol   uint32 // 1-based column of the qualifier start
	name      string
	nameCol   uint32 // 1-based column of the command name
	args      []argInfo
	closed    bool // matching ')' found on this line
	indexed   bool // call result is subscripted, e.g. polySphere(...)[0]
	assign    assignInfo
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// defKeywords introduce names that look like calls but are definitions.
var defKeywords = map[string]bool{"def": true, "class": true}

// scanCalls extracts every command invocation from one physical line,
// skipping string literals and comments. Nested calls are reported too.
func scanCalls(line string) []callSite {
	assign := parseAssign(line)

	var calls []callSite
	var prevWord string

	i := 0
	for i < len(line) {
		c := line[i]

		switch {
		case c == '#':
			return calls
		case c == '\'' || c == '"':
			i = skipString(line, i)
		case isIdentStart(c):
			chain, end := readDottedChain(line, i)
			after := skipSpaces(line, end)
			if after < len(line) && line[after] == '(' && !defKeywords[prevWord] {
				call := buildCall(line, chain, i, after)
				call.assign = assign
				calls = append(calls, call)
			}
			prevWord = chain[len(chain)-1].text
			i = end
		default:
			i++
		}
	}
	return calls
}

type chainSeg struct {
	text string
	col  uint32 // 1-based
}

// readDottedChain reads ident(.ident)* starting at i and returns the
// segments plus the index just past the chain.
func readDottedChain(line string, i int) ([]chainSeg, int) {
	var segs []chainSeg
	for {
		start := i
		for i < len(line) && isIdentByte(line[i]) {
			i++
		}
		segs = append(segs, chainSeg{text: line[start:i], col: uint32(start + 1)})
		if i < len(line) && line[i] == '.' && i+1 < len(line) && isIdentStart(line[i+1]) {
			i++
			continue
		}
		return segs, i
	}
}

func buildCall(line string, chain []chainSeg, chainStart, openParen int) callSite {
	last := chain[len(chain)-1]
	call := callSite{
		name:    last.text,
		nameCol: last.col,
	}
	if len(chain) > 1 {
		parts := make([]string, 0, len(chain)-1)
		for _, seg := range chain[:len(chain)-1] {
			parts = append(parts, seg.text)
		}
		call.qualifier = strings.Join(parts, ".")
		call.qualCol = uint32(chainStart + 1)
	}
	call.args, call.closed = parseArgs(line, openParen)
	if call.closed {
		closeIdx := matchingClose(line, openParen)
		rest := skipSpaces(line, closeIdx+1)
		if rest < len(line) && line[rest] == '[' {
			call.indexed = true
		}
	}
	return call
}

// parseArgs splits the argument list that starts at the '(' at openParen
// into top-level arguments. closed is false when the ')' is not on this
// line (the statement continues past it).
func parseArgs(line string, openParen int) ([]argInfo, bool) {
	args := make([]argInfo, 0, 4)
	depth := 1
	argStart := openParen + 1

	flush := func(end int) {
		raw := line[argStart:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return
		}
		lead := argStart + (len(raw) - len(strings.TrimLeft(raw, " \t")))
		args = append(args, makeArg(trimmed, uint32(lead+1)))
	}

	i := openParen + 1
	for i < len(line) {
		c := line[i]
		switch c {
		case '\'', '"':
			i = skipString(line, i)
			continue
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				flush(i)
				return args, true
			}
		case ',':
			if depth == 1 {
				flush(i)
				argStart = i + 1
			}
		case '#':
			return args, false
		}
		i++
	}
	return args, false
}

func makeArg(text string, col uint32) argInfo {
	arg := argInfo{text: text, col: col}
	if len(text) >= 2 {
		q := text[0]
		if (q == '\'' || q == '"') && text[len(text)-1] == q {
			inner := text[1 : len(text)-1]
			// Конкатенации литералом не считаем; экранированные кавычки — ок.
			if !containsUnescaped(inner, q) {
				arg.isString = true
				arg.unquoted = inner
			}
		}
	}
	return arg
}

func containsUnescaped(s string, q byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return true
		}
	}
	return false
}

// matchingClose returns the index of the ')' matching the '(' at openParen,
// or len(line) when it is not on this line.
func matchingClose(line string, openParen int) int {
	depth := 0
	for i := openParen; i < len(line); i++ {
		switch line[i] {
		case '\'', '"':
			i = skipString(line, i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(line)
}

// skipString advances past the string literal opening at index i.
func skipString(line string, i int) int {
	quote := line[i]
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line string, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

// parseAssign inspects the statement for a simple top-level assignment and
// classifies its target.
func parseAssign(line string) assignInfo {
	depth := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case '\'', '"':
			i = skipString(line, i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '#':
			return assignInfo{}
		case '=':
			if depth != 0 {
				continue
			}
			// ==, !=, <=, >=, а также += и прочие augmented-формы
			if i+1 < len(line) && line[i+1] == '=' {
				i++
				continue
			}
			if i > 0 && strings.ContainsRune("=!<>+-*/%&|^", rune(line[i-1])) {
				continue
			}
			target := strings.TrimSpace(line[:i])
			return assignInfo{
				present: true,
				target:  target,
				single:  isIdentifier(target),
			}
		}
	}
	return assignInfo{}
}
