// Package syntax is a lightweight hard-error scanner for the general-purpose
// scripting language the editor hosts. Like most parsers it stops at the
// first hard error of a buffer; the validator recovers the remaining ones by
// masking the offending line and rescanning (see internal/validate).
//
// The scanner tracks bracket nesting, string literals (including triple
// quotes) and comments across physical lines. It does not type-check and it
// does not model indentation-sensitive block structure; errors whose root
// cause spans a masked line and a dependent neighbour may be mis-reported,
// which the bounded rescan budget keeps contained.
package syntax

import (
	"strings"

	"scenelint/internal/source"
)

// Placeholder is the inert statement the validator substitutes for an
// offending line between scan passes. One line in, one line out, so every
// later diagnostic keeps its original line number.
const Placeholder = "pass"

// Error describes a single hard syntax error.
type Error struct {
	Pos source.LineCol
	Msg string
}

type bracket struct {
	ch  byte
	pos source.LineCol
}

type scanner struct {
	lines []string

	stack []bracket

	inString    bool
	triple      bool
	quote       byte
	stringStart source.LineCol
}

// First scans the buffer and reports the first hard error it encounters, in
// discovery order. ok is false when the buffer scans clean.
func First(lines []string) (Error, bool) {
	s := &scanner{lines: lines}
	return s.run()
}

func (s *scanner) run() (Error, bool) {
	for i, line := range s.lines {
		lineNum := uint32(i + 1)
		if err, found := s.scanLine(lineNum, line); found {
			return err, true
		}
		// Одинарная строка не может пережить конец физической строки.
		if s.inString && !s.triple {
			return Error{Pos: s.stringStart, Msg: "unterminated string literal"}, true
		}
	}

	if s.inString && s.triple {
		return Error{Pos: s.stringStart, Msg: "unterminated triple-quoted string"}, true
	}
	if len(s.stack) > 0 {
		open := s.stack[0]
		return Error{
			Pos: open.pos,
			Msg: "unclosed '" + string(open.ch) + "'",
		}, true
	}
	return Error{}, false
}

func (s *scanner) scanLine(lineNum uint32, line string) (Error, bool) {
	depthAtStart := len(s.stack)
	i := 0
	for i < len(line) {
		c := line[i]
		col := uint32(i + 1)

		if s.inString {
			switch {
			case c == '\\' && !s.triple:
				i += 2
				continue
			case c == '\\' && s.triple:
				i += 2
				continue
			case s.triple && c == s.quote && strings.HasPrefix(line[i:], strings.Repeat(string(s.quote), 3)):
				s.inString = false
				s.triple = false
				i += 3
				continue
			case !s.triple && c == s.quote:
				s.inString = false
				i++
				continue
			default:
				i++
				continue
			}
		}

		switch c {
		case '#':
			// Комментарий до конца строки.
			i = len(line)
		case '\'', '"':
			s.inString = true
			s.quote = c
			s.stringStart = source.LineCol{Line: lineNum, Col: col}
			if strings.HasPrefix(line[i:], strings.Repeat(string(c), 3)) {
				s.triple = true
				i += 3
			} else {
				s.triple = false
				i++
			}
		case '(', '[', '{':
			s.stack = append(s.stack, bracket{ch: c, pos: source.LineCol{Line: lineNum, Col: col}})
			i++
		case ')', ']', '}':
			if len(s.stack) == 0 {
				return Error{
					Pos: source.LineCol{Line: lineNum, Col: col},
					Msg: "unmatched '" + string(c) + "'",
				}, true
			}
			open := s.stack[len(s.stack)-1]
			if closerFor(open.ch) != c {
				return Error{
					Pos: source.LineCol{Line: lineNum, Col: col},
					Msg: "mismatched '" + string(c) + "'; expected '" + string(closerFor(open.ch)) + "'",
				}, true
			}
			s.stack = s.stack[:len(s.stack)-1]
			i++
		default:
			i++
		}
	}

	// Проверка заголовка блока имеет смысл только для логически
	// завершённой строки (скобки не переносят её на следующую).
	if depthAtStart == 0 && len(s.stack) == 0 && !s.inString {
		if err, found := checkBlockHeader(lineNum, line); found {
			return err, true
		}
	}
	return Error{}, false
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}

var blockKeywords = map[string]bool{
	"def": true, "class": true, "if": true, "elif": true, "else": true,
	"for": true, "while": true, "try": true, "except": true,
	"finally": true, "with": true,
}

// checkBlockHeader flags block-introducing statements that lack the ':'
// opening their suite, e.g. "def f(x)" or "else". The colon does not have to
// be trailing: one-line compound forms like "if x: y = 1" are legal.
func checkBlockHeader(lineNum uint32, line string) (Error, bool) {
	code := stripComment(line)
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Error{}, false
	}

	word := firstWord(trimmed)
	if !blockKeywords[word] {
		return Error{}, false
	}
	if hasTopLevelColon(trimmed) {
		return Error{}, false
	}
	indent := uint32(len(line) - len(strings.TrimLeft(line, " \t")))
	return Error{
		Pos: source.LineCol{Line: lineNum, Col: indent + 1},
		Msg: "'" + word + "' statement is missing the ':'",
	}, true
}

// hasTopLevelColon reports whether code contains a ':' outside string
// literals and brackets. Двоеточия внутри скобок (аннотации, словари,
// срезы) заголовок не открывают.
func hasTopLevelColon(code string) bool {
	var inStr bool
	var quote byte
	depth := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if inStr {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				inStr = false
			}
			continue
		}
		switch c {
		case '\'', '"':
			inStr = true
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// stripComment removes a trailing comment, honouring string literals.
func stripComment(line string) string {
	var inStr bool
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inStr {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				inStr = false
			}
			continue
		}
		switch c {
		case '\'', '"':
			inStr = true
			quote = c
		case '#':
			return line[:i]
		}
	}
	return line
}

func firstWord(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
			continue
		}
		return s[:i]
	}
	return s
}
