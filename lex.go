package wings

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// The lexer turns source text into a token stream with synthetic NEWLINE,
// INDENT, and DEDENT tokens. Logical lines continue across physical lines
// while brackets are open.

type tokKind int

const (
	tokEOF tokKind = iota
	tokNewline
	tokIndent
	tokDedent
	tokIdent
	tokKeyword
	tokInt
	tokFloat
	tokString
	tokOp
)

type token struct {
	kind tokKind
	text string
	line int
	col  int
}

var keywords = map[string]bool{
	"def": true, "class": true, "if": true, "elif": true, "else": true,
	"while": true, "for": true, "in": true, "return": true, "break": true,
	"continue": true, "pass": true, "raise": true, "try": true,
	"except": true, "finally": true, "lambda": true, "import": true,
	"from": true, "as": true, "and": true, "or": true, "not": true,
	"None": true, "True": true, "False": true,
}

// operators in longest-match-first order.
var operators = []string{
	"**", "//=", "//", "<<", ">>", "<=", ">=", "==", "!=",
	"+=", "-=", "*=", "/=", "%=",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "<", ">", "=",
	"(", ")", "[", "]", "{", "}", ",", ":", ".",
}

// lexError is a tokenization failure with a source position.
type lexError struct {
	msg  string
	line int
	col  int
}

func (e *lexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

// decodeSource converts raw source bytes to UTF-8 text, honoring a UTF-8 or
// UTF-16 byte-order mark if present.
func decodeSource(b []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder().Transformer)
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// tokenize produces the token stream for one source text. The returned lines
// are the raw physical lines, used for traceback text.
func tokenize(src string) ([]token, []string, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	var toks []token
	indents := []int{0}
	brackets := 0

	for ln, line := range lines {
		lineno := ln + 1
		pos := 0

		if brackets == 0 {
			for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
				pos++
			}
			if pos >= len(line) || line[pos] == '#' {
				continue
			}
			indent := pos
			top := indents[len(indents)-1]
			if indent > top {
				indents = append(indents, indent)
				toks = append(toks, token{kind: tokIndent, line: lineno, col: pos + 1})
			} else if indent < top {
				for len(indents) > 1 && indents[len(indents)-1] > indent {
					indents = indents[:len(indents)-1]
					toks = append(toks, token{kind: tokDedent, line: lineno, col: pos + 1})
				}
				if indents[len(indents)-1] != indent {
					return nil, lines, &lexError{"unindent does not match any outer indentation level", lineno, pos + 1}
				}
			}
		}

		for pos < len(line) {
			c := line[pos]
			switch {
			case c == ' ' || c == '\t':
				pos++
			case c == '#':
				pos = len(line)
			case c == '"' || c == '\'':
				s, next, err := lexString(line, pos, lineno)
				if err != nil {
					return nil, lines, err
				}
				toks = append(toks, token{kind: tokString, text: s, line: lineno, col: pos + 1})
				pos = next
			case c >= '0' && c <= '9':
				t, next := lexNumber(line, pos, lineno)
				toks = append(toks, t)
				pos = next
			case isIdentStart(c):
				start := pos
				for pos < len(line) && isIdentPart(line[pos]) {
					pos++
				}
				word := line[start:pos]
				kind := tokIdent
				if keywords[word] {
					kind = tokKeyword
				}
				toks = append(toks, token{kind: kind, text: word, line: lineno, col: start + 1})
			default:
				op := ""
				for _, cand := range operators {
					if strings.HasPrefix(line[pos:], cand) {
						op = cand
						break
					}
				}
				if op == "" {
					return nil, lines, &lexError{fmt.Sprintf("unexpected character %q", c), lineno, pos + 1}
				}
				switch op {
				case "(", "[", "{":
					brackets++
				case ")", "]", "}":
					if brackets > 0 {
						brackets--
					}
				}
				toks = append(toks, token{kind: tokOp, text: op, line: lineno, col: pos + 1})
				pos += len(op)
			}
		}

		if brackets == 0 {
			toks = append(toks, token{kind: tokNewline, line: lineno, col: len(line) + 1})
		}
	}

	last := len(lines)
	for len(indents) > 1 {
		indents = indents[:len(indents)-1]
		toks = append(toks, token{kind: tokDedent, line: last, col: 1})
	}
	toks = append(toks, token{kind: tokEOF, line: last, col: 1})
	return toks, lines, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func lexNumber(line string, pos, lineno int) (token, int) {
	start := pos
	kind := tokInt
	for pos < len(line) && line[pos] >= '0' && line[pos] <= '9' {
		pos++
	}
	if pos < len(line) && line[pos] == '.' && pos+1 < len(line) && line[pos+1] >= '0' && line[pos+1] <= '9' {
		kind = tokFloat
		pos++
		for pos < len(line) && line[pos] >= '0' && line[pos] <= '9' {
			pos++
		}
	}
	if pos < len(line) && (line[pos] == 'e' || line[pos] == 'E') {
		mark := pos
		pos++
		if pos < len(line) && (line[pos] == '+' || line[pos] == '-') {
			pos++
		}
		if pos < len(line) && line[pos] >= '0' && line[pos] <= '9' {
			kind = tokFloat
			for pos < len(line) && line[pos] >= '0' && line[pos] <= '9' {
				pos++
			}
		} else {
			pos = mark
		}
	}
	return token{kind: kind, text: line[start:pos], line: lineno, col: start + 1}, pos
}

func lexString(line string, pos, lineno int) (string, int, error) {
	quote := line[pos]
	col := pos + 1
	pos++
	var sb strings.Builder
	for pos < len(line) {
		c := line[pos]
		switch c {
		case quote:
			return sb.String(), pos + 1, nil
		case '\\':
			pos++
			if pos >= len(line) {
				return "", 0, &lexError{"unterminated string literal", lineno, col}
			}
			switch line[pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '\'', '"':
				sb.WriteByte(line[pos])
			default:
				sb.WriteByte('\\')
				sb.WriteByte(line[pos])
			}
			pos++
		default:
			sb.WriteByte(c)
			pos++
		}
	}
	return "", 0, &lexError{"unterminated string literal", lineno, col}
}
