package pysrc

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// SourceExt is the extension of textual Python source files; only these are
// parsed and walked, everything else is bundled opaque.
const SourceExt = ".py"

// ParseFile reads and parses a Python source file.
func ParseFile(path string) ([]Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Parse splits source text into logical lines and builds the statement
// tree by indentation. Parsing is best effort: lines that fit no known
// statement shape become KindUnknown nodes rather than errors.
func Parse(src string) []Statement {
	lines := logicalLines(src)
	if len(lines) == 0 {
		return nil
	}
	stmts, _ := parseBlock(lines, 0, lines[0].indent)
	return stmts
}

type logicalLine struct {
	indent int
	text   string
	line   int
}

// parseBlock parses consecutive lines at exactly the given indent; a
// deeper-indented run after any statement becomes that statement's body.
func parseBlock(lines []logicalLine, pos, indent int) ([]Statement, int) {
	var out []Statement
	for pos < len(lines) {
		l := lines[pos]
		if l.indent < indent {
			break
		}
		if l.indent > indent {
			// Continuation noise (e.g. an unterminated bracket we could not
			// rejoin); skip rather than misattach.
			pos++
			continue
		}
		st := classify(l)
		pos++
		if pos < len(lines) && lines[pos].indent > indent {
			st.Body, pos = parseBlock(lines, pos, lines[pos].indent)
		}
		out = append(out, st)
	}
	return out, pos
}

var (
	importRe     = regexp.MustCompile(`^import\s+(.+)$`)
	fromImportRe = regexp.MustCompile(`^from\s+([.\w]+)\s+import\s+(.+)$`)
	defRe        = regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)`)
	classRe      = regexp.MustCompile(`^class\s+(\w+)`)
)

func classify(l logicalLine) Statement {
	st := Statement{Line: l.line}
	text := l.text

	switch {
	case importRe.MatchString(text):
		st.Kind = KindImport
		st.Names = splitImportList(importRe.FindStringSubmatch(text)[1])
	case fromImportRe.MatchString(text):
		m := fromImportRe.FindStringSubmatch(text)
		st.Kind = KindImportFrom
		st.Module = strings.TrimLeft(m[1], ".")
		st.Level = len(m[1]) - len(st.Module)
		st.Names = splitImportList(m[2])
	case defRe.MatchString(text):
		st.Kind = KindFunctionDef
		st.Name = defRe.FindStringSubmatch(text)[1]
	case classRe.MatchString(text):
		st.Kind = KindClassDef
		st.Name = classRe.FindStringSubmatch(text)[1]
	case hasKeyword(text, "if"), hasKeyword(text, "elif"), text == "else:":
		st.Kind = KindIf
	case hasKeyword(text, "for"):
		st.Kind = KindFor
	case hasKeyword(text, "while"):
		st.Kind = KindWhile
	case hasKeyword(text, "with"):
		st.Kind = KindWith
	case hasKeyword(text, "try"), hasKeyword(text, "except"), text == "try:", text == "finally:":
		st.Kind = KindTry
	case hasKeyword(text, "return"), text == "return":
		st.Kind = KindReturn
	case hasKeyword(text, "raise"), text == "raise":
		st.Kind = KindRaise
	case text == "pass":
		st.Kind = KindPass
	case isAssignment(text):
		st.Kind = KindAssign
	case strings.Contains(text, "("):
		st.Kind = KindExpr
	default:
		st.Kind = KindUnknown
	}
	return st
}

func hasKeyword(text, kw string) bool {
	return strings.HasPrefix(text, kw+" ") || strings.HasPrefix(text, kw+":")
}

// isAssignment detects a top-level "=" that is not part of a comparison.
func isAssignment(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] != '=' {
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>+-*/%&|^:", rune(text[i-1])) {
			return false
		}
		if i+1 < len(text) && text[i+1] == '=' {
			return false
		}
		return true
	}
	return false
}

// splitImportList turns "a.b as x, c, (d,\n e)" into the real imported
// names, dropping aliases, brackets and the star form.
func splitImportList(list string) []string {
	list = strings.Trim(list, "() ")
	var names []string
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if i := strings.Index(item, " as "); i >= 0 {
			item = strings.TrimSpace(item[:i])
		}
		if item == "" || item == "*" {
			continue
		}
		names = append(names, item)
	}
	return names
}

// logicalLines flattens physical lines into logical statements: comments
// stripped, blank lines dropped, backslash continuations and open brackets
// joined onto the header line.
func logicalLines(src string) []logicalLine {
	physical := strings.Split(src, "\n")
	var out []logicalLine

	for i := 0; i < len(physical); i++ {
		raw := physical[i]
		text, depth := stripComment(raw)
		if strings.TrimSpace(text) == "" {
			continue
		}
		startLine := i + 1
		ind := indentOf(text)
		joined := strings.TrimSpace(text)

		for (depth > 0 || strings.HasSuffix(joined, "\\")) && i+1 < len(physical) {
			joined = strings.TrimSuffix(joined, "\\")
			i++
			next, nextDepth := stripComment(physical[i])
			depth += nextDepth
			joined = strings.TrimSpace(joined) + " " + strings.TrimSpace(next)
		}

		out = append(out, logicalLine{indent: ind, text: strings.TrimSpace(joined), line: startLine})
	}
	return out
}

func indentOf(text string) int {
	ind := 0
	for _, r := range text {
		switch r {
		case ' ':
			ind++
		case '\t':
			ind += 4
		default:
			return ind
		}
	}
	return ind
}

// stripComment removes a trailing # comment (string literals respected) and
// reports the line's net bracket depth.
func stripComment(line string) (string, int) {
	depth := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '#':
			return line[:i], depth
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return line, depth
}
