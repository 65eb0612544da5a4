package domain

import (
	"regexp"
	"strings"
)

// classRegex matches a top-level Dart class header. Superclass and mixin
// clauses are consumed so only the class name is captured.
var classRegex = regexp.MustCompile(`^\s*(?:abstract\s+)?class\s+([A-Za-z_]\w*)\s*(?:extends\s+[\w<>, ]+?\s*)?(?:with\s+[\w<>, ]+?\s*)?(?:implements\s+[\w<>, ]+?\s*)?\{\s*$`)

// fieldRegex matches a field declaration statement. Annotations and storage
// modifiers are consumed up front so they never reach the type token.
var fieldRegex = regexp.MustCompile(`^\s*(?:@\w+(?:\([^)]*\))?\s+)*(?:(?:final|late|static|const)\s+)*([A-Za-z_]\w*\??)\s+(\S.*);\s*$`)

var identRegex = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// Preprocessed is the result of rewriting a Dart-style domain class into a
// GraphQL input definition. Initializer expressions are carried out of band,
// keyed by field name, so their source text is never re-encoded.
type Preprocessed struct {
	Document     string
	Initializers map[string]string
}

// Preprocess rewrites `class Name { Type field = expr; ... }` into
// `input Name { field: Type ... }` so the document can be handed to a
// conformant GraphQL parser. Lines it does not recognize flow through
// unchanged and are rejected by the parser instead.
func Preprocess(input string) Preprocessed {
	src := stripComments(input)
	inits := make(map[string]string)
	var out strings.Builder

	for _, line := range strings.Split(src, "\n") {
		if m := classRegex.FindStringSubmatch(line); m != nil {
			out.WriteString("input " + m[1] + " {\n")
			continue
		}
		if m := fieldRegex.FindStringSubmatch(line); m != nil {
			// Trailing nullability markers are normalized off before matching
			// against the supported type set.
			typeName := strings.TrimSuffix(m[1], "?")
			if fields, ok := rewriteDeclarators(m[2], typeName, inits); ok {
				out.WriteString(fields)
				continue
			}
		}
		out.WriteString(line + "\n")
	}

	return Preprocessed{Document: out.String(), Initializers: inits}
}

// rewriteDeclarators splits a declarator list (`a = 'x', b = 'y'`) on
// top-level commas and emits one GraphQL input field per variable. Every
// variable in the list shares the declared type.
func rewriteDeclarators(decls, typeName string, inits map[string]string) (string, bool) {
	var out strings.Builder
	for _, decl := range splitTopLevel(decls, ',') {
		name, init, hasInit := cutInitializer(decl)
		name = strings.TrimSpace(name)
		if !identRegex.MatchString(name) {
			return "", false
		}
		if hasInit {
			inits[name] = strings.TrimSpace(init)
		}
		out.WriteString("  " + name + ": " + typeName + "\n")
	}
	return out.String(), true
}

// cutInitializer splits a single declarator at its first top-level `=`.
func cutInitializer(decl string) (name, init string, ok bool) {
	var quote rune
	depth := 0
	escaped := false

	for i, r := range decl {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == '=' && depth == 0:
			return decl[:i], decl[i+1:], true
		}
	}

	return decl, "", false
}

// splitTopLevel splits on sep outside string literals and brackets.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	var quote rune
	depth := 0
	escaped := false
	start := 0

	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + len(string(r))
		}
	}

	parts = append(parts, s[start:])
	return parts
}

// stripComments removes // and /* */ comments while leaving string literals
// and line structure intact, so comments around initializers never leak into
// extracted default values.
func stripComments(src string) string {
	var out strings.Builder
	var quote rune
	escaped := false
	inLine := false
	inBlock := false

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case inLine:
			if r == '\n' {
				inLine = false
				out.WriteRune(r)
			}
		case inBlock:
			if r == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				inBlock = false
				i++
			} else if r == '\n' {
				out.WriteRune(r)
			}
		case escaped:
			escaped = false
			out.WriteRune(r)
		case quote != 0:
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
			out.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			out.WriteRune(r)
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			inLine = true
			i++
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			inBlock = true
			i++
		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}
