// pkg/aur/pkgbuild.go
package aur

import (
	"strings"
	"unicode"
)

// dependencyKeys are the declaration keys whose values are collected
// from a build descriptor. Optional dependencies are deliberately not
// collected; they must not be force-installed.
var dependencyKeys = []string{"depends", "makedepends", "checkdepends"}

type parseState int

const (
	stateIdle parseState = iota
	stateScalarAssignment
	stateArrayOpen
	stateArrayContinuation
	stateInQuotedToken
)

// descriptorParser is a line-oriented state machine that extracts
// dependency tokens from a shell-like build descriptor. It scans only
// for dependency-array declarations and never evaluates the script.
type descriptorParser struct {
	state parseState
	tok   tokenizer
	raw   []string
}

// ParseDependencies extracts the dependency names declared in a build
// descriptor. Tokens are returned cleaned: version-constraint suffixes
// stripped and empty or parenthesis-only tokens discarded.
func ParseDependencies(content string) []string {
	p := descriptorParser{}
	for _, line := range strings.Split(content, "\n") {
		p.feedLine(line)
	}

	var deps []string
	for _, raw := range p.raw {
		name := CleanDepName(raw)
		if name == "" || name == "(" || name == ")" {
			continue
		}
		deps = append(deps, name)
	}
	return deps
}

func (p *descriptorParser) feedLine(line string) {
	trimmed := strings.TrimSpace(line)

	switch p.state {
	case stateIdle:
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			return
		}
		value, ok := dependencyAssignment(trimmed)
		if !ok {
			return
		}

		if !strings.HasPrefix(value, "(") {
			p.state = stateScalarAssignment
			if tok := strings.Trim(value, `'"`); tok != "" {
				p.raw = append(p.raw, tok)
			}
			p.state = stateIdle
			return
		}

		p.state = stateArrayOpen
		rest := value[1:]
		if end := strings.LastIndex(rest, ")"); end >= 0 {
			p.tok.feed(rest[:end])
			p.raw = append(p.raw, p.tok.flush()...)
			p.state = stateIdle
			return
		}
		p.tok.feed(rest)
		p.advanceFromArray()

	case stateArrayContinuation:
		if trimmed == ")" {
			p.raw = append(p.raw, p.tok.flush()...)
			p.state = stateIdle
			return
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			return
		}
		p.tok.feed(trimmed)
		p.advanceFromArray()

	case stateInQuotedToken:
		// Whitespace does not end the token and comment skipping is
		// suspended until the quote closes.
		p.tok.feed(trimmed)
		if !p.tok.inQuote {
			p.state = stateArrayContinuation
		}
	}
}

func (p *descriptorParser) advanceFromArray() {
	if p.tok.inQuote {
		p.state = stateInQuotedToken
	} else {
		p.state = stateArrayContinuation
	}
}

// dependencyAssignment reports whether a line declares one of the
// recognized dependency keys, returning the text after the '='.
func dependencyAssignment(line string) (string, bool) {
	for _, key := range dependencyKeys {
		if rest, ok := strings.CutPrefix(line, key+"="); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// tokenizer splits array text into tokens. Outside quotes, unescaped
// whitespace and parentheses delimit tokens; inside '…' or "…" a token
// may contain whitespace and span lines.
type tokenizer struct {
	inQuote bool
	quote   rune
	escaped bool
	current strings.Builder
	tokens  []string
}

func (t *tokenizer) feed(s string) {
	for _, ch := range s {
		switch {
		case t.escaped:
			t.current.WriteRune(ch)
			t.escaped = false
		case ch == '\\' && !t.inQuote:
			t.escaped = true
		case t.inQuote:
			if ch == t.quote {
				t.inQuote = false
				t.endToken()
			} else {
				t.current.WriteRune(ch)
			}
		case ch == '\'' || ch == '"':
			t.inQuote = true
			t.quote = ch
		case unicode.IsSpace(ch), ch == '(', ch == ')':
			t.endToken()
		default:
			t.current.WriteRune(ch)
		}
	}

	// End of line terminates a bare token but not a quoted one.
	if !t.inQuote {
		t.escaped = false
		t.endToken()
	}
}

func (t *tokenizer) endToken() {
	if t.current.Len() > 0 {
		t.tokens = append(t.tokens, t.current.String())
		t.current.Reset()
	}
}

func (t *tokenizer) flush() []string {
	if !t.inQuote {
		t.endToken()
	}
	tokens := t.tokens
	t.tokens = nil
	return tokens
}

// CleanDepName strips a version-constraint suffix from a raw
// dependency token: "glibc>=2.35" becomes "glibc". Cleaned names are
// never re-decorated.
func CleanDepName(raw string) string {
	name := raw
	if fields := strings.Fields(raw); len(fields) > 0 {
		name = fields[0]
	} else {
		return ""
	}
	if i := strings.IndexAny(name, "><="); i >= 0 {
		name = name[:i]
	}
	return name
}
