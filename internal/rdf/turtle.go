package rdf

import (
	"fmt"
	"strings"
)

// The Turtle codec emits a line-oriented subset of Turtle: a @prefix
// block followed by exactly one triple per line. IRIs are shortened to
// prefixed names only when the local part is a plain name; everything
// else is written in full <...> form, so the decoder never needs the
// grammar beyond single-line statements.

// EncodeTurtle renders the graph as Turtle.
func EncodeTurtle(g *Graph) string {
	var b strings.Builder
	prefixes := g.Prefixes()
	for _, p := range prefixes {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", p.Name, p.Namespace)
	}
	if len(prefixes) > 0 {
		b.WriteByte('\n')
	}
	for _, t := range g.Triples() {
		b.WriteString(formatIRI(t.Subject, prefixes))
		b.WriteByte(' ')
		b.WriteString(formatIRI(t.Predicate, prefixes))
		b.WriteByte(' ')
		b.WriteString(formatTerm(t.Object, prefixes))
		b.WriteString(" .\n")
	}
	return b.String()
}

func formatIRI(iri string, prefixes []Prefix) string {
	for _, p := range prefixes {
		if local, ok := strings.CutPrefix(iri, p.Namespace); ok && isPlainLocal(local) {
			return p.Name + ":" + local
		}
	}
	return "<" + iri + ">"
}

func formatTerm(t Term, prefixes []Prefix) string {
	if t.Kind == KindIRI {
		return formatIRI(t.Value, prefixes)
	}
	lit := `"` + escapeLiteral(t.Value) + `"`
	if t.Datatype != "" {
		lit += "^^" + formatIRI(t.Datatype, prefixes)
	}
	return lit
}

func isPlainLocal(local string) bool {
	if local == "" {
		return false
	}
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

func unescapeLiteral(s string) string {
	r := strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\n`, "\n", `\r`, "\r", `\t`, "\t")
	return r.Replace(s)
}

// DecodeTurtle parses the subset emitted by EncodeTurtle into a fresh
// graph. Prefix declarations are honored; blank lines and # comments are
// skipped.
func DecodeTurtle(input string) (*Graph, error) {
	g := New()
	for ln, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@prefix") {
			name, ns, err := parsePrefixLine(line)
			if err != nil {
				return nil, fmt.Errorf("turtle line %d: %w", ln+1, err)
			}
			g.Bind(name, ns)
			continue
		}
		tokens, err := tokenizeTurtle(line)
		if err != nil {
			return nil, fmt.Errorf("turtle line %d: %w", ln+1, err)
		}
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != 4 || tokens[3] != "." {
			return nil, fmt.Errorf("turtle line %d: want 'subject predicate object .'", ln+1)
		}
		subj, err := resolveIRIToken(tokens[0], g.prefixes)
		if err != nil {
			return nil, fmt.Errorf("turtle line %d: %w", ln+1, err)
		}
		pred, err := resolveIRIToken(tokens[1], g.prefixes)
		if err != nil {
			return nil, fmt.Errorf("turtle line %d: %w", ln+1, err)
		}
		obj, err := resolveObjectToken(tokens[2], g.prefixes)
		if err != nil {
			return nil, fmt.Errorf("turtle line %d: %w", ln+1, err)
		}
		g.Add(Triple{Subject: subj, Predicate: pred, Object: obj})
	}
	return g, nil
}

func parsePrefixLine(line string) (string, string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "@prefix"))
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ".")
	rest = strings.TrimSpace(rest)
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", "", fmt.Errorf("malformed @prefix")
	}
	name := strings.TrimSpace(rest[:colon])
	iri := strings.TrimSpace(rest[colon+1:])
	if !strings.HasPrefix(iri, "<") || !strings.HasSuffix(iri, ">") {
		return "", "", fmt.Errorf("malformed @prefix namespace")
	}
	return name, iri[1 : len(iri)-1], nil
}

// tokenizeTurtle splits one statement into terms, honoring <...> and
// quoted literals (with their optional ^^datatype suffix glued on).
func tokenizeTurtle(line string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(line) {
		switch c := line[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '<':
			end := strings.IndexByte(line[i:], '>')
			if end < 0 {
				return nil, fmt.Errorf("unterminated IRI")
			}
			tokens = append(tokens, line[i:i+end+1])
			i += end + 1
		case c == '"':
			j := i + 1
			for j < len(line) {
				if line[j] == '\\' {
					j += 2
					continue
				}
				if line[j] == '"' {
					break
				}
				j++
			}
			if j >= len(line) {
				return nil, fmt.Errorf("unterminated literal")
			}
			j++ // past closing quote
			// glue a ^^datatype suffix onto the literal token
			if strings.HasPrefix(line[j:], "^^") {
				k := j + 2
				for k < len(line) && line[k] != ' ' && line[k] != '\t' {
					k++
				}
				j = k
			}
			tokens = append(tokens, line[i:j])
			i = j
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			tokens = append(tokens, line[i:j])
			i = j
		}
	}
	return tokens, nil
}

func resolveIRIToken(tok string, prefixes map[string]string) (string, error) {
	if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
		return tok[1 : len(tok)-1], nil
	}
	colon := strings.Index(tok, ":")
	if colon < 0 {
		return "", fmt.Errorf("not an IRI: %q", tok)
	}
	ns, ok := prefixes[tok[:colon]]
	if !ok {
		return "", fmt.Errorf("unknown prefix %q", tok[:colon])
	}
	return ns + tok[colon+1:], nil
}

func resolveObjectToken(tok string, prefixes map[string]string) (Term, error) {
	if !strings.HasPrefix(tok, `"`) {
		iri, err := resolveIRIToken(tok, prefixes)
		if err != nil {
			return Term{}, err
		}
		return IRI(iri), nil
	}
	// literal, optionally typed
	end := 1
	for end < len(tok) {
		if tok[end] == '\\' {
			end += 2
			continue
		}
		if tok[end] == '"' {
			break
		}
		end++
	}
	if end >= len(tok) {
		return Term{}, fmt.Errorf("unterminated literal %q", tok)
	}
	value := unescapeLiteral(tok[1:end])
	rest := tok[end+1:]
	if rest == "" {
		return Literal(value), nil
	}
	if !strings.HasPrefix(rest, "^^") {
		return Term{}, fmt.Errorf("malformed literal suffix %q", rest)
	}
	dt, err := resolveIRIToken(rest[2:], prefixes)
	if err != nil {
		return Term{}, err
	}
	return TypedLiteral(value, dt), nil
}
