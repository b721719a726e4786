// Package rdf is a minimal set-based triple graph with codecs for the
// three interchange formats the backend serves: Turtle (line-based
// triples), JSON-LD and RDF/XML. The codecs round-trip: parsing the
// output of any encoder yields an equivalent triple set.
package rdf

import (
	"sort"
)

// TermKind discriminates graph terms.
type TermKind int

const (
	KindIRI TermKind = iota
	KindLiteral
)

// Term is an object position value: either an IRI or a literal with an
// optional datatype IRI.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
}

// IRI builds an IRI term.
func IRI(value string) Term { return Term{Kind: KindIRI, Value: value} }

// Literal builds a plain (string) literal term.
func Literal(value string) Term { return Term{Kind: KindLiteral, Value: value} }

// TypedLiteral builds a literal term tagged with a datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// Triple is one statement. Subject and Predicate are IRIs.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// Graph is a mutable triple set with bound namespace prefixes. Adding a
// triple that is already present is a no-op, which is what makes node
// re-declaration on repeated ingestion idempotent.
type Graph struct {
	set      map[Triple]struct{}
	prefixes map[string]string
}

func New() *Graph {
	return &Graph{
		set:      make(map[Triple]struct{}),
		prefixes: make(map[string]string),
	}
}

// Bind registers a namespace prefix used by the serializers.
func (g *Graph) Bind(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// Prefixes returns the bound prefixes sorted by prefix name.
func (g *Graph) Prefixes() []Prefix {
	out := make([]Prefix, 0, len(g.prefixes))
	for p, ns := range g.prefixes {
		out = append(out, Prefix{Name: p, Namespace: ns})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type Prefix struct {
	Name      string
	Namespace string
}

// Add inserts a triple, reporting whether it was new.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.set[t]; ok {
		return false
	}
	g.set[t] = struct{}{}
	return true
}

// Has reports triple membership.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.set[t]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return len(g.set) }

// Triples returns every triple in deterministic order (subject,
// predicate, object).
func (g *Graph) Triples() []Triple {
	out := make([]Triple, 0, len(g.set))
	for t := range g.set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		if a.Object.Kind != b.Object.Kind {
			return a.Object.Kind < b.Object.Kind
		}
		if a.Object.Value != b.Object.Value {
			return a.Object.Value < b.Object.Value
		}
		return a.Object.Datatype < b.Object.Datatype
	})
	return out
}

// Subjects returns the distinct subject IRIs in sorted order.
func (g *Graph) Subjects() []string {
	seen := make(map[string]struct{})
	for t := range g.set {
		seen[t.Subject] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two graphs hold the same triple set. Prefix
// bindings are presentation detail and do not participate.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for t := range g.set {
		if !other.Has(t) {
			return false
		}
	}
	return true
}
