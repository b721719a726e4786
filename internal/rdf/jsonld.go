package rdf

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JSON-LD codec. The encoder emits one node object per subject under
// @graph, with the bound prefixes as @context and compact IRIs wherever
// the local part is a plain name. rdf:type statements map to @type.

const rdfTypeIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// EncodeJSONLD renders the graph as a JSON-LD document.
func EncodeJSONLD(g *Graph) ([]byte, error) {
	prefixes := g.Prefixes()
	context := make(map[string]string, len(prefixes))
	for _, p := range prefixes {
		context[p.Name] = p.Namespace
	}

	nodes := make(map[string]map[string]any)
	for _, t := range g.Triples() {
		node, ok := nodes[t.Subject]
		if !ok {
			node = map[string]any{"@id": compactIRI(t.Subject, prefixes)}
			nodes[t.Subject] = node
		}
		if t.Predicate == rdfTypeIRI && t.Object.Kind == KindIRI {
			types, _ := node["@type"].([]string)
			node["@type"] = append(types, compactIRI(t.Object.Value, prefixes))
			continue
		}
		key := compactIRI(t.Predicate, prefixes)
		values, _ := node[key].([]map[string]any)
		node[key] = append(values, objectToJSON(t.Object, prefixes))
	}

	subjects := make([]string, 0, len(nodes))
	for s := range nodes {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	graph := make([]map[string]any, 0, len(subjects))
	for _, s := range subjects {
		graph = append(graph, nodes[s])
	}

	doc := map[string]any{
		"@context": context,
		"@graph":   graph,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func compactIRI(iri string, prefixes []Prefix) string {
	for _, p := range prefixes {
		if local, ok := strings.CutPrefix(iri, p.Namespace); ok && isPlainLocal(local) {
			return p.Name + ":" + local
		}
	}
	return iri
}

func objectToJSON(t Term, prefixes []Prefix) map[string]any {
	if t.Kind == KindIRI {
		return map[string]any{"@id": compactIRI(t.Value, prefixes)}
	}
	obj := map[string]any{"@value": t.Value}
	if t.Datatype != "" {
		obj["@type"] = compactIRI(t.Datatype, prefixes)
	}
	return obj
}

// DecodeJSONLD parses a document produced by EncodeJSONLD.
func DecodeJSONLD(data []byte) (*Graph, error) {
	var doc struct {
		Context map[string]string `json:"@context"`
		Graph   []map[string]any  `json:"@graph"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("json-ld: %w", err)
	}
	g := New()
	for name, ns := range doc.Context {
		g.Bind(name, ns)
	}
	for _, node := range doc.Graph {
		id, _ := node["@id"].(string)
		if id == "" {
			return nil, fmt.Errorf("json-ld: node without @id")
		}
		subject := expandIRI(id, doc.Context)
		for key, raw := range node {
			switch key {
			case "@id":
			case "@type":
				for _, tv := range anySlice(raw) {
					s, ok := tv.(string)
					if !ok {
						return nil, fmt.Errorf("json-ld: non-string @type on %s", id)
					}
					g.Add(Triple{Subject: subject, Predicate: rdfTypeIRI, Object: IRI(expandIRI(s, doc.Context))})
				}
			default:
				pred := expandIRI(key, doc.Context)
				for _, v := range anySlice(raw) {
					obj, err := jsonToObject(v, doc.Context)
					if err != nil {
						return nil, fmt.Errorf("json-ld: %s %s: %w", id, key, err)
					}
					g.Add(Triple{Subject: subject, Predicate: pred, Object: obj})
				}
			}
		}
	}
	return g, nil
}

func anySlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{v}
}

func jsonToObject(v any, context map[string]string) (Term, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Term{}, fmt.Errorf("want value object, got %T", v)
	}
	if id, ok := m["@id"].(string); ok {
		return IRI(expandIRI(id, context)), nil
	}
	value, ok := m["@value"].(string)
	if !ok {
		return Term{}, fmt.Errorf("value object without @id or string @value")
	}
	if dt, ok := m["@type"].(string); ok {
		return TypedLiteral(value, expandIRI(dt, context)), nil
	}
	return Literal(value), nil
}

func expandIRI(s string, context map[string]string) string {
	colon := strings.Index(s, ":")
	if colon <= 0 {
		return s
	}
	if ns, ok := context[s[:colon]]; ok {
		return ns + s[colon+1:]
	}
	return s
}
