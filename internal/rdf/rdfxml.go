package rdf

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// RDF/XML codec. One rdf:Description element per subject; rdf:resource
// for IRI objects, rdf:datatype plus character data for typed literals.
// Predicate elements need a namespace prefix, so predicates outside the
// bound namespaces get a generated nsN binding split at the last '#' or
// '/' of the IRI.

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// EncodeRDFXML renders the graph as RDF/XML.
func EncodeRDFXML(g *Graph) (string, error) {
	prefixes := g.Prefixes()
	hasRDF := false
	for _, p := range prefixes {
		if p.Namespace == rdfNS {
			hasRDF = true
		}
	}
	if !hasRDF {
		prefixes = append(prefixes, Prefix{Name: "rdf", Namespace: rdfNS})
	}

	// collect extra namespaces needed by predicates
	triples := g.Triples()
	gen := 0
	for _, t := range triples {
		if _, _, ok := splitWithPrefixes(t.Predicate, prefixes); !ok {
			ns, _, err := splitIRI(t.Predicate)
			if err != nil {
				return "", err
			}
			gen++
			prefixes = append(prefixes, Prefix{Name: fmt.Sprintf("ns%d", gen), Namespace: ns})
		}
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString("<rdf:RDF")
	for _, p := range prefixes {
		fmt.Fprintf(&b, "\n    xmlns:%s=\"%s\"", p.Name, escapeXML(p.Namespace))
	}
	b.WriteString(">\n")

	for _, subject := range g.Subjects() {
		fmt.Fprintf(&b, "  <rdf:Description rdf:about=\"%s\">\n", escapeXML(subject))
		for _, t := range triples {
			if t.Subject != subject {
				continue
			}
			prefix, local, ok := splitWithPrefixes(t.Predicate, prefixes)
			if !ok {
				return "", fmt.Errorf("rdf/xml: cannot qualify predicate %s", t.Predicate)
			}
			name := prefix + ":" + local
			switch {
			case t.Object.Kind == KindIRI:
				fmt.Fprintf(&b, "    <%s rdf:resource=\"%s\"/>\n", name, escapeXML(t.Object.Value))
			case t.Object.Datatype != "":
				fmt.Fprintf(&b, "    <%s rdf:datatype=\"%s\">%s</%s>\n",
					name, escapeXML(t.Object.Datatype), escapeXML(t.Object.Value), name)
			default:
				fmt.Fprintf(&b, "    <%s>%s</%s>\n", name, escapeXML(t.Object.Value), name)
			}
		}
		b.WriteString("  </rdf:Description>\n")
	}
	b.WriteString("</rdf:RDF>\n")
	return b.String(), nil
}

func splitWithPrefixes(iri string, prefixes []Prefix) (string, string, bool) {
	for _, p := range prefixes {
		if p.Namespace == rdfNS && p.Name != "rdf" {
			continue
		}
		if local, ok := strings.CutPrefix(iri, p.Namespace); ok && isXMLName(local) {
			return p.Name, local, true
		}
	}
	return "", "", false
}

// splitIRI divides an IRI at its last '#' or '/' into namespace and
// local part.
func splitIRI(iri string) (string, string, error) {
	idx := strings.LastIndexAny(iri, "#/")
	if idx < 0 || idx >= len(iri)-1 {
		return "", "", fmt.Errorf("rdf/xml: cannot split IRI %q", iri)
	}
	if local := iri[idx+1:]; isXMLName(local) {
		return iri[:idx+1], local, nil
	}
	return "", "", fmt.Errorf("rdf/xml: local part of %q is not an XML name", iri)
}

func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9' || r == '-' || r == '.') && i > 0:
		default:
			return false
		}
	}
	return true
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// DecodeRDFXML parses a document in the shape produced by EncodeRDFXML.
func DecodeRDFXML(input string) (*Graph, error) {
	type xmlProperty struct {
		XMLName  xml.Name
		Resource string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# resource,attr"`
		Datatype string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# datatype,attr"`
		Value    string `xml:",chardata"`
	}
	type xmlDescription struct {
		About      string        `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# about,attr"`
		Properties []xmlProperty `xml:",any"`
	}
	type xmlRDF struct {
		XMLName      xml.Name         `xml:"RDF"`
		Descriptions []xmlDescription `xml:"Description"`
	}

	var doc xmlRDF
	if err := xml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, fmt.Errorf("rdf/xml: %w", err)
	}
	if doc.XMLName.Space != rdfNS {
		return nil, fmt.Errorf("rdf/xml: root element is not rdf:RDF")
	}

	g := New()
	for _, d := range doc.Descriptions {
		if d.About == "" {
			return nil, fmt.Errorf("rdf/xml: description without rdf:about")
		}
		for _, p := range d.Properties {
			pred := p.XMLName.Space + p.XMLName.Local
			var obj Term
			switch {
			case p.Resource != "":
				obj = IRI(p.Resource)
			case p.Datatype != "":
				obj = TypedLiteral(p.Value, p.Datatype)
			default:
				obj = Literal(p.Value)
			}
			g.Add(Triple{Subject: d.About, Predicate: pred, Object: obj})
		}
	}
	return g, nil
}
