package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	g := New()
	g.Bind("ex", "http://example.org/smartplant/")
	g.Bind("sosa", "http://www.w3.org/ns/sosa/")
	g.Bind("rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#")
	g.Bind("rdfs", "http://www.w3.org/2000/01/rdf-schema#")
	g.Bind("xsd", "http://www.w3.org/2001/XMLSchema#")

	obs := "http://example.org/smartplant/observation/temperature-abc12345"
	result := "http://example.org/smartplant/result/temperature-abc12345"
	feature := "http://example.org/smartplant/feature/my-monstera"

	g.Add(Triple{feature, "http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
		IRI("http://www.w3.org/ns/sosa/FeatureOfInterest")})
	g.Add(Triple{feature, "http://www.w3.org/2000/01/rdf-schema#label",
		Literal(`My "quoted" Monstera`)})
	g.Add(Triple{obs, "http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
		IRI("http://www.w3.org/ns/sosa/Observation")})
	g.Add(Triple{obs, "http://www.w3.org/ns/sosa/hasResult", IRI(result)})
	g.Add(Triple{result, "http://www.w3.org/ns/sosa/hasSimpleResult",
		TypedLiteral("22.5", "http://www.w3.org/2001/XMLSchema#float")})
	g.Add(Triple{obs, "http://www.w3.org/ns/sosa/resultTime",
		TypedLiteral("2026-08-30T10:00:00Z", "http://www.w3.org/2001/XMLSchema#dateTime")})
	return g
}

func TestAddIsSetSemantics(t *testing.T) {
	g := New()
	tr := Triple{"http://a", "http://b", IRI("http://c")}
	assert.True(t, g.Add(tr))
	assert.False(t, g.Add(tr))
	assert.Equal(t, 1, g.Len())
}

func TestTriplesDeterministicOrder(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, g.Triples(), g.Triples())
}

func TestTurtleRoundTrip(t *testing.T) {
	g := sampleGraph()
	out := EncodeTurtle(g)

	parsed, err := DecodeTurtle(out)
	require.NoError(t, err)
	assert.True(t, g.Equal(parsed), "turtle round-trip changed the triple set:\n%s", out)
}

func TestJSONLDRoundTrip(t *testing.T) {
	g := sampleGraph()
	out, err := EncodeJSONLD(g)
	require.NoError(t, err)

	parsed, err := DecodeJSONLD(out)
	require.NoError(t, err)
	assert.True(t, g.Equal(parsed), "json-ld round-trip changed the triple set:\n%s", out)
}

func TestRDFXMLRoundTrip(t *testing.T) {
	g := sampleGraph()
	out, err := EncodeRDFXML(g)
	require.NoError(t, err)

	parsed, err := DecodeRDFXML(out)
	require.NoError(t, err)
	assert.True(t, g.Equal(parsed), "rdf/xml round-trip changed the triple set:\n%s", out)
}

func TestCrossFormatEquivalence(t *testing.T) {
	g := sampleGraph()

	ttl, err := DecodeTurtle(EncodeTurtle(g))
	require.NoError(t, err)

	jsonldOut, err := EncodeJSONLD(g)
	require.NoError(t, err)
	jsonld, err := DecodeJSONLD(jsonldOut)
	require.NoError(t, err)

	xmlOut, err := EncodeRDFXML(g)
	require.NoError(t, err)
	rdfxml, err := DecodeRDFXML(xmlOut)
	require.NoError(t, err)

	assert.True(t, ttl.Equal(jsonld))
	assert.True(t, jsonld.Equal(rdfxml))
}

func TestTurtleShortensOnlyPlainLocalNames(t *testing.T) {
	g := New()
	g.Bind("sosa", "http://www.w3.org/ns/sosa/")
	g.Add(Triple{
		"http://example.org/smartplant/feature/my-plant",
		"http://www.w3.org/ns/sosa/hasFeatureOfInterest",
		IRI("http://www.w3.org/ns/sosa/Observation"),
	})
	out := EncodeTurtle(g)
	// unbound namespace stays a full IRI, bound one is prefixed
	assert.Contains(t, out, "<http://example.org/smartplant/feature/my-plant>")
	assert.Contains(t, out, "sosa:hasFeatureOfInterest")
	assert.Contains(t, out, "sosa:Observation")
}

func TestDecodeTurtleRejectsGarbage(t *testing.T) {
	_, err := DecodeTurtle("this is not a triple line\n")
	assert.Error(t, err)
}

func TestDecodeTurtleSkipsCommentsAndBlanks(t *testing.T) {
	input := "@prefix ex: <http://example.org/> .\n\n# comment\nex:a ex:b ex:c .\n"
	g, err := DecodeTurtle(input)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has(Triple{"http://example.org/a", "http://example.org/b", IRI("http://example.org/c")}))
}
