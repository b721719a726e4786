// Package semantic mirrors every ingested observation into a linked-data
// graph shaped after the SOSA/SSN sensor ontology. The graph is durable:
// it is reloaded from its Turtle file at startup and rewritten whole
// after every mutation.
package semantic

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/rdf"
	"github.com/smartplant/smartplant/internal/storage"
)

// Vocabulary namespaces used by the graph.
const (
	NSSOSA = "http://www.w3.org/ns/sosa/"
	NSSSN  = "http://www.w3.org/ns/ssn/"
	NSEX   = "http://example.org/smartplant/"
	NSQUDT = "http://qudt.org/schema/qudt/"
	NSUnit = "http://qudt.org/vocab/unit/"
	NSRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NSXSD  = "http://www.w3.org/2001/XMLSchema#"
)

// measurement maps one payload metric onto its ontology identifiers.
type measurement struct {
	key      string
	property string
	sensor   string
	unit     string
}

var measurements = []measurement{
	{key: "temperature", property: NSEX + "property/temperature", sensor: NSEX + "sensor/dht11-temperature", unit: NSUnit + "DEG_C"},
	{key: "humidity", property: NSEX + "property/humidity", sensor: NSEX + "sensor/dht11-humidity", unit: NSUnit + "PERCENT"},
	{key: "illuminance", property: NSEX + "property/illuminance", sensor: NSEX + "sensor/ldr-light", unit: NSUnit + "LUX"},
}

// Readings carries the metric values of one ingestion; nil means the
// metric was not measured.
type Readings struct {
	Temperature *float64
	Humidity    *float64
	Illuminance *float64
}

// Meta is the observation context attached to the graph nodes.
type Meta struct {
	PlantName string
	Location  string
	Timestamp string
	PlantType string
}

// Store owns the graph and its durable Turtle document.
type Store struct {
	mu     sync.Mutex
	path   string
	graph  *rdf.Graph
	logger *zap.Logger
}

// Open loads the persisted graph when the file exists. A corrupt graph
// document is not fatal: the store logs it and starts empty, since the
// flat observation log remains the primary record.
func Open(path string, logger *zap.Logger) *Store {
	s := &Store{path: path, graph: newGraph(), logger: logger}
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("semantic: cannot read graph file, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return s
	}
	g, err := rdf.DecodeTurtle(string(b))
	if err != nil {
		logger.Warn("semantic: corrupt graph file, starting empty",
			zap.String("path", path), zap.Error(err))
		return s
	}
	bindNamespaces(g)
	s.graph = g
	logger.Info("semantic: graph loaded", zap.String("path", path), zap.Int("triples", g.Len()))
	return s
}

func newGraph() *rdf.Graph {
	g := rdf.New()
	bindNamespaces(g)
	return g
}

func bindNamespaces(g *rdf.Graph) {
	g.Bind("sosa", NSSOSA)
	g.Bind("ssn", NSSSN)
	g.Bind("ex", NSEX)
	g.Bind("qudt", NSQUDT)
	g.Bind("unit", NSUnit)
	g.Bind("rdf", NSRDF)
	g.Bind("rdfs", NSRDFS)
	g.Bind("xsd", NSXSD)
}

func slug(text string) string {
	return strings.ReplaceAll(strings.ToLower(text), " ", "-")
}

// AddObservation appends the SOSA nodes of one ingestion and rewrites the
// graph document. The feature-of-interest and platform nodes are derived
// from plant name and location, so repeated ingestion re-declares the
// same node identifiers; observation and result nodes carry a random
// batch suffix shared by all nodes of this call. The batch id is
// returned.
func (s *Store) AddObservation(r Readings, meta Meta) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	isoTime := normalizeTimestamp(meta.Timestamp)

	plantName := meta.PlantName
	if plantName == "" {
		plantName = "SmartPlant"
	}
	location := meta.Location
	if location == "" {
		location = "Living Room"
	}
	featureURI := NSEX + "feature/" + slug(plantName)
	locationURI := NSEX + "location/" + slug(location)

	add := func(subj, pred string, obj rdf.Term) {
		s.graph.Add(rdf.Triple{Subject: subj, Predicate: pred, Object: obj})
	}

	add(featureURI, NSRDF+"type", rdf.IRI(NSSOSA+"FeatureOfInterest"))
	add(featureURI, NSRDFS+"label", rdf.Literal(plantName))
	add(featureURI, NSSSN+"hasProperty", rdf.IRI(NSEX+"property/plant-health"))

	add(locationURI, NSRDF+"type", rdf.IRI(NSSSN+"Platform"))
	add(locationURI, NSRDFS+"label", rdf.Literal(location))

	batchID := newBatchID()

	for _, m := range measurements {
		value := readingFor(r, m.key)
		if value == nil {
			continue
		}
		obsURI := fmt.Sprintf("%sobservation/%s-%s", NSEX, m.key, batchID)
		resultURI := fmt.Sprintf("%sresult/%s-%s", NSEX, m.key, batchID)

		add(obsURI, NSRDF+"type", rdf.IRI(NSSOSA+"Observation"))
		add(obsURI, NSSOSA+"hasFeatureOfInterest", rdf.IRI(featureURI))
		add(obsURI, NSSOSA+"observedProperty", rdf.IRI(m.property))
		add(obsURI, NSSOSA+"madeBySensor", rdf.IRI(m.sensor))
		add(obsURI, NSSOSA+"resultTime", rdf.TypedLiteral(isoTime, NSXSD+"dateTime"))
		add(obsURI, NSSOSA+"phenomenonTime", rdf.TypedLiteral(isoTime, NSXSD+"dateTime"))
		add(obsURI, NSSOSA+"hasResult", rdf.IRI(resultURI))

		add(resultURI, NSRDF+"type", rdf.IRI(NSSOSA+"Result"))
		add(resultURI, NSSOSA+"hasSimpleResult",
			rdf.TypedLiteral(strconv.FormatFloat(*value, 'f', -1, 64), NSXSD+"float"))
		add(resultURI, NSQUDT+"unit", rdf.IRI(m.unit))
	}

	if err := s.persistLocked(); err != nil {
		return "", err
	}
	return batchID, nil
}

func readingFor(r Readings, key string) *float64 {
	switch key {
	case "temperature":
		return r.Temperature
	case "humidity":
		return r.Humidity
	default:
		return r.Illuminance
	}
}

func normalizeTimestamp(ts string) string {
	if ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func newBatchID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:8]
}

// Whole-file overwrite after every mutation: O(graph size), accepted for
// the expected ingestion rate of one reading every few seconds.
func (s *Store) persistLocked() error {
	data := rdf.EncodeTurtle(s.graph)
	if err := storage.WriteFileAtomic(s.path, []byte(data)); err != nil {
		return fmt.Errorf("semantic: persist graph: %w", err)
	}
	return nil
}

// Len returns the current triple count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Len()
}

// HasTriple reports membership of a single statement.
func (s *Store) HasTriple(t rdf.Triple) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Has(t)
}

// Subjects lists the distinct node identifiers of the graph.
func (s *Store) Subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Subjects()
}

// MIME types understood by Serialize.
const (
	MimeTurtle = "text/turtle"
	MimeJSONLD = "application/ld+json"
	MimeRDFXML = "application/rdf+xml"
)

// Serialize renders the whole graph in the format selected by mime,
// falling back to Turtle for anything unrecognized. The returned mime is
// the one actually used.
func (s *Store) Serialize(mime string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch mime {
	case MimeJSONLD:
		b, err := rdf.EncodeJSONLD(s.graph)
		if err != nil {
			return "", "", err
		}
		return string(b), MimeJSONLD, nil
	case MimeRDFXML:
		out, err := rdf.EncodeRDFXML(s.graph)
		if err != nil {
			return "", "", err
		}
		return out, MimeRDFXML, nil
	default:
		return rdf.EncodeTurtle(s.graph), MimeTurtle, nil
	}
}
