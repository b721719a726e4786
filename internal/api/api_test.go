package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/catalog"
	"github.com/smartplant/smartplant/internal/ingest"
	"github.com/smartplant/smartplant/internal/model"
	"github.com/smartplant/smartplant/internal/semantic"
	"github.com/smartplant/smartplant/internal/storage"
)

func rng(min, max float64) *model.Range { return &model.Range{Min: min, Max: max} }

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	dir := t.TempDir()

	cat := catalog.New([]model.PlantProfile{
		{
			ID:          "monstera-deliciosa",
			DisplayName: "Monstera Deliciosa",
			Ranges: model.Ranges{
				Temperature: rng(18, 28),
				Humidity:    rng(40, 70),
				Illuminance: rng(200, 800),
			},
		},
		{
			ID:          "ficus-lyrata",
			DisplayName: "Fiddle Leaf Fig",
			Ranges: model.Ranges{
				Temperature: rng(16, 27),
				Humidity:    rng(30, 65),
				Illuminance: rng(300, 1000),
			},
		},
	})
	log := storage.NewObservationLog(filepath.Join(dir, "observations.json"))
	configs := storage.NewConfigStore(
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "plant_configs.json"))
	graph := semantic.Open(filepath.Join(dir, "observations.ttl"), zap.NewNop())
	pipeline := ingest.NewService(cat, log, configs, graph, nil, nil, zap.NewNop())

	return NewHTTPMux(Deps{
		Catalog:  cat,
		Log:      log,
		Configs:  configs,
		Graph:    graph,
		Pipeline: pipeline,
		Device:   DeviceInfo{ID: "smartplant-esp32", MQTTTopic: "smartplant/observations", MQTTHost: "localhost", MQTTPort: 1883, MQTTEnabled: true},
		Logger:   zap.NewNop(),
	})
}

func do(t *testing.T, mux *http.ServeMux, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestMux(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateObservation(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/observations",
		`{"temperature": 15, "humidity": 50, "illuminance": 500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["stored"])
	assert.Equal(t, "monstera-deliciosa", body["plantType"])
	recs := body["recommendations"].(map[string]any)
	assert.Equal(t, "alert", recs["status"])

	rec = do(t, mux, http.MethodGet, "/observations/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody(t, rec)
	assert.Equal(t, float64(1), listing["count"])
}

func TestCreateObservationValidation(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/observations", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "json body required", decodeBody(t, rec)["error"])

	rec = do(t, mux, http.MethodPost, "/observations", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodPost, "/observations",
		`{"temperature": 21, "humidity": 50, "illuminance": 300, "plantType": "unicorn-plant"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "invalid plant type")
}

func TestLatestObservationsLimit(t *testing.T) {
	mux := newTestMux(t)
	for i := 0; i < 12; i++ {
		rec := do(t, mux, http.MethodPost, "/observations",
			`{"temperature": 22, "humidity": 50, "illuminance": 300}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, mux, http.MethodGet, "/observations/latest", "")
	assert.Equal(t, float64(10), decodeBody(t, rec)["count"]) // default limit

	rec = do(t, mux, http.MethodGet, "/observations/latest?limit=3", "")
	assert.Equal(t, float64(3), decodeBody(t, rec)["count"])

	rec = do(t, mux, http.MethodGet, "/observations/latest?limit=0", "")
	assert.Equal(t, float64(12), decodeBody(t, rec)["count"]) // 0 means everything
}

func TestGraphContentNegotiation(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, http.MethodPost, "/observations",
		`{"temperature": 22, "humidity": 50, "illuminance": 300}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, mux, http.MethodGet, "/observations/graph", "")
	assert.Equal(t, "text/turtle", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "@prefix")

	rec = do(t, mux, http.MethodGet, "/observations/graph?format=jsonld", "")
	assert.Equal(t, "application/ld+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "@graph")

	rec = do(t, mux, http.MethodGet, "/observations/graph?format=xml", "")
	assert.Equal(t, "application/rdf+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<rdf:RDF")

	rec = do(t, mux, http.MethodGet, "/observations/graph", "",
		"Accept", "application/ld+json;q=0.9, text/html")
	assert.Equal(t, "application/ld+json", rec.Header().Get("Content-Type"))

	// unknown Accept values fall back to turtle
	rec = do(t, mux, http.MethodGet, "/observations/graph", "",
		"Accept", "text/html")
	assert.Equal(t, "text/turtle", rec.Header().Get("Content-Type"))
}

func TestLatestRecommendations(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/recommendations/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no observations", decodeBody(t, rec)["error"])

	rec = do(t, mux, http.MethodPost, "/observations",
		`{"temperature": 30, "humidity": 50, "illuminance": 300}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, mux, http.MethodGet, "/recommendations/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	recs := body["recommendations"].(map[string]any)
	assert.Equal(t, "alert", recs["status"])
	profile := body["profile"].(map[string]any)
	assert.Equal(t, "monstera-deliciosa", profile["id"])
}

func TestConfigLifecycle(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decodeBody(t, rec)
	assert.Equal(t, "SmartPlant", cfg["plantName"])
	assert.Equal(t, "Living Room", cfg["location"])
	assert.Equal(t, float64(60), cfg["samplingSeconds"])
	assert.Equal(t, "monstera-deliciosa", cfg["plantType"])
	require.NotNil(t, cfg["plantProfile"])

	// a partial update keeps untouched fields
	rec = do(t, mux, http.MethodPost, "/config", `{"plantName": "Fern", "location": "Balcony"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cfg = decodeBody(t, rec)
	assert.Equal(t, "Fern", cfg["plantName"])
	assert.Equal(t, "Balcony", cfg["location"])
	assert.Equal(t, float64(60), cfg["samplingSeconds"])
	assert.Equal(t, "monstera-deliciosa", cfg["plantType"])

	rec = do(t, mux, http.MethodPost, "/config", `{"plantType": "unknown-type"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid plant type", decodeBody(t, rec)["error"])
}

func TestSavedConfigsAndActivate(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/plants/configs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, mux, http.MethodPost, "/plants/configs",
		`{"plantName": "Office Fig", "plantType": "ficus-lyrata"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decodeBody(t, rec)
	id := saved["id"].(string)
	assert.Len(t, id, 12)
	assert.Equal(t, "Office Fig", saved["plantName"])
	assert.Equal(t, "Living Room", saved["location"]) // default applied
	assert.Equal(t, float64(60), saved["samplingSeconds"])
	profile := saved["plantProfile"].(map[string]any)
	assert.Equal(t, "ficus-lyrata", profile["id"])

	rec = do(t, mux, http.MethodPost, "/plants/configs", `{"plantType": "unknown-type"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodPost, "/config/activate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "plantConfigId required", decodeBody(t, rec)["error"])

	rec = do(t, mux, http.MethodPost, "/config/activate", `{"plantConfigId": "nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "config not found", decodeBody(t, rec)["error"])

	rec = do(t, mux, http.MethodPost, "/config/activate", `{"plantConfigId": "`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decodeBody(t, rec)
	assert.Equal(t, "Office Fig", active["plantName"])
	assert.Equal(t, "ficus-lyrata", active["plantType"])
	assert.Equal(t, id, active["plantConfigId"])
}

func TestListPlants(t *testing.T) {
	rec := do(t, newTestMux(t), http.MethodGet, "/plants", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profiles []model.PlantProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	require.Len(t, profiles, 2)
	assert.Equal(t, "monstera-deliciosa", profiles[0].ID)
}

func TestDeviceDescriptor(t *testing.T) {
	rec := do(t, newTestMux(t), http.MethodGet, "/device", "")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeBody(t, rec)
	assert.Equal(t, "smartplant-esp32", info["id"])
	assert.Equal(t, "SmartPlant", info["name"])

	transport := info["transport"].(map[string]any)
	httpInfo := transport["http"].(map[string]any)
	assert.Contains(t, httpInfo["observations"], "/observations")
	mqttInfo := transport["mqtt"].(map[string]any)
	assert.Equal(t, "smartplant/observations", mqttInfo["topic"])

	sensors := info["sensors"].([]any)
	assert.Len(t, sensors, 3)
}
