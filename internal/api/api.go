// Package api is the HTTP surface of the backend. Routing stays thin:
// handlers decode, delegate to the stores and the ingestion pipeline,
// and map error classes onto status codes.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/catalog"
	"github.com/smartplant/smartplant/internal/ingest"
	"github.com/smartplant/smartplant/internal/model"
	"github.com/smartplant/smartplant/internal/recommend"
	"github.com/smartplant/smartplant/internal/semantic"
	"github.com/smartplant/smartplant/internal/storage"
)

// DeviceInfo describes the sensing device announced on GET /device.
type DeviceInfo struct {
	ID          string
	MQTTTopic   string
	MQTTHost    string
	MQTTPort    int
	MQTTEnabled bool
}

type Deps struct {
	Catalog  *catalog.Catalog
	Log      *storage.ObservationLog
	Configs  *storage.ConfigStore
	Graph    *semantic.Store
	Pipeline *ingest.Service
	Device   DeviceInfo
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type server struct {
	Deps
}

// NewHTTPMux wires every route of the backend onto a fresh ServeMux.
func NewHTTPMux(deps Deps) *http.ServeMux {
	s := &server{Deps: deps}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("POST /observations", s.handleCreateObservation)
	mux.HandleFunc("GET /observations/latest", s.handleLatestObservations)
	mux.HandleFunc("GET /observations/graph", s.handleGraphDump)
	mux.HandleFunc("GET /recommendations/latest", s.handleLatestRecommendations)

	mux.HandleFunc("GET /config", s.handleGetConfig)
	mux.HandleFunc("POST /config", s.handleSaveConfig)
	mux.HandleFunc("POST /config/activate", s.handleActivateConfig)

	mux.HandleFunc("GET /plants", s.handleListPlants)
	mux.HandleFunc("GET /plants/configs", s.handleListSavedConfigs)
	mux.HandleFunc("POST /plants/configs", s.handleAddSavedConfig)

	mux.HandleFunc("GET /device", s.handleDeviceInfo)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) handleCreateObservation(w http.ResponseWriter, r *http.Request) {
	var payload model.IncomingObservation
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "json body required")
		return
	}

	result, err := s.Pipeline.Ingest(r.Context(), &payload)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, result)
	case ingest.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.Logger.Error("http: observation ingest failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store the reading")
	}
}

func (s *server) handleLatestObservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 10
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			limit = n
		}
	}
	items, err := s.Log.Query(limit, q.Get("plantConfigId"), q.Get("plantType"))
	if err != nil {
		s.Logger.Error("http: observation query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read observations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

var graphFormatAliases = map[string]string{
	"jsonld":  semantic.MimeJSONLD,
	"json-ld": semantic.MimeJSONLD,
	"ttl":     semantic.MimeTurtle,
	"turtle":  semantic.MimeTurtle,
	"xml":     semantic.MimeRDFXML,
}

func (s *server) handleGraphDump(w http.ResponseWriter, r *http.Request) {
	mime := negotiateGraphFormat(r)
	body, contentType, err := s.Graph.Serialize(mime)
	if err != nil {
		s.Logger.Error("http: graph serialization failed", zap.String("mime", mime), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not serialize graph")
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(body))
}

// negotiateGraphFormat prefers an explicit ?format= alias, then the
// Accept header, then Turtle.
func negotiateGraphFormat(r *http.Request) string {
	if mime, ok := graphFormatAliases[strings.ToLower(r.URL.Query().Get("format"))]; ok {
		return mime
	}
	accept := r.Header.Get("Accept")
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mediaType {
		case semantic.MimeJSONLD, semantic.MimeTurtle, semantic.MimeRDFXML:
			return mediaType
		}
	}
	return semantic.MimeTurtle
}

func (s *server) handleLatestRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.Log.Query(1, q.Get("plantConfigId"), q.Get("plantType"))
	if err != nil {
		s.Logger.Error("http: observation query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read observations")
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusNotFound, "no observations")
		return
	}
	latest := items[len(items)-1]

	effectiveType := latest.PlantType
	if effectiveType == "" {
		effectiveType = q.Get("plantType")
	}
	if effectiveType == "" {
		if cfg, err := s.Configs.LoadActive(); err == nil {
			effectiveType = cfg.PlantType
		}
	}
	profile := s.Catalog.Get(effectiveType)
	recs := recommend.Build(recommend.FromObservation(latest), profile)

	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp":       latest.Timestamp,
		"recommendations": recs,
		"profile":         profile,
	})
}

type configResponse struct {
	model.DeviceConfig
	PlantProfile *model.PlantProfile `json:"plantProfile"`
}

func (s *server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.Configs.LoadActive()
	if err != nil {
		s.Logger.Error("http: config load failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load config")
		return
	}
	writeJSON(w, http.StatusOK, configResponse{DeviceConfig: cfg, PlantProfile: s.Catalog.Get(cfg.PlantType)})
}

func (s *server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var patch model.ConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "json body required")
		return
	}
	if patch.PlantType != nil && s.Catalog.Get(*patch.PlantType) == nil {
		writeError(w, http.StatusBadRequest, "invalid plant type")
		return
	}
	cfg, err := s.Configs.SaveActive(patch)
	if err != nil {
		s.Logger.Error("http: config save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save config")
		return
	}
	writeJSON(w, http.StatusCreated, configResponse{DeviceConfig: cfg, PlantProfile: s.Catalog.Get(cfg.PlantType)})
}

func (s *server) handleActivateConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlantConfigID string `json:"plantConfigId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PlantConfigID == "" {
		writeError(w, http.StatusBadRequest, "plantConfigId required")
		return
	}
	saved, err := s.Configs.GetSaved(body.PlantConfigID)
	if err != nil {
		s.Logger.Error("http: saved config lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load saved configs")
		return
	}
	if saved == nil {
		writeError(w, http.StatusNotFound, "config not found")
		return
	}
	merged, err := s.Configs.SaveActive(model.ConfigPatch{
		PlantName:       &saved.PlantName,
		Location:        &saved.Location,
		SamplingSeconds: &saved.SamplingSeconds,
		PlantType:       &saved.PlantType,
		PlantConfigID:   &saved.ID,
	})
	if err != nil {
		s.Logger.Error("http: config save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save config")
		return
	}
	writeJSON(w, http.StatusOK, configResponse{DeviceConfig: merged, PlantProfile: s.Catalog.Get(merged.PlantType)})
}

func (s *server) handleListPlants(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Profiles())
}

func (s *server) handleListSavedConfigs(w http.ResponseWriter, _ *http.Request) {
	items, err := s.Configs.ListSaved()
	if err != nil {
		s.Logger.Error("http: saved config list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load saved configs")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type savedConfigResponse struct {
	model.SavedPlantConfig
	PlantProfile *model.PlantProfile `json:"plantProfile"`
}

func (s *server) handleAddSavedConfig(w http.ResponseWriter, r *http.Request) {
	var body model.SavedPlantConfig
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "json body required")
		return
	}
	if body.PlantName == "" {
		body.PlantName = storage.DefaultPlantName
	}
	if body.Location == "" {
		body.Location = storage.DefaultLocation
	}
	if body.SamplingSeconds == 0 {
		body.SamplingSeconds = storage.DefaultSamplingSeconds
	}
	if body.PlantType == "" {
		body.PlantType = storage.DefaultPlantType
	}
	profile := s.Catalog.Get(body.PlantType)
	if profile == nil {
		writeError(w, http.StatusBadRequest, "invalid plant type")
		return
	}
	saved, err := s.Configs.AddSaved(body)
	if err != nil {
		s.Logger.Error("http: saved config add failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save config")
		return
	}
	writeJSON(w, http.StatusCreated, savedConfigResponse{SavedPlantConfig: saved, PlantProfile: profile})
}

func (s *server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.Configs.LoadActive()
	if err != nil {
		s.Logger.Error("http: config load failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load config")
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := scheme + "://" + r.Host

	info := map[string]any{
		"id":              s.Device.ID,
		"name":            cfg.PlantName,
		"location":        cfg.Location,
		"description":     "ESP32 node with DHT11 + LDR sensors and status LEDs",
		"samplingSeconds": cfg.SamplingSeconds,
		"plantType":       cfg.PlantType,
		"plantConfigId":   cfg.PlantConfigID,
		"transport": map[string]any{
			"http": map[string]string{
				"base":         base,
				"observations": base + "/observations",
				"config":       base + "/config",
				"device":       base + "/device",
			},
			"mqtt": map[string]any{
				"topic":   s.Device.MQTTTopic,
				"host":    s.Device.MQTTHost,
				"port":    s.Device.MQTTPort,
				"enabled": s.Device.MQTTEnabled,
			},
		},
		"sensors": []map[string]string{
			{"id": "dht11-temperature", "type": "temperature", "unit": "degC", "property": "airTemperature"},
			{"id": "dht11-humidity", "type": "humidity", "unit": "percent", "property": "relativeHumidity"},
			{"id": "ldr-illuminance", "type": "illuminance", "unit": "lux", "property": "ambientLight"},
		},
		"actuators": []map[string]string{
			{"id": "led-green", "type": "indicator", "role": "ok"},
			{"id": "led-yellow", "type": "indicator", "role": "warn"},
			{"id": "led-red", "type": "indicator", "role": "error"},
		},
		"firmware": map[string]any{
			"version":   "1.0.0",
			"platform":  "esp32",
			"protocols": []string{"http", "mqtt"},
		},
	}
	writeJSON(w, http.StatusOK, info)
}
