// Package ingest orchestrates the observation pipeline: validate the
// payload, merge it with the active device configuration, persist to the
// flat log and the semantic graph, then derive care recommendations.
// Both transports (HTTP handler and MQTT bridge) funnel into the same
// Ingest call, which is safe for concurrent use.
package ingest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/catalog"
	"github.com/smartplant/smartplant/internal/metrics"
	"github.com/smartplant/smartplant/internal/model"
	"github.com/smartplant/smartplant/internal/recommend"
	"github.com/smartplant/smartplant/internal/semantic"
	"github.com/smartplant/smartplant/internal/storage"
)

// FallbackPlantType is used when neither payload nor active config name
// a plant type.
const FallbackPlantType = storage.DefaultPlantType

type Service struct {
	catalog *catalog.Catalog
	log     *storage.ObservationLog
	configs *storage.ConfigStore
	graph   *semantic.Store
	mirror  *Mirror
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(cat *catalog.Catalog, log *storage.ObservationLog, configs *storage.ConfigStore,
	graph *semantic.Store, mirror *Mirror, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		catalog: cat,
		log:     log,
		configs: configs,
		graph:   graph,
		mirror:  mirror,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Ingest runs the full pipeline for one raw payload. Validation failures
// (empty payload, unknown plant type, bad numerics) return a
// ValidationError before anything is written; store failures return a
// PersistenceError.
func (s *Service) Ingest(ctx context.Context, payload *model.IncomingObservation) (*model.IngestionResult, error) {
	res, err := s.ingest(ctx, payload)
	if s.metrics != nil {
		switch {
		case err == nil:
			s.metrics.ObserveIngestOutcome("stored")
			s.metrics.ObserveRecommendation(string(res.Recommendations.Status))
		case IsValidation(err):
			s.metrics.ObserveIngestOutcome("validation_error")
		default:
			s.metrics.ObserveIngestOutcome("persistence_error")
		}
	}
	return res, err
}

func (s *Service) ingest(ctx context.Context, payload *model.IncomingObservation) (*model.IngestionResult, error) {
	if payload.Empty() {
		return nil, validationf("json body required")
	}

	cfg, err := s.configs.LoadActive()
	if err != nil {
		return nil, &PersistenceError{Op: "load active config", Err: err}
	}

	// payload wins over active config; plant type falls back to the
	// hardcoded default as a last resort
	plantName := firstNonEmpty(payload.PlantName, cfg.PlantName)
	location := firstNonEmpty(payload.Location, cfg.Location)
	plantType := firstNonEmpty(payload.PlantType, cfg.PlantType, FallbackPlantType)

	profile := s.catalog.Get(plantType)
	if profile == nil {
		return nil, validationf("invalid plant type %q", plantType)
	}

	timestamp := payload.Timestamp
	if timestamp == "" {
		timestamp = s.now().UTC().Format(time.RFC3339)
	}

	temperature, err := asFloat(payload.Temperature, "temperature")
	if err != nil {
		return nil, err
	}
	humidity, err := asFloat(payload.Humidity, "humidity")
	if err != nil {
		return nil, err
	}
	lux := payload.Illuminance
	if lux == nil {
		lux = payload.Light
	}
	illuminance, err := asFloat(lux, "illuminance")
	if err != nil {
		return nil, err
	}

	obs := model.Observation{
		PlantName:     plantName,
		Location:      location,
		PlantType:     plantType,
		Temperature:   temperature,
		Humidity:      humidity,
		Illuminance:   illuminance,
		Timestamp:     timestamp,
		PlantConfigID: cfg.PlantConfigID,
	}

	// log first, then graph: two independent durable writes. A graph
	// failure after a successful log write is logged as an
	// inconsistency, not rolled back.
	if err := s.log.Append(obs); err != nil {
		return nil, &PersistenceError{Op: "append observation", Err: err}
	}
	if _, err := s.graph.AddObservation(
		semantic.Readings{Temperature: &temperature, Humidity: &humidity, Illuminance: &illuminance},
		semantic.Meta{PlantName: plantName, Location: location, Timestamp: timestamp, PlantType: plantType},
	); err != nil {
		s.logger.Error("ingest: graph write failed after log write, stores diverge",
			zap.String("plantType", plantType), zap.String("timestamp", timestamp), zap.Error(err))
		return nil, &PersistenceError{Op: "append graph observation", Err: err}
	}

	if s.mirror != nil {
		// best effort, never fails the ingest
		s.mirror.Record(ctx, obs)
	}

	recs := recommend.Build(recommend.Payload{
		Temperature: temperature,
		Humidity:    humidity,
		Illuminance: &illuminance,
	}, profile)

	return &model.IngestionResult{
		Stored:          true,
		Timestamp:       timestamp,
		PlantType:       plantType,
		PlantProfile:    profile,
		Recommendations: recs,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// asFloat normalizes the loosely typed numeric fields: JSON numbers,
// quoted numbers and integer values are all accepted.
func asFloat(v any, field string) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, validationf("invalid field %s", field)
}
