package ingest

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/model"
)

// MirrorConfig configures the optional time-series mirror. An empty URL
// disables it.
type MirrorConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string

	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// Mirror forwards each stored observation to InfluxDB as a best-effort
// third sink. The remote write sits behind a circuit breaker so a dead
// Influx endpoint costs one failed call per open interval instead of a
// timeout per ingest.
type Mirror struct {
	write       api.WriteAPIBlocking
	breaker     *gobreaker.CircuitBreaker
	measurement string
	logger      *zap.Logger
}

// NewMirror returns nil when the mirror is not configured.
func NewMirror(cfg MirrorConfig, logger *zap.Logger) *Mirror {
	if cfg.URL == "" {
		return nil
	}
	if cfg.Measurement == "" {
		cfg.Measurement = "plant_observation"
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 3
	}
	openFor := cfg.BreakerOpenFor
	if openFor == 0 {
		openFor = 30 * time.Second
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "influx-mirror",
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
	})
	return &Mirror{
		write:       client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		breaker:     cb,
		measurement: cfg.Measurement,
		logger:      logger,
	}
}

// Record writes one observation point. Failures are logged and swallowed;
// the mirror never decides the outcome of an ingest.
func (m *Mirror) Record(ctx context.Context, obs model.Observation) {
	ts, err := time.Parse(time.RFC3339, obs.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	tags := map[string]string{
		"plant_type": obs.PlantType,
		"location":   obs.Location,
	}
	if obs.PlantConfigID != nil {
		tags["plant_config_id"] = *obs.PlantConfigID
	}
	fields := map[string]interface{}{
		"temperature": obs.Temperature,
		"humidity":    obs.Humidity,
		"illuminance": obs.Illuminance,
	}
	point := influxdb2.NewPoint(m.measurement, tags, fields, ts)

	if _, err := m.breaker.Execute(func() (any, error) {
		return nil, m.write.WritePoint(ctx, point)
	}); err != nil {
		m.logger.Warn("mirror: influx write skipped",
			zap.String("state", m.breaker.State().String()), zap.Error(err))
	}
}
