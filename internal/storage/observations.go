package storage

import (
	"sync"

	"github.com/smartplant/smartplant/internal/model"
)

// MaxObservations caps the durable history; the oldest entries are
// evicted first once the cap is exceeded.
const MaxObservations = 200

// ObservationLog is the append-only bounded history of ingested readings.
type ObservationLog struct {
	mu   sync.Mutex
	path string
	max  int
}

func NewObservationLog(path string) *ObservationLog {
	return &ObservationLog{path: path, max: MaxObservations}
}

// Append adds one observation at the end of the log, dropping the oldest
// entries beyond the cap.
func (l *ObservationLog) Append(obs model.Observation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var data []model.Observation
	if _, err := readJSON(l.path, &data); err != nil {
		return err
	}
	data = append(data, obs)
	if len(data) > l.max {
		data = data[len(data)-l.max:]
	}
	return writeJSON(l.path, data)
}

// Query returns the observations matching the given filters in
// chronological order. Each non-empty filter is an exact match; a limit
// of zero returns every match, otherwise only the most recent limit
// entries are returned.
func (l *ObservationLog) Query(limit int, configID, plantType string) ([]model.Observation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var data []model.Observation
	if _, err := readJSON(l.path, &data); err != nil {
		return nil, err
	}
	out := make([]model.Observation, 0, len(data))
	for _, item := range data {
		if configID != "" && (item.PlantConfigID == nil || *item.PlantConfigID != configID) {
			continue
		}
		if plantType != "" && item.PlantType != plantType {
			continue
		}
		out = append(out, item)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Clear wipes the history. Maintenance helper, not part of the ingestion
// path.
func (l *ObservationLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeJSON(l.path, []model.Observation{})
}
