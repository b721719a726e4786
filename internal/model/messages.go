package model

// IncomingObservation is the loosely-structured payload accepted from both
// transports (HTTP body and MQTT message). Numeric fields are declared as
// `any` because devices send them either as JSON numbers or as quoted
// strings; the ingestion pipeline normalizes them exactly once.
type IncomingObservation struct {
	PlantName   string `json:"plantName,omitempty"`
	Location    string `json:"location,omitempty"`
	PlantType   string `json:"plantType,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	Temperature any    `json:"temperature,omitempty"`
	Humidity    any    `json:"humidity,omitempty"`
	Illuminance any    `json:"illuminance,omitempty"`
	Light       any    `json:"light,omitempty"`
}

// Empty reports whether the payload carries no data at all.
func (p *IncomingObservation) Empty() bool {
	if p == nil {
		return true
	}
	return p.PlantName == "" && p.Location == "" && p.PlantType == "" &&
		p.Timestamp == "" && p.Temperature == nil && p.Humidity == nil &&
		p.Illuminance == nil && p.Light == nil
}

// Level classifies one metric against its acceptance band.
type Level string

const (
	LevelOK   Level = "ok"
	LevelLow  Level = "low"
	LevelHigh Level = "high"
)

// OverallStatus summarizes a whole recommendation result.
type OverallStatus string

const (
	StatusOK    OverallStatus = "ok"
	StatusAlert OverallStatus = "alert"
)

// RecommendationEntry is one care tip or alert for a single feature.
type RecommendationEntry struct {
	Feature string `json:"feature"`
	Status  Level  `json:"status"`
	Message string `json:"message"`
}

// RecommendationResult is the derived care advice for one observation.
// It is recomputed on demand and never persisted.
type RecommendationResult struct {
	Status OverallStatus         `json:"status"`
	Alerts []RecommendationEntry `json:"alerts"`
	Tips   []RecommendationEntry `json:"tips"`
}

// IngestionResult is returned to the caller after a successful ingest.
type IngestionResult struct {
	Stored          bool                 `json:"stored"`
	Timestamp       string               `json:"timestamp"`
	PlantType       string               `json:"plantType"`
	PlantProfile    *PlantProfile        `json:"plantProfile"`
	Recommendations RecommendationResult `json:"recommendations"`
}
