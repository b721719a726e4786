package model

// Range is an inclusive acceptance band for one environmental metric.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Ranges groups the care bands of a plant profile. A nil range means the
// profile does not constrain that metric and global defaults apply.
type Ranges struct {
	Temperature *Range `json:"temperature,omitempty"`
	Humidity    *Range `json:"humidity,omitempty"`
	Illuminance *Range `json:"illuminance,omitempty"`
}

// PlantProfile is one species entry of the static plant catalog.
type PlantProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Ranges      Ranges `json:"ranges"`
}

// DeviceConfig is the single active device/plant configuration.
type DeviceConfig struct {
	PlantName       string  `json:"plantName"`
	Location        string  `json:"location"`
	SamplingSeconds int     `json:"samplingSeconds"`
	PlantType       string  `json:"plantType"`
	PlantConfigID   *string `json:"plantConfigId"`
}

// ConfigPatch is a partial update of the active DeviceConfig. Nil fields
// keep their previous value.
type ConfigPatch struct {
	PlantName       *string `json:"plantName,omitempty"`
	Location        *string `json:"location,omitempty"`
	SamplingSeconds *int    `json:"samplingSeconds,omitempty"`
	PlantType       *string `json:"plantType,omitempty"`
	PlantConfigID   *string `json:"plantConfigId,omitempty"`
}

// SavedPlantConfig is a named configuration preset. Presets are appended
// and looked up, never mutated.
type SavedPlantConfig struct {
	ID              string `json:"id"`
	PlantName       string `json:"plantName"`
	Location        string `json:"location"`
	SamplingSeconds int    `json:"samplingSeconds"`
	PlantType       string `json:"plantType"`
}

// Observation is one ingested sensor reading. Timestamp is RFC3339 UTC.
type Observation struct {
	PlantName     string  `json:"plantName"`
	Location      string  `json:"location"`
	PlantType     string  `json:"plantType"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Illuminance   float64 `json:"illuminance"`
	Timestamp     string  `json:"timestamp"`
	PlantConfigID *string `json:"plantConfigId"`
}
