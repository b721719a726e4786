// Package recommend derives care advice from a sensor reading and an
// optional plant profile. The evaluation is pure: no I/O, no state, same
// input always yields the same output.
package recommend

import (
	"github.com/smartplant/smartplant/internal/model"
)

// Global acceptance bands used when a profile does not constrain a
// metric.
var defaultRanges = map[string]model.Range{
	"temperature": {Min: 18, Max: 28},
	"humidity":    {Min: 40, Max: 70},
	"illuminance": {Min: 200, Max: 800},
}

type messageSet struct {
	ok, low, high string
}

var messages = map[string]messageSet{
	"temperature": {
		ok:   "Temperature is ideal",
		low:  "Move to a warmer spot",
		high: "Move to a cooler spot",
	},
	"humidity": {
		ok:   "Humidity is stable",
		low:  "Water the plant",
		high: "Reduce watering or increase airflow",
	},
	"light": {
		ok:   "Light level is adequate",
		low:  "Move closer to a window",
		high: "Filter direct light or relocate the plant",
	},
}

// Payload is the observation-like input of the engine. Illuminance and
// Light are aliases for the same metric; Illuminance wins when both are
// set, and an absent metric evaluates as zero.
type Payload struct {
	Temperature float64
	Humidity    float64
	Illuminance *float64
	Light       *float64
}

// FromObservation adapts a stored observation for re-evaluation.
func FromObservation(obs model.Observation) Payload {
	lux := obs.Illuminance
	return Payload{
		Temperature: obs.Temperature,
		Humidity:    obs.Humidity,
		Illuminance: &lux,
	}
}

// Build evaluates the payload against the profile's ranges (falling back
// to the global defaults per metric) and splits the outcome into alerts
// and tips. Evaluation order is fixed: temperature, humidity, light.
func Build(p Payload, profile *model.PlantProfile) model.RecommendationResult {
	light := 0.0
	switch {
	case p.Illuminance != nil:
		light = *p.Illuminance
	case p.Light != nil:
		light = *p.Light
	}

	var ranges model.Ranges
	if profile != nil {
		ranges = profile.Ranges
	}

	entries := []model.RecommendationEntry{
		evaluate("temperature", p.Temperature, selectRange(ranges.Temperature, "temperature")),
		evaluate("humidity", p.Humidity, selectRange(ranges.Humidity, "humidity")),
		evaluate("light", light, selectRange(ranges.Illuminance, "illuminance")),
	}

	result := model.RecommendationResult{
		Status: model.StatusOK,
		Alerts: []model.RecommendationEntry{},
		Tips:   []model.RecommendationEntry{},
	}
	for _, e := range entries {
		if e.Status == model.LevelOK {
			result.Tips = append(result.Tips, e)
		} else {
			result.Alerts = append(result.Alerts, e)
		}
	}
	if len(result.Alerts) > 0 {
		result.Status = model.StatusAlert
	}
	return result
}

func selectRange(r *model.Range, key string) model.Range {
	if r != nil {
		return *r
	}
	return defaultRanges[key]
}

// Boundary values classify ok: low only below min, high only above max.
func evaluate(feature string, value float64, r model.Range) model.RecommendationEntry {
	msg := messages[feature]
	switch {
	case value < r.Min:
		return model.RecommendationEntry{Feature: feature, Status: model.LevelLow, Message: msg.low}
	case value > r.Max:
		return model.RecommendationEntry{Feature: feature, Status: model.LevelHigh, Message: msg.high}
	default:
		return model.RecommendationEntry{Feature: feature, Status: model.LevelOK, Message: msg.ok}
	}
}
