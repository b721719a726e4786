// Package simulator fakes the ESP32 sensor node for local development:
// it publishes plausible environment readings to the observation topic
// at the configured sampling interval.
package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Reading is the JSON payload published by the simulated node. It uses
// the "light" field alias on purpose, the way the firmware does.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Light       float64 `json:"light"`
	Timestamp   string  `json:"timestamp"`
}

// Generator produces a bounded random walk around indoor conditions,
// with illuminance following a day/night cycle.
type Generator struct {
	mu          sync.Mutex
	rng         *rand.Rand
	temperature float64
	humidity    float64
}

func NewGenerator(seed int64) *Generator {
	rng := rand.New(rand.NewSource(seed))
	return &Generator{
		rng:         rng,
		temperature: 21 + rng.Float64()*4,
		humidity:    50 + rng.Float64()*10,
	}
}

// Next advances the walk and returns one reading stamped now.
func (g *Generator) Next(now time.Time) Reading {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.temperature = clamp(g.temperature+g.rng.NormFloat64()*0.3, 10, 35)
	g.humidity = clamp(g.humidity+g.rng.NormFloat64()*1.2, 15, 95)

	// light peaks around 14:00 local time, near zero at night
	hour := float64(now.Hour()) + float64(now.Minute())/60
	daylight := math.Max(0, math.Sin((hour-6)/16*math.Pi))
	light := clamp(daylight*900+g.rng.Float64()*80, 0, 2000)

	return Reading{
		Temperature: round1(g.temperature),
		Humidity:    round1(g.humidity),
		Light:       round1(light),
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
