// Package config loads the service configuration: defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	DataDir     string `yaml:"data_dir"`
	CatalogPath string `yaml:"catalog_path"`

	MQTT   MQTTConfig   `yaml:"mqtt"`
	Influx InfluxConfig `yaml:"influx"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
}

type InfluxConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`

	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerOpenFor  time.Duration `yaml:"breaker_open_for"`
}

func defaults() Config {
	return Config{
		HTTPAddr:    ":5000",
		DataDir:     "data",
		CatalogPath: "data/plants.json",
		MQTT: MQTTConfig{
			Enabled:  true,
			Host:     "localhost",
			Port:     1883,
			Topic:    "smartplant/observations",
			ClientID: "smartplant-backend",
		},
		Influx: InfluxConfig{
			Org:             "smartplant",
			Bucket:          "observations",
			Measurement:     "plant_observation",
			BreakerFailures: 3,
			BreakerOpenFor:  30 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicitly requested path is an error, everything else falls back to
// defaults plus environment.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("SMARTPLANT_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.CatalogPath == "" {
		cfg.CatalogPath = filepath.Join(cfg.DataDir, "plants.json")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := getenv("PORT", ""); v != "" {
		cfg.HTTPAddr = ":" + v
	}
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DataDir = getenv("DATA_DIR", cfg.DataDir)
	cfg.CatalogPath = getenv("PLANTS_FILE", cfg.CatalogPath)

	if v := getenv("MQTT_ENABLED", ""); v != "" {
		cfg.MQTT.Enabled = !strings.EqualFold(v, "false")
	}
	cfg.MQTT.Host = getenv("MQTT_BROKER_HOST", cfg.MQTT.Host)
	cfg.MQTT.Port = getenvInt("MQTT_BROKER_PORT", cfg.MQTT.Port)
	cfg.MQTT.Topic = getenv("MQTT_TOPIC", cfg.MQTT.Topic)
	cfg.MQTT.Username = getenv("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = getenv("MQTT_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.ClientID = getenv("MQTT_CLIENT_ID", cfg.MQTT.ClientID)

	cfg.Influx.URL = getenv("INFLUX_URL", cfg.Influx.URL)
	cfg.Influx.Token = getenv("INFLUX_TOKEN", cfg.Influx.Token)
	cfg.Influx.Org = getenv("INFLUX_ORG", cfg.Influx.Org)
	cfg.Influx.Bucket = getenv("INFLUX_BUCKET", cfg.Influx.Bucket)
	cfg.Influx.Measurement = getenv("INFLUX_MEASUREMENT", cfg.Influx.Measurement)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
