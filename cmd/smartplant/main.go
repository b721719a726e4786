package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/api"
	"github.com/smartplant/smartplant/internal/bridge"
	"github.com/smartplant/smartplant/internal/catalog"
	"github.com/smartplant/smartplant/internal/config"
	"github.com/smartplant/smartplant/internal/ingest"
	"github.com/smartplant/smartplant/internal/metrics"
	"github.com/smartplant/smartplant/internal/semantic"
	"github.com/smartplant/smartplant/internal/storage"
	"github.com/smartplant/smartplant/pkg/mqtt"
)

func newLogger() *zap.Logger {
	if os.Getenv("LOG_DEVEL") != "" {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// the catalog is the only fatal dependency: a backend without plant
	// profiles cannot validate anything
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("plant catalog load failed", zap.Error(err))
	}
	logger.Info("plant catalog loaded",
		zap.String("path", cfg.CatalogPath), zap.Int("profiles", len(cat.Profiles())))

	obsLog := storage.NewObservationLog(filepath.Join(cfg.DataDir, "observations.json"))
	configs := storage.NewConfigStore(
		filepath.Join(cfg.DataDir, "config.json"),
		filepath.Join(cfg.DataDir, "plant_configs.json"),
	)
	graph := semantic.Open(filepath.Join(cfg.DataDir, "observations.ttl"), logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	mirror := ingest.NewMirror(ingest.MirrorConfig{
		URL:             cfg.Influx.URL,
		Token:           cfg.Influx.Token,
		Org:             cfg.Influx.Org,
		Bucket:          cfg.Influx.Bucket,
		Measurement:     cfg.Influx.Measurement,
		BreakerFailures: uint32(cfg.Influx.BreakerFailures),
		BreakerOpenFor:  cfg.Influx.BreakerOpenFor,
	}, logger)
	if mirror != nil {
		logger.Info("influx mirror enabled", zap.String("url", cfg.Influx.URL), zap.String("bucket", cfg.Influx.Bucket))
	}

	pipeline := ingest.NewService(cat, obsLog, configs, graph, mirror, m, logger)

	mux := api.NewHTTPMux(api.Deps{
		Catalog:  cat,
		Log:      obsLog,
		Configs:  configs,
		Graph:    graph,
		Pipeline: pipeline,
		Device: api.DeviceInfo{
			ID:          "esp32-smartplant",
			MQTTTopic:   cfg.MQTT.Topic,
			MQTTHost:    cfg.MQTT.Host,
			MQTTPort:    cfg.MQTT.Port,
			MQTTEnabled: cfg.MQTT.Enabled,
		},
		Gatherer: registry,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(ctx, mqtt.Config{
			Host:     cfg.MQTT.Host,
			Port:     cfg.MQTT.Port,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			ClientID: cfg.MQTT.ClientID,
		}, logger)
		if err != nil {
			// the HTTP path still works without the broker
			logger.Warn("mqtt bridge disabled, broker unreachable", zap.Error(err))
		} else {
			go bridge.New(client, cfg.MQTT.Topic, pipeline, logger).Run(ctx)
		}
	} else {
		logger.Info("mqtt bridge disabled by config")
	}

	<-ctx.Done()
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	logger.Info("shutdown complete")
}
