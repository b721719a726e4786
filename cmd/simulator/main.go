// Simulated sensor node: publishes fake readings to the observation
// topic so the backend can be exercised without hardware.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/config"
	"github.com/smartplant/smartplant/internal/simulator"
	"github.com/smartplant/smartplant/pkg/mqtt"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	interval := flag.Duration("interval", 10*time.Second, "publish interval")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mqtt.Connect(ctx, mqtt.Config{
		Host:     cfg.MQTT.Host,
		Port:     cfg.MQTT.Port,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		ClientID: cfg.MQTT.ClientID + "-simulator",
	}, logger)
	if err != nil {
		logger.Fatal("mqtt connect failed", zap.Error(err))
	}

	publisher := mqtt.NewPublisher(client, cfg.MQTT.Topic, logger)
	defer publisher.Close()

	gen := simulator.NewGenerator(time.Now().UnixNano())
	logger.Info("simulator publishing",
		zap.String("topic", cfg.MQTT.Topic), zap.Duration("interval", *interval))

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("simulator stopped")
			os.Exit(0)
		case now := <-ticker.C:
			reading := gen.Next(now)
			if err := publisher.Publish(reading); err != nil {
				logger.Warn("publish failed", zap.Error(err))
			}
		}
	}
}
