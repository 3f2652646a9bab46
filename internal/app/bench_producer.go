package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/sensors"
)

// RunBenchProducer polls the barometer on the configured interval and
// publishes each reading as JSON to MQTT. Bench checkout only; it never
// writes session files.
func RunBenchProducer(ctx context.Context, cfg *config.Config) error {
	dev, err := sensors.New(cfg.Sensor)
	if err != nil {
		return fmt.Errorf("sensor init: %w", err)
	}
	reader := sensors.NewReader(dev, cfg.Sensor.SeaLevelHPa)
	if err := reader.Init(); err != nil {
		return fmt.Errorf("sensor init: %w", err)
	}
	defer reader.Close()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientIDBench)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	slog.Info("connected to MQTT broker", "broker", cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Sensor.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		reading, err := reader.Next()
		if err != nil {
			slog.Warn("sensor poll failed", "err", err)
			continue
		}
		payload, err := json.Marshal(reading)
		if err != nil {
			slog.Warn("reading marshal failed", "err", err)
			continue
		}
		if token := client.Publish(cfg.MQTT.Topic, 0, true, payload); token.Wait() && token.Error() != nil {
			slog.Warn("publish failed", "err", token.Error())
		}
	}
}
