package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/flight"
)

// RunConsole prints bench telemetry to stdout as it arrives, for
// watching a checkout without the web UI.
func RunConsole(ctx context.Context, cfg *config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	slog.Info("connected to MQTT broker", "broker", cfg.MQTT.Broker)

	token := client.Subscribe(cfg.MQTT.Topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r flight.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			slog.Warn("telemetry unmarshal failed", "err", err)
			return
		}
		fmt.Printf("t=%8dms  alt=%8.2fm  p=%8.2fhPa  T=%6.2fC\n",
			r.Timestamp, r.Altitude, r.Pressure, r.Temperature)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt subscribe: %w", token.Error())
	}
	slog.Info("subscribed", "topic", cfg.MQTT.Topic)

	<-ctx.Done()
	return ctx.Err()
}
