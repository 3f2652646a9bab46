package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the shared configuration for the recorder and its bench tools.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Storage   StorageConfig   `yaml:"storage"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Indicator IndicatorConfig `yaml:"indicator"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Web       WebConfig       `yaml:"web"`
	GPS       GPSConfig       `yaml:"gps"`
}

// StorageConfig locates the flight logs on the removable medium.
type StorageConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Ext    string `yaml:"ext"`
}

// SensorConfig selects and tunes the barometer.
type SensorConfig struct {
	Driver                  string        `yaml:"driver"` // bmxx80, serial or sim
	Bus                     string        `yaml:"bus"`    // i2c or spi
	Device                  string        `yaml:"device"` // bus name, empty picks the first one
	Address                 uint16        `yaml:"address"`
	PressureOversampling    int           `yaml:"pressure_oversampling"`
	TemperatureOversampling int           `yaml:"temperature_oversampling"`
	IIRFilter               int           `yaml:"iir_filter"` // 0 disables the filter
	SeaLevelHPa             float64       `yaml:"sea_level_hpa"`
	SampleInterval          time.Duration `yaml:"sample_interval"`
	SerialPort              string        `yaml:"serial_port"` // serial driver only
	SerialBaud              int           `yaml:"serial_baud"`
}

// IndicatorConfig selects the status light hardware.
type IndicatorConfig struct {
	Driver    string `yaml:"driver"`     // apa102, gpio or off
	SPIDevice string `yaml:"spi_device"` // apa102 driver
	Intensity uint8  `yaml:"intensity"`
	RedPin    string `yaml:"red_pin"` // gpio driver
	GreenPin  string `yaml:"green_pin"`
}

// MQTTConfig is shared by the bench producer and the ground view.
type MQTTConfig struct {
	Broker          string `yaml:"broker"`
	ClientIDBench   string `yaml:"client_id_bench"`
	ClientIDWeb     string `yaml:"client_id_web"`
	ClientIDConsole string `yaml:"client_id_console"`
	Topic           string `yaml:"topic"`
}

// WebConfig configures the ground view server.
type WebConfig struct {
	Addr        string `yaml:"addr"`
	StaticDir   string `yaml:"static_dir"`
	HistoryPath string `yaml:"history_path"`
}

// GPSConfig configures the recovery tracker.
type GPSConfig struct {
	SerialPort  string `yaml:"serial_port"`
	BaudRate    int    `yaml:"baud_rate"`
	TrackPrefix string `yaml:"track_prefix"`
}

// Default returns a configuration with sensible values for a Pi Zero
// based recorder.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Dir:    "/mnt/flightdata",
			Prefix: "flight_",
			Ext:    ".csv",
		},
		Sensor: SensorConfig{
			Driver:                  "bmxx80",
			Bus:                     "i2c",
			Address:                 0x76,
			PressureOversampling:    8,
			TemperatureOversampling: 1,
			IIRFilter:               4,
			SeaLevelHPa:             1013.25,
			SampleInterval:          50 * time.Millisecond, // 20 Hz
			SerialPort:              "/dev/ttyAMA1",
			SerialBaud:              115200,
		},
		Indicator: IndicatorConfig{
			Driver:    "apa102",
			Intensity: 96,
			RedPin:    "GPIO23",
			GreenPin:  "GPIO24",
		},
		MQTT: MQTTConfig{
			Broker:          "tcp://localhost:1883",
			ClientIDBench:   "flight-bench-producer",
			ClientIDWeb:     "flight-ground-view",
			ClientIDConsole: "flight-bench-console",
			Topic:           "flight/reading",
		},
		Web: WebConfig{
			Addr:        ":8080",
			StaticDir:   "web",
			HistoryPath: "bench_history.db",
		},
		GPS: GPSConfig{
			SerialPort:  "/dev/serial0",
			BaudRate:    9600,
			TrackPrefix: "track_",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ensureDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ensureDefaults refills fields an edited file may have blanked. Zero is
// kept where it is a meaningful setting (IIR filter off).
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Storage.Dir == "" {
		c.Storage.Dir = def.Storage.Dir
	}
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = def.Storage.Prefix
	}
	if c.Storage.Ext == "" {
		c.Storage.Ext = def.Storage.Ext
	}

	if c.Sensor.Driver == "" {
		c.Sensor.Driver = def.Sensor.Driver
	}
	if c.Sensor.Bus == "" {
		c.Sensor.Bus = def.Sensor.Bus
	}
	if c.Sensor.Address == 0 {
		c.Sensor.Address = def.Sensor.Address
	}
	if c.Sensor.PressureOversampling == 0 {
		c.Sensor.PressureOversampling = def.Sensor.PressureOversampling
	}
	if c.Sensor.TemperatureOversampling == 0 {
		c.Sensor.TemperatureOversampling = def.Sensor.TemperatureOversampling
	}
	if c.Sensor.SeaLevelHPa == 0 {
		c.Sensor.SeaLevelHPa = def.Sensor.SeaLevelHPa
	}
	if c.Sensor.SampleInterval == 0 {
		c.Sensor.SampleInterval = def.Sensor.SampleInterval
	}
	if c.Sensor.SerialBaud == 0 {
		c.Sensor.SerialBaud = def.Sensor.SerialBaud
	}

	if c.Indicator.Driver == "" {
		c.Indicator.Driver = def.Indicator.Driver
	}
	if c.Indicator.Intensity == 0 {
		c.Indicator.Intensity = def.Indicator.Intensity
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.ClientIDBench == "" {
		c.MQTT.ClientIDBench = def.MQTT.ClientIDBench
	}
	if c.MQTT.ClientIDWeb == "" {
		c.MQTT.ClientIDWeb = def.MQTT.ClientIDWeb
	}
	if c.MQTT.ClientIDConsole == "" {
		c.MQTT.ClientIDConsole = def.MQTT.ClientIDConsole
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}

	if c.Web.Addr == "" {
		c.Web.Addr = def.Web.Addr
	}
	if c.Web.StaticDir == "" {
		c.Web.StaticDir = def.Web.StaticDir
	}
	if c.Web.HistoryPath == "" {
		c.Web.HistoryPath = def.Web.HistoryPath
	}

	if c.GPS.SerialPort == "" {
		c.GPS.SerialPort = def.GPS.SerialPort
	}
	if c.GPS.BaudRate == 0 {
		c.GPS.BaudRate = def.GPS.BaudRate
	}
	if c.GPS.TrackPrefix == "" {
		c.GPS.TrackPrefix = def.GPS.TrackPrefix
	}
}

// validate checks value ranges the drivers cannot express.
func (c *Config) validate() error {
	switch c.Sensor.Driver {
	case "bmxx80", "serial", "sim":
	default:
		return fmt.Errorf("invalid sensor driver %q (allowed: bmxx80, serial, sim)", c.Sensor.Driver)
	}
	switch c.Sensor.Bus {
	case "i2c", "spi":
	default:
		return fmt.Errorf("invalid sensor bus %q (allowed: i2c, spi)", c.Sensor.Bus)
	}
	if !validOversampling(c.Sensor.PressureOversampling) {
		return fmt.Errorf("invalid pressure_oversampling %d (allowed: 1, 2, 4, 8, 16)", c.Sensor.PressureOversampling)
	}
	if !validOversampling(c.Sensor.TemperatureOversampling) {
		return fmt.Errorf("invalid temperature_oversampling %d (allowed: 1, 2, 4, 8, 16)", c.Sensor.TemperatureOversampling)
	}
	switch c.Sensor.IIRFilter {
	case 0, 2, 4, 8, 16:
	default:
		return fmt.Errorf("invalid iir_filter %d (allowed: 0, 2, 4, 8, 16)", c.Sensor.IIRFilter)
	}
	if c.Sensor.SampleInterval <= 0 {
		return fmt.Errorf("invalid sample_interval %s", c.Sensor.SampleInterval)
	}
	if c.Sensor.SeaLevelHPa <= 0 {
		return fmt.Errorf("invalid sea_level_hpa %g", c.Sensor.SeaLevelHPa)
	}
	if c.Sensor.Driver == "serial" && c.Sensor.SerialPort == "" {
		return fmt.Errorf("sensor serial_port is required for the serial driver")
	}

	switch c.Indicator.Driver {
	case "apa102", "gpio", "off":
	default:
		return fmt.Errorf("invalid indicator driver %q (allowed: apa102, gpio, off)", c.Indicator.Driver)
	}
	if c.Indicator.Driver == "gpio" && (c.Indicator.RedPin == "" || c.Indicator.GreenPin == "") {
		return fmt.Errorf("indicator red_pin and green_pin are required for the gpio driver")
	}

	return nil
}

func validOversampling(n int) bool {
	switch n {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}
