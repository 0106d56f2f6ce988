package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/bswanson58/NoiseHass/internal/pkg/topic"
)

var (
	ErrMissingDevice = errors.New("device name and device id are required")
	ErrBadSegment    = errors.New("status segment must be \"status\" or \"state\"")
)

type Config struct {
	Mqtt     MQTTConfig
	Device   DeviceConfig
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
}

type MQTTConfig struct {
	Broker   string `env:"MQTT_BROKER"`
	Username string `env:"MQTT_USER"`
	Password string `env:"MQTT_PASS"`
	ClientID string `env:"MQTT_CLIENT_ID" envDefault:"noisehass-bridge"`
}

type DeviceConfig struct {
	// Name is the display name of the entity.
	Name string `env:"DEVICE_NAME"`
	// DeviceID is the raw device identifier, used both for identity
	// normalization and for outbound topic segments.
	DeviceID string `env:"DEVICE_ID"`
	// Namespace is the topic base namespace shared with the device.
	Namespace string `env:"TOPIC_NAMESPACE" envDefault:"noisemusicsystem"`
	// StatusSegment selects the status topic segment the device firmware
	// uses, "status" or "state".
	StatusSegment string `env:"STATUS_SEGMENT" envDefault:"status"`
	// DeriveMute enables the legacy muted-from-zero-volume fallback for
	// payloads without an explicit muted field.
	DeriveMute bool `env:"DERIVE_MUTE" envDefault:"false"`
}

// FromEnv builds a Config from the environment. CLI flags may override the
// result before Validate.
func FromEnv() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Device.Name == "" || c.Device.DeviceID == "" {
		return ErrMissingDevice
	}
	if c.Device.StatusSegment != topic.SegmentStatus && c.Device.StatusSegment != topic.SegmentState {
		return fmt.Errorf("%w: got %q", ErrBadSegment, c.Device.StatusSegment)
	}
	if c.Mqtt.Broker == "" {
		return errors.New("mqtt broker is required")
	}
	return nil
}
