// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/opd-ai/go-topdown/pkg/physics"
)

// Environment variables that override file configuration
const (
	EnvMaxSpeed     = "TOPDOWN_MAX_SPEED"
	EnvAcceleration = "TOPDOWN_ACCELERATION"
	EnvDeceleration = "TOPDOWN_DECELERATION"
	EnvTurnRate     = "TOPDOWN_TURN_RATE"
	EnvSteering     = "TOPDOWN_STEERING"
	EnvTickRate     = "TOPDOWN_TICK_RATE"
)

// LoadConfigFromEnv returns the default configuration with environment
// overrides applied and validated.
func LoadConfigFromEnv() (*Config, error) {
	config := DefaultConfig()
	if err := ApplyEnvironmentOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	return config, nil
}

// ApplyEnvironmentOverrides replaces config values with any TOPDOWN_*
// variables that are set. A set but unparsable variable is an error;
// range checks are left to Validate.
func ApplyEnvironmentOverrides(config *Config) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{EnvMaxSpeed, &config.Movement.MaxSpeed},
		{EnvAcceleration, &config.Movement.Acceleration},
		{EnvDeceleration, &config.Movement.Deceleration},
		{EnvTurnRate, &config.Movement.TurnRate},
	}
	for _, f := range floats {
		if err := overrideFloat(f.key, f.dst); err != nil {
			return err
		}
	}

	if v, ok := lookupEnv(EnvSteering); ok {
		if _, err := physics.ParseSteeringMode(v); err != nil {
			return fmt.Errorf("%s: %w", EnvSteering, err)
		}
		config.Movement.Steering = strings.ToLower(v)
	}

	if v, ok := lookupEnv(EnvTickRate); ok {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTickRate, err)
		}
		config.Loop.TickRate = rate
	}

	return nil
}

func overrideFloat(key string, dst *float64) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// lookupEnv treats blank values as unset
func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
