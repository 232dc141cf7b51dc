// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-topdown/pkg/input"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

var (
	// ErrInvalidMaxSpeed is returned when the speed cap is not a positive finite number
	ErrInvalidMaxSpeed = errors.New("max speed must be positive and finite")
	// ErrInvalidStart is returned when the start pose is not finite
	ErrInvalidStart = errors.New("start position and facing must be finite")
	// ErrInvalidLoop is returned for a non-positive tick rate or delta cap
	ErrInvalidLoop = errors.New("invalid loop settings")
	// ErrInvalidWindow is returned for non-positive window dimensions
	ErrInvalidWindow = errors.New("invalid window settings")
	// ErrDuplicateBinding is returned when a symbol is bound twice
	ErrDuplicateBinding = errors.New("duplicate binding")
	// ErrUnsupportedFormat is returned for config files that are neither JSON nor YAML
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Config contains everything needed to build and host a simulation
type Config struct {
	Movement MovementConfig  `json:"movement" yaml:"movement"`
	Bindings []BindingConfig `json:"bindings" yaml:"bindings"`
	Window   WindowConfig    `json:"window" yaml:"window"`
	Loop     LoopConfig      `json:"loop" yaml:"loop"`
}

// MovementConfig holds the body limits and steering tuning
type MovementConfig struct {
	MaxSpeed            float64 `json:"maxSpeed" yaml:"maxSpeed"`
	Acceleration        float64 `json:"acceleration" yaml:"acceleration"`
	Deceleration        float64 `json:"deceleration" yaml:"deceleration"`
	TurnRate            float64 `json:"turnRate" yaml:"turnRate"`
	FacingOffsetDegrees float64 `json:"facingOffsetDegrees" yaml:"facingOffsetDegrees"`
	Steering            string  `json:"steering" yaml:"steering"`
	StartX              float64 `json:"startX" yaml:"startX"`
	StartY              float64 `json:"startY" yaml:"startY"`
	StartFacing         float64 `json:"startFacing" yaml:"startFacing"`
}

// BindingConfig binds one input symbol to a raw direction
type BindingConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
}

// WindowConfig describes the host window
type WindowConfig struct {
	Title    string  `json:"title" yaml:"title"`
	Width    int     `json:"width" yaml:"width"`
	Height   int     `json:"height" yaml:"height"`
	BodySize float64 `json:"bodySize" yaml:"bodySize"`
}

// LoopConfig controls the fixed-rate driver
type LoopConfig struct {
	TickRate     int     `json:"tickRate" yaml:"tickRate"`
	MaxDeltaTime float64 `json:"maxDeltaTime" yaml:"maxDeltaTime"`
}

// DefaultConfig returns the stock configuration: a 640x480 window with
// the body at its centre, WASD bindings and the prototype tuning.
func DefaultConfig() *Config {
	bindings := make([]BindingConfig, 0, 4)
	for _, sym := range []input.Symbol{"W", "S", "A", "D"} {
		dir := input.DefaultBindings()[sym]
		bindings = append(bindings, BindingConfig{Symbol: string(sym), X: dir.X, Y: dir.Y})
	}

	return &Config{
		Movement: MovementConfig{
			MaxSpeed:            physics.DefaultMaxSpeed,
			Acceleration:        physics.DefaultAcceleration,
			Deceleration:        physics.DefaultDeceleration,
			TurnRate:            physics.DefaultTurnRate,
			FacingOffsetDegrees: 90,
			Steering:            physics.SteerShortest.String(),
			StartX:              320,
			StartY:              240,
			StartFacing:         0,
		},
		Bindings: bindings,
		Window: WindowConfig{
			Title:    "top-down",
			Width:    640,
			Height:   480,
			BodySize: 100,
		},
		Loop: LoopConfig{
			TickRate:     60,
			MaxDeltaTime: 0.1,
		},
	}
}

// Tuning converts the movement section into physics tuning
func (c *Config) Tuning() (physics.Tuning, error) {
	mode, err := physics.ParseSteeringMode(c.Movement.Steering)
	if err != nil {
		return physics.Tuning{}, err
	}

	tuning := physics.Tuning{
		Acceleration: c.Movement.Acceleration,
		Deceleration: c.Movement.Deceleration,
		TurnRate:     c.Movement.TurnRate,
		FacingOffset: c.Movement.FacingOffsetDegrees * math.Pi / 180,
		Steering:     mode,
	}
	if err := tuning.Validate(); err != nil {
		return physics.Tuning{}, err
	}
	return tuning, nil
}

// Mapping builds the immutable direction mapping from the bindings list
func (c *Config) Mapping() (input.DirectionMapping, error) {
	table := make(map[input.Symbol]physics.Vector2D, len(c.Bindings))
	for _, b := range c.Bindings {
		sym := input.Symbol(b.Symbol)
		if _, dup := table[sym]; dup {
			return input.DirectionMapping{}, fmt.Errorf("%w: %q", ErrDuplicateBinding, b.Symbol)
		}
		table[sym] = physics.Vector2D{X: b.X, Y: b.Y}
	}
	return input.NewDirectionMapping(table)
}

// StartState returns the initial movement state
func (c *Config) StartState() physics.MovementState {
	return physics.MovementState{
		Position: physics.Vector2D{X: c.Movement.StartX, Y: c.Movement.StartY},
		Facing:   c.Movement.StartFacing,
		MaxSpeed: c.Movement.MaxSpeed,
	}
}

// Validate checks every section and returns the first problem found
func (c *Config) Validate() error {
	m := c.Movement
	if !(m.MaxSpeed > 0) || math.IsInf(m.MaxSpeed, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidMaxSpeed, m.MaxSpeed)
	}
	if !finite(m.StartX) || !finite(m.StartY) || !finite(m.StartFacing) {
		return ErrInvalidStart
	}
	if _, err := c.Tuning(); err != nil {
		return fmt.Errorf("movement: %w", err)
	}
	if _, err := c.Mapping(); err != nil {
		return fmt.Errorf("bindings: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindow, c.Window.Width, c.Window.Height)
	}
	if !(c.Window.BodySize > 0) || math.IsInf(c.Window.BodySize, 0) {
		return fmt.Errorf("%w: body size %v", ErrInvalidWindow, c.Window.BodySize)
	}
	if c.Loop.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate %d", ErrInvalidLoop, c.Loop.TickRate)
	}
	if !(c.Loop.MaxDeltaTime > 0) || math.IsInf(c.Loop.MaxDeltaTime, 0) {
		return fmt.Errorf("%w: max delta time %v", ErrInvalidLoop, c.Loop.MaxDeltaTime)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatFor(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadConfig loads a configuration from a JSON or YAML file, chosen by
// extension. Fields missing from the file keep their default values.
// The result is validated.
func LoadConfig(path string) (*Config, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// SaveConfig saves a configuration as JSON or YAML, chosen by extension
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return errors.New("nil config")
	}
	f, err := formatFor(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatYAML:
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
