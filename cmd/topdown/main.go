// cmd/topdown/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-topdown/pkg/config"
	"github.com/opd-ai/go-topdown/pkg/engine"
	"github.com/opd-ai/go-topdown/pkg/event"
	"github.com/opd-ai/go-topdown/pkg/logging"
	"github.com/opd-ai/go-topdown/pkg/render"
	engorender "github.com/opd-ai/go-topdown/pkg/render/engo"
	"github.com/opd-ai/go-topdown/pkg/telemetry"
)

// Terminal view size in character cells and world units per cell
const (
	terminalCols  = 64
	terminalRows  = 24
	terminalScale = 10.0
)

type options struct {
	configPath    string
	createDefault bool
	renderer      string
	ticks         int
	tracePath     string
	width         int
	height        int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.json", "Path to configuration file (.json, .yaml or .yml)")
	flag.BoolVar(&opts.createDefault, "default", false, "Create default configuration file and exit")
	flag.StringVar(&opts.renderer, "renderer", "engo", "Renderer type: 'engo', 'terminal' or 'headless'")
	flag.IntVar(&opts.ticks, "ticks", 0, "Ticks to run in terminal/headless mode (0 = one pass of the input script)")
	flag.StringVar(&opts.tracePath, "trace", "", "Write a per-tick CSV trace to this path")
	flag.IntVar(&opts.width, "width", 0, "Window width (Engo only, overrides config)")
	flag.IntVar(&opts.height, "height", 0, "Window height (Engo only, overrides config)")
	flag.Parse()

	// Terminal frames go to stdout, so logs move to stderr.
	logger := logging.NewLogger()
	if opts.renderer == "terminal" {
		logger = logging.NewLoggerTo(os.Stderr)
	}

	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())
	if err := run(ctx, opts, logger); err != nil {
		logger.Error(ctx, "Simulation failed", err, "renderer", opts.renderer)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *logging.Logger) error {
	if opts.createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			return logging.WrapError(err, "failed to create default configuration", "config_path", opts.configPath)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", opts.configPath)
		return nil
	}

	cfg, err := loadConfig(ctx, opts.configPath, logger)
	if err != nil {
		return err
	}
	if opts.width > 0 {
		cfg.Window.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Window.Height = opts.height
	}

	bus := event.NewEventBus()
	session, err := engine.NewSessionFromConfig(cfg, bus, logger)
	if err != nil {
		return err
	}
	session.Attach(bus)
	defer session.Detach()

	recorder, closeTrace, err := openTrace(opts.tracePath)
	if err != nil {
		return err
	}
	recorder.Attach(bus)

	switch opts.renderer {
	case "engo":
		engorender.Run(engorender.NewGameScene(session, bus, cfg, logger))
	case "terminal", "headless":
		err = runScripted(ctx, opts, cfg, session, bus, logger)
	default:
		err = fmt.Errorf("unknown renderer %q", opts.renderer)
	}

	recorder.Detach()
	if cerr := closeTrace(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	logSummary(ctx, logger, recorder.Summarize())
	return nil
}

// loadConfig reads path if it exists, falls back to defaults otherwise,
// and applies environment overrides.
func loadConfig(ctx context.Context, path string, logger *logging.Logger) (*config.Config, error) {
	var cfg *config.Config

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, logging.WrapError(err, "failed to load configuration", "config_path", path)
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, logging.WrapError(err, "failed to apply environment configuration")
	}
	return cfg, nil
}

// openTrace returns a recorder, streaming to path when one is given, and
// a function that closes the trace and reports any write error.
func openTrace(path string) (*telemetry.Recorder, func() error, error) {
	if path == "" {
		return telemetry.NewRecorder(), func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, logging.WrapError(err, "failed to create trace file", "trace_path", path)
	}
	recorder := telemetry.NewStreamingRecorder(f)
	closeTrace := func() error {
		werr := recorder.Err()
		if err := f.Close(); werr == nil {
			werr = err
		}
		if werr != nil {
			return logging.WrapError(werr, "failed to write trace", "trace_path", path)
		}
		return nil
	}
	return recorder, closeTrace, nil
}

// runScripted replays the input script. The terminal renderer draws every
// tick in real time; headless runs as fast as possible.
func runScripted(ctx context.Context, opts options, cfg *config.Config, session *engine.Session, bus *event.Bus, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	script := DefaultScript()
	total := opts.ticks
	if total <= 0 {
		total = ScriptLength(script)
	}
	dt := 1.0 / float64(cfg.Loop.TickRate)

	var afterTick func()
	if opts.renderer == "terminal" {
		term := render.NewTerminalRenderer(os.Stdout, terminalCols, terminalRows, terminalScale)
		term.ClearScreen = true
		term.Follow = true
		afterTick = terminalFrame(term, session, time.Duration(float64(time.Second)*dt))
		defer func() {
			if err := term.Err(); err != nil {
				logger.Warn(ctx, "Terminal output failed", "error", err.Error())
			}
		}()
	}

	logger.Info(ctx, "Replaying input script",
		"ticks", total,
		"dt", dt,
		"renderer", opts.renderer,
	)
	bus.Publish(&event.BaseEvent{EventType: event.SessionStarted, Source: "script"})
	ran := Replay(ctx, session, bus, script, total, dt, afterTick)
	bus.Publish(&event.BaseEvent{EventType: event.SessionStopped, Source: "script"})

	if ran < total {
		logger.Info(ctx, "Interrupted", "ticks", ran)
	}
	return nil
}

// terminalFrame draws one frame and paces the loop to the tick rate
func terminalFrame(term *render.TerminalRenderer, session *engine.Session, period time.Duration) func() {
	next := time.Now()
	return func() {
		render.DrawFrame(term, session, session.Aim())
		next = next.Add(period)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		}
	}
}

func logSummary(ctx context.Context, logger *logging.Logger, s telemetry.Summary) {
	logger.Info(ctx, "Run summary",
		"ticks", s.Ticks,
		"sim_time", s.SimTime,
		"distance", s.Distance,
		"mean_speed", s.MeanSpeed,
		"stddev_speed", s.StdDevSpeed,
		"median_speed", s.MedianSpeed,
		"p90_speed", s.P90Speed,
		"peak_speed", s.PeakSpeed,
		"final_x", s.FinalPosition.X,
		"final_y", s.FinalPosition.Y,
		"final_facing", s.FinalFacing,
	)
}
