// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-topdown/pkg/config"
	"github.com/opd-ai/go-topdown/pkg/engine"
	"github.com/opd-ai/go-topdown/pkg/event"
	"github.com/opd-ai/go-topdown/pkg/logging"
)

// GameScene hosts one simulation session in an engo window
type GameScene struct {
	world *ecs.World

	session  *engine.Session
	eventBus *event.Bus
	config   *config.Config
	logger   *logging.Logger

	// Systems
	renderer   *EngoRenderer
	camera     *CameraSystem
	input      *InputSystem
	simulation *SimulationSystem
	hud        *HUDSystem
	assets     *AssetManager
}

// NewGameScene creates a new game scene. The session is attached to
// eventBus when the scene starts and detached when it exits.
func NewGameScene(session *engine.Session, eventBus *event.Bus, cfg *config.Config, logger *logging.Logger) *GameScene {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &GameScene{
		session:  session,
		eventBus: eventBus,
		config:   cfg,
		logger:   logger.With("component", "engo_scene"),
		world:    &ecs.World{},
	}
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "GameScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *GameScene) Preload() {
	if err := PreloadFont(); err != nil {
		scene.logger.Error(context.Background(), "Failed to preload HUD font", err)
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	ctx := context.Background()
	if w, ok := u.(*ecs.World); ok {
		scene.world = w
	}
	common.SetBackground(color.Black)

	scene.buildSystems()

	renderSystem := &common.RenderSystem{}
	scene.world.AddSystem(renderSystem)

	scene.assets = NewAssetManager()
	if err := scene.assets.LoadAssets(); err != nil {
		scene.logger.Error(ctx, "Failed to load assets", err)
	}
	scene.renderer.Initialize(renderSystem, scene.assets)
	if err := scene.hud.Initialize(renderSystem); err != nil {
		scene.logger.Error(ctx, "HUD text disabled", err)
	}

	SetupCameraControls()
	for _, sym := range SetupInputBindings(scene.session.Mapping()) {
		scene.logger.Warn(ctx, "No key for bound symbol", "symbol", string(sym))
	}

	scene.session.Attach(scene.eventBus)
	scene.eventBus.Publish(&event.BaseEvent{EventType: event.SessionStarted, Source: scene})
	scene.logger.Info(ctx, "Scene started",
		"width", scene.config.Window.Width,
		"height", scene.config.Window.Height,
	)
}

// buildSystems creates the simulation-facing systems and adds them to the
// world. It needs no GL context.
func (scene *GameScene) buildSystems() {
	win := scene.config.Window

	scene.camera = NewCameraSystem(float32(win.Width), float32(win.Height))
	scene.camera.Track(scene.session)

	scene.input = NewInputSystem(scene.eventBus, scene.session.Mapping(), scene.camera)
	scene.simulation = NewSimulationSystem(scene.session)
	scene.renderer = NewEngoRenderer(scene.session, scene.camera, float32(win.BodySize))
	scene.hud = NewHUDSystem(scene.session)

	scene.world.AddSystem(scene.input)
	scene.world.AddSystem(scene.simulation)
	scene.world.AddSystem(scene.camera)
	scene.world.AddSystem(scene.renderer)
	scene.world.AddSystem(scene.hud)
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *GameScene) Exit() {
	scene.session.Detach()
	scene.eventBus.Publish(&event.BaseEvent{EventType: event.SessionStopped, Source: scene})
	scene.logger.Info(context.Background(), "Scene exited", "ticks", scene.session.Tick())
}

// Run opens the window and blocks until it is closed
func Run(scene *GameScene) {
	win := scene.config.Window
	engo.Run(engo.RunOptions{
		Title:          win.Title,
		Width:          win.Width,
		Height:         win.Height,
		StandardInputs: false,
		FPSLimit:       scene.config.Loop.TickRate,
	}, scene)
}
