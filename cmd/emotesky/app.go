package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/audio"
	"github.com/plus3/emotesky/chat"
	"github.com/plus3/emotesky/config"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/ecs/debugui"
	debugui_ebiten "github.com/plus3/emotesky/ecs/debugui/ebiten"
	"github.com/plus3/emotesky/render"
	"github.com/plus3/emotesky/render/term"
	"github.com/plus3/emotesky/render/window"
	"github.com/plus3/emotesky/sky"
	"github.com/sirupsen/logrus"
)

// app holds the wired scene, simulation and feeds.
type app struct {
	cfg *config.Config
	log *logrus.Entry

	clock     *ecs.SystemClock
	scene     *render.Scene
	camera    *render.Camera
	ctx       *sky.Context
	scheduler *ecs.Scheduler
	emotes    *sky.EmoteSpawner
	shapes    *assets.Slots[assets.CloudShape]
	images    *assets.ImageCache
	chat      *chat.Client
	audio     *audio.Manager
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*app, error) {
	a := &app{
		cfg:    cfg,
		log:    log,
		clock:  ecs.NewSystemClock(),
		scene:  render.NewScene(),
		camera: render.NewCamera(cfg.Window.FOV, cfg.Window.Width, cfg.Window.Height),
	}
	a.ctx = sky.NewContext(a.scene, a.clock, a.camera, cfg.Seed, log.WithField("component", "sky"))

	if err := a.loadClouds(ctx); err != nil {
		return nil, err
	}

	a.images = assets.NewImageCache(
		assets.HTTPFetcher(&http.Client{Timeout: 15 * time.Second}, cfg.Chat.ImageURL),
		4, log.WithField("component", "images"))
	a.scene.OnAdd(func(e *sky.Entity) {
		for _, s := range e.Sprites {
			a.images.Request(ctx, s.ID)
		}
	})

	a.emotes = sky.NewEmoteSpawner(a.ctx, cfg.Emotes)
	if cfg.Audio.Enabled {
		mgr, err := audio.Open(cfg.Audio.Volume, cfg.Seed, log.WithField("component", "audio"))
		if err != nil {
			log.WithError(err).Warn("Audio unavailable, continuing without sound")
		} else {
			a.audio = mgr
			a.emotes.OnSpawn(func(*sky.Entity) { mgr.Chime() })
		}
	}

	a.scheduler = ecs.NewScheduler(a.clock, a.ctx.Registry)
	a.scheduler.Register(a.emotes)
	switch cfg.Clouds.Mode {
	case config.CloudsRadial:
		ring := &sky.CloudRing{AngularVelocity: cfg.Clouds.Radial.AngularVelocity}
		a.scheduler.Register(ring)
		a.scheduler.Register(sky.NewRadialCloudSpawner(a.ctx, cfg.Clouds.Radial, ring, a.shapes))
	case config.CloudsDrift:
		a.scheduler.Register(sky.NewDriftCloudSpawner(a.ctx, cfg.Clouds.Drift, a.shapes))
	}
	a.scheduler.Register(a.ctx.Registry)

	a.chat = chat.NewClient(cfg.Chat, cfg.Channels, log.WithField("component", "chat"))
	return a, nil
}

func (a *app) loadClouds(ctx context.Context) error {
	fsys := assets.BuiltinClouds()
	if a.cfg.Clouds.Dir != "" {
		fsys = os.DirFS(a.cfg.Clouds.Dir)
	}

	names, err := assets.CloudFiles(fsys)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.log.Warn("No cloud definitions found")
	}

	a.shapes = assets.NewSlots[assets.CloudShape](len(names))
	assets.LoadClouds(ctx, fsys, names, a.shapes, a.log.WithField("component", "clouds"))
	return nil
}

// sprites converts the emotes of one chat message into a sprite batch.
func sprites(emotes []chat.Emote) []sky.Sprite {
	batch := make([]sky.Sprite, len(emotes))
	for i, e := range emotes {
		batch[i] = sky.Sprite{ID: e.ID, Name: e.Name}
	}
	return batch
}

func (a *app) listen(ctx context.Context) {
	err := a.chat.Listen(ctx, func(emotes []chat.Emote) {
		a.emotes.Enqueue(sprites(emotes))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.WithError(err).Error("Chat listener stopped")
	}
}

func (a *app) run(ctx context.Context) error {
	go a.listen(ctx)

	switch a.cfg.Renderer {
	case config.RendererTerm:
		return a.runTerm(ctx)
	default:
		return a.runWindow(ctx)
	}
}

func (a *app) runWindow(ctx context.Context) error {
	opts := window.Options{
		Scheduler: a.scheduler,
		Scene:     a.scene,
		Camera:    a.camera,
		Clouds:    a.shapes,
		Images:    a.images,
		Spacing:   float32(a.cfg.Emotes.Spacing),
		HUD:       a.cfg.Debug.Enabled,
		Done:      ctx.Done(),
		Log:       a.log.WithField("component", "window"),
	}

	if a.cfg.Debug.Enabled {
		backend := debugui_ebiten.NewImguiBackend(a.cfg.Window.Title, a.cfg.Window.Width, a.cfg.Window.Height)
		opts.Overlay = &backend
		opts.Input = a.installOverlay(backend).InputState
		opts.HUD = false
	}

	return window.Run(window.NewGame(opts), a.cfg.Window)
}

func (a *app) installOverlay(backend debugui.Backend) *debugui.Overlay {
	registry := a.ctx.Registry
	overlay := debugui.NewOverlay(backend, a.cfg.Debug.HistoryFrames)
	browser := debugui.NewEntityBrowser(registry, a.clock, 50)

	overlay.Add(debugui.NewPerformanceStats(a.scheduler, registry, overlay.History(),
		debugui.StatLine{Label: "Chat", Value: func() string {
			s := a.chat.Stats()
			return fmt.Sprintf("connected=%t sessions=%d messages=%d batches=%d", s.Connected, s.Sessions, s.Messages, s.Batches)
		}},
		debugui.StatLine{Label: "Emote queue", Value: func() string {
			return fmt.Sprintf("%d", a.emotes.Pending())
		}},
		debugui.StatLine{Label: "Cloud shapes", Value: func() string {
			return fmt.Sprintf("%d/%d", len(a.shapes.Loaded()), a.shapes.Len())
		}},
	))
	overlay.Add(browser)
	overlay.Add(debugui.NewEntityInspector(registry, browser.Selected))

	a.scheduler.Register(overlay)
	a.scheduler.SetHooks(overlay.Hooks())
	return overlay
}

func (a *app) runTerm(ctx context.Context) error {
	if a.cfg.Debug.Enabled {
		a.log.Warn("The diagnostics overlay needs the window renderer")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise terminal: %w", err)
	}
	defer screen.Fini()

	renderer := term.NewRenderer(screen, term.Options{
		Scheduler: a.scheduler,
		Scene:     a.scene,
		Camera:    a.camera,
		Clouds:    a.shapes,
		Spacing:   float32(a.cfg.Emotes.Spacing),
		TPS:       a.cfg.Window.TPS,
		Log:       a.log.WithField("component", "term"),
	})
	return renderer.Run(ctx)
}

func (a *app) close() {
	a.audio.Close()
}
