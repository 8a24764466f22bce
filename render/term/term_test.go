package term_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/render"
	"github.com/plus3/emotesky/render/term"
	"github.com/plus3/emotesky/sky"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	screen   tcell.SimulationScreen
	registry *sky.Registry
	renderer *term.Renderer
	frames   *int
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	scene := render.NewScene()
	registry := sky.NewRegistry(scene, log)

	frames := 0
	scheduler := ecs.NewScheduler(&ecs.ManualClock{}, registry)
	scheduler.Register(ecs.SystemFunc(func(*ecs.UpdateFrame) { frames++ }))

	renderer := term.NewRenderer(screen, term.Options{
		Scheduler: scheduler,
		Scene:     scene,
		Camera:    render.NewCamera(60, 1, 1),
		Clouds:    assets.NewSlots[assets.CloudShape](0),
		Spacing:   1,
		TPS:       100,
		Log:       log,
	})
	return fixture{screen: screen, registry: registry, renderer: renderer, frames: &frames}
}

func rowText(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for x := range w {
		ch, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(ch)
	}
	return sb.String()
}

func TestDrawShowsEmoteNames(t *testing.T) {
	f := newFixture(t)
	f.registry.Add(&sky.Entity{
		Position: mgl32.Vec3{0, 2, -10},
		Lifespan: time.Minute,
		Motion:   sky.EmoteMotion(sky.Easing{}),
		Scale:    1,
		Sprites:  []sky.Sprite{{ID: "25", Name: "Kappa"}},
	})

	f.renderer.Draw()

	found := false
	for y := range 24 {
		if strings.Contains(rowText(f.screen, y), "Kappa") {
			found = true
		}
	}
	assert.True(t, found, "emote name is drawn")
}

func TestDrawHidesSubmergedEmotes(t *testing.T) {
	f := newFixture(t)
	f.registry.Add(&sky.Entity{
		Position: mgl32.Vec3{0, -2, -10},
		Lifespan: time.Minute,
		Motion:   sky.EmoteMotion(sky.Easing{}),
		Scale:    1,
		Sprites:  []sky.Sprite{{ID: "25", Name: "Kappa"}},
	})

	f.renderer.Draw()

	for y := range 24 {
		assert.NotContains(t, rowText(f.screen, y), "Kappa")
	}
}

func TestDrawPaintsSkyAndSea(t *testing.T) {
	f := newFixture(t)
	f.renderer.Draw()

	_, _, top, _ := f.screen.GetContent(0, 0)
	_, _, bottom, _ := f.screen.GetContent(0, 23)
	_, topBg, _ := top.Decompose()
	_, bottomBg, _ := bottom.Decompose()
	assert.NotEqual(t, topBg, bottomBg)
}

func TestRunQuitsOnKey(t *testing.T) {
	f := newFixture(t)

	done := make(chan error, 1)
	go func() { done <- f.renderer.Run(context.Background()) }()

	require.NoError(t, f.screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("renderer did not stop")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.renderer.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("renderer did not stop")
	}
	assert.Positive(t, *f.frames, "frames ran while waiting")
}
