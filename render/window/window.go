// Package window draws the sky in a desktop window with Ebiten.
package window

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/config"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/ecs/debugui"
	debugui_ebiten "github.com/plus3/emotesky/ecs/debugui/ebiten"
	"github.com/plus3/emotesky/render"
	"github.com/plus3/emotesky/sky"
	"github.com/sirupsen/logrus"
)

const (
	skyBands   = 48
	oceanBands = 64
)

// ImageSource provides decoded emote images by id.
type ImageSource interface {
	Image(id string) (image.Image, bool)
}

// Options wires a Game to the rest of the program.
type Options struct {
	Scheduler *ecs.Scheduler
	Scene     *render.Scene
	Camera    *render.Camera
	Clouds    *assets.Slots[assets.CloudShape]
	Images    ImageSource
	// Overlay is drawn on top when set. Its frames are started and ended by
	// the scheduler hooks.
	Overlay *debugui_ebiten.ImguiBackend
	// Input reports what the overlay is capturing. Keys typed into an
	// overlay widget do not reach the game.
	Input   func() debugui.InputState
	Spacing float32
	HUD     bool
	// Done closes the window when it is closed.
	Done <-chan struct{}
	Log  *logrus.Entry
}

// Game implements ebiten.Game. Update advances the simulation one frame and
// Draw paints the scene as it was left by that frame.
type Game struct {
	opts     Options
	clock    ecs.Clock
	textures map[string]*ebiten.Image
}

func NewGame(opts Options) *Game {
	return &Game{
		opts:     opts,
		clock:    opts.Scheduler.Clock(),
		textures: make(map[string]*ebiten.Image),
	}
}

// Run opens the window and blocks until it is closed.
func Run(game *Game, cfg config.WindowConfig) error {
	if game.opts.Overlay == nil {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}

// quitRequested reports whether a quit key is down and the overlay is not
// taking keyboard input.
func quitRequested(pressed func(ebiten.Key) bool, input debugui.InputState) bool {
	if input.WantCaptureKeyboard {
		return false
	}
	return pressed(ebiten.KeyQ) || pressed(ebiten.KeyEscape)
}

func (g *Game) Update() error {
	var input debugui.InputState
	if g.opts.Input != nil {
		input = g.opts.Input()
	}
	if quitRequested(ebiten.IsKeyPressed, input) {
		return ebiten.Termination
	}
	select {
	case <-g.opts.Done:
		return ebiten.Termination
	default:
	}

	g.opts.Scheduler.Once(g.clock.Now())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	seconds := g.clock.Now().Seconds()

	g.drawSky(screen)
	g.drawOcean(screen, seconds)
	g.drawIsland(screen)

	for _, item := range g.opts.Scene.DrawList(g.opts.Camera) {
		switch item.Entity.Motion.Kind {
		case sky.EmoteDrift:
			g.drawEmotes(screen, item, seconds)
		default:
			g.drawCloud(screen, item)
		}
	}

	if g.opts.HUD {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.0f  FPS: %.0f  Nodes: %d",
			ebiten.ActualTPS(), ebiten.ActualFPS(), g.opts.Scene.Len()))
	}

	if g.opts.Overlay != nil {
		g.opts.Overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.opts.Camera.Resize(outsideWidth, outsideHeight)
	if g.opts.Overlay != nil {
		g.opts.Overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (g *Game) drawSky(screen *ebiten.Image) {
	w, _ := g.opts.Camera.Size()
	horizon := g.opts.Camera.Horizon()

	band := horizon / skyBands
	for i := range skyBands {
		y := float32(i) * band
		vector.DrawFilledRect(screen, 0, y, float32(w), band+1, render.SkyAt(y, horizon), false)
	}
}

// drawOcean paints the sea as horizontal bands, far to near, each at the
// swell height of its depth.
func (g *Game) drawOcean(screen *ebiten.Image, seconds float64) {
	cam := g.opts.Camera
	w, h := cam.Size()
	top := cam.Horizon()

	vector.DrawFilledRect(screen, 0, top, float32(w), float32(h)-top, render.OceanAt(1000, 0), false)

	for i := oceanBands; i >= 1; i-- {
		depth := float32(i) * 1.5
		swell := render.Swell(0, float64(-depth), seconds)
		proj, ok := cam.Project(mgl32.Vec3{0, float32(swell), -depth})
		if !ok {
			continue
		}
		c := render.OceanAt(float64(depth), swell)
		vector.DrawFilledRect(screen, 0, proj.Y, float32(w), float32(h)-proj.Y, c, false)
	}
}

func (g *Game) drawIsland(screen *ebiten.Image) {
	cam := g.opts.Camera
	proj, ok := cam.Project(render.IslandCenter)
	if !ok {
		return
	}
	r := render.IslandRadius * proj.PixelsPerUnit
	if !cam.Visible(proj, r) {
		return
	}

	fog := render.FogAmount(float64(proj.Distance)) * 0.8
	sand := render.Mix(render.Sand, render.Fog, fog)
	palm := render.Mix(render.Palm, render.Fog, fog)

	vector.DrawFilledCircle(screen, proj.X, proj.Y, r, sand, true)
	// The sea hides the lower half of the dome.
	vector.DrawFilledRect(screen, proj.X-r-1, proj.Y, 2*r+2, r+1, render.OceanAt(float64(proj.Distance), 0), false)

	trunkTop := proj.Y - r*1.4
	vector.StrokeLine(screen, proj.X, proj.Y-r*0.5, proj.X+r*0.15, trunkTop, max(r*0.08, 1), render.Shade(palm, 0.6), true)
	vector.DrawFilledCircle(screen, proj.X+r*0.15, trunkTop, r*0.35, palm, true)
}

func (g *Game) drawCloud(screen *ebiten.Image, item render.DrawItem) {
	shape, ok := g.opts.Clouds.Get(item.Entity.Cloud)
	if !ok {
		return
	}

	fog := render.FogAmount(float64(item.Screen.Distance)) * 0.5
	for _, puff := range render.CloudPuffs(item.Entity, shape) {
		proj, ok := g.opts.Camera.Project(puff.Center)
		if !ok {
			continue
		}
		r := puff.Radius * proj.PixelsPerUnit
		if !g.opts.Camera.Visible(proj, r) {
			continue
		}
		c := render.Mix(render.CloudShade, render.CloudLight, float64(puff.Shade))
		vector.DrawFilledCircle(screen, proj.X, proj.Y, r, render.Mix(c, render.Fog, fog), true)
	}
}

// drawEmotes draws the part of each sprite above the sea surface.
func (g *Game) drawEmotes(screen *ebiten.Image, item render.DrawItem, seconds float64) {
	e := item.Entity
	for i, center := range render.SpriteCenters(e, g.opts.Spacing) {
		proj, ok := g.opts.Camera.Project(center)
		if !ok {
			continue
		}
		size := e.Scale * proj.PixelsPerUnit
		if !g.opts.Camera.Visible(proj, size) {
			continue
		}
		shown := render.Emerged(g.opts.Camera, center, e.Scale, seconds)
		if shown <= 0 {
			continue
		}

		left, top := proj.X-size/2, proj.Y-size/2
		sprite := e.Sprites[i]
		if tex := g.texture(sprite.ID); tex != nil {
			b := tex.Bounds()
			rows := int(float32(b.Dy()) * shown)
			if rows <= 0 {
				continue
			}
			part := tex.SubImage(image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+rows)).(*ebiten.Image)

			opts := &ebiten.DrawImageOptions{}
			opts.GeoM.Scale(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
			opts.GeoM.Translate(float64(left), float64(top))
			opts.Filter = ebiten.FilterLinear
			screen.DrawImage(part, opts)
			continue
		}

		vector.DrawFilledRect(screen, left, top, size, size*shown, placeholderColor(sprite.Name), false)
		if shown >= 0.5 {
			ebitenutil.DebugPrintAt(screen, sprite.Name, int(left), int(proj.Y-8))
		}
	}
}

// texture returns the GPU image for an emote, uploading it on first use.
func (g *Game) texture(id string) *ebiten.Image {
	if tex, ok := g.textures[id]; ok {
		return tex
	}
	if g.opts.Images == nil {
		return nil
	}
	img, ok := g.opts.Images.Image(id)
	if !ok {
		return nil
	}
	tex := ebiten.NewImageFromImage(img)
	g.textures[id] = tex
	if g.opts.Log != nil {
		g.opts.Log.WithField("emote", id).Debug("Emote texture uploaded")
	}
	return tex
}

// placeholderColor picks a stable pastel colour for an emote name.
func placeholderColor(name string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	sum := h.Sum32()
	return color.RGBA{
		R: 150 + uint8(sum%100),
		G: 150 + uint8((sum>>8)%100),
		B: 150 + uint8((sum>>16)%100),
		A: 230,
	}
}
