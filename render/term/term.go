// Package term draws the sky as coloured characters in a terminal.
package term

import (
	"context"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/render"
	"github.com/plus3/emotesky/sky"
	"github.com/sirupsen/logrus"
)

// Terminal cells are about twice as tall as they are wide, so the camera
// renders at double vertical resolution and rows are halved when drawn.
const cellAspect = 2

// Options wires a Renderer to the rest of the program.
type Options struct {
	Scheduler *ecs.Scheduler
	Scene     *render.Scene
	Camera    *render.Camera
	Clouds    *assets.Slots[assets.CloudShape]
	Spacing   float32
	TPS       int
	Log       *logrus.Entry
}

// Renderer drives the scheduler from a ticker and paints each frame to a
// tcell screen.
type Renderer struct {
	screen tcell.Screen
	opts   Options
	clock  ecs.Clock
}

// NewRenderer draws to screen, which must already be initialised.
func NewRenderer(screen tcell.Screen, opts Options) *Renderer {
	r := &Renderer{
		screen: screen,
		opts:   opts,
		clock:  opts.Scheduler.Clock(),
	}
	r.resize()
	return r
}

// Run ticks and draws until ctx is cancelled or the user presses Esc, q or
// Ctrl-C. It does not finalise the screen.
func (r *Renderer) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(max(r.opts.TPS, 1))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	r.opts.Log.WithField("tps", r.opts.TPS).Info("Terminal renderer started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if !r.handle(ev) {
				r.opts.Log.Info("Quit requested")
				return nil
			}

		case <-ticker.C:
			r.opts.Scheduler.Once(r.clock.Now())
			r.Draw()
			r.screen.Show()
		}
	}
}

// handle reacts to input and returns false when the user asked to quit.
func (r *Renderer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		r.resize()
		r.screen.Sync()
	}
	return true
}

func (r *Renderer) resize() {
	w, h := r.screen.Size()
	r.opts.Camera.Resize(w, h*cellAspect)
}

func style(bg color.RGBA) tcell.Style {
	return tcell.StyleDefault.Background(rgb(bg)).Foreground(rgb(bg))
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Draw paints the current scene into the screen buffer without showing it.
func (r *Renderer) Draw() {
	w, h := r.screen.Size()
	cam := r.opts.Camera
	horizon := cam.Horizon()
	seconds := r.clock.Now().Seconds()

	for y := range h {
		py := float32(y*cellAspect) + cellAspect/2
		for x := range w {
			if py < horizon {
				r.screen.SetContent(x, y, ' ', nil, style(render.SkyAt(py, horizon)))
				continue
			}
			// Distance to the sea surface seen through this row.
			depth := float64(cam.Eye.Y() * cam.Focal() / max(py-horizon, 0.5))
			swell := render.Swell(float64(x)/4, -depth, seconds)
			c := render.OceanAt(depth, swell)
			ch := ' '
			if swell > 0.2 {
				ch = '~'
			}
			r.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Background(rgb(c)).Foreground(rgb(render.Fog)))
		}
	}

	r.drawIsland()

	for _, item := range r.opts.Scene.DrawList(cam) {
		switch item.Entity.Motion.Kind {
		case sky.EmoteDrift:
			r.drawEmotes(item, seconds)
		default:
			r.drawCloud(item)
		}
	}
}

func (r *Renderer) drawIsland() {
	proj, ok := r.opts.Camera.Project(render.IslandCenter)
	if !ok {
		return
	}
	radius := render.IslandRadius * proj.PixelsPerUnit
	r.disc(proj.X, proj.Y, radius, true, style(render.Sand))
	r.disc(proj.X+radius*0.15, proj.Y-radius*1.2, radius*0.35, false, style(render.Palm))
}

func (r *Renderer) drawCloud(item render.DrawItem) {
	shape, ok := r.opts.Clouds.Get(item.Entity.Cloud)
	if !ok {
		return
	}
	fog := render.FogAmount(float64(item.Screen.Distance)) * 0.5
	for _, puff := range render.CloudPuffs(item.Entity, shape) {
		proj, ok := r.opts.Camera.Project(puff.Center)
		if !ok {
			continue
		}
		c := render.Mix(render.CloudShade, render.CloudLight, float64(puff.Shade))
		r.disc(proj.X, proj.Y, puff.Radius*proj.PixelsPerUnit, false, style(render.Mix(c, render.Fog, fog)))
	}
}

// disc fills the cells covered by a circle given in camera pixels. With
// upper set only the part above the centre is drawn.
func (r *Renderer) disc(cx, cy, radius float32, upper bool, st tcell.Style) {
	if radius < 0.5 {
		radius = 0.5
	}
	w, h := r.screen.Size()
	minY := max(int((cy-radius)/cellAspect), 0)
	maxY := min(int((cy+radius)/cellAspect), h-1)
	if upper {
		maxY = min(maxY, int(cy/cellAspect))
	}
	minX := max(int(cx-radius), 0)
	maxX := min(int(cx+radius), w-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y*cellAspect) + cellAspect/2
		for x := minX; x <= maxX; x++ {
			d := mgl32.Vec2{float32(x) + 0.5 - cx, py - cy}
			if d.Len() <= radius {
				r.screen.SetContent(x, y, ' ', nil, st)
			}
		}
	}
}

var emoteStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

// drawEmotes labels every sprite whose middle is above the sea surface.
func (r *Renderer) drawEmotes(item render.DrawItem, seconds float64) {
	e := item.Entity
	w, h := r.screen.Size()
	for i, center := range render.SpriteCenters(e, r.opts.Spacing) {
		proj, ok := r.opts.Camera.Project(center)
		if !ok {
			continue
		}
		if render.Emerged(r.opts.Camera, center, e.Scale, seconds) < 0.5 {
			continue
		}
		name := []rune(e.Sprites[i].Name)
		x := int(proj.X) - len(name)/2
		y := int(proj.Y / cellAspect)
		if y < 0 || y >= h {
			continue
		}
		for j, ch := range name {
			if cx := x + j; cx >= 0 && cx < w {
				_, _, under, _ := r.screen.GetContent(cx, y)
				r.screen.SetContent(cx, y, ch, nil, emoteStyle.Background(backgroundOf(under)))
			}
		}
	}
}

func backgroundOf(st tcell.Style) tcell.Color {
	_, bg, _ := st.Decompose()
	return bg
}
