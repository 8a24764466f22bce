package render_test

import (
	"image/color"
	"io"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/render"
	"github.com/plus3/emotesky/sky"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entityAt(serial uint32, pos mgl32.Vec3) *sky.Entity {
	return &sky.Entity{Id: ecs.NewEntityId(1, serial), Position: pos}
}

func TestSceneMembership(t *testing.T) {
	scene := render.NewScene()

	var added, removed []ecs.EntityId
	scene.OnAdd(func(e *sky.Entity) { added = append(added, e.Id) })
	scene.OnRemove(func(e *sky.Entity) { removed = append(removed, e.Id) })

	a := entityAt(1, mgl32.Vec3{})
	b := entityAt(2, mgl32.Vec3{})
	c := entityAt(3, mgl32.Vec3{})
	scene.AddToScene(a)
	scene.AddToScene(b)
	scene.AddToScene(c)

	scene.RemoveFromScene(b)
	scene.RemoveFromScene(b)

	assert.Equal(t, 2, scene.Len())
	assert.Equal(t, []*sky.Entity{a, c}, scene.Nodes())
	assert.True(t, scene.Contains(c.Id))
	assert.False(t, scene.Contains(b.Id))
	assert.Equal(t, []ecs.EntityId{a.Id, b.Id, c.Id}, added)
	assert.Equal(t, []ecs.EntityId{b.Id}, removed, "removing twice notifies once")

	scene.RemoveFromScene(c)
	scene.RemoveFromScene(a)
	assert.Equal(t, 0, scene.Len())

	assert.Panics(t, func() {
		scene.AddToScene(a)
		scene.AddToScene(a)
	})
}

func TestSceneWithRegistry(t *testing.T) {
	scene := render.NewScene()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reg := sky.NewRegistry(scene, logrus.NewEntry(logger))

	e := &sky.Entity{Lifespan: 100, Motion: sky.EmoteMotion(sky.Easing{})}
	reg.Add(e)
	require.True(t, scene.Contains(e.Id))

	reg.Tick(1000, 0)
	assert.Equal(t, 0, scene.Len())
}

func TestCameraProjectsCenter(t *testing.T) {
	cam := render.NewCamera(60, 800, 600)

	proj, ok := cam.Project(mgl32.Vec3{0, 2, -10})
	require.True(t, ok)
	assert.InDelta(t, 400, proj.X, 0.01)
	assert.InDelta(t, 300, proj.Y, 0.01)
	assert.InDelta(t, 10, proj.Distance, 1e-4)

	near, _ := cam.Project(mgl32.Vec3{0, 2, -5})
	assert.InDelta(t, 2*proj.PixelsPerUnit, near.PixelsPerUnit, 1e-3, "size halves with doubled distance")

	right, ok := cam.Project(mgl32.Vec3{3, 2, -10})
	require.True(t, ok)
	assert.Greater(t, right.X, proj.X)

	up, ok := cam.Project(mgl32.Vec3{0, 5, -10})
	require.True(t, ok)
	assert.Less(t, up.Y, proj.Y, "screen Y grows downward")
}

func TestCameraRejectsBehind(t *testing.T) {
	cam := render.NewCamera(60, 800, 600)
	_, ok := cam.Project(mgl32.Vec3{0, 2, 10})
	assert.False(t, ok)
	_, ok = cam.Project(mgl32.Vec3{0, 2, -5000})
	assert.False(t, ok, "beyond the far plane")
}

func TestCameraViewport(t *testing.T) {
	cam := render.NewCamera(70, 1280, 720)
	assert.InDelta(t, 16.0/9.0, cam.Aspect(), 1e-9)

	var viewport sky.Viewport = cam
	cam.Resize(0, 0)
	assert.Equal(t, 1.0, viewport.Aspect())

	cam.Resize(800, 600)
	assert.InDelta(t, 300, cam.Horizon(), 0.5, "a level camera puts the horizon mid screen")
	w, h := cam.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestDrawListFarToNear(t *testing.T) {
	scene := render.NewScene()
	cam := render.NewCamera(60, 800, 600)

	near := entityAt(1, mgl32.Vec3{0, 2, -5})
	behind := entityAt(2, mgl32.Vec3{0, 2, 5})
	far := entityAt(3, mgl32.Vec3{1, 2, -40})
	mid := entityAt(4, mgl32.Vec3{-1, 2, -12})
	for _, e := range []*sky.Entity{near, behind, far, mid} {
		scene.AddToScene(e)
	}

	items := scene.DrawList(cam)
	require.Len(t, items, 3)
	assert.Same(t, far, items[0].Entity)
	assert.Same(t, mid, items[1].Entity)
	assert.Same(t, near, items[2].Entity)
}

func TestSwellBounded(t *testing.T) {
	for x := -50.0; x <= 50; x += 3.7 {
		for z := -80.0; z <= 0; z += 4.1 {
			for _, tm := range []float64{0, 1.3, 17} {
				h := render.Swell(x, z, tm)
				assert.LessOrEqual(t, h, 0.35)
				assert.GreaterOrEqual(t, h, -0.35)
			}
		}
	}
}

func TestColours(t *testing.T) {
	assert.Equal(t, 0.0, render.FogAmount(0))
	assert.Equal(t, 1.0, render.FogAmount(500))
	assert.InDelta(t, 0.5, render.FogAmount(40.5), 1e-9)

	black := color.RGBA{0, 0, 0, 255}
	white := color.RGBA{255, 255, 255, 255}
	assert.Equal(t, black, render.Mix(black, white, 0))
	assert.Equal(t, white, render.Mix(black, white, 1))
	assert.Equal(t, white, render.Mix(black, white, 3))
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, render.Mix(black, white, 0.5))

	assert.Equal(t, render.SkyTop, render.SkyAt(0, 300))
	assert.Equal(t, render.SkyHorizon, render.SkyAt(300, 300))
	assert.Equal(t, black, render.Shade(white, 0))
}

func TestCloudPuffs(t *testing.T) {
	shape := assets.CloudShape{Puffs: []assets.Puff{
		{X: 0, Y: 0, Z: 0, Radius: 1, Shade: 1},
		{X: 1, Y: 0, Z: 0, Radius: 0.5, Shade: 0.9},
	}}

	cloud := &sky.Entity{Position: mgl32.Vec3{0, 10, -20}, Scale: 2}
	puffs := render.CloudPuffs(cloud, shape)
	require.Len(t, puffs, 2)
	assert.Equal(t, mgl32.Vec3{0, 10, -20}, puffs[0].Center)
	assert.InDelta(t, 2, puffs[1].Center.X(), 1e-5)
	assert.Equal(t, float32(1), puffs[1].Radius)
	assert.Equal(t, float32(0.9), puffs[1].Shade)

	ring := &sky.CloudRing{Angle: math.Pi / 2}
	member := &sky.Entity{Position: mgl32.Vec3{0, 0, -20}, Scale: 2, Ring: ring}
	puffs = render.CloudPuffs(member, shape)
	assert.InDelta(t, -20, puffs[0].Center.X(), 1e-4)
	assert.InDelta(t, 0, puffs[0].Center.Z(), 1e-4)
	assert.InDelta(t, -20, puffs[1].Center.X(), 1e-4)
	assert.InDelta(t, -2, puffs[1].Center.Z(), 1e-4, "puffs turn with the ring")
}

func TestSpriteCenters(t *testing.T) {
	group := &sky.Entity{
		Position: mgl32.Vec3{0, 1, -10},
		Scale:    1,
		Sprites:  make([]sky.Sprite, 3),
	}
	centers := render.SpriteCenters(group, 1.5)
	require.Len(t, centers, 3)
	assert.Equal(t, mgl32.Vec3{-1.5, 1, -10}, centers[0])
	assert.Equal(t, mgl32.Vec3{0, 1, -10}, centers[1])
	assert.Equal(t, mgl32.Vec3{1.5, 1, -10}, centers[2])

	assert.Empty(t, render.SpriteCenters(&sky.Entity{}, 1))
}

func TestEmerged(t *testing.T) {
	cam := render.NewCamera(60, 800, 600)
	surface := float32(render.Swell(0, -10, 0))

	assert.Equal(t, float32(1), render.Emerged(cam, mgl32.Vec3{0, 1.2, -10}, 1, 0), "riding above the sea")
	assert.Equal(t, float32(0), render.Emerged(cam, mgl32.Vec3{0, -2, -10}, 1, 0), "fully under water")
	assert.InDelta(t, 0.5, render.Emerged(cam, mgl32.Vec3{0, surface, -10}, 1, 0), 1e-3, "cut in half by the surface")

	rising := render.Emerged(cam, mgl32.Vec3{0, -0.3, -10}, 1, 0)
	assert.Greater(t, rising, float32(0))
	assert.Less(t, rising, float32(0.5), "a group at the start of its life is mostly submerged")

	assert.Equal(t, float32(1), render.Emerged(cam, mgl32.Vec3{0, -2, 5}, 1, 0), "unprojectable sprites are not clipped")
}
