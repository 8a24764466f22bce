package assets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed clouds/*.yaml
var builtinClouds embed.FS

// ErrEmptyCloud is returned for a cloud definition without puffs.
var ErrEmptyCloud = errors.New("cloud has no puffs")

// Puff is one sphere of a cloud, in cloud-local units.
type Puff struct {
	X      float32 `yaml:"x"`
	Y      float32 `yaml:"y"`
	Z      float32 `yaml:"z"`
	Radius float32 `yaml:"radius"`
	Shade  float32 `yaml:"shade"`
}

// CloudShape is a cluster of puffs that renderers draw as one cloud.
type CloudShape struct {
	Name  string `yaml:"name"`
	Puffs []Puff `yaml:"puffs"`
}

// Extent returns the horizontal radius of the shape in shape units: the
// distance from its centre to the outer edge of its farthest puff, whatever
// the yaw.
func (c CloudShape) Extent() float32 {
	var extent float64
	for _, p := range c.Puffs {
		extent = max(extent, math.Hypot(float64(p.X), float64(p.Z))+float64(p.Radius))
	}
	return float32(extent)
}

// BuiltinClouds returns the cloud definitions shipped with the binary.
func BuiltinClouds() fs.FS {
	sub, err := fs.Sub(builtinClouds, "clouds")
	if err != nil {
		panic(err)
	}
	return sub
}

// CloudFiles lists the cloud definition files in fsys, sorted by name.
func CloudFiles(fsys fs.FS) ([]string, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list cloud files: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// DecodeCloud parses a single cloud definition.
func DecodeCloud(data []byte) (CloudShape, error) {
	var shape CloudShape
	if err := yaml.Unmarshal(data, &shape); err != nil {
		return CloudShape{}, fmt.Errorf("failed to parse cloud YAML: %w", err)
	}
	if len(shape.Puffs) == 0 {
		return CloudShape{}, ErrEmptyCloud
	}
	for i := range shape.Puffs {
		if shape.Puffs[i].Radius <= 0 {
			return CloudShape{}, fmt.Errorf("puff %d: radius must be positive, got %f", i, shape.Puffs[i].Radius)
		}
		if shape.Puffs[i].Shade == 0 {
			shape.Puffs[i].Shade = 1
		}
	}
	return shape, nil
}

// LoadClouds decodes every file in names into the matching slot, one goroutine
// per file. Slots whose file cannot be read or parsed are marked failed.
// Progress is observed through slots.Ready.
func LoadClouds(ctx context.Context, fsys fs.FS, names []string, slots *Slots[CloudShape], log *logrus.Entry) {
	if len(names) != slots.Len() {
		panic("cloud slot count does not match file count")
	}

	for i, name := range names {
		go func() {
			if ctx.Err() != nil {
				slots.Fail(i)
				return
			}

			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				log.WithError(err).WithField("file", name).Warn("Failed to read cloud")
				slots.Fail(i)
				return
			}

			shape, err := DecodeCloud(data)
			if err != nil {
				log.WithError(err).WithField("file", name).Warn("Failed to decode cloud")
				slots.Fail(i)
				return
			}
			if shape.Name == "" {
				shape.Name = strings.TrimSuffix(path.Base(name), path.Ext(name))
			}

			slots.Set(i, shape)
			log.WithField("cloud", shape.Name).Debug("Cloud loaded")
		}()
	}
}
