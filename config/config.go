// Package config loads the YAML configuration of the emote sky and keeps the
// user's remembered preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoChannels is returned when no chat channel is configured.
	ErrNoChannels = errors.New("no chat channels configured")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid config")
)

const (
	RendererWindow = "window"
	RendererTerm   = "term"

	CloudsRadial = "radial"
	CloudsDrift  = "drift"
)

// Config is the complete application configuration.
type Config struct {
	Channels []string     `yaml:"channels"`
	Renderer string       `yaml:"renderer"`
	Window   WindowConfig `yaml:"window"`
	Emotes   EmoteConfig  `yaml:"emotes"`
	Clouds   CloudConfig  `yaml:"clouds"`
	Chat     ChatConfig   `yaml:"chat"`
	Audio    AudioConfig  `yaml:"audio"`
	Debug    DebugConfig  `yaml:"debug"`
	Log      LogConfig    `yaml:"log"`
	Seed     uint64       `yaml:"seed"` // 0 picks a random seed

	explicit map[string]bool
}

// WindowConfig describes the window and camera.
type WindowConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Title  string  `yaml:"title"`
	FOV    float64 `yaml:"fov"` // vertical field of view, degrees
	TPS    int     `yaml:"tps"` // frames per second of the terminal renderer
}

// EmoteConfig controls the placement and motion of chat emote groups.
// Depths are negative: the viewer sits at the origin looking down -Z.
type EmoteConfig struct {
	DepthNear         float64 `yaml:"depthNear"`
	DepthFar          float64 `yaml:"depthFar"`
	LateralSlope      float64 `yaml:"lateralSlope"`
	LateralScaleMin   float64 `yaml:"lateralScaleMin"`
	LateralScaleMax   float64 `yaml:"lateralScaleMax"`
	VelocityMin       float64 `yaml:"velocityMin"`
	VelocityMax       float64 `yaml:"velocityMax"`
	LifespanScale     float64 `yaml:"lifespanScale"`
	LifespanJitterMin float64 `yaml:"lifespanJitterMin"`
	LifespanJitterMax float64 `yaml:"lifespanJitterMax"`
	BaseY             float64 `yaml:"baseY"`
	Spacing           float64 `yaml:"spacing"`
	Size              float64 `yaml:"size"`
	EaseLow           float64 `yaml:"easeLow"`
	EaseHigh          float64 `yaml:"easeHigh"`
	EasePlateau       float64 `yaml:"easePlateau"`
	EaseDepth         float64 `yaml:"easeDepth"`
	QueueSize         int     `yaml:"queueSize"`
}

// CloudConfig selects exactly one cloud behaviour.
type CloudConfig struct {
	Mode   string       `yaml:"mode"`
	Dir    string       `yaml:"dir"` // optional directory of cloud YAML files
	Radial RadialConfig `yaml:"radial"`
	Drift  DriftConfig  `yaml:"drift"`
}

// RadialConfig places clouds on a slowly rotating ring around the viewer.
type RadialConfig struct {
	Count           int     `yaml:"count"`
	RadiusMin       float64 `yaml:"radiusMin"`
	RadiusMax       float64 `yaml:"radiusMax"`
	LowMin          float64 `yaml:"lowMin"`
	LowMax          float64 `yaml:"lowMax"`
	HighMin         float64 `yaml:"highMin"`
	HighMax         float64 `yaml:"highMax"`
	MinScale        float64 `yaml:"minScale"`
	ScaleRange      float64 `yaml:"scaleRange"`
	AngularVelocity float64 `yaml:"angularVelocity"` // radians per second
}

// DriftConfig spawns clouds periodically that cross the view once.
type DriftConfig struct {
	Interval   time.Duration `yaml:"interval"`
	Rate       float64       `yaml:"rate"` // world units per frame
	HeightMin  float64       `yaml:"heightMin"`
	HeightMax  float64       `yaml:"heightMax"`
	DepthMin   float64       `yaml:"depthMin"`
	DepthMax   float64       `yaml:"depthMax"`
	EdgeFactor float64       `yaml:"edgeFactor"`
	Margin     float64       `yaml:"margin"`
	Scale      float64       `yaml:"scale"`
}

// ChatConfig configures the chat feed connection.
type ChatConfig struct {
	URL           string        `yaml:"url"`
	Nick          string        `yaml:"nick"`
	MaxPerMessage int           `yaml:"maxPerMessage"`
	MaxDuplicates int           `yaml:"maxDuplicates"`
	ReconnectMin  time.Duration `yaml:"reconnectMin"`
	ReconnectMax  time.Duration `yaml:"reconnectMax"`
	ImageURL      string        `yaml:"imageUrl"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

type DebugConfig struct {
	Enabled       bool `yaml:"enabled"`
	HistoryFrames int  `yaml:"historyFrames"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Renderer: RendererWindow,
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Emote Sky",
			FOV:    60,
			TPS:    30,
		},
		Emotes: EmoteConfig{
			DepthNear:         -6,
			DepthFar:          -18,
			LateralSlope:      1.0,
			LateralScaleMin:   0.8,
			LateralScaleMax:   1.2,
			VelocityMin:       0.6,
			VelocityMax:       1.4,
			LifespanScale:     1.0,
			LifespanJitterMin: 0.9,
			LifespanJitterMax: 1.1,
			BaseY:             1.2,
			Spacing:           1.1,
			Size:              1.0,
			EaseLow:           0.1,
			EaseHigh:          0.9,
			EasePlateau:       0,
			EaseDepth:         1.5,
			QueueSize:         64,
		},
		Clouds: CloudConfig{
			Mode: CloudsRadial,
			Radial: RadialConfig{
				Count:           24,
				RadiusMin:       40,
				RadiusMax:       80,
				LowMin:          8,
				LowMax:          12,
				HighMin:         18,
				HighMax:         24,
				MinScale:        2,
				ScaleRange:      6,
				AngularVelocity: 0.01,
			},
			Drift: DriftConfig{
				Interval:   4 * time.Second,
				Rate:       0.02,
				HeightMin:  6,
				HeightMax:  14,
				DepthMin:   -30,
				DepthMax:   -60,
				EdgeFactor: 0.6,
				Margin:     6,
				Scale:      3,
			},
		},
		Chat: ChatConfig{
			URL:           "wss://irc-ws.chat.twitch.tv:443",
			Nick:          "justinfan12345",
			MaxPerMessage: 3,
			MaxDuplicates: 3,
			ReconnectMin:  time.Second,
			ReconnectMax:  30 * time.Second,
			ImageURL:      "https://static-cdn.jtvnw.net/emoticons/v2/{id}/default/dark/2.0",
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  0.5,
		},
		Debug: DebugConfig{
			Enabled:       false,
			HistoryFrames: 120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration at path on top of the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
// Every key present in data counts as explicitly set.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg := Default()
	if len(doc.Content) > 0 {
		if err := doc.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
		markKeys(doc.Content[0], "", cfg.MarkExplicit)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	channels := c.Channels[:0]
	for _, ch := range c.Channels {
		ch = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
		if ch != "" {
			channels = append(channels, ch)
		}
	}
	c.Channels = channels
	c.Renderer = strings.ToLower(c.Renderer)
	c.Clouds.Mode = strings.ToLower(c.Clouds.Mode)
}

// markKeys reports the dotted path of every mapping key under node.
func markKeys(node *yaml.Node, prefix string, mark func(key string)) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		mark(key)
		markKeys(node.Content[i+1], key, mark)
	}
}

// MarkExplicit records that key, a dotted YAML path such as "clouds.mode",
// was chosen by the user rather than left at its default.
func (c *Config) MarkExplicit(key string) {
	if c.explicit == nil {
		c.explicit = make(map[string]bool)
	}
	c.explicit[key] = true
}

// Explicit reports whether key was set by the config file or a flag.
func (c *Config) Explicit(key string) bool {
	return c.explicit[key]
}

// SetChannels replaces the channel list with a normalized copy of channels.
func (c *Config) SetChannels(channels []string) {
	c.Channels = append([]string(nil), channels...)
	c.normalize()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks ranges that would otherwise produce non-finite motion.
// Channels are not required here: see RequireChannels.
func (c *Config) Validate() error {
	switch c.Renderer {
	case RendererWindow, RendererTerm:
	default:
		return invalid("renderer must be %q or %q, got %q", RendererWindow, RendererTerm, c.Renderer)
	}

	switch c.Clouds.Mode {
	case CloudsRadial, CloudsDrift:
	default:
		return invalid("clouds.mode must be %q or %q, got %q", CloudsRadial, CloudsDrift, c.Clouds.Mode)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.FOV <= 0 || c.Window.FOV >= 180 {
		return invalid("window.fov must be in (0, 180), got %f", c.Window.FOV)
	}
	if c.Window.TPS <= 0 {
		return invalid("window.tps must be positive, got %d", c.Window.TPS)
	}

	e := c.Emotes
	if e.DepthNear >= 0 || e.DepthFar >= 0 {
		return invalid("emote depths must be negative, got %f..%f", e.DepthNear, e.DepthFar)
	}
	if e.LateralSlope <= 0 {
		return invalid("emotes.lateralSlope must be positive, got %f", e.LateralSlope)
	}
	if e.VelocityMin <= 0 || e.VelocityMax < e.VelocityMin {
		return invalid("emote velocity range must be positive and ordered, got %f..%f", e.VelocityMin, e.VelocityMax)
	}
	if e.LateralScaleMin <= 0 || e.LateralScaleMax < e.LateralScaleMin {
		return invalid("emote lateral scale range must be positive and ordered, got %f..%f", e.LateralScaleMin, e.LateralScaleMax)
	}
	if e.LifespanScale <= 0 {
		return invalid("emotes.lifespanScale must be positive, got %f", e.LifespanScale)
	}
	if e.LifespanJitterMin <= 0 || e.LifespanJitterMax < e.LifespanJitterMin {
		return invalid("emote lifespan jitter range must be positive and ordered, got %f..%f", e.LifespanJitterMin, e.LifespanJitterMax)
	}
	if e.EaseLow < 0 || e.EaseHigh > 1 || e.EaseLow > e.EaseHigh {
		return invalid("emote easing bands must satisfy 0 <= low <= high <= 1, got %f, %f", e.EaseLow, e.EaseHigh)
	}
	if e.QueueSize <= 0 {
		return invalid("emotes.queueSize must be positive, got %d", e.QueueSize)
	}

	r := c.Clouds.Radial
	if r.Count < 0 {
		return invalid("clouds.radial.count must not be negative, got %d", r.Count)
	}
	if r.RadiusMin <= 0 || r.RadiusMax < r.RadiusMin {
		return invalid("cloud radius range must be positive and ordered, got %f..%f", r.RadiusMin, r.RadiusMax)
	}
	if r.LowMax < r.LowMin || r.HighMax < r.HighMin {
		return invalid("cloud height bands must be ordered")
	}

	d := c.Clouds.Drift
	if d.Interval <= 0 {
		return invalid("clouds.drift.interval must be positive, got %s", d.Interval)
	}
	if d.Rate <= 0 {
		return invalid("clouds.drift.rate must be positive, got %f", d.Rate)
	}

	if c.Chat.MaxPerMessage <= 0 || c.Chat.MaxDuplicates <= 0 {
		return invalid("chat caps must be positive")
	}
	if c.Chat.ReconnectMin <= 0 || c.Chat.ReconnectMax < c.Chat.ReconnectMin {
		return invalid("chat reconnect backoff must be positive and ordered")
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return invalid("audio.volume must be in [0, 1], got %f", c.Audio.Volume)
	}
	if c.Debug.HistoryFrames <= 0 {
		return invalid("debug.historyFrames must be positive, got %d", c.Debug.HistoryFrames)
	}

	return nil
}

// RequireChannels returns ErrNoChannels when nothing would be joined.
func (c *Config) RequireChannels() error {
	if len(c.Channels) == 0 {
		return ErrNoChannels
	}
	return nil
}
