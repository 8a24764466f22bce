package config

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Preferences are the choices remembered between runs.
type Preferences struct {
	Channels  []string `yaml:"channels"`
	Renderer  string   `yaml:"renderer"`
	CloudMode string   `yaml:"cloudMode"`
}

const (
	prefsObject   = "preferences"
	prefsProperty = "last"
)

// Store persists Preferences through gdata. A Store without a manager keeps
// nothing and never fails.
type Store struct {
	manager *gdata.Manager
	log     *logrus.Entry
}

// OpenStore opens the per-user data directory for appName. When the
// platform storage is unavailable the returned store runs memory-only.
func OpenStore(appName string, log *logrus.Entry) *Store {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.WithError(err).Warn("Persistent storage unavailable, preferences will not be remembered")
		manager = nil
	}
	return NewStore(manager, log)
}

func NewStore(manager *gdata.Manager, log *logrus.Entry) *Store {
	return &Store{manager: manager, log: log}
}

// Load returns the saved preferences, or zero preferences when none exist.
func (s *Store) Load() (Preferences, error) {
	if s.manager == nil || !s.manager.ObjectPropExists(prefsObject, prefsProperty) {
		return Preferences{}, nil
	}

	data, err := s.manager.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	var prefs Preferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return prefs, nil
}

// Save stores prefs.
func (s *Store) Save(prefs Preferences) error {
	if s.manager == nil {
		return nil
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := s.manager.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	s.log.Debug("Preferences saved")
	return nil
}

// Apply fills the parts of cfg that neither the config file nor a flag set
// from prefs. See Config.Explicit.
func (p Preferences) Apply(cfg *Config) {
	if !cfg.Explicit("channels") && len(cfg.Channels) == 0 && len(p.Channels) > 0 {
		cfg.SetChannels(p.Channels)
	}
	if !cfg.Explicit("renderer") && p.Renderer != "" {
		cfg.Renderer = p.Renderer
	}
	if !cfg.Explicit("clouds.mode") && p.CloudMode != "" {
		cfg.Clouds.Mode = p.CloudMode
	}
}

// PreferencesOf captures the rememberable parts of cfg.
func PreferencesOf(cfg *Config) Preferences {
	return Preferences{
		Channels:  append([]string(nil), cfg.Channels...),
		Renderer:  cfg.Renderer,
		CloudMode: cfg.Clouds.Mode,
	}
}
