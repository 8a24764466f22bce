package main

import (
	"bytes"
	"testing"

	"github.com/plus3/emotesky/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsApply(t *testing.T) {
	tests := []struct {
		name  string
		flags flags
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "unset flags keep the file",
			flags: flags{renderer: "window", clouds: "radial", set: map[string]bool{}},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.RendererTerm, cfg.Renderer)
				assert.Equal(t, config.CloudsDrift, cfg.Clouds.Mode)
				assert.Equal(t, []string{"fromfile"}, cfg.Channels)
			},
		},
		{
			name: "set flags override the file",
			flags: flags{
				channels: "#One, two",
				renderer: "WINDOW",
				clouds:   "Radial",
				set:      map[string]bool{"channel": true, "renderer": true, "clouds": true},
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, []string{"one", "two"}, cfg.Channels)
				assert.Equal(t, config.RendererWindow, cfg.Renderer)
				assert.Equal(t, config.CloudsRadial, cfg.Clouds.Mode)
			},
		},
		{
			name:  "booleans and seed",
			flags: flags{debug: true, audio: true, seed: 42, logLevel: "debug", set: map[string]bool{"debug": true, "audio": true, "seed": true, "log-level": true}},
			check: func(t *testing.T, cfg *config.Config) {
				assert.True(t, cfg.Debug.Enabled)
				assert.True(t, cfg.Audio.Enabled)
				assert.Equal(t, uint64(42), cfg.Seed)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name:  "false boolean flag disables",
			flags: flags{audio: false, set: map[string]bool{"audio": true}},
			check: func(t *testing.T, cfg *config.Config) {
				assert.False(t, cfg.Audio.Enabled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte("channels: [fromfile]\nrenderer: term\naudio:\n  enabled: true\nclouds:\n  mode: drift\n"))
			require.NoError(t, err)

			tt.flags.apply(cfg)
			tt.check(t, cfg)
		})
	}
}

func TestFlagsBeatPreferences(t *testing.T) {
	cfg := config.Default()
	f := flags{renderer: "term", set: map[string]bool{"renderer": true}}
	f.apply(cfg)

	config.Preferences{Renderer: config.RendererWindow, CloudMode: config.CloudsDrift}.Apply(cfg)
	assert.Equal(t, config.RendererTerm, cfg.Renderer)
	assert.Equal(t, config.CloudsDrift, cfg.Clouds.Mode, "unset keys come from preferences")
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LogConfig
		wantErr  bool
		level    logrus.Level
		contains string
	}{
		{"text", config.LogConfig{Level: "info", Format: "text"}, false, logrus.InfoLevel, `msg=hello`},
		{"json", config.LogConfig{Level: "warn", Format: "json"}, false, logrus.WarnLevel, `"msg":"hello"`},
		{"bad level", config.LogConfig{Level: "loud", Format: "text"}, true, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := newLogger(tt.cfg, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, logger.GetLevel())

			logger.Error("hello")
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}
