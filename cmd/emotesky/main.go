package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/plus3/emotesky/config"
	"github.com/sirupsen/logrus"
)

const appName = "emotesky"

type flags struct {
	configPath string
	channels   string
	renderer   string
	clouds     string
	debug      bool
	audio      bool
	seed       uint64
	logLevel   string
	logFile    string

	set map[string]bool
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.configPath, "config", "", "Path to a YAML config file.")
	flag.StringVar(&f.channels, "channel", "", "Comma separated Twitch channels to watch.")
	flag.StringVar(&f.renderer, "renderer", "", "Renderer to use: window or term.")
	flag.StringVar(&f.clouds, "clouds", "", "Cloud behaviour: radial or drift.")
	flag.BoolVar(&f.debug, "debug", false, "Show the diagnostics overlay.")
	flag.BoolVar(&f.audio, "audio", false, "Play the ambient soundscape.")
	flag.Uint64Var(&f.seed, "seed", 0, "Random seed, 0 for a random one.")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error.")
	flag.StringVar(&f.logFile, "log-file", "", "Write logs to this file instead of stderr.")
	flag.Parse()

	f.set = make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f
}

// apply overrides cfg with every flag given on the command line and marks
// the overridden keys explicit.
func (f *flags) apply(cfg *config.Config) {
	if f.set["channel"] {
		cfg.SetChannels(strings.Split(f.channels, ","))
		cfg.MarkExplicit("channels")
	}
	if f.set["renderer"] {
		cfg.Renderer = strings.ToLower(f.renderer)
		cfg.MarkExplicit("renderer")
	}
	if f.set["clouds"] {
		cfg.Clouds.Mode = strings.ToLower(f.clouds)
		cfg.MarkExplicit("clouds.mode")
	}
	if f.set["debug"] {
		cfg.Debug.Enabled = f.debug
	}
	if f.set["audio"] {
		cfg.Audio.Enabled = f.audio
	}
	if f.set["seed"] {
		cfg.Seed = f.seed
	}
	if f.set["log-level"] {
		cfg.Log.Level = f.logLevel
	}
}

func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run() error {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	f.apply(cfg)

	var out io.Writer = os.Stderr
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer file.Close()
		out = file
	} else if cfg.Renderer == config.RendererTerm {
		// The terminal renderer owns the screen.
		out = io.Discard
	}

	logger, err := newLogger(cfg.Log, out)
	if err != nil {
		return err
	}
	log := logrus.NewEntry(logger)

	store := config.OpenStore(appName, log.WithField("component", "store"))
	prefs, err := store.Load()
	if err != nil {
		log.WithError(err).Warn("Ignoring saved preferences")
	}
	prefs.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireChannels(); err != nil {
		return fmt.Errorf("%w: pass -channel or set channels in the config file", err)
	}
	if err := store.Save(config.PreferencesOf(cfg)); err != nil {
		log.WithError(err).Warn("Failed to remember preferences")
	}

	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"channels": cfg.Channels,
		"renderer": cfg.Renderer,
		"clouds":   cfg.Clouds.Mode,
		"seed":     cfg.Seed,
	}).Info("Starting")

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	err = app.run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	stats := app.ctx.Registry.Stats()
	log.WithFields(logrus.Fields{
		"spawned": stats.Spawned,
		"evicted": stats.Evicted,
		"live":    stats.Live,
	}).Info("Goodbye")
	return err
}
