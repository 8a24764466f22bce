package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/config"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/sky"
	"github.com/sirupsen/logrus"
)

var emoteNames = []string{"Kappa", "PogChamp", "LUL", "BibleThump", "Kreygasm", "ResidentSleeper", "SeemsGood", "NotLikeThis"}

// countingBoundary stands in for the render scene.
type countingBoundary struct {
	added, removed int
}

func (b *countingBoundary) AddToScene(*sky.Entity)      { b.added++ }
func (b *countingBoundary) RemoveFromScene(*sky.Entity) { b.removed++ }

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Wall time the test should run for.")
	rate := flag.Float64("rate", 50, "Chat messages per simulated second.")
	step := flag.Duration("step", time.Second/60, "Simulated time per frame.")
	cloudMode := flag.String("clouds", config.CloudsRadial, "Cloud behaviour: radial or drift.")
	seed := flag.Uint64("seed", 1, "Random seed.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.NewEntry(logger)

	cfg := config.Default()
	cfg.Clouds.Mode = *cloudMode
	cfg.Seed = *seed
	// Batches are produced on the frame goroutine, so the queue only needs one frame's worth.
	cfg.Emotes.QueueSize = max(int(*rate*step.Seconds())*2, 16)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	log.Info("Starting emote stress test...")

	fsys := assets.BuiltinClouds()
	names, err := assets.CloudFiles(fsys)
	if err != nil {
		log.WithError(err).Fatal("Failed to list cloud shapes")
	}
	shapes := assets.NewSlots[assets.CloudShape](len(names))
	assets.LoadClouds(context.Background(), fsys, names, shapes, log)

	// The registry's own logging is too chatty at this rate.
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	clock := &ecs.ManualClock{}
	boundary := &countingBoundary{}
	skyCtx := sky.NewContext(boundary, clock, sky.FixedViewport(16.0/9.0), cfg.Seed, logrus.NewEntry(quiet))

	emotes := sky.NewEmoteSpawner(skyCtx, cfg.Emotes)
	scheduler := ecs.NewScheduler(clock, skyCtx.Registry)
	scheduler.Register(emotes)
	switch cfg.Clouds.Mode {
	case config.CloudsRadial:
		ring := &sky.CloudRing{AngularVelocity: cfg.Clouds.Radial.AngularVelocity}
		scheduler.Register(ring)
		scheduler.Register(sky.NewRadialCloudSpawner(skyCtx, cfg.Clouds.Radial, ring, shapes))
	case config.CloudsDrift:
		scheduler.Register(sky.NewDriftCloudSpawner(skyCtx, cfg.Clouds.Drift, shapes))
	}
	scheduler.Register(skyCtx.Registry)

	chat := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))

	report := &Report{
		Duration:       *duration,
		Rate:           *rate,
		Step:           *step,
		CloudMode:      cfg.Clouds.Mode,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.WithField("duration", *duration).Info("Running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var owed float64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			owed += *rate * step.Seconds()
			for ; owed >= 1; owed-- {
				if emotes.Enqueue(syntheticBatch(chat)) {
					report.Messages++
				} else {
					report.Dropped++
				}
			}

			clock.Advance(*step)
			updateStart := time.Now()
			scheduler.Once(clock.Now())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))

			if live := skyCtx.Registry.Len(); live > report.PeakLive {
				report.PeakLive = live
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = int64(len(report.UpdateTime.Samples))
	report.SimulatedTime = clock.Now()
	report.Registry = skyCtx.Registry.Stats()
	report.SceneAdds = boundary.added
	report.SceneRemoves = boundary.removed
	report.UpdateTime.Finalize()
	for _, s := range scheduler.GetStats().Systems {
		report.Systems = append(report.Systems, SystemTiming{Name: s.Name, Avg: s.AvgDuration, Max: s.MaxDuration})
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.WithError(err).Fatal("Failed to generate report")
	}
	fmt.Println("--- End of Report ---")
}

// syntheticBatch imitates one chat message carrying one to four emotes.
func syntheticBatch(r *rand.Rand) []sky.Sprite {
	batch := make([]sky.Sprite, 1+r.IntN(4))
	for i := range batch {
		n := r.IntN(len(emoteNames))
		batch[i] = sky.Sprite{ID: fmt.Sprintf("%d", 25+n), Name: emoteNames[n]}
	}
	return batch
}
