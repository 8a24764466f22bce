package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/emotesky/sky"
)

type Report struct {
	// Configuration
	Duration  time.Duration
	Rate      float64
	Step      time.Duration
	CloudMode string

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	SimulatedTime  time.Duration
	Messages       int
	Dropped        int
	PeakLive       int
	SceneAdds      int
	SceneRemoves   int
	Registry       sky.RegistryStats
	UpdateTime     Stats
	Systems        []SystemTiming
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type SystemTiming struct {
	Name string
	Avg  time.Duration
	Max  time.Duration
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))

	sorted := slices.Clone(s.Samples)
	slices.Sort(sorted)
	s.P99 = sorted[(len(sorted)-1)*99/100]
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Emote Sky Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Chat Rate:** {{.Rate}} messages per simulated second
- **Frame Step:** {{.Step}}
- **Clouds:** {{.CloudMode}}

## Simulation
- **Simulated Time:** {{.SimulatedTime}}
- **Messages Queued:** {{.Messages}}
- **Messages Dropped:** {{.Dropped}}
- **Peak Live Entities:** {{.PeakLive}}
- **Live At End:** {{.Registry.Live}} ({{range $kind, $n := .Registry.ByKind}}{{kind $kind}}={{$n}} {{end}})
- **Spawned / Evicted:** {{.Registry.Spawned}} / {{.Registry.Evicted}}
- **Scene Adds / Removes:** {{.SceneAdds}} / {{.SceneRemoves}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
  - **P99:** {{.UpdateTime.P99}}
{{range .Systems}}- {{.Name}}: avg {{.Avg}}, max {{.Max}}
{{end}}
## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end)
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"kind": func(k int) string {
			return sky.MotionKind(k).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
