package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/sky"
)

// FrameHistory is a ring of recent frame times in milliseconds.
type FrameHistory struct {
	values []float32
	index  int
	filled int
}

func NewFrameHistory(frames int) *FrameHistory {
	return &FrameHistory{values: make([]float32, max(frames, 1))}
}

func (h *FrameHistory) Push(ms float32) {
	h.values[h.index] = ms
	h.index = (h.index + 1) % len(h.values)
	h.filled = min(h.filled+1, len(h.values))
}

// Average returns the mean of the recorded frames, or 0 before the first one.
func (h *FrameHistory) Average() float32 {
	if h.filled == 0 {
		return 0
	}
	var sum float32
	for _, v := range h.Values() {
		sum += v
	}
	return sum / float32(h.filled)
}

// Max returns the slowest recorded frame.
func (h *FrameHistory) Max() float32 {
	var worst float32
	for _, v := range h.Values() {
		worst = max(worst, v)
	}
	return worst
}

// Values returns the recorded frames, oldest first.
func (h *FrameHistory) Values() []float32 {
	if h.filled < len(h.values) {
		return append([]float32(nil), h.values[:h.filled]...)
	}
	out := make([]float32, 0, len(h.values))
	out = append(out, h.values[h.index:]...)
	return append(out, h.values[:h.index]...)
}

// StatLine is an extra labelled value shown in the performance window.
type StatLine struct {
	Label string
	Value func() string
}

// PerformanceStats shows frame timings, per-system timings and entity counts.
type PerformanceStats struct {
	scheduler *ecs.Scheduler
	registry  *sky.Registry
	history   *FrameHistory
	extra     []StatLine
}

func NewPerformanceStats(scheduler *ecs.Scheduler, registry *sky.Registry, history *FrameHistory, extra ...StatLine) *PerformanceStats {
	return &PerformanceStats{
		scheduler: scheduler,
		registry:  registry,
		history:   history,
		extra:     extra,
	}
}

func (ps *PerformanceStats) Render() {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := ps.registry.Stats()
	imgui.Text(fmt.Sprintf("Live Entities: %d", stats.Live))
	for kind := sky.EmoteDrift; kind <= sky.CloudRadial; kind++ {
		imgui.BulletText(fmt.Sprintf("%s: %d", kind, stats.Count(kind)))
	}
	imgui.Text(fmt.Sprintf("Spawned: %d  Evicted: %d", stats.Spawned, stats.Evicted))

	for _, line := range ps.extra {
		imgui.Text(fmt.Sprintf("%s: %s", line.Label, line.Value()))
	}

	avg := ps.history.Average()
	fps := float32(0)
	if avg > 0 {
		fps = 1000 / avg
	}
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, fps))
	imgui.Text(fmt.Sprintf("Worst Frame Time: %.2f ms", ps.history.Max()))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	if values := ps.history.Values(); len(values) > 0 {
		imgui.PlotLinesFloatPtr("##frametime", &values[0], int32(len(values)))
	}

	if imgui.TreeNodeStr("Systems") {
		schedStats := ps.scheduler.GetStats()
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, sys := range schedStats.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(sys.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(sys.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.Text(fmt.Sprintf("Frames: %d", schedStats.Frames))
		imgui.TreePop()
	}

	imgui.End()
}
