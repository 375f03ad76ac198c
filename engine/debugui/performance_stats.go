package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
)

// PerformanceStats shows frame timing, per-stage loop timing and table occupancy.
type PerformanceStats struct {
	ctx  *engine.Context
	loop *engine.FrameLoop

	history *frameHistory
	timer   *FrameTimer
}

func NewPerformanceStats(ctx *engine.Context, loop *engine.FrameLoop, historyFrames int) *PerformanceStats {
	return &PerformanceStats{
		ctx:     ctx,
		loop:    loop,
		history: newFrameHistory(historyFrames),
		timer:   NewFrameTimer(),
	}
}

func (ps *PerformanceStats) Render() {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.history.push(ps.timer.GetDeltaTime() * 1000.0)

	stats := ps.ctx.Stats()
	imgui.Text(fmt.Sprintf("Scene: %s", stats.Scene))
	imgui.Text(fmt.Sprintf("Active Entities: %d", stats.Entities.Active))
	imgui.Text(fmt.Sprintf("Pending Destruction: %d", stats.Entities.Pending))
	imgui.Text(fmt.Sprintf("Next Handle: %d", stats.Entities.NextHandle))

	avgFrameTime := ps.history.average()
	fps := float32(0)
	if avgFrameTime > 0 {
		fps = 1000.0 / avgFrameTime
	}
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, fps))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.history.samples[0], int32(len(ps.history.samples)))

	if ps.loop != nil && imgui.TreeNodeStr("Frame Stages") {
		loopStats := ps.loop.Stats()
		imgui.Text(fmt.Sprintf("Frames: %d  Fixed Steps: %d", loopStats.Frames, loopStats.FixedSteps))
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("StageStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Stage")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, stage := range loopStats.Stages {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(stage.Name)
				imgui.TableNextColumn()
				imgui.Text(stage.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(stage.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(stage.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Component Tables") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("TableStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Kind")
			imgui.TableSetupColumn("Live")
			imgui.TableSetupColumn("Pools")
			imgui.TableSetupColumn("Free Slots")
			imgui.TableSetupColumn("Next Handle")
			imgui.TableHeadersRow()

			for kind := range ecs.EngineKindCount {
				ts := stats.Tables[kind]
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(kind.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", ts.Live))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d x %d", ts.Pools, ts.PoolCapacity))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", ts.FreeSlots))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", ts.NextHandle))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// frameHistory is a fixed-size ring of frame times in milliseconds.
type frameHistory struct {
	samples []float32
	index   int
}

func newFrameHistory(n int) *frameHistory {
	return &frameHistory{samples: make([]float32, max(n, 1))}
}

func (h *frameHistory) push(ms float32) {
	h.samples[h.index] = ms
	h.index = (h.index + 1) % len(h.samples)
}

func (h *frameHistory) average() float32 {
	var sum float32
	for _, s := range h.samples {
		sum += s
	}
	return sum / float32(len(h.samples))
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
