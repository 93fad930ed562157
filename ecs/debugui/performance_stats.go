package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tick/ecs"
)

// NewPerformanceStatsComponent sizes the frame-time ring buffer; the window
// plots the last historyFrames frame times.
func NewPerformanceStatsComponent(historyFrames int) PerformanceStatsComponent {
	return PerformanceStatsComponent{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// Render draws the storage and frame-time window. Call once per frame with
// the frame's delta time; the sample lands in the ring buffer before the
// plot redraws.
func (ps *PerformanceStatsComponent) Render(storage *ecs.Storage, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames

	stats := storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d in %d archetypes, %d singletons",
		stats.TotalEntityCount, stats.ArchetypeCount, stats.SingletonCount))

	var avgMs float32
	for _, sample := range ps.frameHistory {
		avgMs += sample
	}
	avgMs /= float32(ps.historyFrames)
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgMs, 1000.0/avgMs))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	ps.renderArchetypes(stats)

	if imgui.TreeNodeStr("Singletons") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (ps *PerformanceStatsComponent) renderArchetypes(stats ecs.StorageStats) {
	if !imgui.TreeNodeStr("Archetypes") {
		return
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("ArchStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Archetype ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Entity Count")
		imgui.TableHeadersRow()

		for _, arch := range stats.ArchetypeBreakdown {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", arch.ID))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(arch.ComponentTypes)))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", arch.EntityCount))
		}

		imgui.EndTable()
	}
	imgui.TreePop()
}

// FrameTimer measures wall-clock delta time between Render calls for callers
// driving the stats window outside a fixed-step loop.
type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{lastFrameTime: time.Now()}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
