package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tick/ecs"
)

func NewScheduleInspectorComponent() ScheduleInspectorComponent {
	return ScheduleInspectorComponent{}
}

// Render draws the compiled pass schedule and per-system timing table.
func (si *ScheduleInspectorComponent) Render(scheduler *ecs.Scheduler) {
	if !imgui.BeginV("Schedule Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	order, err := scheduler.Order()
	if err != nil {
		imgui.Text(fmt.Sprintf("Schedule unavailable: %v", err))
		imgui.End()
		return
	}
	levels, _ := scheduler.Levels()

	imgui.Text(fmt.Sprintf("Passes: %d  Levels: %d", len(order), len(levels)))

	if imgui.TreeNodeStr("Execution Order") {
		for i, name := range order {
			imgui.BulletText(fmt.Sprintf("%d: %s", i, name))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Dependency Levels") {
		for depth, level := range levels {
			if imgui.TreeNodeStr(fmt.Sprintf("Level %d (%d passes)", depth, len(level))) {
				for _, name := range level {
					imgui.BulletText(name)
				}
				imgui.TreePop()
			}
		}
		imgui.TreePop()
	}

	imgui.Separator()

	stats := scheduler.GetStats()
	imgui.Text(fmt.Sprintf("Systems: %d  Total executions: %d", stats.SystemCount, stats.TotalExecutions))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("SystemTimings", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Calls")
		imgui.TableSetupColumn("Avg")
		imgui.TableSetupColumn("Max")
		imgui.TableSetupColumn("Last")
		imgui.TableHeadersRow()

		for _, sys := range stats.Systems {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(sys.Name)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
			imgui.TableNextColumn()
			imgui.Text(sys.AvgDuration.String())
			imgui.TableNextColumn()
			imgui.Text(sys.MaxDuration.String())
			imgui.TableNextColumn()
			imgui.Text(sys.LastDuration.String())
		}

		imgui.EndTable()
	}

	imgui.End()
}
