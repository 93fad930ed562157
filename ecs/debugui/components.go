package debugui

import (
	"github.com/plus3/tick/ecs"
)

type PerformanceStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type ScheduleInspectorComponent struct{}

type HierarchyBrowserComponent struct {
	selectedEntityId ecs.EntityId
}
