package ecs

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/plus3/tick/framegraph"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler executes systems through a frame graph. Each registered system
// becomes one graph pass; systems implementing Declarer contribute hazard
// declarations, and the compiled order is what Once runs. The compiled graph
// is reused across ticks and rebuilt only when the system set changes.
type Scheduler struct {
	storage   *Storage
	graph     *framegraph.Graph
	systems   []System
	passNames []string
	snapshots []interface{ Execute() }

	systemStats []*systemStatsInternal

	frame *UpdateFrame
	stale bool
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
		graph:   framegraph.New(),
		systems: make([]System, 0),
	}
}

// Register adds a system to the scheduler and initializes its Query and
// Singleton fields. The system's pass is named after its concrete type;
// registering several systems of one type disambiguates with a #n suffix.
func (s *Scheduler) Register(system System) {
	s.initializeFields(system)
	s.systems = append(s.systems, system)

	name := systemName(system)
	passName := name
	for n := 2; contains(s.passNames, passName); n++ {
		passName = fmt.Sprintf("%s#%d", name, n)
	}
	s.passNames = append(s.passNames, passName)

	s.systemStats = append(s.systemStats, &systemStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	})

	s.stale = true
}

func systemName(system System) string {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// initializeFields wires the system's Query and Singleton fields to the
// scheduler's storage, and collects the queries so Once can snapshot them
// before any pass runs.
func (s *Scheduler) initializeFields(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()

		if strings.HasPrefix(typeName, "Query[") || strings.HasPrefix(typeName, "Singleton[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on field: " + fieldType.Name)
			}

			initMethod.Call([]reflect.Value{
				reflect.ValueOf(s.storage),
			})

			if strings.HasPrefix(typeName, "Query[") {
				snap, ok := field.Addr().Interface().(interface{ Execute() })
				if !ok {
					panic("Query field missing Execute method: " + fieldType.Name)
				}
				s.snapshots = append(s.snapshots, snap)
			}
		}
	}
}

// rebuild registers one pass per system on a reset graph and compiles it.
func (s *Scheduler) rebuild() error {
	s.graph.Reset()

	for i, system := range s.systems {
		var build func(*framegraph.PassBuilder)
		if declarer, ok := system.(Declarer); ok {
			build = declarer.Declare
		}

		idx := i
		sys := system
		err := s.graph.AddPass(s.passNames[i], build, func() {
			start := time.Now()
			sys.Execute(s.frame)
			duration := time.Since(start)

			stats := s.systemStats[idx]
			stats.executionCount++
			stats.lastDuration = duration
			stats.totalDuration += duration

			if duration < stats.minDuration {
				stats.minDuration = duration
			}
			if duration > stats.maxDuration {
				stats.maxDuration = duration
			}
		})
		if err != nil {
			return err
		}
	}

	if err := s.graph.Compile(); err != nil {
		return err
	}
	s.stale = false
	return nil
}

// Once executes all registered systems once, in compiled graph order, with the
// given delta time. Query caches are snapshotted before the first pass runs and
// buffered commands are flushed after the last. A cycle in the declared
// accesses surfaces here as the Compile error.
func (s *Scheduler) Once(dt float64) error {
	if s.stale || !s.graph.Compiled() {
		if err := s.rebuild(); err != nil {
			return err
		}
	}

	s.frame = newUpdateFrame(dt, s.storage)

	for _, snap := range s.snapshots {
		snap.Execute()
	}

	if err := s.graph.Execute(); err != nil {
		return err
	}

	s.frame.Commands.Flush(s.storage)
	s.frame = nil
	return nil
}

// Order returns the system pass names in compiled execution order. It compiles
// the graph if needed; a compile failure yields the error instead.
func (s *Scheduler) Order() ([]string, error) {
	if s.stale || !s.graph.Compiled() {
		if err := s.rebuild(); err != nil {
			return nil, err
		}
	}
	return s.graph.Order(), nil
}

// Levels returns the compiled pass levels (see framegraph.Graph.Levels),
// compiling first if needed.
func (s *Scheduler) Levels() ([][]string, error) {
	if s.stale || !s.graph.Compiled() {
		if err := s.rebuild(); err != nil {
			return nil, err
		}
	}
	return s.graph.Levels(), nil
}

// Run executes all systems repeatedly at the given interval until the context
// is cancelled or a tick fails.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
