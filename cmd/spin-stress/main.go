package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/framegraph"
	"github.com/plus3/tick/transform"
)

// worldSampler stands in for a renderer: it reads the refreshed world
// matrices and retires the per-frame update markers. It walks a live view
// rather than a query: query snapshots are taken before any pass runs, and
// by the time the sampler executes the spinner and propagation have moved
// every touched entity between archetypes, so snapshot ids are stale.
type worldSampler struct {
	updated *ecs.View[struct {
		*transform.World
		*transform.Updated
	}]
	sampled int64
}

func newWorldSampler(storage *ecs.Storage) *worldSampler {
	return &worldSampler{
		updated: ecs.NewView[struct {
			*transform.World
			*transform.Updated
		}](storage),
	}
}

func (s *worldSampler) Declare(b *framegraph.PassBuilder) {
	b.Read(transform.TagWorld)
}

func (s *worldSampler) Execute(frame *ecs.UpdateFrame) {
	var ids []ecs.EntityId
	for id := range s.updated.Iter() {
		s.sampled++
		ids = append(ids, id)
	}
	// Marker removal moves entities between archetypes; never do it while
	// the view is still walking them.
	for _, id := range ids {
		transform.ClearUpdated(frame.Storage, id)
	}
}

type forestBuilder struct {
	storage  *ecs.Storage
	rng      *rand.Rand
	fanout   int
	nodes    int
	spinners int
}

// spawnTree works through EntityRefs because every SetParent call can move
// both entities between archetypes, invalidating raw ids held across it.
func (fb *forestBuilder) spawnTree(parent *ecs.EntityRef, depth int) {
	local := transform.NewLocal()
	local.Position = mgl32.Vec3{
		fb.rng.Float32()*10 - 5,
		fb.rng.Float32()*10 - 5,
		fb.rng.Float32()*10 - 5,
	}

	// Every node carries a world cache: the sampler reads refreshed world
	// matrices, so a node without one would never be sampled and its update
	// marker would pile up tick after tick.
	var id ecs.EntityId
	if fb.rng.Intn(2) == 0 {
		axis := mgl32.Vec3{fb.rng.Float32(), fb.rng.Float32(), fb.rng.Float32()}
		id = fb.storage.Spawn(local, transform.NewWorld(), transform.Spin{
			Axis:  axis,
			Speed: fb.rng.Float32() * 180,
		})
		fb.spinners++
	} else {
		id = fb.storage.Spawn(local, transform.NewWorld())
	}
	fb.nodes++

	ref := fb.storage.CreateEntityRef(id)
	if parent != nil {
		childId, _ := fb.storage.ResolveEntityRef(ref)
		parentId, _ := fb.storage.ResolveEntityRef(parent)
		transform.SetParent(fb.storage, childId, parentId)
	}
	if depth <= 0 {
		return
	}
	for i := 0; i < fb.fanout; i++ {
		fb.spawnTree(ref, depth-1)
	}
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	roots := flag.Int("roots", 100, "The number of hierarchy roots to create.")
	depth := flag.Int("depth", 4, "The depth of each hierarchy tree.")
	fanout := flag.Int("fanout", 3, "The number of children per interior node.")
	compactEvery := flag.Int("compact-every", 300, "Compact storage every N frames (0 disables).")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	seed := flag.Int64("seed", 1, "Seed for the forest generator.")
	flag.Parse()

	log.Println("Starting transform stress test...")

	registry := ecs.NewComponentRegistry()
	transform.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	scheduler := ecs.NewScheduler(storage)
	sampler := newWorldSampler(storage)
	scheduler.Register(&transform.Spinner{})
	scheduler.Register(&transform.Propagation{})
	scheduler.Register(sampler)

	log.Printf("Growing %d trees (depth %d, fanout %d)...\n", *roots, *depth, *fanout)
	fb := &forestBuilder{
		storage: storage,
		rng:     rand.New(rand.NewSource(*seed)),
		fanout:  *fanout,
	}
	for i := 0; i < *roots; i++ {
		fb.spawnTree(nil, *depth)
	}
	log.Printf("Forest complete: %d nodes, %d spinning.\n", fb.nodes, fb.spinners)

	report := &Report{
		Duration:       *duration,
		Roots:          *roots,
		Depth:          *depth,
		Fanout:         *fanout,
		Nodes:          fb.nodes,
		Spinners:       fb.spinners,
		GCPauseMetrics: *gcPauseMetrics,
		FrameTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalFrames int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			frameStart := time.Now()
			if err := scheduler.Once(float64(deltaTime) / float64(time.Second)); err != nil {
				log.Fatalf("Frame failed: %v", err)
			}
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
			totalFrames++

			if *compactEvery > 0 && totalFrames%int64(*compactEvery) == 0 {
				storage.CompactAll()
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalFrames = totalFrames
	report.FrameTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	order, err := scheduler.Order()
	if err != nil {
		log.Fatalf("Failed to read schedule: %v", err)
	}
	report.PassOrder = order
	report.SystemStats = scheduler.GetStats().Systems

	log.Printf("Simulation finished: sampled %d world updates.\n", sampler.sampled)

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
