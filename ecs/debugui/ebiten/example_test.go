package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/ecs/debugui"
	debugui_ebiten "github.com/plus3/tick/ecs/debugui/ebiten"
	"github.com/plus3/tick/transform"
)

// inspectorGame drives the tick scheduler from Ebiten's update loop and
// overlays the debug inspectors on every frame.
type inspectorGame struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	backend   *ecs.Singleton[debugui_ebiten.ImguiBackend]
}

func (g *inspectorGame) Update() error {
	g.backend.Get().BeginFrame()
	err := g.scheduler.Once(1.0 / 60.0)
	g.backend.Get().EndFrame()
	return err
}

func (g *inspectorGame) Draw(screen *ebiten.Image) {
	g.backend.Get().Draw(screen)
}

func (g *inspectorGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Get().Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func Example() {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow("tick inspector", 1280, 720)
	imgui.CurrentIO().SetIniFilename("")

	registry := ecs.NewComponentRegistry()
	transform.RegisterComponents(registry)
	ecs.RegisterComponent[debugui_ebiten.ImguiBackend](registry)
	ecs.RegisterComponent[debugui.ImguiItem](registry)
	ecs.RegisterComponent[debugui.ImguiInputState](registry)
	storage := ecs.NewStorage(registry)

	ecs.NewSingleton[debugui_ebiten.ImguiBackend](storage, debugui_ebiten.ImguiBackend{
		EbitenBackend: backend,
	})

	// A spinning node for the hierarchy browser to show.
	storage.Spawn(transform.NewLocal(), transform.NewWorld(), transform.Spin{
		Axis:  mgl32.Vec3{0, 1, 0},
		Speed: 45,
	})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&transform.Spinner{})
	scheduler.Register(&transform.Propagation{})
	scheduler.Register(&debugui.ImguiSystem{})

	inspector := &debugui.ScheduleInspectorComponent{}
	storage.Spawn(debugui.ImguiItem{
		Render: func() { inspector.Render(scheduler) },
	})
	browser := &debugui.HierarchyBrowserComponent{}
	storage.Spawn(debugui.ImguiItem{
		Render: func() { browser.Render(storage) },
	})

	game := &inspectorGame{
		storage:   storage,
		scheduler: scheduler,
		backend:   ecs.NewSingleton[debugui_ebiten.ImguiBackend](storage),
	}

	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
