package debugui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/tick/ecs"
)

func TestImguiSystemDefersEveryItemRender(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[ImguiItem](registry)
	storage := ecs.NewStorage(registry)

	rendered := make(map[string]bool)
	for _, name := range []string{"stats", "schedule", "hierarchy"} {
		storage.Spawn(ImguiItem{Render: func() { rendered[name] = true }})
	}

	sys := &ImguiSystem{Items: *ecs.NewQuery[struct{ *ImguiItem }](storage)}
	sys.Items.Execute()

	frame := &ecs.UpdateFrame{Storage: storage, Commands: &ecs.Commands{}}
	sys.deferRenders(frame)

	assert.Empty(t, rendered, "render runs in the deferred phase, not during collection")
	frame.Commands.Flush(storage)
	assert.Len(t, rendered, 3)
}
