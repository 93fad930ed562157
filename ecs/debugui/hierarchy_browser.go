package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/transform"
)

var (
	browserLocalType   = reflect.TypeFor[transform.Local]()
	browserWorldType   = reflect.TypeFor[transform.World]()
	browserDirtyType   = reflect.TypeFor[transform.Dirty]()
	browserUpdatedType = reflect.TypeFor[transform.Updated]()
)

func NewHierarchyBrowserComponent() HierarchyBrowserComponent {
	return HierarchyBrowserComponent{}
}

// Render draws the transform forest as collapsible trees, one per root.
// Clicking a node selects it and shows its local and world state below.
func (hb *HierarchyBrowserComponent) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Hierarchy Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	roots := transform.Roots(storage)
	imgui.Text(fmt.Sprintf("Roots: %d", len(roots)))
	imgui.Separator()

	for _, root := range roots {
		hb.renderNode(storage, root)
	}

	if hb.selectedEntityId != 0 {
		imgui.Separator()
		hb.renderSelection(storage)
	}

	imgui.End()
}

func (hb *HierarchyBrowserComponent) renderNode(storage *ecs.Storage, ref *ecs.EntityRef) {
	id, ok := storage.ResolveEntityRef(ref)
	if !ok {
		return
	}

	label := fmt.Sprintf("Entity 0x%X", uint64(id))
	if storage.HasComponent(id, browserDirtyType) {
		label += " [dirty]"
	}
	if storage.HasComponent(id, browserUpdatedType) {
		label += " [updated]"
	}

	children := transform.Children(storage, id)

	if len(children) == 0 {
		isSelected := hb.selectedEntityId == id
		if imgui.SelectableBoolV(label, isSelected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
			hb.selectedEntityId = id
		}
		return
	}

	if imgui.TreeNodeStr(label) {
		isSelected := hb.selectedEntityId == id
		if imgui.SelectableBoolV("inspect", isSelected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
			hb.selectedEntityId = id
		}
		for _, child := range children {
			hb.renderNode(storage, child)
		}
		imgui.TreePop()
	}
}

func (hb *HierarchyBrowserComponent) renderSelection(storage *ecs.Storage) {
	id := hb.selectedEntityId
	imgui.Text(fmt.Sprintf("Selected: 0x%X", uint64(id)))

	if comp := storage.GetComponent(id, browserLocalType); comp != nil {
		local := comp.(*transform.Local)
		imgui.Text(fmt.Sprintf("Position: %.2f %.2f %.2f",
			local.Position.X(), local.Position.Y(), local.Position.Z()))
		imgui.Text(fmt.Sprintf("Scale:    %.2f %.2f %.2f",
			local.Scale.X(), local.Scale.Y(), local.Scale.Z()))
		imgui.Text(fmt.Sprintf("Rotation: %.3f + %.3fi %.3fj %.3fk",
			local.Rotation.W, local.Rotation.X(), local.Rotation.Y(), local.Rotation.Z()))
	} else {
		imgui.Text("No local transform")
	}

	if comp := storage.GetComponent(id, browserWorldType); comp != nil {
		world := comp.(*transform.World)
		col := world.Matrix.Col(3)
		imgui.Text(fmt.Sprintf("World pos: %.2f %.2f %.2f", col.X(), col.Y(), col.Z()))
	} else {
		imgui.Text("No cached world transform")
	}
}
