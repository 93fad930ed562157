// Package ebiten bridges the debug UI onto the Ebiten render loop through
// cimgui-go's Ebiten backend.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
)

// ImguiBackend is the Dear ImGui backend for Ebiten games. Embedding keeps
// the backend's full surface (BeginFrame, EndFrame, Draw, input forwarding)
// available while giving callers a single type to hold.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}
