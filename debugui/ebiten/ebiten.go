// Package ebiten bridges the Dear ImGui overlay into an Ebiten game loop.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// Backend owns the Ebiten-specific Dear ImGui backend. Call BeginFrame
// before ticking the simulation, EndFrame after, and Draw from the game's
// Draw callback.
type Backend struct {
	*ebitenbackend.EbitenBackend
}

// NewBackend creates the backend with a window and disables imgui.ini
// persistence so debug layouts reset each run.
func NewBackend(title string, width, height int) *Backend {
	b := ebitenbackend.NewEbitenBackend()
	b.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &Backend{EbitenBackend: b}
}

// DrawOver renders the overlay on top of the given screen image.
func (b *Backend) DrawOver(screen *ebiten.Image) {
	b.Draw(screen)
}
