package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/DeityZeke/simcore/terrain"
)

// BrushPanel exposes the terrain brush settings and the edit queue depth.
// The stamp itself happens from the host's input handling via Stamp; the
// panel only holds the knobs.
type BrushPanel struct {
	edits *terrain.EditQueue

	radius  float32
	delta   int32
	falloff int32
}

func NewBrushPanel(edits *terrain.EditQueue) *BrushPanel {
	return &BrushPanel{
		edits:  edits,
		radius: 4.0,
		delta:  5,
	}
}

func (bp *BrushPanel) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 420), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(300, 220), imgui.CondOnce)

	if !imgui.BeginV("Terrain Brush", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.SliderFloat("Radius", &bp.radius, 0.5, 32.0)
	imgui.SliderInt("Strength", &bp.delta, -50, 50)

	imgui.Text("Falloff")
	imgui.RadioButtonIntPtr("Linear", &bp.falloff, int32(terrain.FalloffLinear))
	imgui.SameLine()
	imgui.RadioButtonIntPtr("Smooth", &bp.falloff, int32(terrain.FalloffSmooth))
	imgui.SameLine()
	imgui.RadioButtonIntPtr("Sharp", &bp.falloff, int32(terrain.FalloffSharp))

	imgui.Separator()
	imgui.Text(fmt.Sprintf("Queued edits: %d", bp.edits.Pending()))
	imgui.Text(fmt.Sprintf("Dirty chunks: %d", bp.edits.DirtyCount()))

	imgui.End()
}

// Stamp queues a height brush at a world position with the panel's current
// settings.
func (bp *BrushPanel) Stamp(center terrain.Vec3) {
	bp.edits.ApplyHeightBrush(center, float64(bp.radius), int(bp.delta), terrain.Falloff(bp.falloff))
}
