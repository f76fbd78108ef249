package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/DeityZeke/simcore/terrain"
	"github.com/DeityZeke/simcore/world"
)

// ChunkViewer lists every chunk record with its lifecycle state, occupancy
// and integrity hash, and shows the world bounds of the selected row.
type ChunkViewer struct {
	world    *world.World
	selected *terrain.Location
}

func NewChunkViewer(w *world.World) *ChunkViewer {
	return &ChunkViewer{world: w}
}

func (cv *ChunkViewer) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(460, 400), imgui.CondOnce)

	if !imgui.BeginV("Chunk Index", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Chunks: %d", cv.world.Chunks.Len()))
	imgui.Text(fmt.Sprintf("Pending reassignments: %d", cv.world.Chunks.PendingReassignments()))
	imgui.Separator()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ChunkTable", 5, tableFlags, imgui.NewVec2(0, 260), 0) {
		imgui.TableSetupColumn("Location")
		imgui.TableSetupColumn("State")
		imgui.TableSetupColumn("Occupancy")
		imgui.TableSetupColumn("Dirty")
		imgui.TableSetupColumn("Hash")
		imgui.TableHeadersRow()

		for loc, chunk := range cv.world.EnumerateChunks() {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			label := fmtLocation(loc)
			isSelected := cv.selected != nil && *cv.selected == loc
			if imgui.SelectableBoolV(label, isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				picked := loc
				cv.selected = &picked
			}

			imgui.TableNextColumn()
			imgui.Text(chunk.State().String())

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", chunk.Occupancy()))

			imgui.TableNextColumn()
			if chunk.Dirty() {
				imgui.Text("yes")
			} else {
				imgui.Text("-")
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%016x", terrain.HashChunk(chunk).Combined))
		}

		imgui.EndTable()
	}

	if cv.selected != nil {
		if imgui.TreeNodeStr("Selected Bounds") {
			b := cv.world.ChunkWorldBounds(*cv.selected)
			imgui.Text(fmt.Sprintf("Min: (%.1f, %.1f, %.1f)", b.Min.X, b.Min.Y, b.Min.Z))
			imgui.Text(fmt.Sprintf("Max: (%.1f, %.1f, %.1f)", b.Max.X, b.Max.Y, b.Max.Z))
			imgui.TreePop()
		}
	}

	imgui.End()
}

func fmtLocation(loc terrain.Location) string {
	return fmt.Sprintf("(%d, %d) L%d", loc.X, loc.Z, loc.Y)
}

// Selected returns the currently selected chunk location, if any.
func (cv *ChunkViewer) Selected() (terrain.Location, bool) {
	if cv.selected == nil {
		return terrain.Location{}, false
	}
	return *cv.selected, true
}
