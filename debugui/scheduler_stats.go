package debugui

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/DeityZeke/simcore/sim"
)

const frameHistorySize = 120

// SchedulerStatsWindow shows per-system timing, the batch layout of the
// last tick, and a rolling frame-time graph. Enable checkboxes and run
// buttons feed straight back into the scheduler.
type SchedulerStatsWindow struct {
	scheduler *sim.Scheduler

	frameHistory [frameHistorySize]float32
	frameIndex   int
}

func NewSchedulerStatsWindow(scheduler *sim.Scheduler) *SchedulerStatsWindow {
	return &SchedulerStatsWindow{scheduler: scheduler}
}

// RecordFrame feeds one frame's elapsed seconds into the rolling history.
func (sw *SchedulerStatsWindow) RecordFrame(dt float64) {
	sw.frameHistory[sw.frameIndex] = float32(dt * 1000.0)
	sw.frameIndex = (sw.frameIndex + 1) % frameHistorySize
}

func (sw *SchedulerStatsWindow) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(480, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(520, 440), imgui.CondOnce)

	if !imgui.BeginV("Scheduler", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := sw.scheduler.Stats()
	imgui.Text(fmt.Sprintf("Tick: %d", sw.scheduler.TickCount()))
	imgui.Text(fmt.Sprintf("Systems: %d  Executions: %d", stats.SystemCount, stats.TotalExecutions))

	var avg float32
	for _, ft := range sw.frameHistory {
		avg += ft
	}
	avg /= frameHistorySize
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &sw.frameHistory[0], int32(frameHistorySize))

	imgui.Separator()
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSizingFixedFit
	if imgui.BeginTableV("Systems", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("On")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Cadence")
		imgui.TableSetupColumn("Runs")
		imgui.TableSetupColumn("Avg (ms)")
		imgui.TableSetupColumn("Max (ms)")
		imgui.TableHeadersRow()

		for _, sys := range stats.Systems {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			enabled := sys.Enabled
			if imgui.Checkbox("##on_"+sys.Name, &enabled) {
				sw.scheduler.SetEnabled(sys.Name, enabled)
			}

			imgui.TableNextColumn()
			imgui.Text(sys.Name)

			imgui.TableNextColumn()
			if sys.Cadence == sim.CadenceManual {
				if imgui.Button("Run##" + sys.Name) {
					sw.scheduler.Trigger(sys.Name)
				}
			} else {
				imgui.Text(sys.Cadence.String())
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.3f", float64(sys.AvgDuration.Microseconds())/1000.0))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.3f", float64(sys.MaxDuration.Microseconds())/1000.0))
		}
		imgui.EndTable()
	}

	if imgui.TreeNodeStr("Last Tick Batches") {
		for i, batch := range sw.scheduler.LastBatches() {
			imgui.BulletText(fmt.Sprintf("%d: %s", i, strings.Join(batch, ", ")))
		}
		imgui.TreePop()
	}

	imgui.End()
}
