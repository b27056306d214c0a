package main

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/rigview/internal/engine/renderer"
	"github.com/Faultbox/rigview/internal/ui"
)

// renderToolbar draws the session panel: import, selection, playback and
// export controls.
func (app *App) renderToolbar() {
	if imgui.ButtonV("Import...", imgui.NewVec2(-1, 0)) {
		app.openFileDialog()
	}
	if len(app.queue) > 0 {
		imgui.TextDisabled(fmt.Sprintf("%d file(s) queued", len(app.queue)))
	}

	imgui.Spacing()
	imgui.Separator()
	imgui.Text("Model")
	model := app.ctrl.SelectedModel()
	preview := "(none)"
	if model != nil {
		preview = model.Name
	}
	app.combo("##model", preview, app.ctrl.ModelOptions())

	if model != nil {
		st := model.Stats()
		imgui.TextDisabled(fmt.Sprintf("%s, %d meshes, %d bones", model.Kind, st.Meshes, st.Bones))
		if app.ctrl.IsVisualized() {
			imgui.TextColored(imgui.NewVec4(0.4, 0.8, 0.4, 1), "Visualized")
		} else if imgui.ButtonV("Visualize", imgui.NewVec2(-1, 0)) {
			if err := app.ctrl.Visualize(); err != nil {
				app.setStatus(err, "Visualize %s", model.Name)
			} else {
				app.needsFrame = true
				app.window.SetTitle("rigview - " + model.Name)
				app.setStatus(nil, "Showing %s", model.Name)
			}
		}
	}

	imgui.Spacing()
	imgui.Separator()
	imgui.Text("Motion")
	motion := app.ctrl.SelectedMotion()
	preview = "(none)"
	if motion != nil {
		preview = motion.Name
	}
	app.combo("##motion", preview, app.ctrl.MotionOptions())

	if !app.ctrl.CanPlay() {
		imgui.TextDisabled("Select a motion to enable playback")
		return
	}

	imgui.Spacing()
	if app.ctrl.IsPlaying() {
		if imgui.ButtonV("Pause", imgui.NewVec2(-1, 0)) {
			app.report(app.ctrl.Pause(), "Pause")
		}
	} else if imgui.ButtonV("Play", imgui.NewVec2(-1, 0)) {
		app.report(app.ctrl.Play(), "Play")
	}
	if imgui.ButtonV("Stop", imgui.NewVec2(-1, 0)) {
		app.report(app.ctrl.Stop(), "Stop")
	}

	from, to := app.ctrl.Window()
	imgui.SetNextItemWidth(-1)
	if imgui.SliderFloatV("##frame", &app.frame, from, to, "frame %.2f", imgui.SliderFlagsNone) {
		app.report(app.ctrl.Seek(app.frame), "Seek")
	}

	imgui.Spacing()
	imgui.Separator()
	if imgui.ButtonV("Export GLB", imgui.NewVec2(-1, 0)) {
		path, err := app.ctrl.Export(app.ctx)
		if err != nil {
			app.setStatus(err, "Export %s", motion.Name)
		} else {
			app.setStatus(nil, "Exported %s", path)
		}
	}
	imgui.TextDisabled(fmt.Sprintf("to %s", app.cfg.Export.OutputDir))
}

// combo draws a selection list. OnSelect runs after the combo closes.
func (app *App) combo(label, preview string, options []ui.Option) {
	imgui.SetNextItemWidth(-1)
	if !imgui.BeginCombo(label, preview) {
		return
	}
	var chosen func()
	for i, opt := range options {
		selected := opt.Value == preview
		if imgui.SelectableBoolV(fmt.Sprintf("%s##%d", opt.Value, i), selected, 0, imgui.NewVec2(0, 0)) {
			chosen = opt.OnSelect
		}
	}
	imgui.EndCombo()
	if chosen != nil {
		chosen()
	}
}

func (app *App) report(err error, op string) {
	if err != nil {
		app.setStatus(err, "%s", op)
	}
}

func (app *App) togglePlayback() {
	if app.ctrl.IsPlaying() {
		app.report(app.ctrl.Pause(), "Pause")
		return
	}
	app.report(app.ctrl.Play(), "Play")
}

func (app *App) resetSession() {
	if err := app.ctrl.Reset(); err != nil {
		app.setStatus(err, "Reset")
		return
	}
	renderer.Frame(app.scene, app.camera)
	app.window.SetTitle("rigview")
	app.setStatus(nil, "Session reset")
}
