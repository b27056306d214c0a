package main

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/rigview/internal/engine/renderer"
)

// renderViewport draws the scene texture filling the panel and routes
// mouse input to the orbit camera.
func (app *App) renderViewport() {
	avail := imgui.ContentRegionAvail()
	footer := imgui.FrameHeightWithSpacing()
	w, h := int32(avail.X), int32(avail.Y-footer)
	if w < 1 || h < 1 {
		return
	}
	app.renderer.Resize(w, h)

	if app.needsFrame && renderer.Frame(app.scene, app.camera) {
		app.needsFrame = false
	}

	textureID := app.renderer.Render(app.scene, app.camera)
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(float32(w), float32(h)),
		imgui.NewVec2(0, 1), // GL textures are bottom-up
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0, 0, 0, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			app.camera.HandleDrag(mousePos.X-app.lastMouse.X, mousePos.Y-app.lastMouse.Y)
		}
		app.lastMouse = mousePos

		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
			app.camera.HandleZoom(wheel)
		}
	}

	if imgui.Button("Frame Model") {
		renderer.Frame(app.scene, app.camera)
	}
	imgui.SameLine()
	imgui.TextDisabled("(Drag to orbit, scroll to zoom, Space to play/pause, Ctrl+O to import)")
}
