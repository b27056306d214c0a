// Package window owns the SDL window, GL context and Dear ImGui backend.
package window

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	ClearColor [4]float32
	FontFile   string // optional TTF; the ImGui default font is used when empty or missing
	FontSize   float32
}

// Window wraps the ImGui SDL backend.
type Window struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	config  Config
	log     *zap.Logger
}

// New creates the window and initializes OpenGL. Must run on the locked
// main thread.
func New(cfg Config, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Window{config: cfg, log: log}

	var err error
	w.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	// Fonts must be added after the context exists and before the first frame.
	w.backend.SetAfterCreateContextHook(w.loadFont)

	c := cfg.ClearColor
	w.backend.SetBgColor(imgui.NewVec4(c[0], c[1], c[2], c[3]))
	w.backend.CreateWindow(cfg.Title, cfg.Width, cfg.Height)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}

	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.String("gl_version", gl.GoStr(gl.GetString(gl.VERSION))),
	)
	return w, nil
}

func (w *Window) loadFont() {
	if w.config.FontFile == "" {
		return
	}
	if _, err := os.Stat(w.config.FontFile); err != nil {
		w.log.Warn("font not found, using default", zap.String("font", w.config.FontFile))
		return
	}
	size := w.config.FontSize
	if size <= 0 {
		size = 16
	}

	fontCfg := imgui.NewFontConfig()
	defer fontCfg.Destroy()
	imgui.CurrentIO().Fonts().AddFontFromFileTTFV(w.config.FontFile, size, fontCfg, nil)
}

// Run starts the render loop. It returns when the window is closed.
func (w *Window) Run(renderFunc func()) {
	w.backend.Run(renderFunc)
}

// SetTitle updates the window title.
func (w *Window) SetTitle(title string) {
	w.backend.SetWindowTitle(title)
}

// WorkArea returns the main viewport area below the menu bar.
func WorkArea() (pos, size imgui.Vec2) {
	viewport := imgui.MainViewport()
	return viewport.WorkPos(), viewport.WorkSize()
}
