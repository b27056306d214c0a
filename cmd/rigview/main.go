// rigview - An interactive viewer for rigged glTF characters and their motions.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/config"
	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/internal/engine/camera"
	"github.com/Faultbox/rigview/internal/engine/renderer"
	"github.com/Faultbox/rigview/internal/engine/window"
	"github.com/Faultbox/rigview/internal/gltfio"
	"github.com/Faultbox/rigview/internal/logger"
	"github.com/Faultbox/rigview/internal/scene"
	"github.com/Faultbox/rigview/internal/ui"
)

func main() {
	runtime.LockOSThread()

	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := NewApp(cfg)
	if err != nil {
		logger.Fatal("failed to start viewer", zap.Error(err))
	}
	defer app.Close()

	// Files given on the command line are imported one after another.
	app.queue = append(app.queue, config.Args()...)

	app.Run()
}

// App is the viewer application state.
type App struct {
	window *window.Window
	cfg    *config.Config
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	scene    *engine.Scene
	ctrl     *ui.Controller
	renderer *renderer.Renderer
	camera   *camera.OrbitCamera

	// Paths picked by the dialog goroutine, drained on the main thread.
	picked chan string
	queue  []string

	status     string
	statusErr  bool
	needsFrame bool
	frame      float32
	lastMouse  imgui.Vec2
}

// NewApp creates the window, the GL renderer and the viewer session.
func NewApp(cfg *config.Config) (*App, error) {
	log := logger.Named("rigview")
	ctx, cancel := context.WithCancel(context.Background())

	s := engine.NewScene()
	vis := scene.NewVisualizer(s, cfg.Skeleton.ViewerOptions(), logger.Named("visualizer"))
	reg := scene.NewRegistry(gltfio.NewDecoder(logger.Named("decoder")), vis, logger.Named("registry"))
	exp := scene.NewExporter(s, vis, gltfio.NewEncoder(logger.Named("encoder")), cfg.Export.Exclude, logger.Named("exporter"))

	app := &App{
		cfg:    cfg,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		scene:  s,
		ctrl:   ui.NewController(s, reg, vis, exp, cfg.Export.OutputDir, logger.Named("controller")),
		camera: camera.NewOrbitCamera(),
		picked: make(chan string, 1),
		status: "Import a .glb or .gltf file to begin",
	}

	var err error
	app.window, err = window.New(window.Config{
		Title:      "rigview",
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		ClearColor: cfg.Viewer.ClearColor,
		FontFile:   cfg.Viewer.FontFile,
		FontSize:   cfg.Viewer.FontSize,
	}, logger.Named("window"))
	if err != nil {
		cancel()
		return nil, err
	}

	app.renderer, err = renderer.New(renderer.Config{
		Width:      int32(cfg.Viewer.Width),
		Height:     int32(cfg.Viewer.Height),
		ClearColor: cfg.Viewer.ClearColor,
		GridCells:  cfg.Viewer.GridCells,
		GridStep:   cfg.Viewer.GridStep,
	}, logger.Named("renderer"))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("renderer: %w", err)
	}

	log.Info("viewer started",
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
		zap.String("output_dir", cfg.Export.OutputDir),
	)
	return app, nil
}

// Close releases GL resources and drops the session.
func (app *App) Close() {
	app.cancel()
	if err := app.ctrl.Reset(); err != nil {
		app.log.Warn("reset on close", zap.Error(err))
	}
	if app.renderer != nil {
		app.renderer.Close()
		app.renderer = nil
	}
}

// Run starts the main loop.
func (app *App) Run() {
	app.window.Run(app.render)
}

// openFileDialog shows the native picker. SDL/Cocoa window calls must stay
// on the main thread, so the result is handed over through app.picked.
func (app *App) openFileDialog() {
	go func() {
		filename, err := dialog.File().
			Filter("3D Characters", "glb", "gltf", "fbx").
			Filter("All Files", "*").
			Title("Import Character").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				app.log.Warn("file dialog", zap.Error(err))
			}
			return
		}
		select {
		case app.picked <- filename:
		default:
			app.log.Warn("dialog result dropped, import already queued", zap.String("file", filename))
		}
	}()
}

// setStatus shows a message in the status bar.
func (app *App) setStatus(err error, format string, args ...any) {
	app.status = fmt.Sprintf(format, args...)
	app.statusErr = err != nil
	if err != nil {
		app.status += ": " + err.Error()
	}
}

// pump handles everything that must happen before widgets are drawn:
// dialog results, queued imports, finished imports and animation time.
func (app *App) pump() {
	select {
	case path := <-app.picked:
		app.queue = append(app.queue, path)
	default:
	}

	if len(app.queue) > 0 && !app.ctrl.Busy() {
		path := app.queue[0]
		app.queue = app.queue[1:]
		if err := app.ctrl.BeginImport(app.ctx, path); err != nil {
			app.setStatus(err, "Import %s", path)
		} else {
			app.setStatus(nil, "Importing %s...", path)
		}
	}

	if res, ok := app.ctrl.Poll(); ok {
		if res.Err != nil {
			app.setStatus(res.Err, "Import %s failed", res.Path)
		} else {
			st := res.Model.Stats()
			app.setStatus(nil, "Imported %s (%s, %d meshes, %d bones, %d motions)",
				res.Model.Name, res.Model.Kind, st.Meshes, st.Bones, st.Motions)
		}
	}

	dt := imgui.CurrentIO().DeltaTime()
	app.scene.Advance(dt)
	app.frame = app.ctrl.Frame()
}

func (app *App) render() {
	app.pump()

	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.ModCtrl) | imgui.KeyChord(imgui.KeyO)) {
		app.openFileDialog()
	}
	if app.ctrl.CanPlay() && !imgui.IsAnyItemActive() {
		if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeySpace)) {
			app.togglePlayback()
		}
	}

	if imgui.BeginMainMenuBar() {
		if imgui.BeginMenu("File") {
			if imgui.MenuItemBool("Import...") {
				app.openFileDialog()
			}
			if imgui.MenuItemBool("Reset Session") {
				app.resetSession()
			}
			imgui.Separator()
			if imgui.MenuItemBool("Exit") {
				os.Exit(0)
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}

	workPos, workSize := window.WorkArea()

	toolbarWidth := float32(300)
	statusBarHeight := float32(30)
	contentHeight := workSize.Y - statusBarHeight

	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(imgui.NewVec2(toolbarWidth, contentHeight))
	if imgui.BeginV("Session", nil, flags) {
		app.renderToolbar()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+toolbarWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X-toolbarWidth, contentHeight))
	if imgui.BeginV("Viewport", nil, flags|imgui.WindowFlagsNoScrollbar) {
		app.renderViewport()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X, workPos.Y+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X, statusBarHeight))
	statusFlags := flags | imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar
	if imgui.BeginV("##StatusBar", nil, statusFlags) {
		app.renderStatusBar()
	}
	imgui.End()
}

func (app *App) renderStatusBar() {
	if app.ctrl.Busy() {
		imgui.TextColored(imgui.NewVec4(0.9, 0.8, 0.3, 1), "[busy]")
		imgui.SameLine()
	}
	if app.statusErr {
		imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), app.status)
		return
	}
	imgui.Text(app.status)
}
