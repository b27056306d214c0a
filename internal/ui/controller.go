// Package ui holds the viewer session state behind the toolbar widgets:
// selection lists, playback gating, background imports and export.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/rigview/internal/anim"
	"github.com/Faultbox/rigview/internal/asset"
	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/internal/ident"
	"github.com/Faultbox/rigview/internal/scene"
)

var (
	ErrBusy        = errors.New("another operation is in progress")
	ErrNoSelection = errors.New("nothing selected")
)

// Option is one entry of a selection list.
type Option struct {
	Value    string
	OnSelect func()
}

// ImportResult reports a finished background import.
type ImportResult struct {
	Path  string
	Model *asset.Model
	Err   error
}

// Controller is the session behind the viewer toolbar. All methods except
// the import goroutine run on the main thread.
type Controller struct {
	scene      *engine.Scene
	registry   *scene.Registry
	visualizer *scene.Visualizer
	exporter   *scene.Exporter
	player     *anim.Player
	outputDir  string
	log        *zap.Logger

	busy    *semaphore.Weighted
	pending chan ImportResult

	model  *asset.Model
	motion *asset.Motion
}

// NewController wires a session over an existing scene, registry,
// visualizer and exporter.
func NewController(s *engine.Scene, reg *scene.Registry, vis *scene.Visualizer, exp *scene.Exporter, outputDir string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		scene:      s,
		registry:   reg,
		visualizer: vis,
		exporter:   exp,
		player:     anim.NewPlayer(log.Named("player")),
		outputDir:  outputDir,
		log:        log,
		busy:       semaphore.NewWeighted(1),
		pending:    make(chan ImportResult, 1),
	}
}

// guard runs fn unless another operation holds the session.
func (c *Controller) guard(fn func() error) error {
	if !c.busy.TryAcquire(1) {
		return ErrBusy
	}
	defer c.busy.Release(1)
	return fn()
}

// BeginImport decodes a file on a background goroutine. The result is
// committed by Poll. Every mutating call fails with ErrBusy until then.
func (c *Controller) BeginImport(ctx context.Context, path string) error {
	if !c.busy.TryAcquire(1) {
		return ErrBusy
	}
	go func() {
		res := ImportResult{Path: path}
		f, err := os.Open(path)
		if err != nil {
			res.Err = fmt.Errorf("open %s: %w", path, err)
			c.pending <- res
			return
		}
		defer f.Close()
		res.Model, res.Err = c.registry.Load(ctx, filepath.Base(path), f)
		c.pending <- res
	}()
	return nil
}

// Poll commits a finished import, if any. It never blocks.
func (c *Controller) Poll() (ImportResult, bool) {
	select {
	case res := <-c.pending:
		defer c.busy.Release(1)
		if res.Err != nil {
			c.log.Error("import failed", zap.String("file", res.Path), zap.Error(res.Err))
			return res, true
		}
		c.registry.Add(res.Model)
		if c.model == nil {
			c.model = res.Model
		}
		return res, true
	default:
		return ImportResult{}, false
	}
}

// Busy reports whether an operation holds the session.
func (c *Controller) Busy() bool {
	if c.busy.TryAcquire(1) {
		c.busy.Release(1)
		return false
	}
	return true
}

// ModelOptions lists every imported model.
func (c *Controller) ModelOptions() []Option {
	models := c.registry.Models()
	out := make([]Option, len(models))
	for i, m := range models {
		out[i] = Option{
			Value: m.Name,
			OnSelect: func() {
				if err := c.SelectModel(m.ID); err != nil {
					c.log.Warn("select model", zap.String("model", m.Name), zap.Error(err))
				}
			},
		}
	}
	return out
}

// MotionOptions lists the motions of the selected model.
func (c *Controller) MotionOptions() []Option {
	if c.model == nil {
		return nil
	}
	motions := c.registry.MotionsFor(c.model.ID)
	out := make([]Option, len(motions))
	for i, m := range motions {
		out[i] = Option{
			Value: m.Name,
			OnSelect: func() {
				if err := c.SelectMotion(m.ID); err != nil {
					c.log.Warn("select motion", zap.String("motion", m.Name), zap.Error(err))
				}
			},
		}
	}
	return out
}

// SelectModel changes the selected model. A motion of another model is
// deselected and its live group released.
func (c *Controller) SelectModel(id ident.ID) error {
	return c.guard(func() error {
		m, err := c.registry.ModelByID(id)
		if err != nil {
			return err
		}
		c.model = m
		if c.motion != nil && c.motion.ModelID != m.ID {
			c.motion = nil
			c.player.Release()
		}
		return nil
	})
}

// SelectMotion selects a motion and reconstructs it into the player.
func (c *Controller) SelectMotion(id ident.ID) error {
	return c.guard(func() error {
		m, err := c.registry.MotionByID(id)
		if err != nil {
			return err
		}
		if err := c.player.Load(c.scene, m); err != nil {
			return err
		}
		c.motion = m
		return nil
	})
}

// SelectedModel returns the selected model, or nil.
func (c *Controller) SelectedModel() *asset.Model { return c.model }

// SelectedMotion returns the selected motion, or nil.
func (c *Controller) SelectedMotion() *asset.Motion { return c.motion }

// Visualize shows the selected model.
func (c *Controller) Visualize() error {
	return c.guard(func() error {
		if c.model == nil {
			return fmt.Errorf("visualize: %w", ErrNoSelection)
		}
		_, err := c.registry.Visualize(c.model.ID)
		return err
	})
}

// IsVisualized reports whether the selected model is shown.
func (c *Controller) IsVisualized() bool {
	return c.model != nil && c.visualizer.IsVisualized(c.model)
}

// CanPlay reports whether a motion is loaded into the player.
func (c *Controller) CanPlay() bool { return c.player.HasAnimation() }

// IsPlaying reports whether the loaded motion is playing.
func (c *Controller) IsPlaying() bool { return c.player.IsPlaying() }

// Frame returns the current playback frame.
func (c *Controller) Frame() float32 { return c.player.Frame() }

// Window returns the playback window.
func (c *Controller) Window() (from, to float32) {
	return anim.DefaultFrom, anim.DefaultTo
}

func (c *Controller) playback(op string, fn func()) error {
	return c.guard(func() error {
		if !c.player.HasAnimation() {
			return fmt.Errorf("%s: %w", op, ErrNoSelection)
		}
		fn()
		return nil
	})
}

// Play starts or resumes the loaded motion.
func (c *Controller) Play() error { return c.playback("play", c.player.Play) }

// Pause pauses the loaded motion.
func (c *Controller) Pause() error { return c.playback("pause", c.player.Pause) }

// Stop rewinds and stops the loaded motion.
func (c *Controller) Stop() error { return c.playback("stop", c.player.Stop) }

// Seek jumps to a frame.
func (c *Controller) Seek(frame float32) error {
	return c.playback("seek", func() { c.player.Seek(frame) })
}

// Export writes the selected motion applied to its visualized model into
// the output directory and returns the written path.
func (c *Controller) Export(ctx context.Context) (string, error) {
	var path string
	err := c.guard(func() error {
		if c.motion == nil {
			return fmt.Errorf("export: %w", ErrNoSelection)
		}
		art, err := c.exporter.Export(ctx, c.motion)
		if err != nil {
			return err
		}
		if err := art.WriteFiles(c.outputDir); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		path = filepath.Join(c.outputDir, art.Name()+".glb")
		return nil
	})
	return path, err
}

// Reset drops the session state: the live group, the mounted model and the
// selection. Imported models stay registered.
func (c *Controller) Reset() error {
	return c.guard(func() error {
		c.player.Release()
		c.model = nil
		c.motion = nil
		return c.visualizer.Clear()
	})
}
