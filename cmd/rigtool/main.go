// rigtool is a CLI utility for inspecting and exporting rigged glTF assets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/rigview/internal/asset"
	"github.com/Faultbox/rigview/internal/config"
	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/internal/gltfio"
	"github.com/Faultbox/rigview/internal/logger"
	"github.com/Faultbox/rigview/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "tracks", "t":
		cmdTracks(args)
	case "export", "x":
		cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rigtool - rigged glTF asset utility

Usage:
  rigtool <command> [options]

Commands:
  info <file.glb>                       Show model kind, counts and motions
  tracks <file.glb> [motion]            List keyframe tracks per motion
  export <file.glb> <motion> [out_dir]  Export one motion as GLB

Options:
  -v    Verbose logging (all commands)

Examples:
  rigtool info hero.glb
  rigtool tracks hero.glb Walk
  rigtool export hero.glb Walk ./out`)
}

// session bundles the headless pipeline shared by every command.
type session struct {
	cfg        *config.Config
	scene      *engine.Scene
	visualizer *scene.Visualizer
	registry   *scene.Registry
	exporter   *scene.Exporter
}

func newSession(verbose bool) *session {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := engine.NewScene()
	vis := scene.NewVisualizer(s, cfg.Skeleton.ViewerOptions(), logger.Named("visualizer"))
	return &session{
		cfg:        cfg,
		scene:      s,
		visualizer: vis,
		registry:   scene.NewRegistry(gltfio.NewDecoder(logger.Named("gltf")), vis, logger.Named("registry")),
		exporter: scene.NewExporter(s, vis, gltfio.NewEncoder(logger.Named("gltf")),
			cfg.Export.Exclude, logger.Named("export")),
	}
}

func (s *session) load(path string) *asset.Model {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	m, err := s.registry.Import(context.Background(), filepath.Base(path), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func findMotion(m *asset.Model, name string) *asset.Motion {
	for _, mo := range m.Motions {
		if mo.Name == name {
			return mo
		}
	}
	for _, mo := range m.Motions {
		if strings.EqualFold(mo.Name, name) {
			return mo
		}
	}
	return nil
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool info <file.glb>")
		os.Exit(1)
	}

	s := newSession(*verbose)
	m := s.load(fs.Arg(0))
	st := m.Stats()

	fmt.Printf("Model:      %s.%s\n", m.Name, m.Extension)
	fmt.Printf("Kind:       %s\n", m.Kind)
	fmt.Printf("Meshes:     %d\n", st.Meshes)
	fmt.Printf("Geometries: %d\n", st.Geometries)
	if m.IsHuman() {
		fmt.Printf("Skeleton:   %s (%d bones)\n", m.Human.Skeleton.Name, st.Bones)
		fmt.Printf("Nodes:      %d\n", st.TransformNodes)
	}
	fmt.Println()
	fmt.Printf("Motions (%d):\n", st.Motions)
	for _, mo := range m.Motions {
		from, to, _ := mo.FrameRange()
		fmt.Printf("  %-24s %3d tracks  frames %.0f-%.0f\n", mo.Name, mo.TrackCount(), from, to)
	}
}

func cmdTracks(args []string) {
	fs := flag.NewFlagSet("tracks", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	limit := fs.Int("n", 0, "Limit tracks per motion (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool tracks <file.glb> [motion]")
		os.Exit(1)
	}

	s := newSession(*verbose)
	m := s.load(fs.Arg(0))

	motions := m.Motions
	if fs.NArg() > 1 {
		mo := findMotion(m, fs.Arg(1))
		if mo == nil {
			fmt.Fprintf(os.Stderr, "Motion not found: %s\n", fs.Arg(1))
			os.Exit(1)
		}
		motions = []*asset.Motion{mo}
	}

	for _, mo := range motions {
		fmt.Printf("%s:\n", mo.Name)
		for i, tr := range mo.Tracks() {
			if *limit > 0 && i >= *limit {
				fmt.Printf("  ... %d more\n", mo.TrackCount()-i)
				break
			}
			target := "(none)"
			if tr.Target != nil {
				target = tr.Target.Name
			}
			fmt.Printf("  %-28s %-20s %-10s %4d keys\n", target, tr.Property, tr.ValueType(), len(tr.Keys))
		}
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool export <file.glb> <motion> [out_dir]")
		os.Exit(1)
	}

	s := newSession(*verbose)
	defer logger.Sync()

	m := s.load(fs.Arg(0))
	mo := findMotion(m, fs.Arg(1))
	if mo == nil {
		fmt.Fprintf(os.Stderr, "Motion not found: %s\n", fs.Arg(1))
		os.Exit(1)
	}

	outputDir := s.cfg.Export.OutputDir
	if fs.NArg() > 2 {
		outputDir = fs.Arg(2)
	}

	if _, err := s.registry.Visualize(m.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	art, err := s.exporter.Export(context.Background(), mo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := art.WriteFiles(outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported: %s (%d bytes)\n", filepath.Join(outputDir, art.Name()+".glb"), len(art.Bytes()))
}
