package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/animation"
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/output"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Options holds the command line configuration
type Options struct {
	Scene       string
	Frames      int
	OutputDir   string
	Pattern     string
	Width       int
	Height      int
	Workers     int
	TileSize    int
	GIFPath     string
	GIFDelay    int
	ArchiveRoot string
	Verify      bool
}

// DefaultOptions reproduces the reference render: 20 PNG frames at 800x600
func DefaultOptions() Options {
	anim := animation.DefaultConfig()
	camera := renderer.DefaultCameraConfig()
	return Options{
		Scene:     "default",
		Frames:    anim.Frames,
		OutputDir: ".",
		Pattern:   anim.Pattern,
		Width:     camera.Columns,
		Height:    camera.Rows,
		TileSize:  renderer.DefaultRenderOptions().TileSize,
		GIFDelay:  5,
	}
}

func main() {
	defaults := DefaultOptions()
	opts := defaults

	flag.StringVar(&opts.Scene, "scene", defaults.Scene, "Scene type: 'default', 'solid' or 'hollow'")
	flag.IntVar(&opts.Frames, "frames", defaults.Frames, "Frames per full rotation")
	flag.StringVar(&opts.OutputDir, "out", defaults.OutputDir, "Directory for PNG frames")
	flag.StringVar(&opts.Pattern, "pattern", defaults.Pattern, "Frame file name pattern")
	flag.IntVar(&opts.Width, "width", defaults.Width, "Image width in pixels")
	flag.IntVar(&opts.Height, "height", defaults.Height, "Image height in pixels")
	flag.IntVar(&opts.Workers, "workers", defaults.Workers, "Render workers (0 = CPU count)")
	flag.IntVar(&opts.TileSize, "tile", defaults.TileSize, "Tile edge length in pixels")
	flag.StringVar(&opts.GIFPath, "gif", "", "Also write an animated GIF to this path")
	flag.IntVar(&opts.GIFDelay, "gif-delay", defaults.GIFDelay, "GIF frame delay in 100ths of a second")
	flag.StringVar(&opts.ArchiveRoot, "archive", "", "Also write a compressed frame archive below this directory")
	flag.BoolVar(&opts.Verify, "verify", false, "Read the written outputs back and check them against the render")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Sphere Tracer")
		fmt.Println("Usage: spheretracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.ListScenes() {
			fmt.Printf("  %-8s - %s\n", info.ID, info.Description)
		}
		fmt.Println()
		fmt.Println("Frames are saved as <out>/output-00.png ... output-19.png by default")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, renderer.NewDefaultLogger()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// createScene resolves the scene and applies the requested resolution
func createScene(opts Options) (*scene.Scene, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid resolution %dx%d", opts.Width, opts.Height)
	}
	s, err := scene.NewScene(opts.Scene)
	if err != nil {
		return nil, err
	}
	if opts.Width != s.CameraConfig.Columns || opts.Height != s.CameraConfig.Rows {
		s = s.WithResolution(opts.Width, opts.Height)
	}
	return s, nil
}

// Outputs holds the sinks a run writes to
type Outputs struct {
	Sinks   output.MultiSink
	PNG     *output.PNGSink
	GIF     *output.GIFSink     // nil unless -gif was given
	Archive *output.ArchiveSink // nil unless -archive was given
}

// createSinks builds the PNG sink plus any optional GIF and archive outputs
func createSinks(opts Options) (*Outputs, error) {
	pngSink, err := output.NewPNGSink(opts.OutputDir, png.DefaultCompression)
	if err != nil {
		return nil, err
	}
	outputs := &Outputs{PNG: pngSink, Sinks: output.MultiSink{pngSink}}

	if opts.GIFPath != "" {
		outputs.GIF = output.NewGIFSink(opts.GIFPath, opts.GIFDelay)
		outputs.Sinks = append(outputs.Sinks, outputs.GIF)
	}

	if opts.ArchiveRoot != "" {
		outputs.Archive, _, err = output.NewArchiveSink(opts.ArchiveRoot, opts.Scene, time.Now)
		if err != nil {
			return nil, fmt.Errorf("create archive: %w", err)
		}
		outputs.Sinks = append(outputs.Sinks, outputs.Archive)
	}

	return outputs, nil
}

func run(ctx context.Context, opts Options, logger core.Logger) error {
	selectedScene, err := createScene(opts)
	if err != nil {
		return err
	}

	outputs, err := createSinks(opts)
	if err != nil {
		return err
	}

	raytracer := selectedScene.NewRaytracer(renderer.RenderOptions{
		TileSize:   opts.TileSize,
		NumWorkers: opts.Workers,
	}, logger)

	animator := animation.NewAnimator(selectedScene, raytracer, outputs.Sinks, animation.Config{
		Frames:  opts.Frames,
		Pattern: opts.Pattern,
	}, logger)

	var archiveErr error
	var lastFrame *core.Frame
	animator.OnFrame(func(result animation.FrameResult, frame *core.Frame) {
		if outputs.Archive != nil {
			if err := outputs.Archive.AppendEvent("stats", result.Index, result); err != nil && archiveErr == nil {
				archiveErr = err
			}
		}
		// The buffer is reused for the next frame
		if opts.Verify && result.Index == opts.Frames-1 {
			lastFrame = frame.Clone()
		}
	})

	logger.Printf("Rendering %d frames of scene '%s' at %dx%d...\n",
		opts.Frames, selectedScene.Name, selectedScene.CameraConfig.Columns, selectedScene.CameraConfig.Rows)

	startTime := time.Now()
	results, runErr := animator.Run(ctx)
	closeErr := outputs.Sinks.Close()
	if runErr != nil {
		return runErr
	}
	if archiveErr != nil {
		return fmt.Errorf("archive stats: %w", archiveErr)
	}
	if closeErr != nil {
		return closeErr
	}

	logger.Printf("Rendered %d frames in %v\n", len(results), time.Since(startTime))
	logger.Printf("Frames saved in %s\n", filepath.Clean(opts.OutputDir))
	if outputs.GIF != nil {
		logger.Printf("Animation saved as %s\n", opts.GIFPath)
	}
	if outputs.Archive != nil {
		logger.Printf("Archive saved in %s\n", outputs.Archive.Directory())
	}

	if opts.Verify {
		if err := verifyOutputs(outputs, results, lastFrame); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		logger.Printf("Verified %d frames\n", len(results))
	}
	return nil
}

// verifyOutputs reads the written files back and compares them with the
// last rendered frame
func verifyOutputs(outputs *Outputs, results []animation.FrameResult, lastFrame *core.Frame) error {
	if len(results) == 0 || lastFrame == nil {
		return fmt.Errorf("no frames rendered")
	}
	last := results[len(results)-1]

	written, err := loaders.LoadFrame(outputs.PNG.Path(last.Name))
	if err != nil {
		return err
	}
	if err := compareFrames(last.Name, written, lastFrame); err != nil {
		return err
	}

	if outputs.GIF != nil && outputs.GIF.Frames() != len(results) {
		return fmt.Errorf("gif holds %d frames, expected %d", outputs.GIF.Frames(), len(results))
	}

	if outputs.Archive != nil {
		archive, err := loaders.ReadArchive(outputs.Archive.Directory())
		if err != nil {
			return err
		}
		if len(archive.Frames) != len(results) {
			return fmt.Errorf("archive holds %d frames, expected %d", len(archive.Frames), len(results))
		}
		archived := archive.Frames[len(archive.Frames)-1]
		if archived.Name != last.Name {
			return fmt.Errorf("archive ends with %s, expected %s", archived.Name, last.Name)
		}
		if err := compareFrames("archived "+last.Name, archived.Frame, lastFrame); err != nil {
			return err
		}
	}
	return nil
}

func compareFrames(name string, got, want *core.Frame) error {
	if got.Width != want.Width || got.Height != want.Height {
		return fmt.Errorf("%s is %dx%d, expected %dx%d", name, got.Width, got.Height, want.Width, want.Height)
	}
	for i := range want.Texels {
		if got.Texels[i] != want.Texels[i] {
			return fmt.Errorf("%s differs at texel %d: %+v != %+v", name, i, got.Texels[i], want.Texels[i])
		}
	}
	return nil
}
