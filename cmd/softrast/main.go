// softrast - software rasterizer viewer
// Draws an opaque mesh and an optional translucent effect mesh with a CPU
// pipeline, either live in the terminal or headless into a PNG.
//
// Controls:
//
//	Mouse drag  - Orbit camera
//	Scroll      - Zoom in/out
//	W/S/A/D     - Orbit pitch and yaw
//	+/-         - Zoom
//	R           - Reset camera
//	F2          - Toggle rotation
//	F3          - Toggle translucent meshes
//	F4          - Cycle texture filter (nearest/bilinear)
//	F5          - Cycle shading mode (combined/observed area/diffuse/specular)
//	F6          - Toggle normal map
//	F7          - Toggle depth buffer visualization
//	F8          - Toggle bounding box visualization
//	F9          - Cycle cull mode (back/front/none)
//	F10         - Toggle uniform clear color
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/taigrr/softrast/pkg/render"
	"github.com/taigrr/softrast/pkg/scene"
)

var (
	scenePath   = flag.String("scene", "", "Scene file (YAML); replaces the model arguments")
	texturePath = flag.String("texture", "", "Diffuse texture for the model")
	fxPath      = flag.String("fx", "", "Translucent effect model drawn over the model")
	fxTexture   = flag.String("fx-texture", "", "Diffuse texture for the effect model")
	fitSize     = flag.Float64("fit", 0, "Scale models so their largest extent is this size (0 keeps model units)")
	targetFPS   = flag.Int("fps", 60, "Target FPS, also the animation step in headless mode")
	bgColor     = flag.String("bg", "", "Background color (R,G,B)")
	workers     = flag.Int("workers", 0, "Render goroutines (0 = GOMAXPROCS)")
	outPath     = flag.String("out", "", "Render headless into this PNG instead of the terminal")
	frames      = flag.Int("frames", 1, "Frames to animate before writing -out")
	imageSize   = flag.String("size", "", "Image size for -out (WxH)")
	verbose     = flag.Bool("v", false, "Verbose (debug) logging")
	logPath     = flag.String("log", "", "Log file (the terminal viewer logs nowhere else)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softrast - software rasterizer viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softrast [options] <model.obj|model.glb>\n")
		fmt.Fprintf(os.Stderr, "       softrast [options] -scene scene.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit camera\n")
		fmt.Fprintf(os.Stderr, "  Scroll, +/- - Zoom\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Orbit pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset camera\n")
		fmt.Fprintf(os.Stderr, "  F2          - Toggle rotation\n")
		fmt.Fprintf(os.Stderr, "  F3          - Toggle translucent meshes\n")
		fmt.Fprintf(os.Stderr, "  F4          - Cycle texture filter\n")
		fmt.Fprintf(os.Stderr, "  F5          - Cycle shading mode\n")
		fmt.Fprintf(os.Stderr, "  F6          - Toggle normal map\n")
		fmt.Fprintf(os.Stderr, "  F7          - Toggle depth visualization\n")
		fmt.Fprintf(os.Stderr, "  F8          - Toggle bounding box visualization\n")
		fmt.Fprintf(os.Stderr, "  F9          - Cycle cull mode\n")
		fmt.Fprintf(os.Stderr, "  F10         - Toggle uniform clear color\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if *scenePath == "" && flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := scene.Build(*cfg)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	if *outPath != "" {
		return renderHeadless(s)
	}
	return runViewer(s)
}

// setupLogging installs a text logger on the renderer. The terminal viewer
// owns stdout and stderr, so without -log it only logs in headless mode.
func setupLogging() (func(), error) {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	var w io.Writer
	closeFn := func() {}
	switch {
	case *logPath != "":
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case *outPath != "":
		w = os.Stderr
	default:
		return closeFn, nil
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	render.SetLogger(logger)
	return closeFn, nil
}

// loadConfig reads -scene, or builds a scene from the model arguments and
// flags.
func loadConfig() (*scene.Config, error) {
	var cfg *scene.Config
	if *scenePath != "" {
		loaded, err := scene.Load(*scenePath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := scene.DefaultConfig()
		cfg = &def
		cfg.Meshes = append(cfg.Meshes, scene.MeshConfig{
			Model:    flag.Arg(0),
			Kind:     scene.KindOpaque,
			Fit:      *fitSize,
			Textures: scene.TextureConfig{Diffuse: *texturePath},
		})
		if *fxPath != "" {
			cfg.Meshes = append(cfg.Meshes, scene.MeshConfig{
				Model:    *fxPath,
				Kind:     scene.KindTranslucent,
				Fit:      *fitSize,
				Textures: scene.TextureConfig{Diffuse: *fxTexture},
			})
		}
	}

	if *bgColor != "" {
		var r, g, b uint8
		if _, err := fmt.Sscanf(*bgColor, "%d,%d,%d", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("parse -bg %q: %w", *bgColor, err)
		}
		cfg.Background = scene.RGB{r, g, b}
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if *imageSize != "" {
		w, h, err := parseSize(*imageSize)
		if err != nil {
			return nil, err
		}
		cfg.Width, cfg.Height = w, h
	}
	return cfg, nil
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("parse -size %q: want WxH", s)
	}
	return w, h, nil
}

// renderHeadless animates -frames frames at -fps and writes the last one.
func renderHeadless(s *scene.Scene) error {
	r := render.NewRenderer(s.Width, s.Height, s.Workers)
	dt := 1 / float64(max(*targetFPS, 1))

	for i := range max(*frames, 1) {
		if i > 0 {
			s.Update(dt)
		}
		if err := s.Render(r); err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
	}

	if err := r.Framebuffer().SavePNG(*outPath); err != nil {
		return err
	}
	st := r.Stats()
	render.Logger().Info("wrote image",
		"path", *outPath,
		"width", s.Width,
		"height", s.Height,
		"rasterized", st.Rasterized,
		"fragments", st.Fragments,
	)
	return nil
}
