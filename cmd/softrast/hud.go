package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/taigrr/softrast/pkg/render"
	"github.com/taigrr/softrast/pkg/scene"
)

// HUD renders an overlay with frame statistics and the scene's modes
type HUD struct {
	Visible bool

	scene     *scene.Scene
	title     string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(s *scene.Scene) *HUD {
	names := make([]string, 0, len(s.Objects))
	for _, o := range s.Objects {
		names = append(names, o.Name)
	}
	return &HUD{
		scene:   s,
		title:   strings.Join(names, " + "),
		fpsTime: time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal
func (h *HUD) Render(width, height int, stats render.FrameStats) {
	// ANSI escape codes for positioning and styling
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	// Helper to position cursor
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if !h.Visible {
		return
	}

	// Top left: FPS
	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	// Top middle: mesh names
	titleCol := max((width-len(h.title)-2)/2, 1)
	fmt.Print(moveTo(1, titleCol) + fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.title, reset))

	// Top right: triangles drawn / submitted
	tris := fmt.Sprintf("%d/%d tris", stats.Rasterized, stats.Triangles)
	trisCol := max(width-len(tris)-2, 1)
	fmt.Print(moveTo(1, trisCol) + fmt.Sprintf("%s%s%s %s %s", bgBlack, fgCyan, bold, tris, reset))

	// Bottom: modes
	fmt.Print(moveTo(height, 1) + fmt.Sprintf("%s%s %s %s", bgBlack, fgWhite, h.modeLine(), reset))
}

// modeLine describes the settings of the first opaque object and the
// scene toggles.
func (h *HUD) modeLine() string {
	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}

	s := h.scene
	var settings render.RenderSettings
	for _, o := range s.Objects {
		if !o.Translucent {
			settings = o.Settings()
			break
		}
	}

	return fmt.Sprintf("%s | %s | %s | %s normal %s depth %s bbox %s spin %s fx",
		settings.CullMode,
		settings.ShadingMode,
		s.Filter,
		check(settings.NormalMap),
		check(settings.VisualizeDepth),
		check(settings.VisualizeBounds),
		check(s.Rotating),
		check(s.ShowTranslucent),
	)
}
