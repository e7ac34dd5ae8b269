package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/softrast/pkg/render"
	"github.com/taigrr/softrast/pkg/scene"
)

// OrbitAxis tracks an orbit angle velocity that a spring decays to zero.
type OrbitAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewOrbitAxis creates an axis with harmonica spring for smooth velocity decay
func NewOrbitAxis(fps int) OrbitAxis {
	return OrbitAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Step returns this frame's angle change and decays the velocity.
func (a *OrbitAxis) Step() float64 {
	d := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return d
}

// OrbitState moves the camera around its target with spring-damped yaw and
// pitch.
type OrbitState struct {
	Yaw, Pitch OrbitAxis
	fps        int
}

func NewOrbitState(fps int) *OrbitState {
	return &OrbitState{
		Yaw:   NewOrbitAxis(fps),
		Pitch: NewOrbitAxis(fps),
		fps:   fps,
	}
}

func (o *OrbitState) ApplyImpulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

// Update orbits cam by one frame of motion.
func (o *OrbitState) Update(cam *render.Camera) {
	yaw, pitch := o.Yaw.Step(), o.Pitch.Step()
	if yaw != 0 || pitch != 0 {
		cam.Orbit(yaw, pitch)
	}
}

func (o *OrbitState) Reset() {
	o.Yaw = NewOrbitAxis(o.fps)
	o.Pitch = NewOrbitAxis(o.fps)
}

func runViewer(s *scene.Scene) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	// Each terminal cell shows two framebuffer rows
	s.Resize(width, height*2)
	r := render.NewRenderer(width, height*2, s.Workers)

	initialEye := s.Camera.Position
	orbit := NewOrbitState(*targetFPS)
	hud := NewHUD(s)

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Events are handled on the render loop so the scene and renderer are
	// only touched from one goroutine.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Mouse state
	var mouseDown bool
	var lastMouseX, lastMouseY int
	zoomStep := s.Camera.Position.Sub(s.Camera.Target).Len() / 20 // 20 steps to the target

	handle := func(ev uv.Event) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			s.Resize(width, height*2)
			r.Resize(width, height*2)

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
				cancel()
			case ev.MatchString("w", "up"):
				orbit.ApplyImpulse(0, 0.05)
			case ev.MatchString("s", "down"):
				orbit.ApplyImpulse(0, -0.05)
			case ev.MatchString("a", "left"):
				orbit.ApplyImpulse(-0.05, 0)
			case ev.MatchString("d", "right"):
				orbit.ApplyImpulse(0.05, 0)
			case ev.MatchString("+", "="):
				s.Camera.Zoom(zoomStep)
			case ev.MatchString("-", "_"):
				s.Camera.Zoom(-zoomStep)
			case ev.MatchString("r"):
				orbit.Reset()
				s.Camera.SetPosition(initialEye)
			case ev.MatchString("f2"):
				s.ToggleRotation()
			case ev.MatchString("f3"):
				s.ToggleTranslucent()
			case ev.MatchString("f4"):
				s.CycleFilter()
			case ev.MatchString("f5"):
				s.CycleShadingMode()
			case ev.MatchString("f6"):
				s.ToggleNormalMap()
			case ev.MatchString("f7"):
				s.ToggleDepthVisualization()
			case ev.MatchString("f8"):
				s.ToggleBoundsVisualization()
			case ev.MatchString("f9"):
				s.CycleCullMode()
			case ev.MatchString("f10"):
				s.ToggleUniformClear()
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				hud.Visible = !hud.Visible
			}

		case uv.MouseClickEvent:
			mouseDown = true
			lastMouseX, lastMouseY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			mouseDown = false

		case uv.MouseMotionEvent:
			if mouseDown {
				dx := ev.X - lastMouseX
				dy := ev.Y - lastMouseY
				orbit.ApplyImpulse(float64(dx)*0.01, float64(dy)*0.02)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				s.Camera.Zoom(zoomStep)
			case uv.MouseWheelDown:
				s.Camera.Zoom(-zoomStep)
			}
		}
	}

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	// Main loop
	targetDuration := time.Second / time.Duration(max(*targetFPS, 1))
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				handle(ev)
			default:
				break drain
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		if dt > 0.1 {
			dt = 0.1
		}

		orbit.Update(s.Camera)
		s.Update(dt)

		if err := s.Render(r); err != nil {
			return fmt.Errorf("render: %w", err)
		}

		r.Framebuffer().Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		// HUD overlay (always update FPS, render clears lines when HUD off)
		hud.UpdateFPS()
		hud.Render(width, height, r.Stats())

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
