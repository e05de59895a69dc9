// Package main is the entry point for the Lumen2D lighting demo.
package main

import (
	"flag"
	"fmt"
	stdmath "math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen2d/internal/config"
	"github.com/Faultbox/lumen2d/internal/engine/debug"
	"github.com/Faultbox/lumen2d/internal/engine/device"
	"github.com/Faultbox/lumen2d/internal/engine/device/opengl"
	"github.com/Faultbox/lumen2d/internal/engine/device/soft"
	"github.com/Faultbox/lumen2d/internal/engine/input"
	"github.com/Faultbox/lumen2d/internal/engine/light"
	"github.com/Faultbox/lumen2d/internal/engine/shadow"
	"github.com/Faultbox/lumen2d/internal/engine/window"
	"github.com/Faultbox/lumen2d/internal/logger"
	pkgmath "github.com/Faultbox/lumen2d/pkg/math"
)

var flagSoft = flag.Int("soft", 0, "Render N frames with the software backend, dump PNGs and exit")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Lumen2D demo ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if *flagSoft > 0 {
		if err := runSoft(cfg, *flagSoft); err != nil {
			logger.Error("software render error", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		logger.Error("demo error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("demo closed normally")
}

// scene submits the demo casters and lights for one frame.
func scene(r *light.Renderer, cfg *config.Config, t float64) {
	w := float32(cfg.Graphics.Width)
	h := float32(cfg.Graphics.Height)

	// Static casters: a square, a thin wall and an illuminated diamond.
	square := []mgl32.Vec2{{-40, -40}, {40, -40}, {40, 40}, {-40, 40}}
	wall := []mgl32.Vec2{{-10, -120}, {10, -120}, {10, 120}, {-10, 120}}
	diamond := []mgl32.Vec2{{0, -50}, {50, 0}, {0, 50}, {-50, 0}}

	r.SubmitCaster(pkgmath.Translation(w*0.35, h*0.5), square, mgl32.Vec2{}, shadow.TypeSolid)
	r.SubmitCaster(pkgmath.Translation(w*0.65, h*0.4), wall, mgl32.Vec2{}, shadow.TypeSolid)
	r.SubmitCaster(pkgmath.Translation(w*0.5, h*0.7), diamond, mgl32.Vec2{}, shadow.TypeIlluminated)

	// Orbiting point light.
	ang := t * 0.7
	px := w*0.5 + float32(stdmath.Cos(ang))*w*0.25
	py := h*0.5 + float32(stdmath.Sin(ang))*h*0.25
	r.SubmitPointLight(pkgmath.Translation(px, py),
		device.Color{R: 1, G: 0.9, B: 0.7, A: 1},
		420, 1.0, 12, 60)

	// Sweeping spot light from the top-left corner.
	sweep := float32(stdmath.Sin(t*0.5))*0.6 + 0.8
	spot := pkgmath.Translation(w*0.1, h*0.1).Rotate(sweep)
	r.SubmitSpotLight(spot,
		device.Color{R: 0.6, G: 0.7, B: 1, A: 1},
		20, 45, 600, 1.2, 8, 80)
}

// run drives the SDL window and OpenGL backend.
func run(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:      "Lumen2D",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer win.Close()

	backend, err := opengl.New()
	if err != nil {
		return fmt.Errorf("creating GL backend: %w", err)
	}
	defer backend.Destroy()

	gen := shadow.NewBatchGenerator(cfg.Lighting.BatchCapacity)
	renderer, err := light.NewRenderer(backend, gen, light.Config{
		Width:         int32(cfg.Graphics.Width),
		Height:        int32(cfg.Graphics.Height),
		ArenaCapacity: cfg.Lighting.ArenaCapacity,
		PoolSize:      cfg.Lighting.PoolSize,
	})
	if err != nil {
		return fmt.Errorf("creating light renderer: %w", err)
	}

	ambient := device.Color{
		R: cfg.Lighting.AmbientColor[0],
		G: cfg.Lighting.AmbientColor[1],
		B: cfg.Lighting.AmbientColor[2],
	}
	capture := debug.NewScreenshotCapture("screenshots", "lightmap")

	in := input.New()
	shadows := cfg.Lighting.Shadows
	start := sdl.GetTicks64()
	for !in.Update() {
		if in.WasPressed(sdl.SCANCODE_ESCAPE) {
			break
		}
		if in.WasPressed(sdl.SCANCODE_S) {
			shadows = !shadows
			logger.Info("shadows toggled", zap.Bool("enabled", shadows))
		}
		if w, h, ok := in.Resized(); ok {
			cfg.Graphics.Width = int(w)
			cfg.Graphics.Height = int(h)
			if err := renderer.Resize(w, h); err != nil {
				logger.Error("resize failed", zap.Error(err))
			}
		}

		t := float64(sdl.GetTicks64()-start) / 1000.0
		scene(renderer, cfg, t)

		// An extra point light follows the cursor.
		mx, my := in.MousePos()
		renderer.SubmitPointLight(pkgmath.Translation(float32(mx), float32(my)),
			device.Color{R: 0.9, G: 0.4, B: 0.3, A: 1},
			300, 1.0, 10, 50)

		lightmap := renderer.Render(nil, ambient, shadows, false)

		if in.WasPressed(sdl.SCANCODE_F12) {
			if glTarget, ok := lightmap.(*opengl.Target); ok {
				fb := glTarget.Framebuffer()
				w, h := glTarget.Size()
				path, err := capture.CaptureFromPixels(fb.ReadPixels(), int(w), int(h))
				if err != nil {
					logger.Error("screenshot failed", zap.Error(err))
				} else {
					logger.Info("screenshot saved", zap.String("path", path))
				}
			}
		}

		winW, winH := win.GetSize()
		backend.Present(lightmap, int32(winW), int32(winH))
		win.SwapBuffers()
	}

	return nil
}

// runSoft renders a few frames on the CPU and dumps them as PNGs.
func runSoft(cfg *config.Config, frames int) error {
	backend := soft.New()
	gen := shadow.NewBatchGenerator(cfg.Lighting.BatchCapacity)
	renderer, err := light.NewRenderer(backend, gen, light.Config{
		Width:         int32(cfg.Graphics.Width),
		Height:        int32(cfg.Graphics.Height),
		ArenaCapacity: cfg.Lighting.ArenaCapacity,
		PoolSize:      cfg.Lighting.PoolSize,
	})
	if err != nil {
		return fmt.Errorf("creating light renderer: %w", err)
	}

	ambient := device.Color{
		R: cfg.Lighting.AmbientColor[0],
		G: cfg.Lighting.AmbientColor[1],
		B: cfg.Lighting.AmbientColor[2],
	}

	capture := debug.NewScreenshotCapture("screenshots", "lightmap")
	for i := 0; i < frames; i++ {
		scene(renderer, cfg, float64(i)/10.0)
		lightmap := renderer.Render(nil, ambient, cfg.Lighting.Shadows, false)

		target, ok := lightmap.(*soft.Target)
		if !ok {
			return fmt.Errorf("unexpected target type %T", lightmap)
		}
		path, err := capture.CaptureFromImage(target.Image())
		if err != nil {
			return fmt.Errorf("saving frame %d: %w", i, err)
		}
		logger.Info("frame saved", zap.Int("frame", i), zap.String("path", path))
	}

	return nil
}
