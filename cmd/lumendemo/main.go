// Command lumendemo renders a sample scene through the full pass
// pipeline and writes the encoded frame to a PNG.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/gogpu/lumen"
	"github.com/gogpu/lumen/internal/gpu"
	"github.com/gogpu/lumen/render"
	"github.com/gogpu/lumen/scene"
	"github.com/gogpu/lumen/text"
)

func main() {
	var (
		width  = flag.Int("width", 800, "frame width")
		height = flag.Int("height", 600, "frame height")
		output = flag.String("output", "demo.png", "output file")
		font   = flag.String("font", "", "optional TTF font for the text sample")
		useGPU = flag.Bool("gpu", false, "render through the wgpu backend when a device is available")
	)
	flag.Parse()

	var provider text.Provider
	if *font != "" {
		data, err := os.ReadFile(*font)
		if err != nil {
			log.Fatalf("read font: %v", err)
		}
		provider, err = text.NewGoTextProvider(data, "demo")
		if err != nil {
			log.Fatalf("parse font: %v", err)
		}
	}

	opts := render.EngineOptions{
		Width:    *width,
		Height:   *height,
		Provider: provider,
	}

	if *useGPU {
		backend := gpu.NewBackend()
		if err := backend.Init(); err != nil {
			log.Printf("gpu unavailable, rendering in software: %v", err)
		} else {
			defer backend.Close()
			sink, err := gpu.NewFrameSink(backend, *width, *height)
			if err != nil {
				log.Fatalf("create frame sink: %v", err)
			}
			defer sink.Close()
			opts.Device = sink.DeviceHandle()
			opts.Factory = sink.Factory()
			opts.Present = sink.Present
			log.Printf("presenting through %s", backend.Info())
		}
	}

	engine, err := render.NewEngine(lumen.Config{}, opts)
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}
	defer engine.Close()

	list, err := buildScene(float32(*width), float32(*height), provider != nil)
	if err != nil {
		log.Fatalf("build scene: %v", err)
	}

	frame, err := engine.RenderFrame(list)
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	if err := savePNG(*output, frame.Surface); err != nil {
		log.Fatalf("save: %v", err)
	}
	log.Printf("demo saved to %s (%dx%d, %d commands)",
		*output, *width, *height, frame.Stats.Commands)
}

func buildScene(w, h float32, withText bool) (*scene.DisplayList, error) {
	p := scene.NewPainter(w, h)
	p.SetBackground(lumen.RGB(0.09, 0.10, 0.13))

	// Sky gradient across the top half.
	sky := lumen.NewLinearGradient(0, 0, 0, h/2).
		AddStop(0, lumen.RGB(0.12, 0.18, 0.34)).
		AddStop(1, lumen.RGB(0.05, 0.07, 0.12))
	p.FillRect(lumen.Rect{W: w, H: h / 2}, sky)

	// A card with a soft drop shadow.
	card := lumen.Rect{X: w * 0.1, Y: h * 0.2, W: w * 0.35, H: h * 0.4}
	p.ShadowedRect(card, lumen.Uniform(16), lumen.Solid(lumen.RGB(0.92, 0.93, 0.95)),
		scene.Shadow{OffsetY: 8, Blur: 24, Color: lumen.Color{A: 0.5}})

	// Radial highlight.
	glow := lumen.NewRadialGradient(w*0.7, h*0.35, w*0.15).
		AddStop(0, lumen.Color{R: 0.9, G: 0.7, B: 0.2, A: 0.9}).
		AddStop(1, lumen.Transparent)
	p.FillEllipse(lumen.Rect{X: w * 0.55, Y: h * 0.2, W: w * 0.3, H: w * 0.3}, glow)

	// Stroked rounded frame.
	p.StrokeRect(lumen.Rect{X: w * 0.55, Y: h * 0.6, W: w * 0.35, H: h * 0.25},
		lumen.Solid(lumen.RGB(0.4, 0.75, 0.95)), 3)

	// A filled path: simple bolt shape.
	bolt := scene.NewPath().
		MoveTo(w*0.30, h*0.70).
		LineTo(w*0.36, h*0.70).
		LineTo(w*0.33, h*0.78).
		LineTo(w*0.38, h*0.78).
		LineTo(w*0.28, h*0.92).
		LineTo(w*0.31, h*0.80).
		LineTo(w*0.27, h*0.80).
		Close()
	p.FillPath(bolt, lumen.Solid(lumen.RGB(0.95, 0.8, 0.2)))

	if withText {
		p.DrawText(scene.TextRun{
			ID:     1,
			Text:   "lumen",
			SizePx: 48,
			Color:  lumen.RGB(0.1, 0.1, 0.12),
			Origin: lumen.Point{X: card.X + 24, Y: card.Y + 72},
		})
	}

	return p.Finish()
}

func savePNG(path string, s *render.Surface) error {
	img := &image.NRGBA{
		Pix:    s.Pix,
		Stride: s.Width() * 4,
		Rect:   image.Rect(0, 0, s.Width(), s.Height()),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
