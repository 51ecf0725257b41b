// Package minimap renders snapshot views as top-down map images.
package minimap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"demoscope/gametime"
	"demoscope/internal/config"
	"demoscope/snapshot"
)

// World coordinate extent of the map. Positions outside are clamped to
// the edge rather than dropped.
const (
	worldMin = -8192.0
	worldMax = 8192.0
)

var (
	radiantColor = color.RGBA{83, 255, 69, 255}
	direColor    = color.RGBA{255, 62, 62, 255}
	neutralColor = color.RGBA{170, 170, 170, 255}
	groundColor  = color.RGBA{24, 34, 24, 255}
	riverColor   = color.RGBA{36, 52, 68, 255}
	labelColor   = color.RGBA{230, 230, 230, 255}
)

// Renderer draws snapshot views onto a square canvas.
type Renderer struct {
	cfg config.RenderConfig
}

// NewRenderer returns a renderer with the given configuration. Zero
// fields take their defaults.
func NewRenderer(cfg config.RenderConfig) *Renderer {
	defaults := config.DefaultRender()
	if cfg.Size <= 0 {
		cfg.Size = defaults.Size
	}
	if cfg.HeroRadius <= 0 {
		cfg.HeroRadius = defaults.HeroRadius
	}
	return &Renderer{cfg: cfg}
}

// Render draws one snapshot view and returns the image.
func (r *Renderer) Render(view snapshot.StateView) image.Image {
	dc := gg.NewContext(r.cfg.Size, r.cfg.Size)

	dc.SetColor(groundColor)
	dc.Clear()
	r.drawRiver(dc)

	for _, b := range view.Buildings {
		r.drawBuilding(dc, b)
	}
	for _, c := range view.Creeps {
		r.drawCreep(dc, c)
	}
	for _, h := range view.Heroes {
		r.drawHero(dc, h)
	}
	r.drawClock(dc, view)

	return dc.Image()
}

// WritePNG renders one snapshot view and saves it as a PNG file.
func (r *Renderer) WritePNG(view snapshot.StateView, path string) error {
	if err := gg.SavePNG(path, r.Render(view)); err != nil {
		return fmt.Errorf("save minimap: %w", err)
	}
	return nil
}

// drawRiver marks the diagonal river band separating the two sides.
func (r *Renderer) drawRiver(dc *gg.Context) {
	size := float64(r.cfg.Size)
	band := size * 0.06
	dc.SetColor(riverColor)
	dc.SetLineWidth(band)
	dc.DrawLine(0, 0, size, size)
	dc.Stroke()
}

func (r *Renderer) drawHero(dc *gg.Context, h snapshot.Hero) {
	x, y := r.worldToPixel(h.X, h.Y)
	radius := r.cfg.HeroRadius

	body := teamColor(h.Team)
	if !h.IsAlive {
		body.A = 153
	}
	if h.IsIllusion || h.IsClone {
		body.A = 100
	}

	dc.SetColor(body)
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetLineWidth(1.5)
	dc.DrawCircle(x, y, radius)
	dc.Stroke()

	if !h.IsAlive {
		dc.SetColor(direColor)
		dc.SetLineWidth(1.5)
		dc.DrawLine(x-radius, y-radius, x+radius, y+radius)
		dc.Stroke()
		dc.DrawLine(x+radius, y-radius, x-radius, y+radius)
		dc.Stroke()
		return
	}

	if h.MaxHealth > 0 {
		barWidth := radius * 2.4
		barHeight := 2.0
		hpPercent := float64(h.Health) / float64(h.MaxHealth)

		dc.SetColor(color.RGBA{51, 51, 51, 255})
		dc.DrawRectangle(x-barWidth/2, y-radius-5, barWidth, barHeight)
		dc.Fill()

		if hpPercent > 0.5 {
			dc.SetColor(radiantColor)
		} else if hpPercent > 0.25 {
			dc.SetColor(color.RGBA{255, 149, 0, 255})
		} else {
			dc.SetColor(direColor)
		}
		dc.DrawRectangle(x-barWidth/2, y-radius-5, barWidth*hpPercent, barHeight)
		dc.Fill()
	}
}

func (r *Renderer) drawCreep(dc *gg.Context, c snapshot.Creep) {
	x, y := r.worldToPixel(c.X, c.Y)
	body := teamColor(c.Team)
	if c.IsNeutral {
		body = neutralColor
	}
	dc.SetColor(body)
	dc.DrawCircle(x, y, r.cfg.HeroRadius*0.3)
	dc.Fill()
}

func (r *Renderer) drawBuilding(dc *gg.Context, b snapshot.Building) {
	x, y := r.worldToPixel(b.X, b.Y)
	side := r.cfg.HeroRadius * 1.2

	body := teamColor(b.Team)
	if b.MaxHealth > 0 && b.Health == 0 {
		body.A = 100
	}
	dc.SetColor(body)
	dc.DrawRectangle(x-side/2, y-side/2, side, side)
	dc.Fill()
}

// drawClock stamps the game clock in the top left corner.
func (r *Renderer) drawClock(dc *gg.Context, view snapshot.StateView) {
	label := gametime.FormatGameTime(view.GameTime)
	if !view.GameTimeKnown {
		label = fmt.Sprintf("tick %d", view.Tick)
	}
	dc.SetColor(labelColor)
	dc.DrawStringAnchored(label, 8, 12, 0, 0.5)
}

// worldToPixel maps world coordinates onto the canvas. The y axis is
// flipped; world north is canvas up.
func (r *Renderer) worldToPixel(wx, wy float32) (float64, float64) {
	size := float64(r.cfg.Size)
	scale := size / (worldMax - worldMin)
	x := (float64(wx) - worldMin) * scale
	y := size - (float64(wy)-worldMin)*scale
	return clamp(x, 0, size), clamp(y, 0, size)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func teamColor(team int32) color.RGBA {
	switch team {
	case snapshot.TeamRadiant:
		return radiantColor
	case snapshot.TeamDire:
		return direColor
	default:
		return neutralColor
	}
}
