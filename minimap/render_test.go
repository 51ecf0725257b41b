package minimap_test

import (
	"os"
	"path/filepath"
	"testing"

	"demoscope/internal/config"
	"demoscope/minimap"
	"demoscope/snapshot"
)

func sampleView() snapshot.StateView {
	return snapshot.StateView{
		Tick:          5400,
		GameTime:      187,
		GameTimeKnown: true,
		Heroes: []snapshot.Hero{
			{
				UnitName: "npc_dota_hero_axe", Team: snapshot.TeamRadiant,
				X: -3200, Y: -2800, IsAlive: true, Health: 1500, MaxHealth: 2000,
			},
			{
				UnitName: "npc_dota_hero_juggernaut", Team: snapshot.TeamDire,
				X: 3100, Y: 2900, IsAlive: false, Health: 0, MaxHealth: 1600,
			},
			{
				UnitName: "npc_dota_hero_axe", Team: snapshot.TeamRadiant,
				X: -3000, Y: -2800, IsAlive: true, Health: 600, MaxHealth: 2000,
				IsIllusion: true,
			},
		},
		Creeps: []snapshot.Creep{
			{Team: snapshot.TeamRadiant, X: -1000, Y: -900, Health: 300, MaxHealth: 550},
			{Team: 4, X: 2000, Y: -2000, Health: 400, MaxHealth: 400, IsNeutral: true},
		},
		Buildings: []snapshot.Building{
			{Team: snapshot.TeamDire, X: 4500, Y: 4200, Health: 1800, MaxHealth: 2100},
		},
	}
}

// TestRenderSize verifies the canvas matches the configured size
func TestRenderSize(t *testing.T) {
	r := minimap.NewRenderer(config.RenderConfig{Size: 256, HeroRadius: 4})

	img := r.Render(sampleView())
	bounds := img.Bounds()
	if bounds.Dx() != 256 || bounds.Dy() != 256 {
		t.Errorf("Canvas = %dx%d, want 256x256", bounds.Dx(), bounds.Dy())
	}
}

// TestRenderDefaults verifies the zero config falls back to defaults
func TestRenderDefaults(t *testing.T) {
	r := minimap.NewRenderer(config.RenderConfig{})

	img := r.Render(sampleView())
	want := config.DefaultRender().Size
	if img.Bounds().Dx() != want {
		t.Errorf("Canvas width = %d, want the default %d", img.Bounds().Dx(), want)
	}
}

// TestRenderUnknownTime verifies views without an anchor still render
func TestRenderUnknownTime(t *testing.T) {
	view := sampleView()
	view.GameTimeKnown = false

	r := minimap.NewRenderer(config.RenderConfig{Size: 128, HeroRadius: 3})
	img := r.Render(view)
	if img == nil {
		t.Fatal("Render returned nil")
	}
}

// TestRenderEmptyView verifies an empty view renders the bare map
func TestRenderEmptyView(t *testing.T) {
	r := minimap.NewRenderer(config.RenderConfig{Size: 64, HeroRadius: 2})

	img := r.Render(snapshot.StateView{Tick: 100})
	if img.Bounds().Dx() != 64 {
		t.Errorf("Canvas width = %d, want 64", img.Bounds().Dx())
	}
}

// TestWritePNG verifies the image lands on disk
func TestWritePNG(t *testing.T) {
	r := minimap.NewRenderer(config.RenderConfig{Size: 128, HeroRadius: 3})
	path := filepath.Join(t.TempDir(), "minimap.png")

	if err := r.WritePNG(sampleView(), path); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Output file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Output file is empty")
	}
}
