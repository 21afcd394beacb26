package water

import (
	"math"
	"testing"

	"GopherPlanets/internal/renderer"

	mgl32 "github.com/go-gl/mathgl/mgl32"
)

func TestBuildShellRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offset = 0.01
	cfg.Resolution = 4
	center := mgl32.Vec3{10, 0, -5}

	shell := BuildShell("earth", cfg, center, 23)

	if len(shell.Models) != 6 {
		t.Fatalf("Expected 6 ocean faces, got %d", len(shell.Models))
	}
	if math.Abs(float64(shell.Radius)-23*1.01) > 1e-4 {
		t.Errorf("Expected radius %f, got %f", 23*1.01, shell.Radius)
	}
	for _, m := range shell.Models {
		if m.Mesh.VertexCount() != 25 {
			t.Errorf("%s: expected 25 vertices, got %d", m.Name, m.Mesh.VertexCount())
		}
		// mesh is on the unit sphere, world size comes from the transform
		v := renderer.ApplyModelTransformation(m.Mesh.Vertex(0), m.Position, m.Scale, m.Rotation)
		if d := v.Sub(center).Len(); math.Abs(float64(d-shell.Radius)) > 1e-3 {
			t.Errorf("%s: vertex at distance %f, expected %f", m.Name, d, shell.Radius)
		}
		if m.Material.Alpha != cfg.Transparency {
			t.Errorf("%s: expected alpha %f, got %f", m.Name, cfg.Transparency, m.Material.Alpha)
		}
		if !m.NeedsUpload {
			t.Errorf("%s: new ocean face should need upload", m.Name)
		}
	}
}

func TestShellIsFlat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolution = 8
	shell := BuildShell("flat", cfg, mgl32.Vec3{}, 1)
	for _, m := range shell.Models {
		for i := 0; i < m.Mesh.VertexCount(); i++ {
			if l := m.Mesh.Vertex(i).Len(); math.Abs(float64(l)-1) > 1e-5 {
				t.Fatalf("%s: vertex %d off the unit sphere (%f)", m.Name, i, l)
			}
		}
	}
}

func TestShellUploadAndMove(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolution = 2
	shell := BuildShell("moon", cfg, mgl32.Vec3{}, 2)

	r := renderer.NewHeadlessRenderer()
	if err := shell.Upload(r); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if r.Uploads() != 6 {
		t.Errorf("Expected 6 uploads, got %d", r.Uploads())
	}
	if err := shell.Upload(r); err != nil || r.Uploads() != 6 {
		t.Errorf("Second upload should be a no-op, got %d uploads, err %v", r.Uploads(), err)
	}

	shell.SetCenter(mgl32.Vec3{1, 2, 3})
	for _, m := range shell.Models {
		if m.Position != (mgl32.Vec3{1, 2, 3}) {
			t.Errorf("%s not moved: %v", m.Name, m.Position)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	bad := Config{Resolution: 0, Offset: -2, Transparency: 3}
	if err := bad.Validate(); err == nil {
		t.Error("Expected validation errors")
	}
}
