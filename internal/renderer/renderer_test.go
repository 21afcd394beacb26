package renderer

import (
	"errors"
	"testing"
)

func TestHeadlessRendererUpload(t *testing.T) {
	r := NewHeadlessRenderer()
	model := NewModel("tile", triangleMesh())
	model.NeedsUpload = true

	if err := r.Upload(model); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !model.Uploaded() {
		t.Fatal("Model should have a buffer handle after upload")
	}
	if model.NeedsUpload {
		t.Error("NeedsUpload should be cleared")
	}

	vao := model.VAO
	if err := r.Upload(model); err != nil {
		t.Fatalf("Second upload failed: %v", err)
	}
	if model.VAO != vao {
		t.Error("Uploading twice should keep the original handle")
	}
	if r.Uploads() != 1 {
		t.Errorf("Expected 1 live buffer, got %d", r.Uploads())
	}
	if r.UploadedBytes() != (24+3)*4 {
		t.Errorf("Unexpected uploaded byte count %d", r.UploadedBytes())
	}
}

func TestHeadlessRendererRejectsEmptyModel(t *testing.T) {
	r := NewHeadlessRenderer()
	err := r.Upload(NewModel("empty", nil))
	if !errors.Is(err, ErrNoMesh) {
		t.Errorf("Expected ErrNoMesh, got %v", err)
	}
}

func TestHeadlessRendererRelease(t *testing.T) {
	r := NewHeadlessRenderer()
	model := NewModel("tile", triangleMesh())
	if err := r.Upload(model); err != nil {
		t.Fatal(err)
	}
	r.Release(model)
	if model.Uploaded() {
		t.Error("Released model should not keep its handle")
	}
	if r.Uploads() != 0 {
		t.Errorf("Expected no live buffers, got %d", r.Uploads())
	}
}

func TestSetAlphaDoesNotTouchDefaultMaterial(t *testing.T) {
	model := NewModel("ocean", triangleMesh())
	model.SetAlpha(0.5)
	if DefaultMaterial.Alpha != 1.0 {
		t.Fatalf("DefaultMaterial was modified: alpha %f", DefaultMaterial.Alpha)
	}
	if model.Material.Alpha != 0.5 {
		t.Errorf("Expected alpha 0.5, got %f", model.Material.Alpha)
	}
}
