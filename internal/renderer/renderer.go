package renderer

import (
	"errors"
	"sync"

	"GopherPlanets/internal/logger"

	"go.uber.org/zap"
)

// Render is the seam to whatever owns the graphics context. Upload is only ever
// called from that owner's goroutine; it assigns model.VAO on success.
type Render interface {
	Upload(model *Model) error
	Release(model *Model)
}

var ErrNoMesh = errors.New("model has no mesh")

// HeadlessRenderer stands in for a GPU: it hands out buffer ids and keeps the
// uploaded models, which is enough for tooling and tests.
type HeadlessRenderer struct {
	mu       sync.Mutex
	nextID   uint32
	uploaded map[uint32]*Model
	bytes    int
}

func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{uploaded: make(map[uint32]*Model)}
}

func (r *HeadlessRenderer) Upload(model *Model) error {
	if model.Mesh == nil {
		return ErrNoMesh
	}
	if model.Uploaded() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	model.VAO = r.nextID
	model.NeedsUpload = false
	r.uploaded[model.VAO] = model
	r.bytes += len(model.Mesh.InterleavedData())*4 + len(model.Mesh.Indices)*4

	logger.Log.Debug("Mesh uploaded",
		zap.String("model", model.Name),
		zap.Uint32("vao", model.VAO),
		zap.Int("vertices", model.Mesh.VertexCount()))
	return nil
}

func (r *HeadlessRenderer) Release(model *Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploaded[model.VAO]; !ok {
		logger.Log.Warn("Attempted to release unknown buffer", zap.Uint32("vao", model.VAO))
		return
	}
	delete(r.uploaded, model.VAO)
	model.VAO = 0
}

// Uploads returns the number of live buffers.
func (r *HeadlessRenderer) Uploads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uploaded)
}

// UploadedBytes is the total size of all data sent through Upload.
func (r *HeadlessRenderer) UploadedBytes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bytes
}
