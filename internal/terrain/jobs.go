package terrain

import (
	"errors"
	"fmt"
	"sync"

	"GopherPlanets/internal/loader"
	"GopherPlanets/internal/logger"
	"GopherPlanets/internal/noise"
	"GopherPlanets/internal/renderer"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	// MaxInFlight bounds the number of tile meshes generated concurrently across
	// all planets.
	MaxInFlight = 4
	// SubdivisionsPerLevel is the default grid resolution of one tile.
	SubdivisionsPerLevel = 16
	DefaultMaxRetries    = 3
)

var ErrNoField = errors.New("job has no noise field")

type JobState int

const (
	JobNotStarted JobState = iota
	JobGenerating
	JobReady
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobNotStarted:
		return "not-started"
	case JobGenerating:
		return "generating"
	case JobReady:
		return "ready"
	case JobFailed:
		return "failed"
	}
	return fmt.Sprintf("JobState(%d)", int(s))
}

// JobStatus is the per-tile completion cell. The render thread polls it and a
// single worker writes it; the lock is only held to swap fields.
type JobStatus struct {
	mu       sync.Mutex
	state    JobState
	mesh     *renderer.Mesh
	err      error
	attempts int
}

func (s *JobStatus) State() JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mesh returns the payload once the job is ready, nil before that.
func (s *JobStatus) Mesh() *renderer.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mesh
}

// Err is the error of the most recent failed attempt.
func (s *JobStatus) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *JobStatus) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *JobStatus) begin() {
	s.mu.Lock()
	s.state = JobGenerating
	s.err = nil
	s.attempts++
	s.mu.Unlock()
}

func (s *JobStatus) finish(mesh *renderer.Mesh) {
	s.mu.Lock()
	s.state = JobReady
	s.mesh = mesh
	s.mu.Unlock()
}

func (s *JobStatus) fail(err error) {
	s.mu.Lock()
	s.state = JobFailed
	s.err = err
	s.mu.Unlock()
}

// Admission is a lock-free counter of jobs in flight. It never exceeds its limit
// and never drops below zero.
type Admission struct {
	limit int64
	count atomic.Int64
}

// DefaultAdmission is shared by every planet in the process.
var DefaultAdmission = NewAdmission(MaxInFlight)

func NewAdmission(limit int) *Admission {
	return &Admission{limit: int64(limit)}
}

// TryAcquire takes a slot if one is free.
func (a *Admission) TryAcquire() bool {
	for {
		c := a.count.Load()
		if c >= a.limit {
			return false
		}
		if a.count.CAS(c, c+1) {
			return true
		}
	}
}

func (a *Admission) Release() {
	for {
		c := a.count.Load()
		if c <= 0 {
			logger.Log.Error("Admission released more often than acquired")
			return
		}
		if a.count.CAS(c, c-1) {
			return
		}
	}
}

func (a *Admission) InFlight() int {
	return int(a.count.Load())
}

// Executor runs tasks on some background goroutine.
type Executor interface {
	Submit(task func())
}

// PoolExecutor runs jobs on a fixed-size worker pool.
type PoolExecutor struct {
	pool pond.Pool
}

func NewPoolExecutor(workers int) *PoolExecutor {
	if workers < 1 {
		workers = 1
	}
	return &PoolExecutor{pool: pond.NewPool(workers)}
}

func (e *PoolExecutor) Submit(task func()) {
	e.pool.Submit(task)
}

// StopAndWait blocks until every submitted job has finished.
func (e *PoolExecutor) StopAndWait() {
	e.pool.StopAndWait()
}

// TileSpec places one tile on the cube.
type TileSpec struct {
	Scale        float32
	Face         int
	Offset       mgl32.Vec3
	Subdivisions int
}

// Job is everything a worker needs to produce a tile mesh without touching the
// tree that requested it.
type Job struct {
	Name    string
	Tile    TileSpec
	Field   *noise.Field
	Palette *loader.Palette
}

// Build generates the displaced, optionally coloured, tile mesh.
func (j Job) Build() (*renderer.Mesh, error) {
	if j.Field == nil {
		return nil, ErrNoField
	}
	if j.Tile.Face < 0 || j.Tile.Face >= len(loader.Faces) {
		return nil, fmt.Errorf("face index %d out of range", j.Tile.Face)
	}
	mesh := loader.BuildTile(j.Tile.Scale, loader.Faces[j.Tile.Face], j.Tile.Offset, j.Tile.Subdivisions)
	heights := loader.Displace(mesh, j.Field.Height)
	if j.Palette != nil {
		loader.Colorize(mesh, heights, *j.Palette)
	}
	return mesh, nil
}

// BuildFunc produces the mesh for a job. Scheduler uses Job.Build unless told
// otherwise.
type BuildFunc func(Job) (*renderer.Mesh, error)

// Scheduler admits tile jobs against a shared Admission and hands them to an
// Executor. Request never blocks.
type Scheduler struct {
	admission *Admission
	executor  Executor
	build     BuildFunc

	MaxRetries int

	completed atomic.Int64
	failed    atomic.Int64
	closeOnce sync.Once
}

func NewScheduler(executor Executor, admission *Admission) *Scheduler {
	if admission == nil {
		admission = DefaultAdmission
	}
	return &Scheduler{
		admission:  admission,
		executor:   executor,
		build:      Job.Build,
		MaxRetries: DefaultMaxRetries,
	}
}

// WithBuild replaces the mesh generator.
func (s *Scheduler) WithBuild(build BuildFunc) *Scheduler {
	s.build = build
	return s
}

func (s *Scheduler) Admission() *Admission {
	return s.admission
}

// Request reports whether the tile mesh is ready. A not-started job is
// submitted if a slot is free; a failed job is resubmitted until it has been
// attempted MaxRetries times.
func (s *Scheduler) Request(status *JobStatus, job Job) bool {
	switch status.State() {
	case JobReady:
		return true
	case JobGenerating:
		return false
	case JobFailed:
		if status.Attempts() >= s.MaxRetries {
			return false
		}
	}

	if !s.admission.TryAcquire() {
		return false
	}
	status.begin()
	logger.Log.Debug("Tile job started",
		zap.String("tile", job.Name),
		zap.Int("attempt", status.Attempts()),
		zap.Int("inFlight", s.admission.InFlight()))
	s.executor.Submit(func() {
		s.run(status, job)
	})
	return false
}

func (s *Scheduler) run(status *JobStatus, job Job) {
	defer s.admission.Release()

	mesh, err := s.safeBuild(job)
	if err != nil {
		s.failed.Inc()
		status.fail(err)
		logger.Log.Warn("Tile generation failed",
			zap.String("tile", job.Name),
			zap.Int("attempt", status.Attempts()),
			zap.Error(err))
		return
	}
	s.completed.Inc()
	status.finish(mesh)
	logger.Log.Debug("Tile job finished",
		zap.String("tile", job.Name),
		zap.Int("vertices", mesh.VertexCount()))
}

func (s *Scheduler) safeBuild(job Job) (mesh *renderer.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			mesh, err = nil, fmt.Errorf("tile %s: panic: %v", job.Name, r)
		}
	}()
	mesh, err = s.build(job)
	if err == nil && mesh == nil {
		err = fmt.Errorf("tile %s: builder returned no mesh", job.Name)
	}
	return mesh, err
}

// Completed and Failed count finished attempts since the scheduler was created.
func (s *Scheduler) Completed() int64 { return s.completed.Load() }
func (s *Scheduler) Failed() int64    { return s.failed.Load() }

// Close waits for running jobs if the executor supports it. Later calls are
// no-ops.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		if w, ok := s.executor.(interface{ StopAndWait() }); ok {
			w.StopAndWait()
		}
	})
}
