package engine

import (
	"context"
	"time"

	"GopherPlanets/internal/behaviour"
	"GopherPlanets/internal/logger"
	"GopherPlanets/internal/renderer"

	"go.uber.org/zap"
)

// FixedUpdateFrames is how many frames pass between fixed updates.
const FixedUpdateFrames = 2

// Gopher is the frame loop. It owns the render thread: behaviours, LOD passes
// and uploads all run on the goroutine that calls Step or Run.
type Gopher struct {
	Behaviours *behaviour.BehaviourManager
	// FrameInterval paces Run in wall-clock time; zero runs as fast as possible.
	FrameInterval time.Duration

	rendererAPI      renderer.Render
	frameTrackId     int
	frame            int
	elapsed          float64
	onRenderCallback func(f behaviour.Frame) // called after behaviours each frame
}

func NewGopher(r renderer.Render) *Gopher {
	logger.Log.Info("GopherPlanets initializing...")
	if r == nil {
		r = renderer.NewHeadlessRenderer()
	}
	return &Gopher{
		Behaviours:  behaviour.GlobalBehaviourManager,
		rendererAPI: r,
	}
}

// SetOnRenderCallback sets a callback that will be called each frame after the
// behaviours have run.
func (gopher *Gopher) SetOnRenderCallback(callback func(f behaviour.Frame)) {
	gopher.onRenderCallback = callback
}

// GetRenderer returns the renderer API
func (gopher *Gopher) GetRenderer() renderer.Render {
	return gopher.rendererAPI
}

// Frame is the number of frames stepped so far.
func (gopher *Gopher) Frame() int {
	return gopher.frame
}

// Step advances one frame of dt seconds.
func (gopher *Gopher) Step(dt float64) behaviour.Frame {
	gopher.elapsed += dt
	f := behaviour.Frame{Index: gopher.frame, Dt: dt, Elapsed: gopher.elapsed}

	if gopher.frameTrackId >= FixedUpdateFrames {
		gopher.Behaviours.UpdateAllFixed(f)
		gopher.frameTrackId = 0
	}
	gopher.Behaviours.UpdateAll(f)

	if gopher.onRenderCallback != nil {
		gopher.onRenderCallback(f)
	}
	gopher.frameTrackId++
	gopher.frame++
	return f
}

// Run steps frames of dt seconds until the budget is spent or ctx is done. A
// non-positive budget runs until ctx is done. It returns the number of frames
// stepped.
func (gopher *Gopher) Run(ctx context.Context, frames int, dt float64) (int, error) {
	var tick <-chan time.Time
	if gopher.FrameInterval > 0 {
		ticker := time.NewTicker(gopher.FrameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	start := gopher.frame
	for frames <= 0 || gopher.frame-start < frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return gopher.frame - start, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return gopher.frame - start, err
		}
		gopher.Step(dt)
	}

	logger.Log.Debug("Frame loop finished",
		zap.Int("frames", gopher.frame-start),
		zap.Float64("elapsed", gopher.elapsed))
	return gopher.frame - start, nil
}
