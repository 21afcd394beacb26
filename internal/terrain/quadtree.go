package terrain

import (
	"fmt"

	"GopherPlanets/internal/loader"
	"GopherPlanets/internal/logger"
	"GopherPlanets/internal/noise"
	"GopherPlanets/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// NodeID indexes the tree's node arena.
type NodeID int32

const NoNode NodeID = -1

type DrawState int

const (
	// DrawEmpty nodes are pass-through: their children carry the detail.
	DrawEmpty DrawState = iota
	DrawPending
	DrawReady
)

func (s DrawState) String() string {
	switch s {
	case DrawEmpty:
		return "empty"
	case DrawPending:
		return "pending"
	case DrawReady:
		return "ready"
	}
	return fmt.Sprintf("DrawState(%d)", int(s))
}

// Node is one tile of the quad-tree. FirstChild is NoNode or the first of four
// consecutive children.
type Node struct {
	Level      int
	Scale      float32
	Face       int
	Offset     mgl32.Vec3
	State      DrawState
	FirstChild NodeID
	Job        *JobStatus
	Model      *renderer.Model
}

func (n Node) HasChildren() bool {
	return n.FirstChild != NoNode
}

// quadrants in child order
var quadrants = [4][2]float32{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}

// TreeOptions configure a Tree. Everything except the uploader is fixed at
// construction.
type TreeOptions struct {
	Name         string
	Radius       float32
	MaxLOD       int
	Subdivisions int
	Field        *noise.Field
	Palette      *loader.Palette
	Scheduler    *Scheduler
}

// Tree is the six-rooted quad-tree of one planet. Nodes live in a single slice
// and are never removed. It is driven from one goroutine; only the JobStatus
// cells are shared with workers.
type Tree struct {
	opts     TreeOptions
	center   mgl32.Vec3
	uploader renderer.Render
	nodes    []Node
	roots    [6]NodeID
}

func NewTree(opts TreeOptions) *Tree {
	if opts.Subdivisions < 1 {
		opts.Subdivisions = SubdivisionsPerLevel
	}
	t := &Tree{opts: opts}
	for face := range loader.Faces {
		t.roots[face] = t.addNode(Node{
			Level:  0,
			Scale:  1,
			Face:   face,
			Offset: mgl32.Vec3{0, 0, 1},
		})
	}
	return t
}

func (t *Tree) addNode(n Node) NodeID {
	n.FirstChild = NoNode
	n.State = DrawPending
	n.Job = &JobStatus{}
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) Roots() [6]NodeID { return t.roots }

// Node returns a copy of the node.
func (t *Tree) Node(id NodeID) Node { return t.nodes[id] }

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Center() mgl32.Vec3 { return t.center }

// SetCenter moves the tree and every tile model already built.
func (t *Tree) SetCenter(c mgl32.Vec3) {
	t.center = c
	for i := range t.nodes {
		if m := t.nodes[i].Model; m != nil {
			m.SetPosition(c[0], c[1], c[2])
		}
	}
}

// SetUploader sets where ready meshes are sent. Without one, models are only
// flagged with NeedsUpload.
func (t *Tree) SetUploader(r renderer.Render) {
	t.uploader = r
}

// Children returns the four child ids of id, or nil.
func (t *Tree) Children(id NodeID) []NodeID {
	first := t.nodes[id].FirstChild
	if first == NoNode {
		return nil
	}
	return []NodeID{first, first + 1, first + 2, first + 3}
}

// TileCenter is the world position of the center of a node's flat tile.
func (t *Tree) TileCenter(id NodeID) mgl32.Vec3 {
	n := &t.nodes[id]
	return t.center.Add(loader.Faces[n.Face].Rotate(n.Offset.Mul(t.opts.Radius)))
}

func (t *Tree) input(id NodeID, viewer mgl32.Vec3) LODInput {
	n := &t.nodes[id]
	return LODInput{
		PlanetCenter: t.center,
		TileCenter:   t.TileCenter(id),
		Viewer:       viewer,
		Radius:       t.opts.Radius,
		MaxHeight:    t.maxHeight(),
		Level:        n.Level,
		MaxLOD:       t.opts.MaxLOD,
	}
}

func (t *Tree) maxHeight() float32 {
	if t.opts.Field == nil {
		return 0
	}
	return t.opts.Field.Params().MaxHeight
}

// Update runs one LOD pass over all six faces and reports whether every
// visible tile is ready.
func (t *Tree) Update(viewer mgl32.Vec3) bool {
	ready := true
	for _, root := range t.roots {
		if !t.LOD(root, viewer) {
			ready = false
		}
	}
	return ready
}

// LOD decides whether node id subdivides for the given viewer, creates and
// recurses into children when it does, or requests the node's own mesh when it
// does not. It returns true once everything the node stands for is ready.
//
// A subdividing node keeps showing its own mesh, if it has one, until all four
// children are ready. A node that stops subdividing keeps showing its children
// until its own mesh is ready.
func (t *Tree) LOD(id NodeID, viewer mgl32.Vec3) bool {
	if Decide(t.input(id, viewer)) == Subdivide {
		if !t.nodes[id].HasChildren() {
			t.split(id)
		}
		ready := true
		for _, child := range t.Children(id) {
			if !t.LOD(child, viewer) {
				ready = false
			}
		}

		// the arena may have grown during recursion
		node := &t.nodes[id]
		switch {
		case ready:
			node.State = DrawEmpty
		case node.State == DrawEmpty:
			// children were all drawable on an earlier pass
		case node.Job.State() == JobReady:
			node.State = DrawReady
		default:
			node.State = DrawPending
		}
		return ready
	}

	node := &t.nodes[id]
	if t.opts.Scheduler.Request(node.Job, t.job(id)) {
		node.State = DrawReady
		t.attachModel(id)
		return true
	}
	if !node.HasChildren() || node.State != DrawEmpty {
		node.State = DrawPending
	}
	return false
}

func (t *Tree) split(id NodeID) {
	parent := t.nodes[id]
	half := parent.Scale / 2
	first := NodeID(len(t.nodes))
	for _, q := range quadrants {
		t.addNode(Node{
			Level:  parent.Level + 1,
			Scale:  half,
			Face:   parent.Face,
			Offset: parent.Offset.Add(mgl32.Vec3{q[0] * half, q[1] * half, 0}),
		})
	}
	t.nodes[id].FirstChild = first
	logger.Log.Debug("Tile subdivided",
		zap.String("tile", t.tileName(id)),
		zap.Int("level", parent.Level))
}

func (t *Tree) tileName(id NodeID) string {
	n := &t.nodes[id]
	return fmt.Sprintf("%s/%s/L%d/%d", t.opts.Name, loader.Faces[n.Face].Name, n.Level, id)
}

func (t *Tree) job(id NodeID) Job {
	n := &t.nodes[id]
	return Job{
		Name: t.tileName(id),
		Tile: TileSpec{
			Scale:        n.Scale,
			Face:         n.Face,
			Offset:       n.Offset,
			Subdivisions: t.opts.Subdivisions,
		},
		Field:   t.opts.Field,
		Palette: t.opts.Palette,
	}
}

// attachModel wraps a freshly ready mesh in a scene-graph model and hands it to
// the uploader. Later passes are no-ops.
func (t *Tree) attachModel(id NodeID) {
	node := &t.nodes[id]
	if node.Model != nil {
		return
	}
	model := renderer.NewModel(t.tileName(id), node.Job.Mesh())
	model.SetScale(t.opts.Radius, t.opts.Radius, t.opts.Radius)
	model.SetPosition(t.center[0], t.center[1], t.center[2])
	model.CalculateBoundingSphere()
	model.Metadata = map[string]interface{}{
		"planet": t.opts.Name,
		"face":   loader.Faces[node.Face].Name,
		"level":  node.Level,
	}
	model.NeedsUpload = true
	node.Model = model

	if t.uploader == nil {
		return
	}
	if err := t.uploader.Upload(model); err != nil {
		logger.Log.Warn("Tile upload failed", zap.String("tile", model.Name), zap.Error(err))
	}
}

// EachReady calls fn with the model of every tile whose mesh has finished,
// drawn or not, in node order. Must run on the render thread.
func (t *Tree) EachReady(fn func(id NodeID, m *renderer.Model)) {
	for i := range t.nodes {
		id := NodeID(i)
		if t.nodes[i].Job == nil || t.nodes[i].Job.State() != JobReady {
			continue
		}
		t.attachModel(id)
		fn(id, t.nodes[id].Model)
	}
}

// Walk calls fn for every drawable tile, descending only through pass-through
// nodes.
func (t *Tree) Walk(fn func(id NodeID, n *Node)) {
	for _, root := range t.roots {
		t.walk(root, fn)
	}
}

func (t *Tree) walk(id NodeID, fn func(id NodeID, n *Node)) {
	n := &t.nodes[id]
	switch n.State {
	case DrawReady:
		fn(id, n)
	case DrawEmpty:
		for _, child := range t.Children(id) {
			t.walk(child, fn)
		}
	}
}

// TreeStats summarise the arena.
type TreeStats struct {
	Nodes    int
	Leaves   int
	Ready    int
	Pending  int
	Failed   int
	Visible  int
	MaxDepth int
}

func (t *Tree) Stats() TreeStats {
	var s TreeStats
	s.Nodes = len(t.nodes)
	for i := range t.nodes {
		n := &t.nodes[i]
		if !n.HasChildren() {
			s.Leaves++
		}
		switch n.Job.State() {
		case JobReady:
			s.Ready++
		case JobGenerating:
			s.Pending++
		case JobFailed:
			s.Failed++
		}
		if n.Level > s.MaxDepth {
			s.MaxDepth = n.Level
		}
	}
	t.Walk(func(NodeID, *Node) { s.Visible++ })
	return s
}
