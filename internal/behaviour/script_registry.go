package behaviour

import (
	"fmt"
	"sort"

	"GopherPlanets/internal/terrain"
)

// ViewerConstructor builds a behaviour that moves v through the scene.
type ViewerConstructor func(v *Viewer, planets []*terrain.Planet) Behaviour

var viewerRegistry = make(map[string]ViewerConstructor)

func init() {
	RegisterViewer("static", func(*Viewer, []*terrain.Planet) Behaviour { return staticViewer{} })
	RegisterViewer("descend", func(v *Viewer, p []*terrain.Planet) Behaviour { return NewDescendBehaviour(v, p) })
	RegisterViewer("circle", func(v *Viewer, p []*terrain.Planet) Behaviour { return NewCircleBehaviour(v, p) })
}

func RegisterViewer(name string, constructor ViewerConstructor) {
	viewerRegistry[name] = constructor
}

// AvailableViewers lists registered viewer behaviours, sorted.
func AvailableViewers() []string {
	names := make([]string, 0, len(viewerRegistry))
	for name := range viewerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func CreateViewer(name string, v *Viewer, planets []*terrain.Planet) (Behaviour, error) {
	constructor, exists := viewerRegistry[name]
	if !exists {
		return nil, fmt.Errorf("unknown viewer %q, available: %v", name, AvailableViewers())
	}
	return constructor(v, planets), nil
}
