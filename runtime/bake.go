package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"GopherPlanets/internal/renderer"
	"GopherPlanets/internal/terrain"

	"go.uber.org/multierr"
)

const manifestName = "manifest.json"

// bakePlanet writes every ready tile of p to dir/<planet>/<node>.mesh and a
// manifest listing them. It returns the number of tiles written.
func bakePlanet(dir string, p *terrain.Planet) (int, error) {
	out := filepath.Join(dir, p.Name())
	if err := os.MkdirAll(out, 0o755); err != nil {
		return 0, err
	}

	var (
		entries []json.RawMessage
		errs    error
	)
	p.Tree().EachReady(func(id terrain.NodeID, m *renderer.Model) {
		file := fmt.Sprintf("%d.mesh", id)
		data, err := renderer.EncodeMeshBinary(m.Mesh)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", m.Name, err))
			return
		}
		if err := os.WriteFile(filepath.Join(out, file), data, 0o644); err != nil {
			errs = multierr.Append(errs, err)
			return
		}
		entry, err := renderer.SerializeModelToJSON(m, file)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", m.Name, err))
			return
		}
		entries = append(entries, entry)
	})
	if errs != nil {
		return len(entries), errs
	}

	manifest, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return len(entries), err
	}
	if err := os.WriteFile(filepath.Join(out, manifestName), manifest, 0o644); err != nil {
		return len(entries), err
	}
	return len(entries), nil
}
