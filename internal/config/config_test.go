package config

import (
	"os"
	"path/filepath"
	"testing"

	"GopherPlanets/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const sampleScene = `
workers: 2
viewer:
  position: [0, 0, 30]
  behaviour: circle
planets:
  - name: rock
    radius: 5
    noise:
      seed: 42
      max_height: 0.05
    ocean:
      enabled: false
  - name: pebble
    radius: 1
    max_lod: 2
    noise:
      seed: 7
    orbit:
      parent: rock
      trajectory: 20
      speed: 0.5
      init_angle: [1.5, 0.2]
`

func TestParseAppliesDefaults(t *testing.T) {
	scene, err := Parse([]byte(sampleScene))
	require.NoError(t, err)

	assert.Equal(t, 2, scene.Workers)
	assert.Equal(t, terrain.MaxInFlight, scene.MaxInFlight)
	assert.Equal(t, terrain.DefaultMaxRetries, scene.MaxRetries)
	assert.Equal(t, "circle", scene.Viewer.Behaviour)
	assert.Equal(t, mgl32.Vec3{0, 0, 30}, scene.Viewer.Position)
	require.Len(t, scene.Planets, 2)

	rock := scene.Planets[0]
	assert.Equal(t, "rock", rock.Name)
	assert.Equal(t, float32(5), rock.Radius)
	assert.Equal(t, int64(42), rock.Noise.Seed)
	assert.Equal(t, float32(0.05), rock.Noise.MaxHeight)
	// fields left out keep their defaults
	assert.Equal(t, terrain.MaxLOD, rock.MaxLOD)
	assert.Equal(t, terrain.SubdivisionsPerLevel, rock.Subdivisions)
	assert.Greater(t, rock.Noise.Octaves, 0)
	assert.False(t, rock.Ocean.Enabled)
	assert.Nil(t, rock.Orbit)

	pebble := scene.Planets[1]
	assert.Equal(t, 2, pebble.MaxLOD)
	assert.True(t, pebble.Ocean.Enabled)
	require.NotNil(t, pebble.Orbit)
	assert.Equal(t, "rock", pebble.Orbit.Parent)
	assert.Equal(t, mgl32.Vec2{1.5, 0.2}, pebble.Orbit.InitAngle)
	assert.Equal(t, 1, scene.Index("pebble"))
	assert.Equal(t, -1, scene.Index("missing"))
}

func TestValidateReportsEveryProblem(t *testing.T) {
	data := `
workers: -1
planets:
  - name: a
    radius: 1
  - name: a
    radius: -3
  - name: b
    orbit:
      parent: c
  - name: c
`
	_, err := Parse([]byte(data))
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.GreaterOrEqual(t, len(errs), 4)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), `duplicate planet name "a"`)
	assert.Contains(t, err.Error(), "radius must be positive")
	assert.Contains(t, err.Error(), `orbits "c"`)
}

func TestEmptySceneIsInvalid(t *testing.T) {
	_, err := Parse([]byte("workers: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no planets")
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("planets: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode scene")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScene), 0o644))

	scene, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, scene.Planets, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultScene(t *testing.T) {
	scene := DefaultScene()
	require.NoError(t, scene.Validate())

	names := make([]string, len(scene.Planets))
	for i, p := range scene.Planets {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"sun", "earth", "oceanus", "mars", "phobos", "luna"}, names)

	sun := scene.Planets[0]
	assert.False(t, sun.Ocean.Enabled)
	assert.Nil(t, sun.Orbit)
	assert.Equal(t, 2, sun.MaxLOD)

	earth := scene.Planets[scene.Index("earth")]
	assert.True(t, earth.Ocean.Enabled)
	require.NotNil(t, earth.Palette)
	assert.Equal(t, float32(0.019), earth.Palette.Thresholds[2])

	luna := scene.Planets[scene.Index("luna")]
	require.NotNil(t, luna.Orbit)
	assert.Equal(t, "earth", luna.Orbit.Parent)
}

func TestDefaultSceneRoundTripsThroughYAML(t *testing.T) {
	data, err := DefaultScene().Marshal()
	require.NoError(t, err)

	scene, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultScene(), scene)
}
