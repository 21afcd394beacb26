package noise

import (
	"math"
	"math/rand"
)

// GradientNoise is Ken Perlin's 2002 improved noise (GPU Gems ch. 5): quintic fade
// and the 12 cube-edge gradients. Read-only after construction, so it is safe to
// sample from any goroutine.
type GradientNoise struct {
	perm [512]int
}

var gradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// NewGradientNoise builds the permutation table from seed with a Fisher-Yates shuffle.
func NewGradientNoise(seed int64) *GradientNoise {
	g := &GradientNoise{}
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < 256; i++ {
		g.perm[i] = i
	}
	for i := 255; i > 0; i-- {
		j := rng.Intn(i + 1)
		g.perm[i], g.perm[j] = g.perm[j], g.perm[i]
	}
	// Doubled to avoid wrapping
	for i := 0; i < 256; i++ {
		g.perm[256+i] = g.perm[i]
	}
	return g
}

// 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash int, x, y, z float64) float64 {
	g := gradients[hash%12]
	return g[0]*x + g[1]*y + g[2]*z
}

// Noise3D returns a value in roughly [-1, 1].
func (g *GradientNoise) Noise3D(x, y, z float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)

	u, v, w := fade(x), fade(y), fade(z)

	p := &g.perm
	A := p[X] + Y
	AA := p[A] + Z
	AB := p[A+1] + Z
	B := p[X+1] + Y
	BA := p[B] + Z
	BB := p[B+1] + Z

	return lerp(w,
		lerp(v,
			lerp(u, grad(p[AA], x, y, z), grad(p[BA], x-1, y, z)),
			lerp(u, grad(p[AB], x, y-1, z), grad(p[BB], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p[AA+1], x, y, z-1), grad(p[BA+1], x-1, y, z-1)),
			lerp(u, grad(p[AB+1], x, y-1, z-1), grad(p[BB+1], x-1, y-1, z-1))))
}
