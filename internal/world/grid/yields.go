package grid

import (
	"math"
	"math/rand"
	"strings"

	"OpenFront/internal/world/entity"

	opensimplex "github.com/ojrac/opensimplex-go"
)

const (
	minYield = 1
	maxYield = 3
)

// YieldSource 给非水域格子一个 [1,3] 的资源产出。
type YieldSource interface {
	Yield(pos entity.Position) int
}

type randomYields struct {
	rng *rand.Rand
}

// RandomYields 每格独立均匀抽取 floor(rand*3)+1。
func RandomYields(rng *rand.Rand) YieldSource {
	return &randomYields{rng: rng}
}

func (r *randomYields) Yield(entity.Position) int {
	return int(math.Floor(r.rng.Float64()*3)) + 1
}

type noiseYields struct {
	noise opensimplex.Noise
}

// NoiseYields 用 OpenSimplex 噪声让富矿成片出现。
func NoiseYields(seed int64) YieldSource {
	return &noiseYields{noise: opensimplex.NewNormalized(seed)}
}

func (n *noiseYields) Yield(pos entity.Position) int {
	v := octaveNoise(n.noise, float64(pos.X), float64(pos.Y), 3, 0.08, 0.5)
	return minYield + int(math.Floor(v*3))
}

// octaveNoise 多个频率叠加的分形噪声，结果仍在 [0,1]。
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

type fixedYield int

func (f fixedYield) Yield(entity.Position) int { return int(f) }

// YieldsFor 按配置选择产出源：noise 或默认的 random。
func YieldsFor(mode string, seed int64) YieldSource {
	if strings.EqualFold(mode, "noise") {
		return NoiseYields(seed)
	}
	return RandomYields(rand.New(rand.NewSource(seed)))
}

func clampYield(v int) int {
	return max(minYield, min(maxYield, v))
}
