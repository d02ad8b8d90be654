// Package grid 负责地图生成：地形由坐标唯一确定，只有资源产出使用随机源。
package grid

import (
	"math"

	"OpenFront/internal/world/entity"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 60
)

// Generate 按固定规则生成地形，再用 yields 给非水域格子分配产出。
// 遍历顺序 x 外层、y 内层，保证同一随机流得到同一张图。
func Generate(width, height int, yields YieldSource) *entity.Grid {
	g := entity.NewGrid(width, height)
	if yields == nil {
		yields = fixedYield(1)
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			t := g.At(entity.Position{X: x, Y: y})
			switch {
			case isWater(x, y, width, height):
				t.Terrain = entity.TerrainWater
				t.Resources = 0
				continue
			case hasAdjacentWater(x, y, width, height):
				t.Terrain = entity.TerrainCoast
			default:
				t.Terrain = entity.TerrainLand
			}
			t.Resources = clampYield(yields.Yield(t.Pos))
		}
	}
	return g
}

// isWater 内海、北海、西侧海岸带，再加三角函数噪声形成的湖泊。
func isWater(x, y, width, height int) bool {
	cx := float64(width) / 2
	cy := float64(height) / 2
	fx, fy := float64(x), float64(y)

	if fy > cy+10 && fy < cy+25 && fx > cx-20 && fx < cx+20 {
		return true
	}
	if fy < cy-15 && fx > cx-10 && fx < cx+15 {
		return true
	}
	if x < 5 {
		return true
	}
	return math.Sin(fx*0.1)*math.Cos(fy*0.1) > 0.7
}

// hasAdjacentWater 地图外的坐标也按同一规则判定。
func hasAdjacentWater(x, y, width, height int) bool {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if isWater(x+dx, y+dy, width, height) {
				return true
			}
		}
	}
	return false
}
