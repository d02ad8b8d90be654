// Package capture 决定一次区域占领拿下哪些格子，并执行归属转移。
// 这是除开局分配外唯一修改格子归属的路径。
package capture

import (
	"slices"

	"OpenFront/internal/world/economy"
	"OpenFront/internal/world/entity"
)

const maxCapturesPerAction = 8

// CanCapture 目标不是水域、不属于自己，且八邻域内有自己的非水域格子。
func CanCapture(t *entity.Tile, e *entity.Empire, g *entity.Grid) bool {
	if t == nil || e == nil || g == nil {
		return false
	}
	if t.IsWater() || t.OwnedBy(e.ID) {
		return false
	}
	return hasOwnedNeighbor(t, e.ID, g, nil)
}

// Radius 军事人口 <=15 半径 1，<=30 半径 2，否则 3。
func Radius(militaryPop int) int {
	switch {
	case militaryPop <= 15:
		return 1
	case militaryPop <= 30:
		return 2
	default:
		return 3
	}
}

// Area 以 center 为中心计算本次能拿下的格子，不修改任何状态。
// 候选按到中心的曼哈顿距离稳定排序，只检查前 min(floor(mil/3), 候选数, 8) 个；
// 每个候选在入选前重新校验邻接，同批次已入选的格子视为已占领。
func Area(center *entity.Tile, e *entity.Empire, g *entity.Grid) []*entity.Tile {
	if !CanCapture(center, e, g) {
		return nil
	}
	mil := e.MilitaryPopulation()

	var candidates []*entity.Tile
	for _, t := range g.Neighbors(center.Pos, Radius(mil)) {
		if !t.IsWater() && !t.OwnedBy(e.ID) {
			candidates = append(candidates, t)
		}
	}
	slices.SortStableFunc(candidates, func(a, b *entity.Tile) int {
		return a.Pos.Manhattan(center.Pos) - b.Pos.Manhattan(center.Pos)
	})

	limit := min(mil/3, len(candidates), maxCapturesPerAction)
	if limit <= 0 {
		return nil
	}
	accepted := make(map[entity.TileID]struct{}, limit)
	out := make([]*entity.Tile, 0, limit)
	for _, t := range candidates[:limit] {
		if hasOwnedNeighbor(t, e.ID, g, accepted) {
			accepted[t.ID] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Apply 把 tiles 转给 capturer 并扣除战损 max(1, floor(n/2))，人口不低于 1。
// tiles 必须来自 state.Grid；state 由调用方保证是可写副本。
func Apply(state *entity.GameState, capturer *entity.Empire, tiles []*entity.Tile) int {
	if state == nil || capturer == nil || len(tiles) == 0 {
		return 0
	}
	for _, t := range tiles {
		if t.Owner != "" {
			if prev := state.Empire(t.Owner); prev != nil {
				prev.RemoveTerritory(t.ID)
			}
		}
		t.Owner = capturer.ID
		capturer.AddTerritory(t.ID)
	}
	losses := max(1, len(tiles)/2)
	res := &capturer.Resources
	res.Population = economy.ClampPopulation(res.Population-float64(losses), res.MaxPopulation)
	return len(tiles)
}

// Resolve 在可写副本上按 id 重新定位格子后执行 Area + Apply。
func Resolve(state *entity.GameState, capturer *entity.Empire, centerID entity.TileID) int {
	if state == nil || state.Grid == nil {
		return 0
	}
	return Apply(state, capturer, Area(state.Grid.Tile(centerID), capturer, state.Grid))
}

func hasOwnedNeighbor(t *entity.Tile, owner entity.EmpireID, g *entity.Grid, batch map[entity.TileID]struct{}) bool {
	for _, n := range g.Neighbors(t.Pos, 1) {
		if n.ID == t.ID || n.IsWater() {
			continue
		}
		if n.OwnedBy(owner) {
			return true
		}
		if _, ok := batch[n.ID]; ok {
			return true
		}
	}
	return false
}
