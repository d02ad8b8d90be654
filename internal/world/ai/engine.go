// Package ai 非人类帝国的决策：每个冷却周期最多一次占领、一次建造。
package ai

import (
	"OpenFront/internal/world/capture"
	"OpenFront/internal/world/construction"
	"OpenFront/internal/world/entity"
	"OpenFront/modules/kit/logx"

	"go.uber.org/zap"
)

// Rand 决策用随机源，*rand.Rand 满足该接口；测试里替换成脚本化实现。
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type Engine struct {
	rng Rand
	ids construction.IDGenerator
	log logx.Logger
}

func NewEngine(rng Rand, ids construction.IDGenerator, log logx.Logger) *Engine {
	return &Engine{rng: rng, ids: ids, log: logx.OrNop(log)}
}

// Act 在可写副本 state 上为 e 行动一次。冷却未到返回 false 且不做任何修改；
// 冷却到了就刷新 LastActionTime，无论是否真的占领或建造。
func (en *Engine) Act(state *entity.GameState, e *entity.Empire, now float64) bool {
	if state == nil || state.Grid == nil || e == nil {
		return false
	}
	if !e.CooledDown(now) {
		return false
	}
	e.LastActionTime = now

	p := PersonalityFor(e.Name)
	owned := ownedLand(e, state.Grid)

	en.expand(state, e, p, owned)
	en.build(state, e, p, owned)
	return true
}

func (en *Engine) expand(state *entity.GameState, e *entity.Empire, p Personality, owned []*entity.Tile) {
	targets := expansionTargets(e, state.Grid, owned)
	if len(targets) == 0 {
		return
	}
	if e.MilitaryPopulation() <= p.MinMilitaryForExpansion || e.Resources.Population <= p.MinPopulationForExpansion {
		return
	}
	if en.rng.Float64() >= p.Aggressiveness {
		return
	}
	target := targets[en.rng.Intn(len(targets))]
	n := capture.Apply(state, e, capture.Area(target, e, state.Grid))
	if n > 0 {
		en.log.Debug("ai expand",
			zap.String("empire", string(e.ID)),
			zap.String("target", target.Pos.Key()),
			zap.Int("captured", n),
		)
	}
}

// build 候选格子取自本轮扩张之前的领土。
func (en *Engine) build(state *entity.GameState, e *entity.Empire, p Personality, owned []*entity.Tile) {
	if e.Resources.Gold <= p.MinGoldForBuilding {
		return
	}
	var buildable []*entity.Tile
	for _, t := range owned {
		if t.Building == nil && !t.IsWater() {
			buildable = append(buildable, t)
		}
	}
	if len(buildable) == 0 {
		return
	}
	t := buildable[en.rng.Intn(len(buildable))]
	kind := en.chooseKind(t, p)
	if b := construction.Construct(t, kind, e, en.ids); b != nil {
		en.log.Debug("ai build",
			zap.String("empire", string(e.ID)),
			zap.String("kind", kind.String()),
			zap.String("tile", t.Pos.Key()),
		)
	}
}

// chooseKind 依次掷骰：海岸港口、城市、防御，都没中则用偏好建筑。
func (en *Engine) chooseKind(t *entity.Tile, p Personality) entity.BuildingKind {
	switch {
	case t.Terrain == entity.TerrainCoast && en.rng.Float64() < p.PortPreference:
		return entity.BuildingPort
	case en.rng.Float64() < p.CityPreference:
		return entity.BuildingCity
	case en.rng.Float64() < p.DefensePreference:
		return entity.BuildingDefense
	default:
		return p.PreferredBuilding
	}
}

func ownedLand(e *entity.Empire, g *entity.Grid) []*entity.Tile {
	out := make([]*entity.Tile, 0, len(e.Territories))
	for _, id := range e.Territories {
		if t := g.Tile(id); t != nil && !t.IsWater() {
			out = append(out, t)
		}
	}
	return out
}

// expansionTargets 领土周边可占领的格子，去重，保持首次发现的顺序。
func expansionTargets(e *entity.Empire, g *entity.Grid, owned []*entity.Tile) []*entity.Tile {
	seen := make(map[entity.TileID]struct{})
	var out []*entity.Tile
	for _, t := range owned {
		for _, n := range g.Neighbors(t.Pos, 1) {
			if _, dup := seen[n.ID]; dup {
				continue
			}
			if capture.CanCapture(n, e, g) {
				seen[n.ID] = struct{}{}
				out = append(out, n)
			}
		}
	}
	return out
}
