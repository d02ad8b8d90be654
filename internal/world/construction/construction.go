// Package construction 建筑的地形合法性、造价与建造。
package construction

import (
	"fmt"

	"OpenFront/internal/world/entity"
)

const (
	cityPopulationBonus = 20
	defaultHealth       = 100
)

// IDGenerator 提供建筑 id 的唯一后缀；utils.Snowflake 满足该接口。
type IDGenerator interface {
	NextID() int64
}

// Cost 建筑造价。
func Cost(kind entity.BuildingKind) float64 {
	switch kind {
	case entity.BuildingCity:
		return 50
	case entity.BuildingFarm:
		return 20
	case entity.BuildingDefense:
		return 30
	case entity.BuildingPort:
		return 40
	default:
		return 0
	}
}

// CanBuildOn 格子属于 e、没有建筑、不是水域；港口只能建在海岸。
func CanBuildOn(t *entity.Tile, kind entity.BuildingKind, e *entity.Empire) bool {
	if t == nil || e == nil || !kind.Valid() {
		return false
	}
	if !t.OwnedBy(e.ID) || t.Building != nil {
		return false
	}
	return TerrainAllows(t, kind)
}

// TerrainAllows 只看地形：水域不能建，港口只能在海岸。
func TerrainAllows(t *entity.Tile, kind entity.BuildingKind) bool {
	if t == nil || !kind.Valid() || t.IsWater() {
		return false
	}
	if kind == entity.BuildingPort {
		return t.Terrain == entity.TerrainCoast
	}
	return t.Terrain == entity.TerrainLand || t.Terrain == entity.TerrainCoast
}

// Affordable 金币是否足够。
func Affordable(e *entity.Empire, kind entity.BuildingKind) bool {
	return e != nil && e.Resources.Gold >= Cost(kind)
}

// Construct 校验后在 t 上建造，扣金币；城市额外 +20 人口上限。
// t 与 e 必须属于同一个可写副本。校验失败返回 nil。
func Construct(t *entity.Tile, kind entity.BuildingKind, e *entity.Empire, ids IDGenerator) *entity.Building {
	if !Affordable(e, kind) || !CanBuildOn(t, kind, e) {
		return nil
	}
	b := &entity.Building{
		ID:        newID(kind, e.ID, ids),
		Kind:      kind,
		Level:     1,
		Pos:       t.Pos,
		Owner:     e.ID,
		Health:    defaultHealth,
		MaxHealth: defaultHealth,
	}
	Place(t, b, e)
	e.Resources.Gold = max(0, e.Resources.Gold-Cost(kind))
	return b
}

// Place 不扣费地放置建筑（开局主城使用）。
func Place(t *entity.Tile, b *entity.Building, e *entity.Empire) {
	t.Building = b
	e.Buildings = append(e.Buildings, b)
	if b.Kind == entity.BuildingCity {
		e.Resources.MaxPopulation += cityPopulationBonus
	}
}

// StartingCity 开局主城，id 固定为 city-<empire>-start。
func StartingCity(e *entity.Empire, pos entity.Position) *entity.Building {
	return &entity.Building{
		ID:        fmt.Sprintf("city-%s-start", e.ID),
		Kind:      entity.BuildingCity,
		Level:     1,
		Pos:       pos,
		Owner:     e.ID,
		Health:    defaultHealth,
		MaxHealth: defaultHealth,
	}
}

func newID(kind entity.BuildingKind, owner entity.EmpireID, ids IDGenerator) string {
	var seq int64
	if ids != nil {
		seq = ids.NextID()
	}
	return fmt.Sprintf("%s-%s-%d", kind, owner, seq)
}
