package construction

import (
	"testing"

	"OpenFront/internal/world/entity"
)

type seqIDs struct{ n int64 }

func (s *seqIDs) NextID() int64 {
	s.n++
	return s.n
}

func setup(terrain entity.Terrain) (*entity.Tile, *entity.Empire) {
	g := entity.NewGrid(3, 3)
	e := &entity.Empire{ID: "A", Resources: entity.Resources{Gold: 100, MaxPopulation: 10}}
	t := g.At(entity.Position{X: 1, Y: 1})
	t.Terrain = terrain
	t.Owner = e.ID
	return t, e
}

func TestCanBuildOn_水域一律拒绝(t *testing.T) {
	tile, e := setup(entity.TerrainWater)
	for _, k := range []entity.BuildingKind{entity.BuildingCity, entity.BuildingFarm, entity.BuildingDefense, entity.BuildingPort} {
		if CanBuildOn(tile, k, e) {
			t.Fatalf("期望水域不能建造 %s", k)
		}
	}
}

func TestCanBuildOn_港口合法性(t *testing.T) {
	coast, e := setup(entity.TerrainCoast)
	for _, k := range []entity.BuildingKind{entity.BuildingPort, entity.BuildingFarm, entity.BuildingCity, entity.BuildingDefense} {
		if !CanBuildOn(coast, k, e) {
			t.Fatalf("期望海岸可以建造 %s", k)
		}
	}
	land, e2 := setup(entity.TerrainLand)
	if CanBuildOn(land, entity.BuildingPort, e2) {
		t.Fatalf("期望陆地不能建港口")
	}
	if !CanBuildOn(land, entity.BuildingFarm, e2) {
		t.Fatalf("期望陆地可以建农场")
	}
}

func TestCanBuildOn_归属与已有建筑(t *testing.T) {
	tile, e := setup(entity.TerrainLand)
	other := &entity.Empire{ID: "B"}
	if CanBuildOn(tile, entity.BuildingFarm, other) {
		t.Fatalf("期望不能在别人的格子上建造")
	}
	tile.Building = &entity.Building{Kind: entity.BuildingFarm}
	if CanBuildOn(tile, entity.BuildingCity, e) {
		t.Fatalf("期望已有建筑的格子不能再建")
	}
	if CanBuildOn(tile, entity.BuildingKind(99), e) {
		t.Fatalf("期望未知建筑类型被拒绝")
	}
}

func TestConstruct_城市扣费并加人口上限(t *testing.T) {
	tile, e := setup(entity.TerrainLand)
	b := Construct(tile, entity.BuildingCity, e, &seqIDs{})
	if b == nil {
		t.Fatalf("期望建造成功")
	}
	if b.ID != "city-A-1" || b.Level != 1 || b.Health != 100 || b.Pos != tile.Pos {
		t.Fatalf("建筑字段不符合预期: %+v", b)
	}
	if tile.Building != b || len(e.Buildings) != 1 {
		t.Fatalf("期望建筑同时挂到格子和帝国上")
	}
	if e.Resources.Gold != 50 || e.Resources.MaxPopulation != 30 {
		t.Fatalf("期望 gold=50 max=30, got=%+v", e.Resources)
	}
}

func TestConstruct_金币不足(t *testing.T) {
	tile, e := setup(entity.TerrainLand)
	e.Resources.Gold = 49
	if Construct(tile, entity.BuildingCity, e, nil) != nil {
		t.Fatalf("期望金币不足时建造失败")
	}
	if tile.Building != nil || e.Resources.Gold != 49 {
		t.Fatalf("期望失败时不修改状态")
	}
}

func TestCost(t *testing.T) {
	want := map[entity.BuildingKind]float64{
		entity.BuildingCity: 50, entity.BuildingFarm: 20, entity.BuildingDefense: 30, entity.BuildingPort: 40,
	}
	for k, c := range want {
		if Cost(k) != c {
			t.Fatalf("期望 %s 造价 %v, got=%v", k, c, Cost(k))
		}
	}
}

func TestTerrainAllows_不看归属只看地形(t *testing.T) {
	land, _ := setup(entity.TerrainLand)
	land.Owner = ""
	land.Building = &entity.Building{Kind: entity.BuildingCity}
	if !TerrainAllows(land, entity.BuildingFarm) {
		t.Fatalf("期望陆地地形允许农场")
	}
	if TerrainAllows(land, entity.BuildingPort) {
		t.Fatalf("期望陆地地形不允许港口")
	}
}
