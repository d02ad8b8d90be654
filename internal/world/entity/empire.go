package entity

import (
	"math"
	"slices"
)

type EmpireID string

type Resources struct {
	Gold                 float64
	Population           float64
	MaxPopulation        float64
	MilitaryRatio        float64
	GoldPerSecond        float64
	PopulationGrowthRate float64
	// 基础产出单独保存，GoldPerSecond/PopulationGrowthRate 只是最近一次结算的展示值。
	BaseGoldPerSecond    float64
	BasePopulationGrowth float64
}

type Empire struct {
	ID             EmpireID
	Name           string
	Color          string
	IsAI           bool
	LastActionTime float64
	ActionCooldown float64
	Resources      Resources
	Territories    []TileID
	Buildings      []*Building
	Ships          []*Ship
}

// MilitaryPopulation = floor(population * militaryRatio)
func (e *Empire) MilitaryPopulation() int {
	return int(math.Floor(e.Resources.Population * e.Resources.MilitaryRatio))
}

// CooledDown 距离上次行动是否已经过了冷却时间。
func (e *Empire) CooledDown(now float64) bool {
	return now-e.LastActionTime >= e.ActionCooldown
}

func (e *Empire) AddTerritory(id TileID) {
	e.Territories = append(e.Territories, id)
}

func (e *Empire) RemoveTerritory(id TileID) {
	e.Territories = slices.DeleteFunc(e.Territories, func(v TileID) bool { return v == id })
}

// Clone 深拷贝可变字段；Building/Ship 指针共享。
func (e *Empire) Clone() *Empire {
	if e == nil {
		return nil
	}
	c := *e
	c.Territories = slices.Clone(e.Territories)
	c.Buildings = slices.Clone(e.Buildings)
	c.Ships = slices.Clone(e.Ships)
	return &c
}

type Ship struct {
	ID          string
	Kind        ShipKind
	Pos         Position
	Owner       EmpireID
	Health      int
	MaxHealth   int
	Cargo       *int
	Destination *Position
	Moving      bool
}
