package sim

import (
	"OpenFront/internal/world/construction"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/grid"
)

const (
	// HumanEmpireID 默认对局里唯一的人类帝国。
	HumanEmpireID entity.EmpireID = "player"

	startRadius = 2
)

// EmpireSeed 开局帝国模板。
type EmpireSeed struct {
	ID             entity.EmpireID
	Name           string
	Color          string
	IsAI           bool
	ActionCooldown float64
	Gold           float64
	Population     float64
	MilitaryRatio  float64
	GoldPerSecond  float64
	GrowthRate     float64
	Start          entity.Position
}

// DefaultEmpires 一个人类玩家加六个 AI，起始位置按 80x60 地图排布。
var DefaultEmpires = []EmpireSeed{
	{ID: HumanEmpireID, Name: "Player", Color: "#3b82f6", ActionCooldown: 2, Gold: 100, Population: 10, MilitaryRatio: 0.3, GoldPerSecond: 2, GrowthRate: 0.5, Start: entity.Position{X: 15, Y: 25}},
	{ID: "ai1", Name: "Roman Empire", Color: "#ef4444", IsAI: true, ActionCooldown: 3, Gold: 100, Population: 10, MilitaryRatio: 0.3, GoldPerSecond: 2, GrowthRate: 0.5, Start: entity.Position{X: 50, Y: 20}},
	{ID: "ai2", Name: "Byzantine Empire", Color: "#10b981", IsAI: true, ActionCooldown: 3.5, Gold: 100, Population: 10, MilitaryRatio: 0.3, GoldPerSecond: 2, GrowthRate: 0.5, Start: entity.Position{X: 55, Y: 35}},
	{ID: "ai3", Name: "Holy Roman Empire", Color: "#f59e0b", IsAI: true, ActionCooldown: 4, Gold: 100, Population: 10, MilitaryRatio: 0.4, GoldPerSecond: 2, GrowthRate: 0.5, Start: entity.Position{X: 35, Y: 15}},
	{ID: "ai4", Name: "French Kingdom", Color: "#8b5cf6", IsAI: true, ActionCooldown: 3.2, Gold: 100, Population: 10, MilitaryRatio: 0.35, GoldPerSecond: 2, GrowthRate: 0.5, Start: entity.Position{X: 20, Y: 20}},
	{ID: "ai5", Name: "English Kingdom", Color: "#06b6d4", IsAI: true, ActionCooldown: 4.5, Gold: 100, Population: 10, MilitaryRatio: 0.25, GoldPerSecond: 2, GrowthRate: 0.5, Start: entity.Position{X: 10, Y: 15}},
	{ID: "ai6", Name: "Viking Clans", Color: "#84cc16", IsAI: true, ActionCooldown: 2.5, Gold: 80, Population: 8, MilitaryRatio: 0.6, GoldPerSecond: 1.5, GrowthRate: 0.4, Start: entity.Position{X: 25, Y: 10}},
}

// NewGame 生成地图并按 DefaultEmpires 开局。
func NewGame(size entity.Size, yields grid.YieldSource, now float64) *entity.GameState {
	return NewGameWith(size, yields, DefaultEmpires, now)
}

// NewGameWith 按给定模板开局：每个帝国占领起点半径 2 内的空闲陆地，起点是陆地时放一座主城。
func NewGameWith(size entity.Size, yields grid.YieldSource, seeds []EmpireSeed, now float64) *entity.GameState {
	if size.Width <= 0 || size.Height <= 0 {
		size = entity.Size{Width: grid.DefaultWidth, Height: grid.DefaultHeight}
	}
	g := grid.Generate(size.Width, size.Height, yields)

	empires := make([]*entity.Empire, 0, len(seeds))
	for i, s := range seeds {
		e := newEmpire(s)
		start := s.Start
		if start == (entity.Position{}) {
			start = entity.Position{X: 40 + i*5, Y: 30 + i*3}
		}
		seed(g, e, start)
		empires = append(empires, e)
	}

	return &entity.GameState{
		LastUpdateTime: now,
		Empires:        empires,
		Grid:           g,
		Phase:          entity.PhasePlaying,
		MapSize:        size,
		Camera:         entity.Camera{Zoom: 1},
		GameSpeed:      1,
	}
}

func newEmpire(s EmpireSeed) *entity.Empire {
	return &entity.Empire{
		ID:             s.ID,
		Name:           s.Name,
		Color:          s.Color,
		IsAI:           s.IsAI,
		ActionCooldown: s.ActionCooldown,
		Resources: entity.Resources{
			Gold:                 s.Gold,
			Population:           s.Population,
			MaxPopulation:        s.Population,
			MilitaryRatio:        s.MilitaryRatio,
			GoldPerSecond:        s.GoldPerSecond,
			PopulationGrowthRate: s.GrowthRate,
			BaseGoldPerSecond:    s.GoldPerSecond,
			BasePopulationGrowth: s.GrowthRate,
		},
	}
}

// seed 已被先手帝国占领的格子保持不变，领土列表与归属始终一致。
func seed(g *entity.Grid, e *entity.Empire, start entity.Position) {
	for _, t := range g.Neighbors(start, startRadius) {
		if t.IsWater() || t.Owner != "" {
			continue
		}
		t.Owner = e.ID
		e.AddTerritory(t.ID)
	}
	if t := g.At(start); t != nil && t.OwnedBy(e.ID) && t.Building == nil {
		construction.Place(t, construction.StartingCity(e, start), e)
	}
}
