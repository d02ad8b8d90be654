// Package economy 结算单个帝国在 dt 秒内的金币与人口。
package economy

import (
	"OpenFront/internal/world/entity"
)

const goldPerResource = 0.1

// Rates 是某一时刻的即时产出。
type Rates struct {
	GoldPerSecond        float64
	PopulationGrowthRate float64
}

// CurrentRates 基础产出 + 领土资源 + 建筑加成。
func CurrentRates(e *entity.Empire, g *entity.Grid) Rates {
	r := Rates{
		GoldPerSecond:        e.Resources.BaseGoldPerSecond,
		PopulationGrowthRate: e.Resources.BasePopulationGrowth,
	}
	for _, id := range e.Territories {
		if t := g.Tile(id); t != nil && !t.IsWater() {
			r.GoldPerSecond += float64(t.Resources) * goldPerResource
		}
	}
	for _, b := range e.Buildings {
		if b == nil {
			continue
		}
		level := float64(b.Level)
		switch b.Kind {
		case entity.BuildingCity:
			r.GoldPerSecond += 0.5 * level
			r.PopulationGrowthRate += 0.1 * level
		case entity.BuildingFarm:
			r.GoldPerSecond += 0.3 * level
			r.PopulationGrowthRate += 0.2 * level
		case entity.BuildingPort:
			r.GoldPerSecond += 0.4 * level
		case entity.BuildingDefense:
		}
	}
	return r
}

// Advance 原地修改 e（调用方负责先 Clone）。dt <= 0 时什么都不做。
func Advance(e *entity.Empire, g *entity.Grid, dt float64) {
	if e == nil || g == nil || dt <= 0 {
		return
	}
	r := CurrentRates(e, g)
	res := &e.Resources
	res.Gold = max(0, res.Gold+r.GoldPerSecond*dt)
	res.Population = ClampPopulation(res.Population+r.PopulationGrowthRate*dt, res.MaxPopulation)
	res.GoldPerSecond = r.GoldPerSecond
	res.PopulationGrowthRate = r.PopulationGrowthRate
}

// ClampPopulation 人口保持在 [1, maxPopulation]。
func ClampPopulation(pop, maxPop float64) float64 {
	return min(maxPop, max(1, pop))
}
