package ai

import "OpenFront/internal/world/entity"

// Personality 一个 AI 帝国的扩张/建造策略参数。
type Personality struct {
	Aggressiveness            float64
	MinMilitaryForExpansion   int
	MinPopulationForExpansion float64
	MinGoldForBuilding        float64
	PreferredBuilding         entity.BuildingKind
	CityPreference            float64
	PortPreference            float64
	DefensePreference         float64
}

const DefaultPersonalityName = "Roman Empire"

var personalities = map[string]Personality{
	"Roman Empire": {
		Aggressiveness: 0.8, MinMilitaryForExpansion: 8, MinPopulationForExpansion: 8, MinGoldForBuilding: 25,
		PreferredBuilding: entity.BuildingCity, CityPreference: 0.4, PortPreference: 0.3, DefensePreference: 0.2,
	},
	"Byzantine Empire": {
		Aggressiveness: 0.6, MinMilitaryForExpansion: 6, MinPopulationForExpansion: 6, MinGoldForBuilding: 30,
		PreferredBuilding: entity.BuildingDefense, CityPreference: 0.3, PortPreference: 0.4, DefensePreference: 0.4,
	},
	"Holy Roman Empire": {
		Aggressiveness: 0.7, MinMilitaryForExpansion: 10, MinPopulationForExpansion: 10, MinGoldForBuilding: 35,
		PreferredBuilding: entity.BuildingCity, CityPreference: 0.5, PortPreference: 0.2, DefensePreference: 0.3,
	},
	"French Kingdom": {
		Aggressiveness: 0.75, MinMilitaryForExpansion: 7, MinPopulationForExpansion: 7, MinGoldForBuilding: 28,
		PreferredBuilding: entity.BuildingFarm, CityPreference: 0.35, PortPreference: 0.25, DefensePreference: 0.25,
	},
	"English Kingdom": {
		Aggressiveness: 0.5, MinMilitaryForExpansion: 5, MinPopulationForExpansion: 8, MinGoldForBuilding: 40,
		PreferredBuilding: entity.BuildingPort, CityPreference: 0.3, PortPreference: 0.5, DefensePreference: 0.2,
	},
	"Viking Clans": {
		Aggressiveness: 0.9, MinMilitaryForExpansion: 4, MinPopulationForExpansion: 4, MinGoldForBuilding: 20,
		PreferredBuilding: entity.BuildingPort, CityPreference: 0.2, PortPreference: 0.6, DefensePreference: 0.1,
	},
}

// PersonalityFor 未登记的名字按 Roman Empire 处理。
func PersonalityFor(name string) Personality {
	if p, ok := personalities[name]; ok {
		return p
	}
	return personalities[DefaultPersonalityName]
}
