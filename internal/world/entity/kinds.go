package entity

import "fmt"

// Terrain 地形分类，生成后不再变化。
type Terrain uint8

const (
	TerrainLand Terrain = iota
	TerrainWater
	TerrainCoast
)

var terrainNames = [...]string{
	TerrainLand:  "land",
	TerrainWater: "water",
	TerrainCoast: "coast",
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain(%d)", uint8(t))
}

func (t Terrain) MarshalText() ([]byte, error) {
	if int(t) >= len(terrainNames) {
		return nil, fmt.Errorf("unknown terrain %d", uint8(t))
	}
	return []byte(terrainNames[t]), nil
}

func (t *Terrain) UnmarshalText(b []byte) error {
	for i, name := range terrainNames {
		if name == string(b) {
			*t = Terrain(i)
			return nil
		}
	}
	return fmt.Errorf("unknown terrain %q", string(b))
}

// BuildingKind 建筑种类是封闭集合，新增种类需要同步 Cost/CanBuildOn/经济加成。
type BuildingKind uint8

const (
	BuildingCity BuildingKind = iota
	BuildingFarm
	BuildingDefense
	BuildingPort
)

var buildingNames = [...]string{
	BuildingCity:    "city",
	BuildingFarm:    "farm",
	BuildingDefense: "defense",
	BuildingPort:    "port",
}

// ParseBuildingKind 解析外部输入的建筑类型，未知类型返回 false。
func ParseBuildingKind(s string) (BuildingKind, bool) {
	for i, name := range buildingNames {
		if name == s {
			return BuildingKind(i), true
		}
	}
	return 0, false
}

func (k BuildingKind) Valid() bool {
	return int(k) < len(buildingNames)
}

func (k BuildingKind) String() string {
	if k.Valid() {
		return buildingNames[k]
	}
	return fmt.Sprintf("building(%d)", uint8(k))
}

func (k BuildingKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown building kind %d", uint8(k))
	}
	return []byte(buildingNames[k]), nil
}

func (k *BuildingKind) UnmarshalText(b []byte) error {
	v, ok := ParseBuildingKind(string(b))
	if !ok {
		return fmt.Errorf("unknown building kind %q", string(b))
	}
	*k = v
	return nil
}

type ShipKind uint8

const (
	ShipTrade ShipKind = iota
	ShipMilitary
)

func (k ShipKind) String() string {
	if k == ShipMilitary {
		return "military"
	}
	return "trade"
}

func (k ShipKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ShipKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "trade":
		*k = ShipTrade
	case "military":
		*k = ShipMilitary
	default:
		return fmt.Errorf("unknown ship kind %q", string(b))
	}
	return nil
}

// Phase 对局阶段：setup -> playing -> ended，ended 为终态。
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhasePlaying
	PhaseEnded
)

var phaseNames = [...]string{
	PhaseSetup:   "setup",
	PhasePlaying: "playing",
	PhaseEnded:   "ended",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	if int(p) >= len(phaseNames) {
		return nil, fmt.Errorf("unknown phase %d", uint8(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(b))
}
