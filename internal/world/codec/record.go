package codec

import (
	"encoding/json"
	"fmt"

	"OpenFront/internal/world/entity"
)

// Record 是快照的结构化形式，字段名与前端/历史存档保持一致。
// 格子以 [key, tile] 对的列表保存，加载时再重建成稠密网格。
type Record struct {
	GameTime       float64          `json:"gameTime"`
	LastUpdateTime float64          `json:"lastUpdateTime"`
	Players        []PlayerRecord   `json:"players"`
	Tiles          []TileEntry      `json:"tiles"`
	Ships          []ShipRecord     `json:"ships"`
	SelectedTile   *string          `json:"selectedTile"`
	SelectedShip   *string          `json:"selectedShip"`
	GamePhase      entity.Phase     `json:"gamePhase"`
	Winner         *entity.EmpireID `json:"winner"`
	MapSize        SizeRecord       `json:"mapSize"`
	Camera         CameraRecord     `json:"camera"`
	GameSpeed      float64          `json:"gameSpeed"`
	IsPaused       bool             `json:"isPaused"`
}

type SizeRecord struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type CameraRecord struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

type ResourcesRecord struct {
	Gold                 float64  `json:"gold"`
	Population           float64  `json:"population"`
	MaxPopulation        float64  `json:"maxPopulation"`
	MilitaryRatio        float64  `json:"militaryRatio"`
	GoldPerSecond        float64  `json:"goldPerSecond"`
	PopulationGrowthRate float64  `json:"populationGrowthRate"`
	BaseGoldPerSecond    *float64 `json:"baseGoldPerSecond,omitempty"`
	BasePopulationGrowth *float64 `json:"basePopulationGrowth,omitempty"`
}

type PlayerRecord struct {
	ID             entity.EmpireID  `json:"id"`
	Name           string           `json:"name"`
	Color          string           `json:"color"`
	IsAI           bool             `json:"isAI"`
	LastActionTime float64          `json:"lastActionTime"`
	ActionCooldown float64          `json:"actionCooldown"`
	Resources      ResourcesRecord  `json:"resources"`
	Territories    []string         `json:"territories"`
	Buildings      []BuildingRecord `json:"buildings"`
	Ships          []ShipRecord     `json:"ships"`
}

type BuildingRecord struct {
	ID        string              `json:"id"`
	Type      entity.BuildingKind `json:"type"`
	Level     int                 `json:"level"`
	Position  entity.Position     `json:"position"`
	Owner     entity.EmpireID     `json:"owner"`
	Health    int                 `json:"health"`
	MaxHealth int                 `json:"maxHealth"`
}

type TileRecord struct {
	ID        string           `json:"id"`
	Position  entity.Position  `json:"position"`
	Type      entity.Terrain   `json:"type"`
	Owner     *entity.EmpireID `json:"owner"`
	Resources int              `json:"resources"`
	Building  *BuildingRecord  `json:"building"`
	IsVisible bool             `json:"isVisible"`
}

type ShipRecord struct {
	ID          string           `json:"id"`
	Type        entity.ShipKind  `json:"type"`
	Position    entity.Position  `json:"position"`
	Owner       entity.EmpireID  `json:"owner"`
	Health      int              `json:"health"`
	MaxHealth   int              `json:"maxHealth"`
	Cargo       *int             `json:"cargo,omitempty"`
	Destination *entity.Position `json:"destination,omitempty"`
	IsMoving    bool             `json:"isMoving"`
}

// TileEntry 编码为两元素数组 ["x-y", {...}]。
type TileEntry struct {
	Key  string
	Tile TileRecord
}

func (e TileEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Key, e.Tile})
}

func (e *TileEntry) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("tile entry: want [key, tile], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Key); err != nil {
		return fmt.Errorf("tile entry key: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Tile); err != nil {
		return fmt.Errorf("tile entry %s: %w", e.Key, err)
	}
	return nil
}
