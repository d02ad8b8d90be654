// Package codec 对局状态与持久化快照之间的转换。
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"OpenFront/internal/shared/utils"
	"OpenFront/internal/world/app"
	"OpenFront/internal/world/construction"
	"OpenFront/internal/world/entity"
)

const (
	Format  = "openfront.snapshot"
	Version = 1
)

// ErrCorruptSnapshot 快照缺字段、校验失败或无法解码；调用方应回退到新开局。
var ErrCorruptSnapshot = app.ErrCorruptSnapshot

// ToRecord 导出 state，不修改入参。
func ToRecord(state *entity.GameState) Record {
	g := state.Grid
	rec := Record{
		GameTime:       state.GameTime,
		LastUpdateTime: state.LastUpdateTime,
		Players:        make([]PlayerRecord, 0, len(state.Empires)),
		Tiles:          make([]TileEntry, 0, g.Len()),
		Ships:          shipRecords(state.Ships),
		SelectedShip:   cloneString(state.SelectedShip),
		GamePhase:      state.Phase,
		MapSize:        SizeRecord{Width: state.MapSize.Width, Height: state.MapSize.Height},
		Camera:         CameraRecord{X: state.Camera.X, Y: state.Camera.Y, Zoom: state.Camera.Zoom},
		GameSpeed:      state.GameSpeed,
		IsPaused:       state.Paused,
	}
	if state.SelectedTile != nil {
		if t := g.Tile(*state.SelectedTile); t != nil {
			key := t.Pos.Key()
			rec.SelectedTile = &key
		}
	}
	if state.Winner != nil {
		w := *state.Winner
		rec.Winner = &w
	}

	for _, e := range state.Empires {
		r := e.Resources
		p := PlayerRecord{
			ID:             e.ID,
			Name:           e.Name,
			Color:          e.Color,
			IsAI:           e.IsAI,
			LastActionTime: e.LastActionTime,
			ActionCooldown: e.ActionCooldown,
			Resources: ResourcesRecord{
				Gold:                 r.Gold,
				Population:           r.Population,
				MaxPopulation:        r.MaxPopulation,
				MilitaryRatio:        r.MilitaryRatio,
				GoldPerSecond:        r.GoldPerSecond,
				PopulationGrowthRate: r.PopulationGrowthRate,
				BaseGoldPerSecond:    &r.BaseGoldPerSecond,
				BasePopulationGrowth: &r.BasePopulationGrowth,
			},
			Territories: make([]string, 0, len(e.Territories)),
			Buildings:   make([]BuildingRecord, 0, len(e.Buildings)),
			Ships:       shipRecords(e.Ships),
		}
		for _, id := range e.Territories {
			if t := g.Tile(id); t != nil {
				p.Territories = append(p.Territories, t.Pos.Key())
			}
		}
		for _, b := range e.Buildings {
			p.Buildings = append(p.Buildings, buildingRecord(b))
		}
		rec.Players = append(rec.Players, p)
	}

	for id := 0; id < g.Len(); id++ {
		t := g.Tile(entity.TileID(id))
		tr := TileRecord{
			ID:        t.Pos.Key(),
			Position:  t.Pos,
			Type:      t.Terrain,
			Resources: t.Resources,
			IsVisible: t.Visible,
		}
		if t.Owner != "" {
			owner := t.Owner
			tr.Owner = &owner
		}
		if t.Building != nil {
			br := buildingRecord(t.Building)
			tr.Building = &br
		}
		rec.Tiles = append(rec.Tiles, TileEntry{Key: tr.ID, Tile: tr})
	}
	return rec
}

// FromRecord 重建 state，LastUpdateTime 总是改成 now。
// 领土列表以格子归属为准重建：保留记录中的顺序，漏记的格子按 id 顺序补在后面。
// 建筑同样以格子为准：帝国列表只保留格子上合法存在且归自己的建筑，漏记的补在后面。
func FromRecord(rec Record, now float64) (*entity.GameState, error) {
	if rec.Players == nil || rec.Tiles == nil {
		return nil, corrupt(app.ReasonSnapshotFields, errors.New("players or tiles missing"))
	}
	w, h := rec.MapSize.Width, rec.MapSize.Height
	if w <= 0 || h <= 0 || len(rec.Tiles) != w*h {
		return nil, corrupt(app.ReasonSnapshotFields, fmt.Errorf("map %dx%d with %d tiles", w, h, len(rec.Tiles)))
	}

	empires := make([]*entity.Empire, 0, len(rec.Players))
	known := make(map[entity.EmpireID]*entity.Empire, len(rec.Players))
	for _, p := range rec.Players {
		if p.ID == "" || known[p.ID] != nil {
			return nil, corrupt(app.ReasonSnapshotFields, fmt.Errorf("bad player id %q", p.ID))
		}
		e := &entity.Empire{
			ID:             p.ID,
			Name:           p.Name,
			Color:          p.Color,
			IsAI:           p.IsAI,
			LastActionTime: p.LastActionTime,
			ActionCooldown: p.ActionCooldown,
			Resources:      resources(p.Resources),
			Ships:          ships(p.Ships),
		}
		empires = append(empires, e)
		known[e.ID] = e
	}

	g := entity.NewGrid(w, h)
	seen := make([]bool, g.Len())
	buildings := make(map[string]*entity.Building)
	for _, entry := range rec.Tiles {
		pos, ok := entity.ParseKey(entry.Key)
		id, in := g.IDOf(pos)
		if !ok || !in || seen[id] {
			return nil, corrupt(app.ReasonSnapshotFields, fmt.Errorf("bad tile key %q", entry.Key))
		}
		seen[id] = true
		tr := entry.Tile
		t := g.Tile(id)
		t.Terrain = tr.Type
		t.Visible = tr.IsVisible
		if t.IsWater() {
			continue
		}
		t.Resources = tr.Resources
		if tr.Owner != nil && known[*tr.Owner] != nil {
			t.Owner = *tr.Owner
		}
		if tr.Building == nil {
			continue
		}
		// 被占领格子上的建筑仍归原主，所以只要求 owner 存在；地形不允许或 id 重复的丢弃
		b := building(*tr.Building)
		b.Pos = pos
		if b.ID == "" || buildings[b.ID] != nil || known[b.Owner] == nil || !construction.TerrainAllows(t, b.Kind) {
			continue
		}
		t.Building = b
		buildings[b.ID] = b
	}

	for i, p := range rec.Players {
		e := empires[i]
		e.Territories = territories(g, e.ID, p.Territories)
		// 只认格子上确实存在且归自己的建筑，和格子共用同一个指针
		for _, br := range p.Buildings {
			if b, ok := buildings[br.ID]; ok && b.Owner == e.ID && !slices.Contains(e.Buildings, b) {
				e.Buildings = append(e.Buildings, b)
			}
		}
	}
	appendMissingTerritories(g, known)
	appendMissingBuildings(g, known)

	state := &entity.GameState{
		GameTime:       rec.GameTime,
		LastUpdateTime: now,
		Empires:        empires,
		Grid:           g,
		Ships:          ships(rec.Ships),
		SelectedShip:   cloneString(rec.SelectedShip),
		Phase:          rec.GamePhase,
		MapSize:        entity.Size{Width: w, Height: h},
		Camera:         entity.Camera{X: rec.Camera.X, Y: rec.Camera.Y, Zoom: rec.Camera.Zoom},
		GameSpeed:      rec.GameSpeed,
		Paused:         rec.IsPaused,
	}
	if state.GameSpeed <= 0 {
		state.GameSpeed = 1
	}
	if rec.SelectedTile != nil {
		if pos, ok := entity.ParseKey(*rec.SelectedTile); ok {
			if id, in := g.IDOf(pos); in {
				state.SelectedTile = &id
			}
		}
	}
	if rec.Winner != nil && known[*rec.Winner] != nil {
		winner := *rec.Winner
		state.Winner = &winner
	}
	return state, nil
}

// territories 记录里属于 owner 且确实归它的格子，去重。
func territories(g *entity.Grid, owner entity.EmpireID, keys []string) []entity.TileID {
	out := make([]entity.TileID, 0, len(keys))
	for _, k := range keys {
		pos, ok := entity.ParseKey(k)
		if !ok {
			continue
		}
		t := g.At(pos)
		if t == nil || !t.OwnedBy(owner) || slices.Contains(out, t.ID) {
			continue
		}
		out = append(out, t.ID)
	}
	return out
}

func appendMissingBuildings(g *entity.Grid, known map[entity.EmpireID]*entity.Empire) {
	for i := 0; i < g.Len(); i++ {
		b := g.Tile(entity.TileID(i)).Building
		if b == nil {
			continue
		}
		if e := known[b.Owner]; e != nil && !slices.Contains(e.Buildings, b) {
			e.Buildings = append(e.Buildings, b)
		}
	}
}

func appendMissingTerritories(g *entity.Grid, known map[entity.EmpireID]*entity.Empire) {
	listed := make(map[entity.TileID]struct{})
	for _, e := range known {
		for _, id := range e.Territories {
			listed[id] = struct{}{}
		}
	}
	for i := 0; i < g.Len(); i++ {
		t := g.Tile(entity.TileID(i))
		if t.Owner == "" {
			continue
		}
		if _, ok := listed[t.ID]; !ok {
			known[t.Owner].AddTerritory(t.ID)
		}
	}
}

func resources(r ResourcesRecord) entity.Resources {
	out := entity.Resources{
		Gold:                 max(0, r.Gold),
		Population:           r.Population,
		MaxPopulation:        max(1, r.MaxPopulation),
		MilitaryRatio:        r.MilitaryRatio,
		GoldPerSecond:        r.GoldPerSecond,
		PopulationGrowthRate: r.PopulationGrowthRate,
		BaseGoldPerSecond:    r.GoldPerSecond,
		BasePopulationGrowth: r.PopulationGrowthRate,
	}
	// 旧存档没有基础产出，只能拿最近一次结算值近似
	if r.BaseGoldPerSecond != nil {
		out.BaseGoldPerSecond = *r.BaseGoldPerSecond
	}
	if r.BasePopulationGrowth != nil {
		out.BasePopulationGrowth = *r.BasePopulationGrowth
	}
	out.Population = min(out.MaxPopulation, max(1, out.Population))
	return out
}

func buildingRecord(b *entity.Building) BuildingRecord {
	return BuildingRecord{
		ID:        b.ID,
		Type:      b.Kind,
		Level:     b.Level,
		Position:  b.Pos,
		Owner:     b.Owner,
		Health:    b.Health,
		MaxHealth: b.MaxHealth,
	}
}

func building(r BuildingRecord) *entity.Building {
	return &entity.Building{
		ID:        r.ID,
		Kind:      r.Type,
		Level:     max(1, r.Level),
		Pos:       r.Position,
		Owner:     r.Owner,
		Health:    r.Health,
		MaxHealth: r.MaxHealth,
	}
}

func shipRecords(in []*entity.Ship) []ShipRecord {
	out := make([]ShipRecord, 0, len(in))
	for _, s := range in {
		out = append(out, ShipRecord{
			ID:          s.ID,
			Type:        s.Kind,
			Position:    s.Pos,
			Owner:       s.Owner,
			Health:      s.Health,
			MaxHealth:   s.MaxHealth,
			Cargo:       s.Cargo,
			Destination: s.Destination,
			IsMoving:    s.Moving,
		})
	}
	return out
}

func ships(in []ShipRecord) []*entity.Ship {
	out := make([]*entity.Ship, 0, len(in))
	for _, r := range in {
		out = append(out, &entity.Ship{
			ID:          r.ID,
			Kind:        r.Type,
			Pos:         r.Position,
			Owner:       r.Owner,
			Health:      r.Health,
			MaxHealth:   r.MaxHealth,
			Cargo:       r.Cargo,
			Destination: r.Destination,
			Moving:      r.IsMoving,
		})
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func corrupt(reason app.Reason, cause error) error {
	return ErrCorruptSnapshot.WithReason(reason).WithCause(cause)
}

type envelope struct {
	Format   string `json:"format"`
	Version  int    `json:"version"`
	Checksum string `json:"checksum"`
	Payload  []byte `json:"payload"`
}

// Marshal 编码为 {format, version, checksum, payload}，payload 是 lz4 压缩后的 JSON 记录，
// checksum 是 payload 的 blake3 摘要。
func Marshal(state *entity.GameState) ([]byte, error) {
	if state == nil || state.Grid == nil {
		return nil, errors.New("codec: nil state")
	}
	raw, err := json.Marshal(ToRecord(state))
	if err != nil {
		return nil, fmt.Errorf("codec: encode record: %w", err)
	}
	payload, err := utils.CompressLZ4(raw)
	if err != nil {
		return nil, fmt.Errorf("codec: compress: %w", err)
	}
	return json.Marshal(envelope{
		Format:   Format,
		Version:  Version,
		Checksum: utils.HashBLAKE3(payload),
		Payload:  payload,
	})
}

// Unmarshal 任何格式问题都返回 ErrCorruptSnapshot。
func Unmarshal(blob []byte, now float64) (*entity.GameState, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, corrupt(app.ReasonSnapshotDecode, err)
	}
	if env.Format != Format || env.Version != Version {
		return nil, corrupt(app.ReasonSnapshotVersion, fmt.Errorf("%s v%d", env.Format, env.Version))
	}
	if utils.HashBLAKE3(env.Payload) != env.Checksum {
		return nil, corrupt(app.ReasonSnapshotChecksum, errors.New("checksum mismatch"))
	}
	raw, err := utils.DecompressLZ4(env.Payload)
	if err != nil {
		return nil, corrupt(app.ReasonSnapshotDecode, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, corrupt(app.ReasonSnapshotDecode, err)
	}
	return FromRecord(rec, now)
}

// LoadOrNew blob 为空时直接新开局；解码失败同样新开局，并把错误交给调用方记录。
func LoadOrNew(blob []byte, now float64, fresh func() *entity.GameState) (*entity.GameState, error) {
	if len(blob) == 0 {
		return fresh(), nil
	}
	state, err := Unmarshal(blob, now)
	if err != nil {
		return fresh(), err
	}
	return state, nil
}
