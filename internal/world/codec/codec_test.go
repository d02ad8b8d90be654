package codec

import (
	"encoding/json"
	"errors"
	"math/rand"
	"slices"
	"testing"

	"OpenFront/internal/shared/utils"
	"OpenFront/internal/world/app"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/grid"
	"OpenFront/internal/world/sim"
)

type seqIDs struct{ n int64 }

func (s *seqIDs) NextID() int64 {
	s.n++
	return s.n
}

func playedState(t *testing.T) *entity.GameState {
	t.Helper()
	s := sim.NewGame(entity.Size{}, grid.RandomYields(rand.New(rand.NewSource(3))), 0)
	env := sim.Env{IDs: &seqIDs{}}
	s = sim.Dispatch(s, sim.Build{Empire: sim.HumanEmpireID, Tile: entity.Position{X: 14, Y: 24}, Building: entity.BuildingFarm}, 0, env)
	s = sim.Dispatch(s, sim.CaptureTile{Empire: sim.HumanEmpireID, Tile: entity.Position{X: 18, Y: 25}}, 5, env)
	s = sim.Dispatch(s, sim.SelectTile{Empire: sim.HumanEmpireID, Tile: entity.Position{X: 18, Y: 25}}, 5, env)
	s = sim.Tick(s, 6, env)
	return s
}

func TestMarshal_往返保持归属与资源(t *testing.T) {
	src := playedState(t)
	blob, err := Marshal(src)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	got, err := Unmarshal(blob, 999)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}

	if got.LastUpdateTime != 999 {
		t.Fatalf("期望加载后 LastUpdateTime 被覆盖, got=%v", got.LastUpdateTime)
	}
	if got.GameTime != src.GameTime || got.Phase != src.Phase || got.GameSpeed != src.GameSpeed {
		t.Fatalf("标量字段不一致: got=%v/%s/%v", got.GameTime, got.Phase, got.GameSpeed)
	}
	if got.SelectedTile == nil || *got.SelectedTile != *src.SelectedTile {
		t.Fatalf("选中格子不一致")
	}
	for i := 0; i < src.Grid.Len(); i++ {
		a, b := src.Grid.Tile(entity.TileID(i)), got.Grid.Tile(entity.TileID(i))
		if a.Owner != b.Owner || a.Terrain != b.Terrain || a.Resources != b.Resources {
			t.Fatalf("格子 %v 不一致: %+v vs %+v", a.Pos, a, b)
		}
		if (a.Building == nil) != (b.Building == nil) {
			t.Fatalf("格子 %v 建筑不一致", a.Pos)
		}
	}
	for i, e := range src.Empires {
		g := got.Empires[i]
		if g.ID != e.ID || !slices.Equal(g.Territories, e.Territories) {
			t.Fatalf("%s 领土不一致: %v vs %v", e.ID, g.Territories, e.Territories)
		}
		if g.Resources != e.Resources {
			t.Fatalf("%s 资源不一致: %+v vs %+v", e.ID, g.Resources, e.Resources)
		}
		if len(g.Buildings) != len(e.Buildings) {
			t.Fatalf("%s 建筑数量不一致", e.ID)
		}
	}

	p := got.Empire(sim.HumanEmpireID)
	city := got.Grid.At(entity.Position{X: 15, Y: 25}).Building
	if !slices.Contains(p.Buildings, city) {
		t.Fatalf("期望帝国建筑列表与格子共用同一个建筑指针")
	}
}

func TestFromRecord_以格子归属重建领土(t *testing.T) {
	rec := ToRecord(playedState(t))
	// 领土列表被写乱：重复、错误归属、漏记
	rec.Players[0].Territories = append([]string{"79-59", "15-25"}, rec.Players[0].Territories[2:]...)
	rec.Players[0].Territories = append(rec.Players[0].Territories, "15-25")

	got, err := FromRecord(rec, 0)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	seen := make(map[entity.TileID]bool)
	for _, e := range got.Empires {
		for _, id := range e.Territories {
			if seen[id] || got.Grid.Tile(id).Owner != e.ID {
				t.Fatalf("领土与归属不一致: %s tile=%d", e.ID, id)
			}
			seen[id] = true
		}
	}
	for i := 0; i < got.Grid.Len(); i++ {
		tile := got.Grid.Tile(entity.TileID(i))
		if tile.Owner != "" && !seen[tile.ID] {
			t.Fatalf("格子 %v 有主但不在领土列表", tile.Pos)
		}
	}
}

func TestFromRecord_丢弃不合法的建筑(t *testing.T) {
	rec := ToRecord(playedState(t))
	human := sim.HumanEmpireID

	var free []int
	for i, entry := range rec.Tiles {
		tr := entry.Tile
		if tr.Owner != nil && *tr.Owner == human && tr.Building == nil {
			free = append(free, i)
		}
	}
	if len(free) < 3 {
		t.Fatalf("期望人类帝国至少有三块空地, got=%d", len(free))
	}

	// 内陆格子上的港口
	port := &rec.Tiles[free[0]]
	port.Tile.Type = entity.TerrainLand
	port.Tile.Building = &BuildingRecord{ID: "port-x", Type: entity.BuildingPort, Level: 1, Owner: human, Health: 100, MaxHealth: 100}
	// 不存在的帝国名下的建筑
	orphan := &rec.Tiles[free[1]]
	orphan.Tile.Type = entity.TerrainLand
	orphan.Tile.Building = &BuildingRecord{ID: "orphan-x", Type: entity.BuildingFarm, Level: 1, Owner: "atlantis", Health: 100, MaxHealth: 100}
	// 被占领格子上的原主建筑，并且原主列表里漏记
	kept := &rec.Tiles[free[2]]
	kept.Tile.Type = entity.TerrainLand
	kept.Tile.Building = &BuildingRecord{ID: "farm-ai1", Type: entity.BuildingFarm, Level: 1, Owner: "ai1", Health: 100, MaxHealth: 100}
	// 人类列表里有、格子上没有或不归自己的建筑
	rec.Players[0].Buildings = append(rec.Players[0].Buildings,
		BuildingRecord{ID: "port-x", Type: entity.BuildingPort, Owner: human},
		BuildingRecord{ID: "ghost", Type: entity.BuildingCity, Owner: human},
		BuildingRecord{ID: "farm-ai1", Type: entity.BuildingFarm, Owner: "ai1"},
	)

	got, err := FromRecord(rec, 0)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	for _, key := range []string{port.Key, orphan.Key} {
		pos, _ := entity.ParseKey(key)
		if b := got.Grid.At(pos).Building; b != nil {
			t.Fatalf("期望格子 %s 上的非法建筑被丢弃, got=%+v", key, b)
		}
	}
	for _, e := range got.Empires {
		for _, b := range e.Buildings {
			if b.ID == "port-x" || b.ID == "orphan-x" || b.ID == "ghost" {
				t.Fatalf("%s 保留了非法建筑 %s", e.ID, b.ID)
			}
			if b.Owner != e.ID || got.Grid.At(b.Pos).Building != b {
				t.Fatalf("%s 的建筑 %s 与格子不一致", e.ID, b.ID)
			}
		}
	}

	keptPos, _ := entity.ParseKey(kept.Key)
	farm := got.Grid.At(keptPos).Building
	if farm == nil || farm.Owner != "ai1" || !slices.Contains(got.Empire("ai1").Buildings, farm) {
		t.Fatalf("期望被占领格子上的建筑仍归原主并补进原主列表, got=%+v", farm)
	}
	if slices.Contains(got.Empire(human).Buildings, farm) {
		t.Fatalf("期望格子新主人的列表里没有原主建筑")
	}
	city := got.Grid.At(entity.Position{X: 15, Y: 25}).Building
	if city == nil || !slices.Contains(got.Empire(human).Buildings, city) {
		t.Fatalf("期望合法的起始城市保留")
	}
}

func TestUnmarshal_损坏快照(t *testing.T) {
	blob, err := Marshal(playedState(t))
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		t.Fatalf("信封解码失败: %v", err)
	}
	env.Payload[len(env.Payload)/2] ^= 0xff
	tampered, _ := json.Marshal(env)

	missing, _ := json.Marshal(map[string]any{"gameTime": 1, "tiles": []any{}})
	noPlayersPayload, _ := json.Marshal(map[string]any{"gameTime": 1})

	cases := []struct {
		name   string
		blob   []byte
		reason string
	}{
		{"非 JSON", []byte("garbage"), app.ReasonSnapshotDecode.Code},
		{"校验和不符", tampered, app.ReasonSnapshotChecksum.Code},
		{"格式不符", mustEnvelope(t, "other", Version, missing), app.ReasonSnapshotVersion.Code},
		{"缺 players", mustEnvelope(t, Format, Version, missing), app.ReasonSnapshotFields.Code},
		{"缺 tiles", mustEnvelope(t, Format, Version, noPlayersPayload), app.ReasonSnapshotFields.Code},
	}
	for _, c := range cases {
		_, err := Unmarshal(c.blob, 0)
		if !errors.Is(err, ErrCorruptSnapshot) {
			t.Fatalf("%s: 期望 ErrCorruptSnapshot, got=%v", c.name, err)
		}
		if app.GetErrorReasonCode(err) != c.reason {
			t.Fatalf("%s: 期望 reason=%s, got=%s", c.name, c.reason, app.GetErrorReasonCode(err))
		}
	}
}

func mustEnvelope(t *testing.T, format string, version int, raw []byte) []byte {
	t.Helper()
	payload, err := utils.CompressLZ4(raw)
	if err != nil {
		t.Fatalf("压缩失败: %v", err)
	}
	b, _ := json.Marshal(envelope{Format: format, Version: version, Checksum: utils.HashBLAKE3(payload), Payload: payload})
	return b
}

func TestFromRecord_键值对格式(t *testing.T) {
	raw := `{
		"gameTime": 12,
		"lastUpdateTime": 1,
		"players": [{"id":"player","name":"Player","isAI":false,"actionCooldown":2,
			"resources":{"gold":10,"population":5,"maxPopulation":30,"militaryRatio":0.3,"goldPerSecond":2.2,"populationGrowthRate":0.6},
			"territories":["0-0"],"buildings":[],"ships":[]}],
		"tiles": [
			["0-0", {"id":"0-0","position":{"x":0,"y":0},"type":"coast","owner":"player","resources":2,"building":null,"isVisible":true}],
			["1-0", {"id":"1-0","position":{"x":1,"y":0},"type":"water","owner":"player","resources":3,"building":null,"isVisible":true}]
		],
		"ships": [],
		"selectedTile": null,
		"selectedShip": null,
		"gamePhase": "playing",
		"winner": null,
		"mapSize": {"width":2,"height":1},
		"camera": {"x":0,"y":0,"zoom":1},
		"gameSpeed": 1,
		"isPaused": false
	}`
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("记录解码失败: %v", err)
	}
	got, err := FromRecord(rec, 50)
	if err != nil {
		t.Fatalf("重建失败: %v", err)
	}
	water := got.Grid.At(entity.Position{X: 1, Y: 0})
	if water.Owner != "" || water.Resources != 0 {
		t.Fatalf("期望水域清除归属与资源, got=%+v", water)
	}
	p := got.Empire("player")
	if len(p.Territories) != 1 || p.Resources.BaseGoldPerSecond != 2.2 {
		t.Fatalf("期望旧存档以结算值作为基础产出, got=%+v", p.Resources)
	}
	if got.SelectedTile != nil || got.Winner != nil || got.LastUpdateTime != 50 {
		t.Fatalf("可选字段处理不对")
	}
}

func TestLoadOrNew(t *testing.T) {
	fresh := &entity.GameState{}
	newFn := func() *entity.GameState { return fresh }

	if got, err := LoadOrNew(nil, 0, newFn); err != nil || got != fresh {
		t.Fatalf("期望空 blob 直接新开局")
	}
	got, err := LoadOrNew([]byte("garbage"), 0, newFn)
	if got != fresh || !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("期望损坏快照回退新开局并返回错误, err=%v", err)
	}
	blob, _ := Marshal(playedState(t))
	if got, err := LoadOrNew(blob, 0, newFn); err != nil || got == fresh {
		t.Fatalf("期望正常快照被加载, err=%v", err)
	}
}
