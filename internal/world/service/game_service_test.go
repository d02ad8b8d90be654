package service

import (
	"testing"
	"time"

	"OpenFront/internal/world/codec"
	"OpenFront/internal/world/entity"
	"OpenFront/modules/kit/logx"
)

type seqIDs struct{ n int64 }

func (s *seqIDs) NextID() int64 {
	s.n++
	return s.n
}

func newService(seed int64) *GameService {
	s := NewGameService(GameConfig{Width: 80, Height: 60, Seed: seed, YieldMode: "random"}, &seqIDs{}, logx.Nop())
	s.clock = func() time.Time { return time.Unix(1000, 0) }
	return s
}

func TestNewGame_固定种子同一对局地图一致(t *testing.T) {
	s := newService(42)
	a := s.NewGame("g1", 0)
	b := s.NewGame("g1", 0)
	for i := 0; i < a.Grid.Len(); i++ {
		ta, tb := a.Grid.Tile(entity.TileID(i)), b.Grid.Tile(entity.TileID(i))
		if ta.Terrain != tb.Terrain || ta.Resources != tb.Resources {
			t.Fatalf("期望固定种子下地图一致, tile=%d", i)
		}
	}
	if len(a.Empires) != 7 || a.Phase != entity.PhasePlaying {
		t.Fatalf("期望 7 个帝国且对局进行中, got=%d %s", len(a.Empires), a.Phase)
	}
	if a.Grid.Width() != 80 || a.Grid.Height() != 60 {
		t.Fatalf("期望地图尺寸取自配置, got=%dx%d", a.Grid.Width(), a.Grid.Height())
	}
}

func TestRestore_无存档与坏存档都新开局(t *testing.T) {
	s := newService(7)
	if st, fresh := s.Restore("g1", nil, 5); !fresh || st == nil || st.LastUpdateTime != 5 {
		t.Fatalf("期望无存档时新开局, fresh=%v", fresh)
	}
	if st, fresh := s.Restore("g1", []byte("garbage"), 5); !fresh || st == nil {
		t.Fatalf("期望坏存档时新开局, fresh=%v", fresh)
	}
}

func TestRestore_正常读档(t *testing.T) {
	s := newService(7)
	orig := s.NewGame("g1", 0)
	orig.GameTime = 123
	blob, err := codec.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal err=%v", err)
	}
	st, fresh := s.Restore("g1", blob, 9)
	if fresh || st.GameTime != 123 || st.LastUpdateTime != 9 {
		t.Fatalf("期望读回存档, fresh=%v gameTime=%v last=%v", fresh, st.GameTime, st.LastUpdateTime)
	}
}

func TestValidGameID(t *testing.T) {
	for _, id := range []entity.GameID{"default", "a-b_c", "0f8fad5b-d9cb-469f-a165-70867728950e"} {
		if !ValidGameID(id) {
			t.Fatalf("期望 %q 合法", id)
		}
	}
	for _, id := range []entity.GameID{"", "a/b", "x y"} {
		if ValidGameID(id) {
			t.Fatalf("期望 %q 非法", id)
		}
	}
}

func TestNewSimulation_tick推进(t *testing.T) {
	s := newService(1)
	state := s.NewGame("g1", 0)
	sm := s.NewSimulation("g1", state)
	next, changed := sm.Tick(1)
	if !changed || next.GameTime <= 0 {
		t.Fatalf("期望 tick 推进游戏时间, changed=%v gameTime=%v", changed, next.GameTime)
	}
}
