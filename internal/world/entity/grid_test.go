package entity

import "testing"

func TestGrid_Neighbors_枚举顺序与越界(t *testing.T) {
	g := NewGrid(5, 5)

	got := g.Neighbors(Position{X: 0, Y: 0}, 1)
	want := []Position{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	if len(got) != len(want) {
		t.Fatalf("期望角落半径1返回 %d 个格子, got=%d", len(want), len(got))
	}
	for i, p := range want {
		if got[i].Pos != p {
			t.Fatalf("第 %d 个格子期望 %v, got=%v", i, p, got[i].Pos)
		}
	}

	if n := len(g.Neighbors(Position{X: 2, Y: 2}, 2)); n != 25 {
		t.Fatalf("期望中心半径2返回 25 个格子, got=%d", n)
	}
	if g.Neighbors(Position{X: 2, Y: 2}, -1) != nil {
		t.Fatalf("期望负半径返回 nil")
	}
}

func TestGrid_IDOf_稠密下标(t *testing.T) {
	g := NewGrid(4, 3)
	id, ok := g.IDOf(Position{X: 3, Y: 2})
	if !ok || id != 11 {
		t.Fatalf("期望 (3,2) -> 11, got=%d ok=%v", id, ok)
	}
	if _, ok := g.IDOf(Position{X: 4, Y: 0}); ok {
		t.Fatalf("期望越界坐标无 id")
	}
	if g.Tile(12) != nil || g.Tile(-1) != nil {
		t.Fatalf("期望越界 id 返回 nil")
	}
}

func TestGrid_Clone_互不影响(t *testing.T) {
	g := NewGrid(3, 3)
	c := g.Clone()
	c.At(Position{X: 1, Y: 1}).Owner = "a"
	if g.At(Position{X: 1, Y: 1}).Owner != "" {
		t.Fatalf("期望修改克隆不影响原网格")
	}
}

func TestParseKey(t *testing.T) {
	p, ok := ParseKey("10-11")
	if !ok || p != (Position{X: 10, Y: 11}) {
		t.Fatalf("期望解析 10-11, got=%v ok=%v", p, ok)
	}
	if p.Key() != "10-11" {
		t.Fatalf("期望 Key 往返一致, got=%s", p.Key())
	}
	for _, bad := range []string{"", "10", "a-1", "1-b", "-1-2"} {
		if _, ok := ParseKey(bad); ok {
			t.Fatalf("期望 %q 解析失败", bad)
		}
	}
}

func TestGameState_Clone_深拷贝领土(t *testing.T) {
	g := NewGrid(2, 2)
	s := &GameState{Grid: g, Empires: []*Empire{{ID: "a", Territories: []TileID{0}}}}
	c := s.Clone()
	c.Empires[0].AddTerritory(1)
	c.Empires[0].Resources.Gold = 5
	if len(s.Empires[0].Territories) != 1 || s.Empires[0].Resources.Gold != 0 {
		t.Fatalf("期望克隆后修改不影响原状态, got=%+v", s.Empires[0])
	}
	if c.Empire("a") != c.Empires[0] || c.Empire("zz") != nil {
		t.Fatalf("期望 Empire 按 id 查找")
	}
}
