package entity

import "slices"

type Size struct {
	Width  int
	Height int
}

type Camera struct {
	X    float64
	Y    float64
	Zoom float64
}

// GameState 一旦发布即视为不可变：tick 和命令都基于 Clone 产生新值。
type GameState struct {
	GameTime       float64
	LastUpdateTime float64
	Empires        []*Empire
	Grid           *Grid
	Ships          []*Ship
	SelectedTile   *TileID
	SelectedShip   *string
	Phase          Phase
	Winner         *EmpireID
	MapSize        Size
	Camera         Camera
	GameSpeed      float64
	Paused         bool
}

// Empire 按 id 查找，找不到返回 nil。
func (s *GameState) Empire(id EmpireID) *Empire {
	if s == nil || id == "" {
		return nil
	}
	for _, e := range s.Empires {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *GameState) Running() bool {
	return s != nil && s.Phase == PhasePlaying && !s.Paused
}

func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Grid = s.Grid.Clone()
	c.Empires = make([]*Empire, len(s.Empires))
	for i, e := range s.Empires {
		c.Empires[i] = e.Clone()
	}
	c.Ships = slices.Clone(s.Ships)
	if s.SelectedTile != nil {
		v := *s.SelectedTile
		c.SelectedTile = &v
	}
	if s.SelectedShip != nil {
		v := *s.SelectedShip
		c.SelectedShip = &v
	}
	if s.Winner != nil {
		v := *s.Winner
		c.Winner = &v
	}
	return &c
}
