package entity

// TileID 稠密下标：y*width + x。
type TileID int

type Tile struct {
	ID        TileID
	Pos       Position
	Terrain   Terrain
	Owner     EmpireID
	Resources int
	Building  *Building
	Visible   bool
}

func (t *Tile) IsWater() bool {
	return t.Terrain == TerrainWater
}

func (t *Tile) OwnedBy(id EmpireID) bool {
	return id != "" && t.Owner == id
}

// Building 建成后不再被修改，新旧 GameState 之间直接共享指针。
type Building struct {
	ID        string
	Kind      BuildingKind
	Level     int
	Pos       Position
	Owner     EmpireID
	Health    int
	MaxHealth int
}

// Grid 是 width*height 的格子阵列，按 TileID 顺序存放。
type Grid struct {
	width  int
	height int
	tiles  []Tile
}

// NewGrid 创建全陆地、无资源的网格，由生成器再填充地形和产出。
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{width: width, height: height, tiles: make([]Tile, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			id := TileID(y*width + x)
			g.tiles[id] = Tile{ID: id, Pos: Position{X: x, Y: y}, Terrain: TerrainLand, Visible: true}
		}
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) Len() int    { return len(g.tiles) }

func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func (g *Grid) IDOf(p Position) (TileID, bool) {
	if !g.InBounds(p) {
		return 0, false
	}
	return TileID(p.Y*g.width + p.X), true
}

// At 越界返回 nil。
func (g *Grid) At(p Position) *Tile {
	id, ok := g.IDOf(p)
	if !ok {
		return nil
	}
	return &g.tiles[id]
}

// Tile 按 id 取格子，不存在返回 nil。
func (g *Grid) Tile(id TileID) *Tile {
	if id < 0 || int(id) >= len(g.tiles) {
		return nil
	}
	return &g.tiles[id]
}

// Neighbors 返回以 p 为中心、半径 radius 的方形区域内所有格子（含中心），
// 枚举顺序 dx 外层、dy 内层，越界坐标跳过。
func (g *Grid) Neighbors(p Position, radius int) []*Tile {
	if radius < 0 {
		return nil
	}
	side := 2*radius + 1
	out := make([]*Tile, 0, side*side)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if t := g.At(Position{X: p.X + dx, Y: p.Y + dy}); t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// LandCount 非水域格子数量，胜利条件的分母。
func (g *Grid) LandCount() int {
	n := 0
	for i := range g.tiles {
		if !g.tiles[i].IsWater() {
			n++
		}
	}
	return n
}

// Clone 复制格子数组；Building 指针共享。
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	tiles := make([]Tile, len(g.tiles))
	copy(tiles, g.tiles)
	return &Grid{width: g.width, height: g.height, tiles: tiles}
}
