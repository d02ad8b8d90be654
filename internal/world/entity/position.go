package entity

import (
	"fmt"
	"strconv"
	"strings"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key 是快照里使用的外部 tile key："x-y"。
func (p Position) Key() string {
	return strconv.Itoa(p.X) + "-" + strconv.Itoa(p.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan 曼哈顿距离。
func (p Position) Manhattan(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// ParseKey 解析 "x-y"，坐标本身不会是负数。
func ParseKey(key string) (Position, bool) {
	xs, ys, ok := strings.Cut(key, "-")
	if !ok {
		return Position{}, false
	}
	x, err := strconv.Atoi(xs)
	if err != nil || x < 0 {
		return Position{}, false
	}
	y, err := strconv.Atoi(ys)
	if err != nil || y < 0 {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
