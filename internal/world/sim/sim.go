// Package sim 对局推进：tick 调度、玩家命令、胜负判定。
// 所有函数都把入参 state 当作不可变值，需要修改时先 Clone 再改，拒绝时原样返回同一个指针。
package sim

import (
	"fmt"
	"math"

	"OpenFront/internal/world/ai"
	"OpenFront/internal/world/capture"
	"OpenFront/internal/world/construction"
	"OpenFront/internal/world/economy"
	"OpenFront/internal/world/entity"
	"OpenFront/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	// minTickDelta 模拟时间不足 0.1 秒时推迟本次 tick。
	minTickDelta = 0.1

	DefaultMinSpeed = 0.5
	DefaultMaxSpeed = 8
)

// Env tick 与命令处理的外部依赖。
type Env struct {
	AI       *ai.Engine
	IDs      construction.IDGenerator
	Log      logx.Logger
	MinSpeed float64
	MaxSpeed float64
}

func (env Env) log() logx.Logger {
	return logx.OrNop(env.Log)
}

func (env Env) speedRange() (float64, float64) {
	lo, hi := env.MinSpeed, env.MaxSpeed
	if lo <= 0 {
		lo = DefaultMinSpeed
	}
	if hi < lo {
		hi = max(lo, DefaultMaxSpeed)
	}
	return lo, hi
}

// Tick 推进到 now（秒）。未开局、已结束、暂停或模拟时间不足 0.1 秒时返回原 state。
func Tick(state *entity.GameState, now float64, env Env) *entity.GameState {
	if !state.Running() || state.Grid == nil {
		return state
	}
	dt := (now - state.LastUpdateTime) * state.GameSpeed
	if dt < minTickDelta {
		return state
	}

	next := state.Clone()
	next.GameTime += dt
	next.LastUpdateTime = now
	for _, e := range next.Empires {
		economy.Advance(e, next.Grid, dt)
	}
	if env.AI != nil {
		for _, e := range next.Empires {
			if e.IsAI {
				env.AI.Act(next, e, now)
			}
		}
	}
	if w := winner(next); w != nil {
		id := w.ID
		next.Phase = entity.PhaseEnded
		next.Winner = &id
		env.log().Info("game ended",
			zap.String("winner", string(id)),
			zap.Float64("game_time", next.GameTime),
		)
	}
	return next
}

// winner 按列表顺序返回第一个占满全部陆地的帝国；地图没有陆地时不判胜。
func winner(state *entity.GameState) *entity.Empire {
	land := state.Grid.LandCount()
	if land == 0 {
		return nil
	}
	for _, e := range state.Empires {
		if len(e.Territories) >= land {
			return e
		}
	}
	return nil
}

// Dispatch 应用一条命令。行动方不存在、规则不满足或命令未知时返回原 state。
func Dispatch(state *entity.GameState, cmd Command, now float64, env Env) *entity.GameState {
	if state == nil || state.Grid == nil || cmd == nil {
		return state
	}
	switch c := cmd.(type) {
	case SelectTile:
		return selectTile(state, c, env)
	case CaptureTile:
		return captureTile(state, c, now, env)
	case Build:
		return build(state, c, env)
	case PauseGame:
		return pause(state, c, now, env)
	case SetSpeed:
		return setSpeed(state, c, env)
	default:
		env.log().Warn("unknown command",
			zap.String("type", cmd.Type()),
			zap.String("go_type", fmt.Sprintf("%T", cmd)),
			zap.String("empire", string(cmd.Actor())),
		)
		return state
	}
}

// shallow 只改标量字段时使用，网格与帝国仍和旧状态共享。
func shallow(state *entity.GameState) *entity.GameState {
	c := *state
	return &c
}

func reject(env Env, cmd Command, reason string) {
	env.log().Debug("command rejected",
		zap.String("type", cmd.Type()),
		zap.String("empire", string(cmd.Actor())),
		zap.String("reason", reason),
	)
}

func selectTile(state *entity.GameState, c SelectTile, env Env) *entity.GameState {
	if state.Empire(c.Empire) == nil {
		reject(env, c, "empire not found")
		return state
	}
	id, ok := state.Grid.IDOf(c.Tile)
	if !ok {
		reject(env, c, "tile out of bounds")
		return state
	}
	next := shallow(state)
	next.SelectedTile = &id
	next.SelectedShip = nil
	return next
}

func captureTile(state *entity.GameState, c CaptureTile, now float64, env Env) *entity.GameState {
	e := state.Empire(c.Empire)
	if e == nil {
		reject(env, c, "empire not found")
		return state
	}
	if state.Phase != entity.PhasePlaying {
		reject(env, c, "game not playing")
		return state
	}
	if !e.IsAI && !e.CooledDown(now) {
		reject(env, c, "cooldown")
		return state
	}
	center := state.Grid.At(c.Tile)
	if center == nil || center.IsWater() {
		reject(env, c, "bad tile")
		return state
	}
	// 先在旧状态上只读试算，没有可占格子就不复制。
	if len(capture.Area(center, e, state.Grid)) == 0 {
		reject(env, c, "nothing to capture")
		return state
	}

	next := state.Clone()
	ne := next.Empire(c.Empire)
	n := capture.Resolve(next, ne, center.ID)
	if n == 0 {
		return state
	}
	ne.LastActionTime = now
	env.log().Debug("tile captured",
		zap.String("empire", string(ne.ID)),
		zap.String("center", c.Tile.Key()),
		zap.Int("captured", n),
	)
	return next
}

func build(state *entity.GameState, c Build, env Env) *entity.GameState {
	e := state.Empire(c.Empire)
	if e == nil {
		reject(env, c, "empire not found")
		return state
	}
	if state.Phase != entity.PhasePlaying {
		reject(env, c, "game not playing")
		return state
	}
	t := state.Grid.At(c.Tile)
	if !construction.CanBuildOn(t, c.Building, e) {
		reject(env, c, "illegal tile")
		return state
	}
	if !construction.Affordable(e, c.Building) {
		reject(env, c, "insufficient gold")
		return state
	}

	next := state.Clone()
	b := construction.Construct(next.Grid.Tile(t.ID), c.Building, next.Empire(c.Empire), env.IDs)
	if b == nil {
		return state
	}
	env.log().Debug("building constructed",
		zap.String("empire", string(c.Empire)),
		zap.String("building", b.ID),
	)
	return next
}

func pause(state *entity.GameState, c PauseGame, now float64, env Env) *entity.GameState {
	if state.Empire(c.Empire) == nil {
		reject(env, c, "empire not found")
		return state
	}
	next := shallow(state)
	next.Paused = !state.Paused
	if !next.Paused {
		// 恢复时重置基准时间，暂停期间的真实时间不计入模拟。
		next.LastUpdateTime = now
	}
	return next
}

func setSpeed(state *entity.GameState, c SetSpeed, env Env) *entity.GameState {
	if state.Empire(c.Empire) == nil {
		reject(env, c, "empire not found")
		return state
	}
	if math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) || c.Speed <= 0 {
		reject(env, c, "invalid speed")
		return state
	}
	lo, hi := env.speedRange()
	next := shallow(state)
	next.GameSpeed = min(max(c.Speed, lo), hi)
	return next
}
