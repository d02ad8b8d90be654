package sim

import "OpenFront/internal/world/entity"

// Simulation 持有当前状态，只能被单个 goroutine（对局 actor）使用。
type Simulation struct {
	state *entity.GameState
	env   Env
}

func New(state *entity.GameState, env Env) *Simulation {
	return &Simulation{state: state, env: env}
}

// State 当前已发布的状态，调用方不得修改。
func (s *Simulation) State() *entity.GameState {
	return s.state
}

// Tick 返回推进后的状态以及状态是否发生了变化。
func (s *Simulation) Tick(now float64) (*entity.GameState, bool) {
	next := Tick(s.state, now, s.env)
	changed := next != s.state
	s.state = next
	return next, changed
}

func (s *Simulation) Apply(cmd Command, now float64) (*entity.GameState, bool) {
	next := Dispatch(s.state, cmd, now, s.env)
	changed := next != s.state
	s.state = next
	return next, changed
}

// Reset 整体替换状态，进行中的对局直接丢弃。
func (s *Simulation) Reset(state *entity.GameState) {
	s.state = state
}
