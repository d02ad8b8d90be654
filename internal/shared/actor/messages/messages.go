package messages

import (
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/sim"
)

// FailResp actor 侧拒绝请求时的应答，Code 为 transport 业务码。
type FailResp struct {
	Code    int
	Message string
	Err     error
}

// GameMessage 所有发往对局 actor 的请求都带对局 id，manager 据此路由。
type GameMessage interface {
	GameID() entity.GameID
}

type GameBaseMessage struct {
	Game entity.GameID
}

func (m GameBaseMessage) GameID() entity.GameID {
	return m.Game
}

// HGCreate 新开一局；对局已存在时原样返回当前状态。
type HGCreate struct {
	GameBaseMessage
}

// HGApply 执行一条玩家命令。
type HGApply struct {
	GameBaseMessage
	Command sim.Command
}

// HGSnapshot 读取当前状态。
type HGSnapshot struct {
	GameBaseMessage
}

// HGReset 丢弃当前对局，按配置重新开局。
type HGReset struct {
	GameBaseMessage
}

// HGFlush 立即把当前状态交给写回缓存。
type HGFlush struct {
	GameBaseMessage
}

// GHState 上述请求的应答。Changed 表示这次请求是否产生了新状态。
type GHState struct {
	State   *entity.GameState
	Changed bool
}

type GHFlushed struct{}

// GameStatePublished 对局发布新状态时投递到 actor system 的 EventStream。
// 订阅回调在对局 actor 协程里同步执行，不能阻塞。
type GameStatePublished struct {
	Game  entity.GameID
	State *entity.GameState
}
