package actors

import (
	"OpenFront/internal/shared/actor/messages"
	"OpenFront/internal/shared/transport"
	"OpenFront/internal/world/app/port"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/service"
	"OpenFront/modules/kit/logx"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type GameID = entity.GameID

// Deps 对局 actor 共享的依赖。
// DefaultGame 首次访问即开局；其他对局只能由 HGCreate 创建。IdleTimeout 为 0 时对局常驻。
type Deps struct {
	Repo        port.GameRepository
	Games       *service.GameService
	TickEvery   time.Duration
	FlushEvery  time.Duration
	IdleTimeout time.Duration
	DefaultGame GameID
	Log         logx.Logger
}

// ManagerActor 只做路由：按对局 id 懒创建子 actor 并转发，不碰对局状态。
type ManagerActor struct {
	deps       Deps
	gameActors map[GameID]*actor.PID
	byPID      map[string]GameID
}

func NewManagerActor(deps Deps) *ManagerActor {
	deps.Log = logx.OrNop(deps.Log)
	return &ManagerActor{
		deps:       deps,
		gameActors: make(map[GameID]*actor.PID),
		byPID:      make(map[string]GameID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Terminated:
		// 子 actor 停掉后（初始化失败、对局不存在、空闲回收）下次请求重新创建
		if id, ok := m.byPID[msg.Who.String()]; ok {
			delete(m.byPID, msg.Who.String())
			delete(m.gameActors, id)
			m.deps.Log.Info("game actor terminated", zap.String("game", string(id)))
		}
	case messages.GameMessage:
		if msg == nil {
			ctx.Respond(fail(transport.InvalidParam, "nil request"))
			return
		}
		id := msg.GameID()
		if !service.ValidGameID(id) {
			ctx.Respond(fail(transport.NotFound, "invalid game id"))
			return
		}
		_, create := msg.(*messages.HGCreate)
		ctx.Forward(m.getOrSpawn(ctx, id, create || id == m.deps.DefaultGame))
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, gameID GameID, create bool) *actor.PID {
	if pid, ok := m.gameActors[gameID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewGameActor(gameID, m.deps, create)
	})
	pid := ctx.Spawn(props)
	ctx.Watch(pid)
	m.gameActors[gameID] = pid
	m.byPID[pid.String()] = gameID
	return pid
}
