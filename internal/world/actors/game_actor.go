package actors

import (
	"OpenFront/internal/shared/actor/messages"
	"OpenFront/internal/shared/transport"
	"OpenFront/internal/world/dc"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/sim"
	"OpenFront/modules/kit/logx"
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const (
	defaultTickEvery = 100 * time.Millisecond
	loadTimeout      = 5 * time.Second
	closeTimeout     = 3 * time.Second
	flushTimeout     = time.Second
	missingLinger    = time.Second
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

// GameActor 一局游戏的唯一写者：tick、命令、重开、落库都经过它的邮箱串行执行。
type GameActor struct {
	state      State
	gameID     GameID
	deps       Deps
	dc         *dc.GameDC
	sim        *sim.Simulation
	dispatcher *Dispatcher
	log        logx.Logger
	loopStop   chan struct{}

	// create 为 false 且没有存档时对局不存在，只接受 HGCreate
	create  bool
	missing bool
}

type simTick struct{}

func (simTick) NotInfluenceReceiveTimeout() {}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

func NewGameActor(gameID GameID, deps Deps, create bool) *GameActor {
	log := logx.OrNop(deps.Log).With(zap.String("game", string(gameID)))
	return &GameActor{
		state:      None,
		gameID:     gameID,
		deps:       deps,
		dc:         dc.NewGameDC(deps.Repo, gameID, deps.FlushEvery, log),
		dispatcher: NewDispatcher(),
		log:        log,
		create:     create,
	}
}

func (p *GameActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.stopLoops()
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := p.dc.Close(closeCtx); err != nil {
			p.log.Error("game dc close failed", zap.Error(err))
		}
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopLoops()
		p.state = Offline
		return
	case *actor.Restarting:
		p.stopLoops()
		p.state = Init
		return
	case *actor.ReceiveTimeout:
		if !p.missing {
			p.log.Info("game idle, stopping", zap.Duration("idle", p.deps.IdleTimeout))
		}
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	case simTick:
		if p.state != Online {
			return
		}
		if next, changed := p.sim.Tick(p.now()); changed {
			p.publish(ctx, next)
		}
		return
	case flushTick:
		if p.state != Online {
			return
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := p.dc.Flush(flushCtx); err != nil {
			p.log.Error("game periodic flush failed", zap.Error(err))
		}
		return
	case messages.GameMessage:
		if msg == nil {
			ctx.Respond(fail(transport.InvalidParam, "nil request"))
			return
		}

		if p.missing {
			p.onMissing(ctx, msg)
			return
		}
		if p.state != Online {
			ctx.Respond(fail(transport.Unavailable, "game not online"))
			return
		}

		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *GameActor) init(ctx actor.Context) {
	loadCtx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	blob, err := p.dc.Load(loadCtx)
	if err != nil {
		p.log.Error("game snapshot load failed", zap.Error(err))
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}

	if len(blob) == 0 && !p.create {
		// 不存在的对局只短暂保留，等不到 HGCreate 就停掉
		p.missing = true
		ctx.SetReceiveTimeout(missingLinger)
		return
	}
	state, fresh := p.deps.Games.Restore(p.gameID, blob, p.now())
	p.online(ctx, state, fresh)
}

// onMissing 对局不存在：HGCreate 开新局，其余请求回 NotFound。
func (p *GameActor) onMissing(ctx actor.Context, msg messages.GameMessage) {
	if _, ok := msg.(*messages.HGCreate); !ok {
		ctx.Respond(fail(transport.NotFound, "game not found"))
		return
	}
	p.missing = false
	ctx.CancelReceiveTimeout()
	p.online(ctx, p.deps.Games.NewGame(p.gameID, p.now()), true)
	p.dispatcher.Dispatch(ctx, p, msg)
}

func (p *GameActor) online(ctx actor.Context, state *entity.GameState, fresh bool) {
	p.sim = p.deps.Games.NewSimulation(p.gameID, state)
	if fresh {
		// 新局立即进入待落库
		p.dc.Track(state)
	} else {
		p.dc.MarkSaved(state)
	}
	p.state = Online
	p.log.Info("game online", zap.Bool("fresh", fresh), zap.Float64("game_time", state.GameTime))
	p.startLoops(ctx)
	if p.deps.IdleTimeout > 0 {
		ctx.SetReceiveTimeout(p.deps.IdleTimeout)
	}
}

func (p *GameActor) now() float64 {
	return p.deps.Games.Now()
}

// publish 登记待落库并广播给订阅者。
func (p *GameActor) publish(ctx actor.Context, state *entity.GameState) {
	p.dc.Track(state)
	ctx.ActorSystem().EventStream.Publish(&messages.GameStatePublished{Game: p.gameID, State: state})
}

func (p *GameActor) GameID() GameID {
	return p.gameID
}

func (p *GameActor) Sim() *sim.Simulation {
	return p.sim
}

func (p *GameActor) DC() *dc.GameDC {
	return p.dc
}

// startLoops 两个 ticker 共用一个 goroutine，只往自己的邮箱投递消息。
func (p *GameActor) startLoops(ctx actor.Context) {
	if p.loopStop != nil {
		return
	}
	tickEvery := p.deps.TickEvery
	if tickEvery <= 0 {
		tickEvery = defaultTickEvery
	}
	flushEvery := p.dc.FlushEvery()

	p.loopStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	go func(stop <-chan struct{}) {
		tick := time.NewTicker(tickEvery)
		defer tick.Stop()
		flush := time.NewTicker(flushEvery)
		defer flush.Stop()
		for {
			select {
			case <-tick.C:
				root.Send(self, simTick{})
			case <-flush.C:
				root.Send(self, flushTick{})
			case <-stop:
				return
			}
		}
	}(p.loopStop)
}

func (p *GameActor) stopLoops() {
	if p.loopStop == nil {
		return
	}
	close(p.loopStop)
	p.loopStop = nil
}
