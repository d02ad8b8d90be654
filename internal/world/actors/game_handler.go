package actors

import (
	"OpenFront/internal/shared/actor/messages"
	"OpenFront/internal/shared/transport"
	"context"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type GameHandler struct{}

var GH = &GameHandler{}

func (h *GameHandler) HandleCreate(ctx actor.Context, p *GameActor, req *messages.HGCreate) {
	ctx.Respond(&messages.GHState{State: p.sim.State()})
}

func (h *GameHandler) HandleApply(ctx actor.Context, p *GameActor, req *messages.HGApply) {
	if req == nil || req.Command == nil {
		ctx.Respond(fail(transport.InvalidParam, "request parameter error"))
		return
	}
	next, changed := p.sim.Apply(req.Command, p.now())
	if changed {
		p.publish(ctx, next)
	}
	ctx.Respond(&messages.GHState{State: next, Changed: changed})
}

func (h *GameHandler) HandleSnapshot(ctx actor.Context, p *GameActor, req *messages.HGSnapshot) {
	ctx.Respond(&messages.GHState{State: p.sim.State()})
}

func (h *GameHandler) HandleReset(ctx actor.Context, p *GameActor, req *messages.HGReset) {
	now := p.now()
	fresh := p.deps.Games.NewGame(p.gameID, now)
	p.sim.Reset(fresh)
	p.log.Info("game reset")
	p.publish(ctx, fresh)
	ctx.Respond(&messages.GHState{State: fresh, Changed: true})
}

func (h *GameHandler) HandleFlush(ctx actor.Context, p *GameActor, req *messages.HGFlush) {
	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.dc.Flush(flushCtx); err != nil {
		p.log.Error("game flush failed", zap.Error(err))
		ctx.Respond(&messages.FailResp{Code: transport.Unavailable, Message: "flush failed", Err: err})
		return
	}
	ctx.Respond(&messages.GHFlushed{})
}
