package actors

import (
	"OpenFront/internal/shared/actor/messages"
	"OpenFront/internal/shared/transport"
	"reflect"

	"github.com/asynkron/protoactor-go/actor"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, GH.HandleCreate)
	register(d, GH.HandleApply)
	register(d, GH.HandleSnapshot)
	register(d, GH.HandleReset)
	register(d, GH.HandleFlush)
}

func register[Req any](
	d *Dispatcher,
	fn func(ctx actor.Context, p *GameActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, p *GameActor, req messages.GameMessage) {
	if req == nil {
		ctx.Respond(fail(transport.InvalidParam, "nil req"))
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		ctx.Respond(fail(transport.InvalidParam, "no handler for "+bodyType.String()))
		return
	}

	if bodyType != handler.reqType {
		ctx.Respond(fail(transport.InvalidParam, "request body type mismatch"))
		return
	}

	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(p),
		reflect.ValueOf(req),
	})
}

func fail(code int, msg string) *messages.FailResp {
	return &messages.FailResp{Code: code, Message: msg}
}
