package actor

import (
	"OpenFront/internal/shared/actor/messages"
	"OpenFront/internal/shared/transport"
	"OpenFront/internal/world/actors"
	"OpenFront/internal/world/app"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/sim"
	"context"
	"errors"
	"sync"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
)

const defaultAskTimeout = 3 * time.Second

type RuntimeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Options 即对局 actor 的依赖。
type Options = actors.Deps

type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration

	stopOnce sync.Once
}

func NewRuntime(opts Options, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	/**
	ActorSystem 相当于容器/运行时环境：管理 PID、调度、邮箱、系统消息，以及 EventStream。
	root 是系统外部对 actor 的操作入口（Spawn/Send/Request/Stop）。
	manager 只做路由和查表，对局 actor 才持有状态。
	*/
	system := protoactor.NewActorSystem()
	root := system.Root
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(opts)
	})
	manager := root.Spawn(managerProps)

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

// Create 新开一局；id 已有对局时返回它的当前状态。
func (r *Runtime) Create(ctx context.Context, gameID entity.GameID) (*entity.GameState, error) {
	st, err := r.askState(ctx, &messages.HGCreate{GameBaseMessage: messages.GameBaseMessage{Game: gameID}})
	if err != nil {
		return nil, err
	}
	return st.State, nil
}

// Apply 把命令投递给对局 actor，返回处理后的状态和是否发生变化。
func (r *Runtime) Apply(ctx context.Context, gameID entity.GameID, cmd sim.Command) (*entity.GameState, bool, error) {
	if cmd == nil {
		return nil, false, &RuntimeError{Code: transport.InvalidParam, Message: "command is nil", Cause: app.ErrInvalidCommand}
	}
	msg := &messages.HGApply{GameBaseMessage: messages.GameBaseMessage{Game: gameID}, Command: cmd}
	st, err := r.askState(ctx, msg)
	if err != nil {
		return nil, false, err
	}
	return st.State, st.Changed, nil
}

// Snapshot 读取对局当前状态；对局未加载时先从存档加载，没有存档返回 NotFound。
func (r *Runtime) Snapshot(ctx context.Context, gameID entity.GameID) (*entity.GameState, error) {
	st, err := r.askState(ctx, &messages.HGSnapshot{GameBaseMessage: messages.GameBaseMessage{Game: gameID}})
	if err != nil {
		return nil, err
	}
	return st.State, nil
}

// Reset 丢弃当前对局并重新开局。
func (r *Runtime) Reset(ctx context.Context, gameID entity.GameID) (*entity.GameState, error) {
	st, err := r.askState(ctx, &messages.HGReset{GameBaseMessage: messages.GameBaseMessage{Game: gameID}})
	if err != nil {
		return nil, err
	}
	return st.State, nil
}

// Flush 立即把对局最新状态交给后台写库。
func (r *Runtime) Flush(ctx context.Context, gameID entity.GameID) error {
	res, err := r.request(r.manager, &messages.HGFlush{GameBaseMessage: messages.GameBaseMessage{Game: gameID}}, r.timeoutFromContext(ctx))
	if err != nil {
		return err
	}
	if _, ok := res.(*messages.GHFlushed); ok {
		return nil
	}
	return failError(res)
}

// Subscribe 订阅对局发布的新状态，返回取消函数。
// fn 在对局 actor 协程里同步调用，必须立即返回。
func (r *Runtime) Subscribe(gameID entity.GameID, fn func(*entity.GameState)) (unsubscribe func()) {
	if r == nil || r.system == nil || fn == nil {
		return func() {}
	}
	es := r.system.EventStream
	sub := es.SubscribeWithPredicate(func(evt any) {
		fn(evt.(*messages.GameStatePublished).State)
	}, func(evt any) bool {
		e, ok := evt.(*messages.GameStatePublished)
		return ok && e.Game == gameID
	})
	return func() { unsubscribeOnce(es, sub) }
}

func unsubscribeOnce(es *eventstream.EventStream, sub *eventstream.Subscription) {
	if sub != nil && sub.IsActive() {
		es.Unsubscribe(sub)
	}
}

// Shutdown 停掉 manager（连带所有对局 actor，各自落库）后关闭 actor system。
func (r *Runtime) Shutdown(ctx context.Context) {
	if r == nil {
		return
	}
	r.stopOnce.Do(func() { r.shutdown(ctx) })
}

func (r *Runtime) shutdown(ctx context.Context) {
	if r.root != nil && r.manager != nil {
		done := make(chan struct{})
		go func() {
			_ = r.root.StopFuture(r.manager).Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func (r *Runtime) askState(ctx context.Context, msg messages.GameMessage) (*messages.GHState, error) {
	res, err := r.request(r.manager, msg, r.timeoutFromContext(ctx))
	if err != nil {
		return nil, err
	}
	if st, ok := res.(*messages.GHState); ok && st != nil {
		return st, nil
	}
	return nil, failError(res)
}

func failError(res any) error {
	if f, ok := res.(*messages.FailResp); ok && f != nil {
		cause := f.Err
		if cause == nil {
			cause = causeForCode(f.Code)
		}
		return &RuntimeError{Code: f.Code, Message: f.Message, Cause: cause}
	}
	return &RuntimeError{Code: transport.SystemError, Message: "unexpected actor response", Cause: app.ErrInternalServer}
}

// causeForCode actor 只回了业务码时补一个对应的 app 错误，接口层统一按 errx code 映射。
func causeForCode(code int) error {
	switch code {
	case transport.InvalidParam:
		return app.ErrInvalidCommand
	case transport.NotFound:
		return app.ErrGameNotFound
	case transport.Unavailable:
		return app.ErrUnavailable
	default:
		return app.ErrInternalServer
	}
}

func (r *Runtime) request(pid *protoactor.PID, msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor runtime 未初始化", Cause: app.ErrInternalServer}
	}
	if pid == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor pid 为空", Cause: app.ErrInternalServer}
	}

	// 发送 msg 给目标 pid 并阻塞等待应答或超时
	res, err := r.root.RequestFuture(pid, msg, timeout).Result()
	if errors.Is(err, protoactor.ErrDeadLetter) {
		// 转发时对局 actor 恰好停掉，manager 收到 Terminated 后会重建，重试一次
		res, err = r.root.RequestFuture(pid, msg, timeout).Result()
	}
	if err != nil {
		if errors.Is(err, protoactor.ErrTimeout) {
			return nil, &RuntimeError{Code: transport.Timeout, Message: "actor 请求超时", Cause: app.ErrTimeout.WithCause(err)}
		}
		return nil, &RuntimeError{
			Code:    transport.SystemError,
			Message: "actor 请求失败",
			Cause:   app.ErrUnavailable.WithCause(err),
		}
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}

func CodeFromError(err error) int {
	if err == nil {
		return transport.OK
	}
	var re *RuntimeError
	if errors.As(err, &re) && re != nil && re.Code != 0 {
		return re.Code
	}
	return transport.SystemError
}
