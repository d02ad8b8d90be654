package ws

import (
	"OpenFront/internal/shared/session"
	"OpenFront/internal/shared/transport"
	"OpenFront/internal/shared/transport/http/middleware"
	"OpenFront/internal/shared/transport/ws"
	"OpenFront/internal/world/app"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/interfaces/handler"
	"OpenFront/internal/world/interfaces/handler/dto"
	"context"
	"net"
	"sync"
)

// StateMsg 服务端主动推送的对局状态。
const StateMsg = "game.state"

const connKeyPusher = "statePusher"

type WsHandler struct {
	game    *handler.Game
	limiter *middleware.IPLimiter
}

func NewWsHandler(g *handler.Game, limiter *middleware.IPLimiter) *WsHandler {
	return &WsHandler{game: g, limiter: limiter}
}

func (h *WsHandler) RegisterRoutes(r *ws.Router) {
	gameGroup := r.Group("game")
	gameGroup.Handle("enter", h.Enter)
	gameGroup.Handle("command", h.Command)
	gameGroup.Handle("snapshot", h.Snapshot)
}

// Enter 鉴权后把连接绑到对局席位，并开始推送该对局的状态。
func (h *WsHandler) Enter(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if wsReq == nil || wsReq.Body == nil || wsReq.Conn == nil || wsResp == nil || wsResp.Body == nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}

	var req dto.EnterReq
	if err := ws.BindJSON(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	gameID := h.game.GameOrDefault(req.Game)
	empire, err := h.game.Authorize(ctx, req.Token, gameID)
	if err != nil {
		h.error(ctx, wsResp, "ws enter", err)
		return
	}
	state, err := h.game.Runtime.Snapshot(ctx, gameID)
	if err != nil {
		h.error(ctx, wsResp, "ws enter", err)
		return
	}

	conn := wsReq.Conn
	conn.SetProperty(ws.ConnKeyGame, string(gameID))
	conn.SetProperty(ws.ConnKeyEmpire, string(empire))
	h.game.Session.Bind(session.Key{Game: string(gameID), Empire: string(empire)}, req.Token, conn)
	h.watch(conn, gameID)

	h.ok(wsResp, dto.EnterResp{Game: string(gameID), Empire: string(empire), State: dto.StateView(state)})
}

func (h *WsHandler) Command(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if wsReq == nil || wsReq.Body == nil || wsReq.Conn == nil || wsResp == nil || wsResp.Body == nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	if h.limiter != nil && !h.limiter.Allow(remoteIP(wsReq.Conn.Addr())) {
		h.fail(wsResp, transport.RateLimited, "请求过于频繁")
		return
	}

	key, ok := h.game.Session.GetKey(wsReq.Conn)
	if !ok {
		h.error(ctx, wsResp, "ws command", app.ErrUnauthorized.WithData("hint", "game.enter first"))
		return
	}

	var req dto.CommandReq
	if err := ws.BindJSON(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	_, changed, err := h.game.Command(ctx, entity.GameID(key.Game), entity.EmpireID(key.Empire), req.Type, req.Payload)
	if err != nil {
		h.error(ctx, wsResp, "ws command", err)
		return
	}
	// 新状态会经由 game.state 推送，这里只回执
	h.ok(wsResp, dto.CommandResp{Changed: changed})
}

func (h *WsHandler) Snapshot(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if wsReq == nil || wsReq.Body == nil || wsReq.Conn == nil || wsResp == nil || wsResp.Body == nil {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	var req dto.EnterReq
	_ = ws.BindJSON(wsReq, &req)
	gameID := entity.GameID(req.Game)
	if gameID == "" {
		gameID = h.game.GameOrDefault(ws.StringProperty(wsReq.Conn, ws.ConnKeyGame))
	}
	state, err := h.game.Runtime.Snapshot(ctx, gameID)
	if err != nil {
		h.error(ctx, wsResp, "ws snapshot", err)
		return
	}
	h.ok(wsResp, dto.StateView(state))
}

// watch 每条连接只保留一个推送器；重复 enter 时替换旧的。
func (h *WsHandler) watch(conn ws.WSConn, gameID entity.GameID) {
	if old, ok := conn.GetProperty(connKeyPusher).(*statePusher); ok {
		old.stop()
	}
	p := newStatePusher(conn)
	p.unsubscribe = h.game.Runtime.Subscribe(gameID, p.offer)
	conn.SetProperty(connKeyPusher, p)
	go p.run()
}

func (h *WsHandler) ok(resp *ws.WsMsgResp, data any) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = transport.OK
	resp.Body.Msg = data
}

func (h *WsHandler) fail(resp *ws.WsMsgResp, code int, msg string) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = code
	if msg != "" {
		resp.Body.Msg = msg
	}
}

func (h *WsHandler) error(ctx context.Context, resp *ws.WsMsgResp, action string, err error) {
	code, msg := handler.HandleError(ctx, h.game.Log, action, err)
	h.fail(resp, code, msg)
}

// statePusher 只保留最新一帧：客户端消费慢时中间状态直接丢弃。
type statePusher struct {
	conn        ws.WSConn
	latest      chan *entity.GameState
	quit        chan struct{}
	once        sync.Once
	unsubscribe func()
}

func newStatePusher(conn ws.WSConn) *statePusher {
	return &statePusher{
		conn:   conn,
		latest: make(chan *entity.GameState, 1),
		quit:   make(chan struct{}),
	}
}

// offer 在对局 actor 协程里调用，不能阻塞。
func (p *statePusher) offer(s *entity.GameState) {
	for {
		select {
		case p.latest <- s:
			return
		default:
		}
		select {
		case <-p.latest:
		default:
		}
	}
}

func (p *statePusher) run() {
	defer p.stop()
	for {
		select {
		case s := <-p.latest:
			p.conn.Push(StateMsg, dto.StateView(s))
		case <-p.conn.Done():
			return
		case <-p.quit:
			return
		}
	}
}

func (p *statePusher) stop() {
	p.once.Do(func() {
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
		close(p.quit)
	})
}

func remoteIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
