package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"OpenFront/internal/shared/security"
	"OpenFront/internal/shared/transport"
	"OpenFront/modules/kit/logx"

	"github.com/go-think/openssl"
	"github.com/gorilla/websocket"
)

type fakeConn struct {
	mu    sync.Mutex
	props map[string]any
	done  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{props: map[string]any{}, done: make(chan struct{})}
}

func (c *fakeConn) SetProperty(k string, v any) { c.mu.Lock(); c.props[k] = v; c.mu.Unlock() }
func (c *fakeConn) GetProperty(k string) any    { c.mu.Lock(); defer c.mu.Unlock(); return c.props[k] }
func (c *fakeConn) RemoveProperty(k string)     { c.mu.Lock(); delete(c.props, k); c.mu.Unlock() }
func (c *fakeConn) Addr() string                { return "fake" }
func (c *fakeConn) Push(string, any)            {}
func (c *fakeConn) Close()                      {}
func (c *fakeConn) Done() <-chan struct{}       { return c.done }

func dispatch(r *Router, name string) *WsMsgResp {
	req := &WsMsgReq{Body: &ReqBody{Seq: 7, Name: name}, Conn: newFakeConn()}
	resp := &WsMsgResp{Body: &RespBody{Seq: 7, Name: name}}
	r.Dispatch(context.Background(), req, resp)
	return resp
}

func TestRouter_路由分发(t *testing.T) {
	r := NewRouter(logx.Nop())
	r.Group("game").Handle("snapshot", func(ctx context.Context, req *WsMsgReq, resp *WsMsgResp) {
		resp.Body.Code = transport.OK
		resp.Body.Msg = "ok"
	})

	if resp := dispatch(r, "game.snapshot"); resp.Body.Code != transport.OK || resp.Body.Msg != "ok" {
		t.Fatalf("期望命中 handler, got=%+v", resp.Body)
	}
	for _, name := range []string{"game", "game.", "other.snapshot", "game.missing"} {
		if resp := dispatch(r, name); resp.Body.Code != transport.InvalidParam {
			t.Fatalf("路由 %q 期望 InvalidParam, got=%+v", name, resp.Body)
		}
	}
}

func TestRouter_handler漏设业务码视为系统错误(t *testing.T) {
	r := NewRouter(logx.Nop())
	r.Group("game").Handle("noop", func(context.Context, *WsMsgReq, *WsMsgResp) {})
	if resp := dispatch(r, "game.noop"); resp.Body.Code != transport.SystemError {
		t.Fatalf("期望默认 SystemError, got=%d", resp.Body.Code)
	}
}

func readFrame(t *testing.T, c *websocket.Conn, key string) RespBody {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read err=%v", err)
	}
	plain, err := security.UnZip(data)
	if err != nil {
		t.Fatalf("unzip err=%v", err)
	}
	if key != "" {
		if plain, err = security.AesCBCDecrypt(plain, []byte(key), []byte(key), openssl.ZEROS_PADDING); err != nil {
			t.Fatalf("decrypt err=%v", err)
		}
	}
	var body RespBody
	if err := json.Unmarshal(plain, &body); err != nil {
		t.Fatalf("unmarshal err=%v", err)
	}
	return body
}

func TestServer_握手与心跳往返(t *testing.T) {
	s := NewServer(NewRouter(logx.Nop()), true, logx.Nop())
	hs := httptest.NewServer(s)
	defer hs.Close()
	defer s.Shutdown()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial err=%v", err)
	}
	defer c.Close()

	first := readFrame(t, c, "")
	if first.Name != HandshakeMsg {
		t.Fatalf("期望第一帧为 handshake, got=%+v", first)
	}
	raw, _ := json.Marshal(first.Msg)
	var h Handshake
	_ = json.Unmarshal(raw, &h)
	if len(h.Key) != 16 {
		t.Fatalf("期望 16 位密钥, got=%q", h.Key)
	}

	req, _ := json.Marshal(ReqBody{Seq: 3, Name: HeartbeatMsg, Msg: map[string]any{"ctime": 1}})
	enc, _ := security.AesCBCEncrypt(req, []byte(h.Key), []byte(h.Key), openssl.ZEROS_PADDING)
	frame, _ := security.Zip(enc)
	if err := c.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("write err=%v", err)
	}

	resp := readFrame(t, c, h.Key)
	if resp.Name != HeartbeatMsg || resp.Seq != 3 {
		t.Fatalf("期望心跳回包 seq=3, got=%+v", resp)
	}
}
