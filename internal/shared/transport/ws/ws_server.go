package ws

import (
	"OpenFront/modules/kit/logx"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-think/openssl"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"OpenFront/internal/shared/security"
	"OpenFront/internal/shared/utils"
)

const outChanSize = 256

type WsServer struct {
	conn     *websocket.Conn
	router   *Router
	outChan  chan *WsMsgResp
	Seq      int64
	property map[string]any
	sync.RWMutex
	// gorilla 只允许一个并发写者，握手和写循环共用
	writeMu    sync.Mutex
	needSecret bool
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	closeOnce  sync.Once
	log        logx.Logger
}

func NewWsServer(parent context.Context, wsConn *websocket.Conn, needSecret bool, l logx.Logger) *WsServer {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &WsServer{
		conn:       wsConn,
		outChan:    make(chan *WsMsgResp, outChanSize),
		property:   make(map[string]any),
		needSecret: needSecret,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        logx.OrNop(l),
	}
}

func (s *WsServer) Router(router *Router) {
	s.router = router
}

func (s *WsServer) SetProperty(key string, value any) {
	s.Lock()
	defer s.Unlock()
	s.property[key] = value
}

func (s *WsServer) GetProperty(key string) any {
	s.RLock()
	defer s.RUnlock()
	return s.property[key]
}

func (s *WsServer) RemoveProperty(key string) {
	s.Lock()
	defer s.Unlock()
	delete(s.property, key)
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

// Push 异步推送。连接已关闭或发送队列满时丢弃，不阻塞调用方（actor 事件回调）。
func (s *WsServer) Push(name string, data any) {
	s.enqueue(&WsMsgResp{Body: &RespBody{Name: name, Msg: data}})
}

func (s *WsServer) enqueue(rsp *WsMsgResp) {
	select {
	case <-s.done:
	case s.outChan <- rsp:
	default:
		s.log.Warn("ws_server out queue full, drop msg", zap.String("name", rsp.Body.Name), zap.String("addr", s.Addr()))
	}
}

func (s *WsServer) Run() {
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *WsServer) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			e := fmt.Sprintf("%v", err)
			s.log.Error("ws readMsgLoop error", zap.String("err", e))
		}
		s.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("ws_server read msg", zap.Error(err))
			}
			return
		}

		// 前端发送的是压缩（加密）过的 json
		// 1.解压缩
		plain, err := security.UnZip(data)
		if err != nil {
			s.log.Error("ws_server readMsgLoop unzip", zap.Error(err))
			continue
		}

		// 2.解密
		if s.needSecret {
			key, ok := s.GetProperty(SecretKey).(string)
			if !ok || key == "" {
				s.log.Error("ws_server readMsgLoop not found secretKey")
				continue
			}
			plain, err = security.AesCBCDecrypt(plain, []byte(key), []byte(key), openssl.ZEROS_PADDING)
			if err != nil {
				s.log.Error("ws_server readMsgLoop decrypt error", zap.Error(err))
				// 出错后，重新握手
				s.handshake()
				continue
			}
		}

		// 3.转为 json
		reqBody := ReqBody{}
		if err := json.Unmarshal(plain, &reqBody); err != nil {
			s.log.Error("ws_server readMsgLoop unmarshal json error", zap.Error(err))
			continue
		}

		// 4.分发消息，req 和 resp 的 Seq 必须一致
		req := WsMsgReq{Body: &reqBody, Conn: s}
		resp := WsMsgResp{Body: &RespBody{Seq: reqBody.Seq, Name: reqBody.Name, Msg: reqBody.Msg}}
		if reqBody.Name == HeartbeatMsg {
			h := &Heartbeat{}
			_ = mapstructure.Decode(reqBody.Msg, h)
			h.STime = time.Now().UnixMilli()
			resp.Body.Msg = h
		} else {
			s.log.Debug("ws_server read msg", zap.String("name", reqBody.Name), zap.Int64("seq", reqBody.Seq))
			s.router.Dispatch(s.ctx, &req, &resp)
		}

		s.enqueue(&resp)
	}
}

func (s *WsServer) writeMsgLoop() {
	for {
		select {
		case msg, ok := <-s.outChan:
			if ok {
				s.write(msg)
			}
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.conn.Close()
		close(s.done)
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}

func (s *WsServer) write(msg *WsMsgResp) {
	// 转成 json
	data, err := json.Marshal(msg.Body)
	if err != nil {
		s.log.Error("ws_server write marshal json error", zap.Error(err))
		return
	}

	// 加密
	if s.needSecret {
		key, ok := s.GetProperty(SecretKey).(string)
		if !ok || key == "" {
			s.log.Error("ws_server write not found secretKey", zap.String("name", msg.Body.Name))
			return
		}
		data, err = security.AesCBCEncrypt(data, []byte(key), []byte(key), openssl.ZEROS_PADDING)
		if err != nil {
			s.log.Error("ws_server write encrypt error", zap.Error(err))
			return
		}
	}

	s.writeFrame(data)
}

// writeFrame 压缩后按二进制帧写出。
func (s *WsServer) writeFrame(data []byte) {
	zipped, err := security.Zip(data)
	if err != nil {
		s.log.Error("ws_server write zip error", zap.Error(err))
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	// 压缩后是二进制字节流，必须走 BinaryMessage，不能走 TextMessage
	if err := s.conn.WriteMessage(websocket.BinaryMessage, zipped); err != nil {
		s.log.Warn("ws_server write error", zap.Error(err))
		s.Close()
	}
}

// handshake 下发本连接的密钥。不加密时 key 为空，客户端据此跳过 AES。
func (s *WsServer) handshake() {
	secretKey := ""
	if s.needSecret {
		if key, ok := s.GetProperty(SecretKey).(string); ok && key != "" {
			secretKey = key
		} else {
			secretKey = utils.RandSeq(16)
		}
	}

	if secretKey != "" {
		s.SetProperty(SecretKey, secretKey)
	} else {
		s.RemoveProperty(SecretKey)
	}

	body := &RespBody{Name: HandshakeMsg, Msg: &Handshake{Key: secretKey}}
	data, err := json.Marshal(body)
	if err != nil {
		s.log.Error("ws_server handshake marshal json error", zap.Error(err))
		return
	}
	s.writeFrame(data)
}
