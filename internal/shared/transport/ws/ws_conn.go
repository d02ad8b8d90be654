package ws

type ReqBody struct {
	Seq   int64  `json:"seq"`
	Name  string `json:"name"`
	Msg   any    `json:"msg"`
	Proxy string `json:"proxy"`
}

type RespBody struct {
	Seq  int64  `json:"seq"`
	Name string `json:"name"`
	Code int    `json:"code"`
	Msg  any    `json:"msg"`
}

type WsMsgReq struct {
	Body *ReqBody
	Conn WSConn
}

type WsMsgResp struct {
	Body *RespBody
}

// WSConn 是 handler 看到的连接：带属性表，可主动推送。
type WSConn interface {
	SetProperty(key string, value any)
	GetProperty(key string) any
	RemoveProperty(key string)
	Addr() string
	Push(name string, data any)
	Close()
	// Done 用于感知连接生命周期结束（连接关闭时该 channel 会被关闭）
	Done() <-chan struct{}
}

type Handshake struct {
	Key string `json:"key"`
}

type Heartbeat struct {
	CTime int64 `json:"ctime"`
	STime int64 `json:"stime"`
}

const (
	HandshakeMsg = "handshake"
	SecretKey    = "secretKey"
	HeartbeatMsg = "heartbeat"

	// 连接属性：game.enter 成功后写入
	ConnKeyEmpire = "empire"
	ConnKeyGame   = "game"
)
