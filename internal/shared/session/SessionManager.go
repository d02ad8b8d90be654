package session

import (
	"OpenFront/internal/shared/transport/ws"
	"sync"
)

// KickMsg 推给被顶号的旧连接。
const KickMsg = "robLogin"

// Key 标识一局游戏里的一个帝国席位。
type Key struct {
	Game   string
	Empire string
}

type Manager interface {
	Bind(key Key, token string, conn ws.WSConn)
	UnbindConn(conn ws.WSConn)
	UnbindKey(key Key)
	GetConn(key Key) (ws.WSConn, bool)
	GetKey(conn ws.WSConn) (Key, bool)
	GameConns(game string) []ws.WSConn
}

type SessMgr struct {
	sync.RWMutex
	key2token map[Key]string
	key2conn  map[Key]ws.WSConn
	conn2key  map[ws.WSConn]Key
	watched   map[ws.WSConn]struct{}
}

func NewSessMgr() Manager {
	return &SessMgr{
		key2token: make(map[Key]string),
		key2conn:  make(map[Key]ws.WSConn),
		conn2key:  make(map[ws.WSConn]Key),
		watched:   make(map[ws.WSConn]struct{}),
	}
}

func (s *SessMgr) Bind(key Key, token string, conn ws.WSConn) {
	if conn == nil {
		return
	}
	s.Lock()
	defer s.Unlock()

	// 为每条连接只启动一次 watcher：连接关闭后自动解绑，避免 conn2key 逐步膨胀
	if _, ok := s.watched[conn]; !ok {
		s.watched[conn] = struct{}{}
		go s.watchConnDone(conn)
	}

	// 同一条连接换席位时先解掉旧席位
	if old, ok := s.conn2key[conn]; ok && old != key && s.key2conn[old] == conn {
		delete(s.key2conn, old)
		delete(s.key2token, old)
	}

	oldConn := s.key2conn[key]
	// 踢掉原来的那个
	if oldConn != nil && oldConn != conn {
		oldConn.Push(KickMsg, nil)
		oldConn.Close()
		delete(s.conn2key, oldConn)
	}
	s.key2conn[key] = conn
	s.conn2key[conn] = key
	s.key2token[key] = token
}

func (s *SessMgr) watchConnDone(conn ws.WSConn) {
	<-conn.Done()
	s.UnbindConn(conn)
}

func (s *SessMgr) UnbindConn(conn ws.WSConn) {
	s.Lock()
	defer s.Unlock()
	delete(s.watched, conn)
	key, ok := s.conn2key[conn]
	if !ok {
		return
	}
	delete(s.conn2key, conn)
	if s.key2conn[key] == conn {
		delete(s.key2conn, key)
		delete(s.key2token, key)
	}
}

func (s *SessMgr) UnbindKey(key Key) {
	s.Lock()
	defer s.Unlock()
	conn, ok := s.key2conn[key]
	if ok {
		delete(s.watched, conn)
		delete(s.conn2key, conn)
	}
	delete(s.key2conn, key)
	delete(s.key2token, key)
}

func (s *SessMgr) GetConn(key Key) (ws.WSConn, bool) {
	s.RLock()
	defer s.RUnlock()
	conn, ok := s.key2conn[key]
	return conn, ok
}

func (s *SessMgr) GetKey(conn ws.WSConn) (Key, bool) {
	s.RLock()
	defer s.RUnlock()
	key, ok := s.conn2key[conn]
	return key, ok
}

// GameConns 返回某局游戏当前在线的全部连接。
func (s *SessMgr) GameConns(game string) []ws.WSConn {
	s.RLock()
	defer s.RUnlock()
	var out []ws.WSConn
	for key, conn := range s.key2conn {
		if key.Game == game {
			out = append(out, conn)
		}
	}
	return out
}
