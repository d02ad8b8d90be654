package session

import (
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu     sync.Mutex
	pushed []string
	closed bool
	done   chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{done: make(chan struct{})} }

func (c *fakeConn) SetProperty(string, any)  {}
func (c *fakeConn) GetProperty(string) any   { return nil }
func (c *fakeConn) RemoveProperty(string)    {}
func (c *fakeConn) Addr() string             { return "fake" }
func (c *fakeConn) Done() <-chan struct{}    { return c.done }
func (c *fakeConn) Push(name string, _ any) { c.mu.Lock(); c.pushed = append(c.pushed, name); c.mu.Unlock() }
func (c *fakeConn) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	})
}

func TestBind_顶号踢掉旧连接(t *testing.T) {
	m := NewSessMgr()
	key := Key{Game: "g1", Empire: "player"}
	c1, c2 := newFakeConn(), newFakeConn()

	m.Bind(key, "t1", c1)
	m.Bind(key, "t2", c2)

	if got, _ := m.GetConn(key); got != c2 {
		t.Fatalf("期望席位绑定到新连接")
	}
	c1.mu.Lock()
	defer c1.mu.Unlock()
	if !c1.closed || len(c1.pushed) != 1 || c1.pushed[0] != KickMsg {
		t.Fatalf("期望旧连接收到 %s 并被关闭, got=%+v", KickMsg, c1.pushed)
	}
	if _, ok := m.GetKey(c1); ok {
		t.Fatalf("期望旧连接不再有席位")
	}
}

func TestBind_连接关闭后自动解绑(t *testing.T) {
	m := NewSessMgr()
	key := Key{Game: "g1", Empire: "ai1"}
	c := newFakeConn()
	m.Bind(key, "t", c)
	c.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := m.GetConn(key); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("期望连接关闭后席位被释放")
}

func TestGameConns_按对局过滤(t *testing.T) {
	m := NewSessMgr()
	a, b, c := newFakeConn(), newFakeConn(), newFakeConn()
	m.Bind(Key{Game: "g1", Empire: "player"}, "", a)
	m.Bind(Key{Game: "g1", Empire: "ai1"}, "", b)
	m.Bind(Key{Game: "g2", Empire: "player"}, "", c)
	if n := len(m.GameConns("g1")); n != 2 {
		t.Fatalf("期望 g1 有 2 条连接, got=%d", n)
	}
	m.UnbindKey(Key{Game: "g1", Empire: "ai1"})
	if n := len(m.GameConns("g1")); n != 1 {
		t.Fatalf("期望解绑后 g1 剩 1 条连接, got=%d", n)
	}
}
