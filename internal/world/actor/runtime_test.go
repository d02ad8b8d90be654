package actor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"OpenFront/internal/shared/transport"
	"OpenFront/internal/world/app"
	"OpenFront/internal/world/codec"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/infra/persistence/memory"
	"OpenFront/internal/world/service"
	"OpenFront/internal/world/sim"
	"OpenFront/modules/kit/logx"
)

type seqIDs struct {
	mu sync.Mutex
	n  int64
}

func (s *seqIDs) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

func newRuntime(t *testing.T, repo *memory.GameRepository) *Runtime {
	t.Helper()
	return newRuntimeIdle(t, repo, 0)
}

func newRuntimeIdle(t *testing.T, repo *memory.GameRepository, idle time.Duration) *Runtime {
	t.Helper()
	games := service.NewGameService(service.GameConfig{Width: 80, Height: 60, Seed: 11}, &seqIDs{}, logx.Nop())
	r := NewRuntime(Options{
		Repo:        repo,
		Games:       games,
		TickEvery:   time.Hour, // 测试里不自动 tick
		FlushEvery:  time.Hour,
		IdleTimeout: idle,
		DefaultGame: "g1",
		Log:         logx.Nop(),
	}, 2*time.Second)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		r.Shutdown(ctx)
	})
	return r
}

func TestRuntime_首次访问新开局(t *testing.T) {
	r := newRuntime(t, memory.NewGameRepository())
	st, err := r.Snapshot(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Snapshot err=%v", err)
	}
	if st == nil || len(st.Empires) != 7 || st.Phase != entity.PhasePlaying {
		t.Fatalf("期望新开局 7 个帝国, got=%+v", st)
	}
	again, _ := r.Snapshot(context.Background(), "g1")
	if again != st {
		t.Fatalf("期望无变化时返回同一个状态指针")
	}
}

func TestRuntime_命令生效并广播(t *testing.T) {
	r := newRuntime(t, memory.NewGameRepository())
	ctx := context.Background()

	got := make(chan *entity.GameState, 4)
	unsubscribe := r.Subscribe("g1", func(s *entity.GameState) { got <- s })
	defer unsubscribe()
	other := make(chan *entity.GameState, 4)
	defer r.Subscribe("g2", func(s *entity.GameState) { other <- s })()

	before, err := r.Snapshot(ctx, "g1")
	if err != nil {
		t.Fatalf("Snapshot err=%v", err)
	}
	pos := entity.Position{X: 1, Y: 1}
	next, changed, err := r.Apply(ctx, "g1", sim.SelectTile{Empire: sim.HumanEmpireID, Tile: pos})
	if err != nil || !changed {
		t.Fatalf("期望选择格子产生新状态, changed=%v err=%v", changed, err)
	}
	if next == before || next.SelectedTile == nil {
		t.Fatalf("期望返回新的状态且带选中格子")
	}

	select {
	case s := <-got:
		if s != next {
			t.Fatalf("期望广播的就是命令返回的状态")
		}
	case <-time.After(time.Second):
		t.Fatalf("期望订阅者收到新状态")
	}
	select {
	case <-other:
		t.Fatalf("期望其它对局的订阅者收不到")
	default:
	}
}

func TestRuntime_被拒绝的命令不产生新状态(t *testing.T) {
	r := newRuntime(t, memory.NewGameRepository())
	ctx := context.Background()
	before, _ := r.Snapshot(ctx, "g1")
	next, changed, err := r.Apply(ctx, "g1", sim.SelectTile{Empire: "nobody", Tile: entity.Position{X: 1, Y: 1}})
	if err != nil {
		t.Fatalf("期望规则拒绝不是错误, err=%v", err)
	}
	if changed || next != before {
		t.Fatalf("期望返回原状态指针")
	}
}

func TestRuntime_非法对局id(t *testing.T) {
	r := newRuntime(t, memory.NewGameRepository())
	_, err := r.Snapshot(context.Background(), "bad/id")
	if err == nil {
		t.Fatalf("期望非法对局 id 报错")
	}
	if CodeFromError(err) != transport.NotFound || !errors.Is(err, app.ErrGameNotFound) {
		t.Fatalf("期望 NotFound + ErrGameNotFound, got=%v", err)
	}
}

func TestRuntime_未创建的对局返回NotFound(t *testing.T) {
	repo := memory.NewGameRepository()
	r := newRuntime(t, repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Snapshot(ctx, "junk")
		if CodeFromError(err) != transport.NotFound || !errors.Is(err, app.ErrGameNotFound) {
			t.Fatalf("第 %d 次读取期望 NotFound, got=%v", i, err)
		}
	}
	if snap, _ := repo.Load(ctx, "junk"); snap != nil {
		t.Fatalf("期望读取不会凭空建局")
	}

	created, err := r.Create(ctx, "junk")
	if err != nil || created == nil || len(created.Empires) != 7 {
		t.Fatalf("期望建局成功, st=%v err=%v", created, err)
	}
	st, err := r.Snapshot(ctx, "junk")
	if err != nil || st != created {
		t.Fatalf("期望建局后可读且状态一致, err=%v", err)
	}
	again, err := r.Create(ctx, "junk")
	if err != nil || again != created {
		t.Fatalf("期望重复建局返回现有对局, err=%v", err)
	}
}

func TestRuntime_空闲对局落库后停止(t *testing.T) {
	repo := memory.NewGameRepository()
	r := newRuntimeIdle(t, repo, 100*time.Millisecond)
	ctx := context.Background()

	created, err := r.Create(ctx, "g9")
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}

	// FlushEvery 是一小时，存档只能来自空闲停止时的关闭落库
	deadline := time.Now().Add(3 * time.Second)
	for {
		snap, _ := repo.Load(ctx, "g9")
		if snap != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("期望空闲对局停止并落库")
		}
		time.Sleep(20 * time.Millisecond)
	}

	// 停止与 manager 摘除之间的请求可能落空，重试直到新 actor 接手
	var st *entity.GameState
	deadline = time.Now().Add(10 * time.Second)
	for {
		st, err = r.Snapshot(ctx, "g9")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("期望停止后仍能从存档读回, err=%v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(st.Empires) != len(created.Empires) || st.Grid.Width() != created.Grid.Width() {
		t.Fatalf("期望读回同一局")
	}
}

func TestRuntime_重开与落库(t *testing.T) {
	repo := memory.NewGameRepository()
	r := newRuntime(t, repo)
	ctx := context.Background()

	old, _ := r.Snapshot(ctx, "g1")
	fresh, err := r.Reset(ctx, "g1")
	if err != nil || fresh == old {
		t.Fatalf("期望重开后是新状态, err=%v", err)
	}
	if err := r.Flush(ctx, "g1"); err != nil {
		t.Fatalf("Flush err=%v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, _ := repo.Load(ctx, "g1")
		if snap != nil {
			st, err := codec.Unmarshal(snap.Blob, 0)
			if err != nil {
				t.Fatalf("期望落库的快照可解码, err=%v", err)
			}
			if len(st.Empires) != len(fresh.Empires) {
				t.Fatalf("期望落库的是重开后的状态")
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("期望 Flush 后快照写入仓库")
}

func TestRuntime_重启后读回存档(t *testing.T) {
	repo := memory.NewGameRepository()
	ctx := context.Background()

	r1 := newRuntime(t, repo)
	st, _, err := r1.Apply(ctx, "g1", sim.PauseGame{Empire: sim.HumanEmpireID})
	if err != nil || !st.Paused {
		t.Fatalf("期望暂停成功, err=%v", err)
	}
	// Shutdown 会把最新状态写库
	shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	r1.Shutdown(shutdownCtx)
	cancel()

	r2 := newRuntime(t, repo)
	loaded, err := r2.Snapshot(ctx, "g1")
	if err != nil {
		t.Fatalf("Snapshot err=%v", err)
	}
	if !loaded.Paused {
		t.Fatalf("期望重启后读回暂停状态")
	}
}

func TestCodeFromError(t *testing.T) {
	if CodeFromError(nil) != transport.OK {
		t.Fatalf("期望 nil 为 OK")
	}
	if CodeFromError(&RuntimeError{Code: transport.Timeout}) != transport.Timeout {
		t.Fatalf("期望取 RuntimeError.Code")
	}
	if CodeFromError(errors.New("x")) != transport.SystemError {
		t.Fatalf("期望普通错误为 SystemError")
	}
}
