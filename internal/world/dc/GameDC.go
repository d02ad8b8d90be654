package dc

import (
	"OpenFront/internal/world/app/port"
	"OpenFront/internal/world/codec"
	"OpenFront/internal/world/entity"
	"OpenFront/modules/kit/logx"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	defaultFlushEvery = 3000 * time.Millisecond
	retryBackoff      = 200 * time.Millisecond
	saveTimeout       = 5 * time.Second
)

type pendingState struct {
	version uint64
	state   *entity.GameState
}

// GameDC 一局游戏的写回缓存：actor 只登记最新状态，编码和写库都在后台协程完成。
// 已发布的 GameState 不可变，所以跨协程传递指针是安全的。
type GameDC struct {
	repo        port.GameRepository
	gameID      entity.GameID
	log         logx.Logger
	flushEvery  time.Duration
	saveTimeout time.Duration
	now         func() time.Time

	// 只由 actor 协程访问
	current *entity.GameState
	saved   *entity.GameState

	mu      sync.Mutex
	pending *pendingState
	version uint64
	closed  bool

	// 写库用的根 ctx，Close 超时后取消，卡住的 Save 随之返回
	base   context.Context
	cancel context.CancelFunc

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewGameDC(repo port.GameRepository, gameID entity.GameID, flushEvery time.Duration, log logx.Logger) *GameDC {
	if flushEvery <= 0 {
		flushEvery = defaultFlushEvery
	}
	base, cancel := context.WithCancel(context.Background())
	d := &GameDC{
		repo:        repo,
		gameID:      gameID,
		log:         logx.OrNop(log).With(zap.String("game", string(gameID))),
		flushEvery:  flushEvery,
		saveTimeout: saveTimeout,
		now:         time.Now,
		base:        base,
		cancel:      cancel,
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

// Load 读出存档 blob；没有存档返回 nil。
func (d *GameDC) Load(ctx context.Context) ([]byte, error) {
	if d.repo == nil {
		return nil, errors.New("game repository is nil")
	}
	s, err := d.repo.Load(ctx, d.gameID)
	if err != nil || s == nil {
		return nil, err
	}
	d.mu.Lock()
	if s.Version > d.version {
		d.version = s.Version
	}
	d.mu.Unlock()
	return s.Blob, nil
}

// Track 登记 actor 最新发布的状态。
func (d *GameDC) Track(state *entity.GameState) {
	d.current = state
}

// MarkSaved 把 state 视为已落库（刚加载或新建且无需立即写回时使用）。
func (d *GameDC) MarkSaved(state *entity.GameState) {
	d.current = state
	d.saved = state
}

func (d *GameDC) IsDirty() bool {
	return d.current != nil && d.current != d.saved
}

// Flush 把当前状态交给后台写库，不等待写完；ctx 已结束时不入队。
func (d *GameDC) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.IsDirty() {
		return nil
	}
	if d.repo == nil {
		return errors.New("game repository is nil")
	}
	d.mu.Lock()
	d.version++
	p := &pendingState{version: d.version, state: d.current}
	d.mu.Unlock()

	d.saved = d.current
	d.enqueueLatest(p)
	return nil
}

func (d *GameDC) FlushEvery() time.Duration {
	return d.flushEvery
}

// Close 交出最后一版并等写协程退出；ctx 结束时放弃仍在进行的写库。
func (d *GameDC) Close(ctx context.Context) error {
	if err := d.Flush(ctx); err != nil {
		d.log.Warn("final flush skipped", zap.Error(err))
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

func (d *GameDC) enqueueLatest(p *pendingState) {
	if p == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.pending == nil || d.pending.version < p.version {
		d.pending = p
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *GameDC) popPending() *pendingState {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.pending
	d.pending = nil
	return p
}

func (d *GameDC) requeueOnError(p *pendingState) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	if d.pending == nil || d.pending.version < p.version {
		d.pending = p
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

func (d *GameDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending()
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

func (d *GameDC) consumePending() {
	for {
		p := d.popPending()
		if p == nil {
			return
		}
		blob, err := codec.Marshal(p.state)
		if err != nil {
			// 编码失败重试也没用，丢弃这一版
			d.log.Error("encode snapshot failed", zap.Uint64("version", p.version), zap.Error(err))
			continue
		}
		s := &entity.GamePersistSnapshot{
			Version: p.version,
			GameID:  d.gameID,
			Blob:    blob,
			SavedAt: d.now().UnixMilli(),
		}
		if err := d.save(s); err != nil {
			d.log.Warn("save snapshot failed", zap.Uint64("version", p.version), zap.Error(err))
			// 写库失败时重排当前快照；若已有更新快照，会被更高 version 覆盖。
			if d.requeueOnError(p) {
				time.Sleep(retryBackoff)
			}
			continue
		}
		d.log.Debug("snapshot saved",
			zap.Uint64("version", p.version),
			zap.String("size", humanize.Bytes(uint64(len(blob)))),
		)
	}
}

// save 单次写库限时，repo 挂住不会拖住写协程。
func (d *GameDC) save(s *entity.GamePersistSnapshot) error {
	ctx, cancel := context.WithTimeout(d.base, d.saveTimeout)
	defer cancel()
	return d.repo.Save(ctx, s)
}
