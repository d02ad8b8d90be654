package memory

import (
	"OpenFront/internal/world/entity"
	"context"
	"slices"
	"sync"
)

// GameRepository 进程内快照存储，重启即丢失；store.driver=memory 时使用。
type GameRepository struct {
	mu    sync.RWMutex
	snaps map[entity.GameID]entity.GamePersistSnapshot
}

func NewGameRepository() *GameRepository {
	return &GameRepository{snaps: make(map[entity.GameID]entity.GamePersistSnapshot)}
}

func (r *GameRepository) Load(ctx context.Context, id entity.GameID) (*entity.GamePersistSnapshot, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snaps[id]
	if !ok {
		return nil, nil
	}
	s.Blob = slices.Clone(s.Blob)
	return &s, nil
}

// Save 旧版本不会覆盖新版本。
func (r *GameRepository) Save(ctx context.Context, s *entity.GamePersistSnapshot) error {
	_ = ctx
	if s == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.snaps[s.GameID]; ok && cur.Version > s.Version {
		return nil
	}
	c := *s
	c.Blob = slices.Clone(s.Blob)
	r.snaps[s.GameID] = c
	return nil
}
