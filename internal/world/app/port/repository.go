package port

import (
	"OpenFront/internal/world/entity"
	"context"
)

// GameRepository 快照存储。Load 在没有存档时返回 (nil, nil)。
type GameRepository interface {
	Load(ctx context.Context, id entity.GameID) (*entity.GamePersistSnapshot, error)
	Save(ctx context.Context, s *entity.GamePersistSnapshot) error
}
