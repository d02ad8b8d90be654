package mysql

import (
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/infra/persistence/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameRepository struct {
	db *gorm.DB
}

// NewGameRepository 会自动建表。
func NewGameRepository(db *gorm.DB) (*GameRepository, error) {
	if db == nil {
		return nil, errors.New("mysql db is nil")
	}
	if err := db.AutoMigrate(&model.GameSnapshot{}); err != nil {
		return nil, err
	}
	return &GameRepository{db: db}, nil
}

func (r *GameRepository) Load(ctx context.Context, id entity.GameID) (*entity.GamePersistSnapshot, error) {
	var row model.GameSnapshot
	err := r.db.WithContext(ctx).Where("game_id = ?", string(id)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.ToEntity(), nil
}

func (r *GameRepository) Save(ctx context.Context, s *entity.GamePersistSnapshot) error {
	if s == nil {
		return nil
	}
	row := model.ToRow(s)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "payload", "saved_at", "updated_at"}),
	}).Create(&row).Error
}
