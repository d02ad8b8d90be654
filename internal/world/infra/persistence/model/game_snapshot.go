package model

import (
	"time"

	"OpenFront/internal/world/entity"
)

// GameSnapshot mysql 表结构，每局一行，只保留最新版本。
type GameSnapshot struct {
	GameID    string    `gorm:"column:game_id;type:varchar(64);comment:对局id;primaryKey;not null;" json:"game_id"`
	Version   uint64    `gorm:"column:version;type:bigint UNSIGNED;comment:快照版本;not null;" json:"version"`
	Blob      []byte    `gorm:"column:payload;type:mediumblob;comment:编码后的快照;not null;" json:"-"`
	SavedAt   int64     `gorm:"column:saved_at;type:bigint;comment:保存时间(毫秒);not null;" json:"saved_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"updated_at"`
}

func (m *GameSnapshot) TableName() string {
	return "game_snapshot"
}

// GameSnapshotDoc mongodb 文档结构。
type GameSnapshotDoc struct {
	GameID  string `bson:"_id"`
	Version uint64 `bson:"version"`
	Blob    []byte `bson:"blob"`
	SavedAt int64  `bson:"saved_at"`
}

func ToRow(s *entity.GamePersistSnapshot) GameSnapshot {
	return GameSnapshot{
		GameID:  string(s.GameID),
		Version: s.Version,
		Blob:    s.Blob,
		SavedAt: s.SavedAt,
	}
}

func (m GameSnapshot) ToEntity() *entity.GamePersistSnapshot {
	return &entity.GamePersistSnapshot{
		Version: m.Version,
		GameID:  entity.GameID(m.GameID),
		Blob:    m.Blob,
		SavedAt: m.SavedAt,
	}
}

func ToDoc(s *entity.GamePersistSnapshot) GameSnapshotDoc {
	return GameSnapshotDoc{
		GameID:  string(s.GameID),
		Version: s.Version,
		Blob:    s.Blob,
		SavedAt: s.SavedAt,
	}
}

func (d GameSnapshotDoc) ToEntity() *entity.GamePersistSnapshot {
	return &entity.GamePersistSnapshot{
		Version: d.Version,
		GameID:  entity.GameID(d.GameID),
		Blob:    d.Blob,
		SavedAt: d.SavedAt,
	}
}
