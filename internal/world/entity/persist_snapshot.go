package entity

// GameID 对局实例 id。
type GameID string

// GamePersistSnapshot 是写库单元：Blob 为编码后的整局快照。
type GamePersistSnapshot struct {
	Version uint64
	GameID  GameID
	Blob    []byte
	SavedAt int64 // unix 毫秒
}
