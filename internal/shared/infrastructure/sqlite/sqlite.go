package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"OpenFront/internal/shared/serverconfig"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open 打开（必要时创建）sqlite 文件，开启 WAL。path 为 ":memory:" 时使用内存库。
func Open(cfg serverconfig.SQLiteConfig) (*sqlx.DB, error) {
	path := cfg.Path
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite 单写者
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return conn, nil
}
