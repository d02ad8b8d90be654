package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"OpenFront/internal/shared/config"

	"go.uber.org/zap"
)

func TestInit_文件输出与热更新级别(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	if err := Init("test", config.LogConfig{FileDir: file, Level: "debug"}); err != nil {
		t.Fatalf("初始化失败: %v", err)
	}
	t.Cleanup(func() { logger = zap.NewNop() })

	Info("hello", zap.String("k", "v"))
	SetLevel("error")
	Info("dropped")
	_ = Sync()

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("读日志失败: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("期望文件中有 JSON 日志, got=%s", out)
	}
	if strings.Contains(out, "dropped") || strings.Contains(out, "\x1b[") {
		t.Fatalf("期望级别生效且文件不带颜色, got=%s", out)
	}
}

func TestParseLevel_非法值回退info(t *testing.T) {
	if parseLevel("nope") != zap.InfoLevel || parseLevel("WARN") != zap.WarnLevel {
		t.Fatalf("级别解析不对")
	}
}
