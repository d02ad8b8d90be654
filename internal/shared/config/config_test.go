package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConf struct {
	Log  LogConfig `mapstructure:"log"`
	Game struct {
		TickInterval time.Duration `mapstructure:"tick_interval"`
		Names        []string      `mapstructure:"names"`
	} `mapstructure:"game"`
}

func TestLoad_解析时长与切片(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yml")
	body := "log:\n  level: debug\ngame:\n  tick_interval: 250ms\n  names: a,b\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写配置失败: %v", err)
	}

	var c testConf
	if got := Load(path, &c, nil); got != path {
		t.Fatalf("期望返回配置路径 %s, got=%s", path, got)
	}
	if c.Log.Level != "debug" || c.Game.TickInterval != 250*time.Millisecond {
		t.Fatalf("解析结果不对: %+v", c)
	}
	if len(c.Game.Names) != 2 || c.Game.Names[1] != "b" {
		t.Fatalf("期望逗号分隔切片, got=%v", c.Game.Names)
	}
}

func TestFindConfigUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "configs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(root, DefaultConfigRelPath)
	if err := os.WriteFile(want, []byte("log: {}\n"), 0o644); err != nil {
		t.Fatalf("写配置失败: %v", err)
	}
	deep := filepath.Join(root, "cmd", "conquest")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := findConfigUpward(deep); got != want {
		t.Fatalf("期望向上找到 %s, got=%s", want, got)
	}
}
