package cmd

import (
	"OpenFront/internal/shared/serverconfig"
	"testing"

	"OpenFront/internal/shared/config"
	"OpenFront/internal/shared/logs"

	"go.uber.org/zap"
)

func TestReadConfig(t *testing.T) {
	path := serverconfig.Load("", nil)
	if err := logs.Init("TestReadConfig", config.LogConfig{Level: serverconfig.Conf.Log.Level, Dev: true}); err != nil {
		t.Fatalf("logs.Init err=%v", err)
	}
	logs.Info("conf", zap.String("path", path), zap.Any("conf", serverconfig.Conf))

	switch serverconfig.Conf.Store.Driver {
	case "memory", "sqlite", "mongodb", "mysql":
	default:
		t.Fatalf("未知的 store.driver: %q", serverconfig.Conf.Store.Driver)
	}
	if serverconfig.Conf.Game.TickInterval <= 0 || serverconfig.Conf.WSServer.Path == "" {
		t.Fatalf("期望默认值已补齐, got=%+v", serverconfig.Conf.Game)
	}
}
