package serverconfig

import (
	"os"
	"time"

	"OpenFront/internal/shared/config"

	"github.com/spf13/viper"
)

var Conf Config

// Load 读取配置并补默认值。onChange 收到的是按新文件重新解码的完整配置。
func Load(cfgName string, onChange func(Config)) string {
	var watch func(v *viper.Viper)
	if onChange != nil {
		watch = func(v *viper.Viper) {
			var next Config
			if err := v.Unmarshal(&next, config.DecodeHook()); err != nil {
				return
			}
			next.ApplyDefaults()
			onChange(next)
		}
	}
	path := config.Load(cfgName, &Conf, watch)
	Conf.ApplyDefaults()
	// 环境变量优先；若未设置则回填配置中的 jwt_secret，兼容本地开发场景。
	if os.Getenv("JWT_SECRET") == "" && Conf.Security.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.Security.JWTSecret)
	}
	return path
}

func (c *Config) ApplyDefaults() {
	if c.HTTPServer.Port == 0 {
		c.HTTPServer.Port = 8080
	}
	if c.WSServer.Port == 0 {
		c.WSServer.Port = 8081
	}
	if c.WSServer.Path == "" {
		c.WSServer.Path = "/ws"
	}
	if c.GRPCServer.Port == 0 {
		c.GRPCServer.Port = 9090
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "data/openfront.db"
	}
	if c.MySQL.Charset == "" {
		c.MySQL.Charset = "utf8mb4"
	}

	g := &c.Game
	if g.Width <= 0 {
		g.Width = 80
	}
	if g.Height <= 0 {
		g.Height = 60
	}
	if g.YieldMode == "" {
		g.YieldMode = "random"
	}
	if g.TickInterval <= 0 {
		g.TickInterval = 100 * time.Millisecond
	}
	if g.FlushInterval <= 0 {
		g.FlushInterval = 3 * time.Second
	}
	if g.MinSpeed <= 0 {
		g.MinSpeed = 0.5
	}
	if g.MaxSpeed < g.MinSpeed {
		g.MaxSpeed = max(g.MinSpeed, 8)
	}
	if g.AskTimeout <= 0 {
		g.AskTimeout = 3 * time.Second
	}
	if g.DefaultGame == "" {
		g.DefaultGame = "default"
	}
	if g.IdleTimeout == 0 {
		g.IdleTimeout = 10 * time.Minute
	}

	if c.Security.TokenTTL <= 0 {
		c.Security.TokenTTL = 24 * time.Hour
	}
	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 20
	}
}
