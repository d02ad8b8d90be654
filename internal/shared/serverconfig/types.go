package serverconfig

import (
	"time"

	"OpenFront/internal/shared/config"
)

type Config struct {
	Log        config.LogConfig `yaml:"log" mapstructure:"log"`
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	WSServer   WSServerConfig   `yaml:"wsserver" mapstructure:"wsserver"`
	GRPCServer GRPCServerConfig `yaml:"grpcserver" mapstructure:"grpcserver"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	MongoDB    MongoDBConfig    `yaml:"mongodb" mapstructure:"mongodb"`
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	SQLite     SQLiteConfig     `yaml:"sqlite" mapstructure:"sqlite"`
	Game       GameConfig       `yaml:"game" mapstructure:"game"`
	Security   SecurityConfig   `yaml:"security" mapstructure:"security"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit" mapstructure:"ratelimit"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig 快照存储后端：memory/sqlite/mongodb/mysql。
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type WSServerConfig struct {
	Host       string `yaml:"host" mapstructure:"host"`
	Port       int    `yaml:"port" mapstructure:"port"`
	Path       string `yaml:"path" mapstructure:"path"`
	NeedSecret bool   `yaml:"need_secret" mapstructure:"need_secret"`
}

type GRPCServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type GameConfig struct {
	Width         int           `yaml:"width" mapstructure:"width"`
	Height        int           `yaml:"height" mapstructure:"height"`
	// 0 表示按时间取种子
	Seed          int64         `yaml:"seed" mapstructure:"seed"`
	// random/noise/fixed
	YieldMode     string        `yaml:"yield_mode" mapstructure:"yield_mode"`
	TickInterval  time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
	MinSpeed      float64       `yaml:"min_speed" mapstructure:"min_speed"`
	MaxSpeed      float64       `yaml:"max_speed" mapstructure:"max_speed"`
	AskTimeout    time.Duration `yaml:"ask_timeout" mapstructure:"ask_timeout"`
	DefaultGame   string        `yaml:"default_game" mapstructure:"default_game"`
	// 对局无请求多久后落库并停掉，负数表示常驻
	IdleTimeout   time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

type SecurityConfig struct {
	JWTSecret string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" mapstructure:"rps"`
	Burst int     `yaml:"burst" mapstructure:"burst"`
}
