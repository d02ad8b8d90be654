package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const DefaultConfigRelPath = "configs/conf.yml"

// LogConfig 日志配置，logs.Init 使用；放在这里避免 logs 与 serverconfig 互相依赖。
type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// Load 读取配置到 out 并监听文件变更，返回实际使用的配置文件路径。
// onChange 在文件变更时回调，由调用方自己决定重新解码哪些字段。
//
// 约定：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Load(cfgName string, out any, onChange func(v *viper.Viper)) string {
	curDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	path := cfgName
	switch {
	case cfgName == "":
		path = findConfigUpward(curDir)
	case !filepath.IsAbs(cfgName):
		path = filepath.Join(curDir, cfgName)
	}
	load(path, out, onChange)
	return path
}

func findConfigUpward(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, DefaultConfigRelPath)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("config file not exist, searched configs/conf.yml from: " + startDir)
		}
		dir = parent
	}
}
