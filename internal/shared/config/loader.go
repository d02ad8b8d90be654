package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DecodeHook 支持 "100ms" 这类时长和逗号分隔的字符串切片。
func DecodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func load(configPath string, out any, onChange func(v *viper.Viper)) {
	if !fileExist(configPath) {
		panic(fmt.Sprintf("config file not exist, configPath=%v", configPath))
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	// 以 OPENFRONT_ 开头的环境变量覆盖同名配置，如 OPENFRONT_STORE_DRIVER
	v.SetEnvPrefix("openfront")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		panic(err)
	}
	err = v.Unmarshal(out, DecodeHook())
	if err != nil {
		panic(err)
	}

	if onChange != nil {
		// 变更时不改 out，已启动的组件继续使用启动时的配置
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Printf("config changed: %s %s", e.Name, e.Op)
			onChange(v)
		})
		v.WatchConfig()
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
