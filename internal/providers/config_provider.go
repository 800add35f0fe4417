package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"guildstore/internal/structures"
)

const (
	AppName           = "GuildStore"
	DefaultStorageKey = "guild-rewards-demo-data"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.key", DefaultStorageKey)
	v.SetDefault("cache.ttl", 60)
	v.SetDefault("notifier.exchange", "guildstore.changes")

	v.BindEnv("logger.level", "GUILDSTORE_LOG_LEVEL")
	v.BindEnv("storage.backend", "GUILDSTORE_STORAGE_BACKEND")
	v.BindEnv("storage.dir", "GUILDSTORE_STORAGE_DIR")
	v.BindEnv("cache.enabled", "GUILDSTORE_CACHE_ENABLED")
	v.BindEnv("cache.size", "GUILDSTORE_CACHE_SIZE")
	v.BindEnv("notifier.url", "GUILDSTORE_NOTIFIER_URL")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
