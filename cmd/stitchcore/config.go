package main

import (
	"fmt"

	"github.com/spf13/viper"

	"stitchcore/internal/core"
)

// Config keys as they appear in stitchcore.yaml.
const (
	cfgKeyDriver      = "storage.driver"
	cfgKeySQLitePath  = "storage.sqlite_path"
	cfgKeyPostgresDSN = "storage.postgres_dsn"
)

// resolveStorageConfig merges sources with flag > env > config file > default
// precedence.
func resolveStorageConfig() (core.StorageConfig, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDriver, string(core.StorageSQLite))
	v.SetDefault(cfgKeySQLitePath, "stitchcore.db")
	v.SetDefault(cfgKeyPostgresDSN, "")

	// Same variables StorageConfigFromEnv documents.
	_ = v.BindEnv(cfgKeyDriver, "STITCHCORE_STORAGE_DRIVER")
	_ = v.BindEnv(cfgKeySQLitePath, "STITCHCORE_SQLITE_PATH")
	_ = v.BindEnv(cfgKeyPostgresDSN, "STITCHCORE_POSTGRES_DSN")

	if flagConfigFile != "" {
		v.SetConfigFile(flagConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return core.StorageConfig{}, fmt.Errorf("read config %s: %w", flagConfigFile, err)
		}
	} else {
		v.SetConfigName("stitchcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config file is not an error.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return core.StorageConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := core.StorageConfig{
		Driver:      core.StorageDriver(v.GetString(cfgKeyDriver)),
		SQLitePath:  v.GetString(cfgKeySQLitePath),
		PostgresDSN: v.GetString(cfgKeyPostgresDSN),
	}
	if flagDriver != "" {
		cfg.Driver = core.StorageDriver(flagDriver)
	}
	if flagSQLitePath != "" {
		cfg.SQLitePath = flagSQLitePath
	}
	if flagPostgresDSN != "" {
		cfg.PostgresDSN = flagPostgresDSN
	}
	return cfg, nil
}
