package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress    = "localhost:8080"
	defaultEnv              = "local"
	defaultConfigDir        = ".inmodraft"
	defaultAutoSaveInterval = 30
	defaultRequestTimeout   = 10
)

type Config struct {
	Env              string `mapstructure:"app_env"`
	ServerAddress    string `mapstructure:"server_address"`
	ConfigDir        string `mapstructure:"config_dir"`
	TokenPath        string `mapstructure:"token_path"`
	DataPath         string `mapstructure:"data_path"`
	AutoSaveInterval int    `mapstructure:"autosave_interval_seconds"`
	RequestTimeout   int    `mapstructure:"request_timeout_seconds"`
	EnableTLS        bool   `mapstructure:"enable_tls"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("AUTOSAVE_INTERVAL_SECONDS", defaultAutoSaveInterval)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeout)
	viper.SetDefault("ENABLE_TLS", false)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("Ошибка создания директории конфигурации: %v\n", err)
	}

	return &Config{
		Env:              viper.GetString("APP_ENV"),
		ServerAddress:    viper.GetString("SERVER_ADDRESS"),
		ConfigDir:        configDir,
		TokenPath:        filepath.Join(configDir, "token"),
		DataPath:         filepath.Join(configDir, "drafts.db"),
		AutoSaveInterval: viper.GetInt("AUTOSAVE_INTERVAL_SECONDS"),
		RequestTimeout:   viper.GetInt("REQUEST_TIMEOUT_SECONDS"),
		EnableTLS:        viper.GetBool("ENABLE_TLS"),
	}
}
