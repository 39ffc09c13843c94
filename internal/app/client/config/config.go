package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".gradebook"
	defaultStorageDriver = StorageSQLite

	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	Env            string `mapstructure:"app_env"`
	ServerAddress  string `mapstructure:"server_address"`
	LogLevel       string `mapstructure:"log_level"`
	ConfigDir      string `mapstructure:"config_dir"`
	TokenPath      string `mapstructure:"token_path"`
	APIToken       string `mapstructure:"api_token"`
	DataPath       string `mapstructure:"data_path"`
	StorageDriver  string `mapstructure:"storage_driver"`
	SyncInterval   int    `mapstructure:"sync_interval_seconds"`
	ProbeInterval  int    `mapstructure:"probe_interval_seconds"`
	PurgeInterval  int    `mapstructure:"purge_interval_seconds"`
	PurgeAfterSync bool   `mapstructure:"purge_after_sync"`
	HTTPTimeout    int    `mapstructure:"http_timeout_seconds"`
	EnableTLS      bool   `mapstructure:"enable_tls"`
}

// MustLoad загружает конфигурацию клиента и паникует при ошибке
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает конфигурацию из окружения, .env и необязательного файла.
// Переменные окружения имеют приоритет над файлом.
func Load(configFile string) (*Config, error) {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("STORAGE_DRIVER", defaultStorageDriver)
	v.SetDefault("SYNC_INTERVAL_SECONDS", 30)
	v.SetDefault("PROBE_INTERVAL_SECONDS", 10)
	v.SetDefault("PURGE_INTERVAL_SECONDS", 0)
	v.SetDefault("PURGE_AFTER_SYNC", false)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("ENABLE_TLS", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	// Получаем домашнюю директорию пользователя
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	dataPath := v.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, "offline.db")
	}

	config := &Config{
		Env:            v.GetString("APP_ENV"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		ConfigDir:      configDir,
		TokenPath:      filepath.Join(configDir, "token"),
		APIToken:       v.GetString("API_TOKEN"),
		DataPath:       dataPath,
		StorageDriver:  v.GetString("STORAGE_DRIVER"),
		SyncInterval:   v.GetInt("SYNC_INTERVAL_SECONDS"),
		ProbeInterval:  v.GetInt("PROBE_INTERVAL_SECONDS"),
		PurgeInterval:  v.GetInt("PURGE_INTERVAL_SECONDS"),
		PurgeAfterSync: v.GetBool("PURGE_AFTER_SYNC"),
		HTTPTimeout:    v.GetInt("HTTP_TIMEOUT_SECONDS"),
		EnableTLS:      v.GetBool("ENABLE_TLS"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.StorageDriver != StorageSQLite && c.StorageDriver != StorageMemory {
		return fmt.Errorf("неизвестный storage_driver: %s", c.StorageDriver)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds должен быть положительным")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe_interval_seconds должен быть положительным")
	}
	if c.PurgeInterval < 0 {
		return fmt.Errorf("purge_interval_seconds не может быть отрицательным")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout_seconds должен быть положительным")
	}
	return nil
}

func (c *Config) SyncEvery() time.Duration  { return time.Duration(c.SyncInterval) * time.Second }
func (c *Config) ProbeEvery() time.Duration { return time.Duration(c.ProbeInterval) * time.Second }
func (c *Config) PurgeEvery() time.Duration { return time.Duration(c.PurgeInterval) * time.Second }
func (c *Config) Timeout() time.Duration    { return time.Duration(c.HTTPTimeout) * time.Second }

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
