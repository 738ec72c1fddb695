package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"lunasync/internal/utils/logger"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = logger.EnvLocal
	defaultConfigDir     = ".lunasync"
	defaultDataFile      = "data.db"
)

type Config struct {
	Env           string        `mapstructure:"app_env"`
	ServerAddress string        `mapstructure:"server_address"`
	EnableTLS     bool          `mapstructure:"enable_tls"`
	ConfigDir     string        `mapstructure:"config_dir"`
	DataPath      string        `mapstructure:"data_path"`
	LogFile       string        `mapstructure:"log_file"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	Sync          SyncConfig    `mapstructure:",squash"`
	Probe         ProbeConfig   `mapstructure:",squash"`
}

// SyncConfig настройки планировщика синхронизации
type SyncConfig struct {
	Interval        time.Duration `mapstructure:"sync_interval"`
	StartupDelay    time.Duration `mapstructure:"sync_startup_delay"`
	ReconnectDelay  time.Duration `mapstructure:"sync_reconnect_delay"`
	ShutdownTimeout time.Duration `mapstructure:"sync_shutdown_timeout"`
	CycleTimeout    time.Duration `mapstructure:"sync_cycle_timeout"`
	PullOverlap     time.Duration `mapstructure:"sync_pull_overlap"`
}

// ProbeConfig настройки проверки соединения
type ProbeConfig struct {
	Interval time.Duration `mapstructure:"probe_interval"`
	Timeout  time.Duration `mapstructure:"probe_timeout"`
}

// MustLoad загружает конфигурацию клиента и паникует при ошибке
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load загружает конфигурацию из .env, переменных окружения и, если
// указан, YAML-файла. Переменные окружения имеют приоритет над файлом.
func Load(configFile string) (*Config, error) {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Пробуем найти .env в родительской директории
		envPath = "../.env"
	}

	// Загружаем .env файл если существует
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
			}
		}
	}

	// Получаем домашнюю директорию пользователя
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	// Вычисляем пути для хранения данных
	configDir := v.GetString("config_dir")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	// Создаем директории если их нет
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	dataPath := v.GetString("data_path")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, defaultDataFile)
	}

	cfg := &Config{
		Env:           v.GetString("app_env"),
		ServerAddress: v.GetString("server_address"),
		EnableTLS:     v.GetBool("enable_tls"),
		ConfigDir:     configDir,
		DataPath:      dataPath,
		LogFile:       v.GetString("log_file"),
		HTTPTimeout:   v.GetDuration("http_timeout"),
		Sync: SyncConfig{
			Interval:        v.GetDuration("sync_interval"),
			StartupDelay:    v.GetDuration("sync_startup_delay"),
			ReconnectDelay:  v.GetDuration("sync_reconnect_delay"),
			ShutdownTimeout: v.GetDuration("sync_shutdown_timeout"),
			CycleTimeout:    v.GetDuration("sync_cycle_timeout"),
			PullOverlap:     v.GetDuration("sync_pull_overlap"),
		},
		Probe: ProbeConfig{
			Interval: v.GetDuration("probe_interval"),
			Timeout:  v.GetDuration("probe_timeout"),
		},
	}

	// Валидация конфигурации
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("enable_tls", false)
	v.SetDefault("config_dir", defaultConfigDir)
	v.SetDefault("data_path", "")
	v.SetDefault("log_file", "")
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("sync_interval", 2*time.Minute)
	v.SetDefault("sync_startup_delay", 3*time.Second)
	v.SetDefault("sync_reconnect_delay", time.Second)
	v.SetDefault("sync_shutdown_timeout", 5*time.Second)
	v.SetDefault("sync_cycle_timeout", 2*time.Minute)
	v.SetDefault("sync_pull_overlap", time.Duration(0))
	v.SetDefault("probe_interval", 10*time.Second)
	v.SetDefault("probe_timeout", 5*time.Second)
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync_interval должен быть положительным")
	}
	if c.Sync.PullOverlap < 0 {
		return fmt.Errorf("sync_pull_overlap не может быть отрицательным")
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == logger.EnvProd
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == logger.EnvDev
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == logger.EnvLocal || c.Env == ""
}
