package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Updates  UpdatesConfig  `mapstructure:"updates"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ChatConfig holds chat duplicate-suppression windows
type ChatConfig struct {
	ReadDedupWindow  time.Duration `mapstructure:"read_dedup_window"`
	WriteDedupWindow time.Duration `mapstructure:"write_dedup_window"`
}

// UpdatesConfig holds broadcast/update-log configuration
type UpdatesConfig struct {
	LogCapacity int `mapstructure:"log_capacity"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")            // Production: <binary_dir>/repository/conf/
		v.AddConfigPath("./cmd/server/repository/conf") // Development
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("QUERY_MGT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8290)
	v.SetDefault("server.readTimeout", 15*time.Second)
	// Zero write timeout; the event stream holds connections open.
	v.SetDefault("server.writeTimeout", time.Duration(0))
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("chat.read_dedup_window", time.Second)
	v.SetDefault("chat.write_dedup_window", 5*time.Second)
	v.SetDefault("updates.log_capacity", 1000)
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.ReadTimeout < 0 || config.Server.WriteTimeout < 0 || config.Server.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	if config.Database.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Chat.ReadDedupWindow <= 0 {
		return fmt.Errorf("chat read dedup window must be positive")
	}

	if config.Chat.WriteDedupWindow <= 0 {
		return fmt.Errorf("chat write dedup window must be positive")
	}

	if config.Updates.LogCapacity <= 0 {
		return fmt.Errorf("updates log capacity must be positive")
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}
