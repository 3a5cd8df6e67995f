package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Config 应用配置。加载后整体注入到各构造函数，不提供进程级全局变量。
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Cache     CacheConfig     `json:"cache"`
	Consul    ConsulConfig    `json:"consul"`
	Jaeger    JaegerConfig    `json:"jaeger"`
	Log       LogConfig       `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `json:"name"` // 服务名称
	Host string `json:"host"` // 监听地址
	Port int    `json:"port"` // HTTP 端口
	Mode string `json:"mode"` // gin 模式：debug / release / test
}

// DatabaseConfig 数据库配置。DSN 非空时优先于 Host/Port 等字段。
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	DSN      string `json:"dsn"`      // 完整连接串（可由 DATABASE_URL 覆盖）
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// AuthConfig 鉴权配置。JWTSecret 注入到 TokenService，不落在包级变量上。
type AuthConfig struct {
	JWTSecret     string `json:"jwt_secret"`      // HS256 对称密钥（可由 SHOP_JWT_SECRET 覆盖）
	Issuer        string `json:"issuer"`          // iss
	TokenTTLHours int    `json:"token_ttl_hours"` // token 有效期（小时），默认 24
}

// RateLimitConfig 登录限流配置
type RateLimitConfig struct {
	LoginMaxAttempts   int `json:"login_max_attempts"`   // 窗口内最大尝试次数
	LoginWindowSeconds int `json:"login_window_seconds"` // 窗口长度（秒）
}

// CacheConfig 进程内缓存配置
type CacheConfig struct {
	TicketTTLSeconds int `json:"ticket_ttl_seconds"` // my-tickets 缓存 TTL（秒）
}

// ConsulConfig Consul 配置
type ConsulConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// JaegerConfig 链路追踪配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

// DatabaseDSN 拼出 MySQL DSN；显式 DSN 优先。
func (c DatabaseConfig) DatabaseDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// LoadConfig 加载配置：文件不存在时退回默认配置，最后套用环境变量覆盖。
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logrus.Warnf("Config file not found: %s, using default config", configPath)
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides 环境变量覆盖：密钥与连接串按部署环境注入。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SHOP_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "shop-api",
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "mechanic_db",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Auth: AuthConfig{
			JWTSecret:     "dev-secret-change-me",
			Issuer:        "shop-api",
			TokenTTLHours: 24,
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts:   5,
			LoginWindowSeconds: 60,
		},
		Cache: CacheConfig{
			TicketTTLSeconds: 60,
		},
		Consul: ConsulConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
