package config

import (
	"os"
	"strconv"
	"time"
)

// ForumConfig 论坛显示相关设置（对应插件的 Forum.settings）
type ForumConfig struct {
	PostsTillHotTopic      int    `yaml:"posts_till_hot_topic"`
	PostsPerPage           int    `yaml:"posts_per_page"`
	TopicPagesTillTruncate int    `yaml:"topic_pages_till_truncate"`
	DefaultTimezone        string `yaml:"default_timezone"`
}

// GravatarConfig 头像查询配置
type GravatarConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Size         int           `yaml:"size"`
	Rating       string        `yaml:"rating"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheBackend string        `yaml:"cache_backend"` // memory | redis
	CacheSize    int           `yaml:"cache_size"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	NegativeTTL  time.Duration `yaml:"negative_ttl"`
}

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`

	// 权限表只读，连接池按只读负载设置
	MaxConns           int32         `yaml:"max_conns"`
	MinConns           int32         `yaml:"min_conns"`
	MaxConnIdleTime    time.Duration `yaml:"max_conn_idle_time"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

// MQConfig 消息队列配置
type MQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// TracingConfig OpenTelemetry 导出配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// Config 服务完整配置
type Config struct {
	Forum    ForumConfig    `yaml:"forum"`
	Gravatar GravatarConfig `yaml:"gravatar"`
	DB       DBConfig       `yaml:"db"`
	MQ       MQConfig       `yaml:"mq"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Server   ServerConfig   `yaml:"server"`
}

// Default 返回插件的默认设置
func Default() Config {
	return Config{
		Forum: ForumConfig{
			PostsTillHotTopic:      35,
			PostsPerPage:           15,
			TopicPagesTillTruncate: 10,
			DefaultTimezone:        "UTC",
		},
		Gravatar: GravatarConfig{
			BaseURL:      "https://www.gravatar.com/avatar",
			Size:         100,
			Rating:       "g",
			Timeout:      3 * time.Second,
			CacheBackend: "memory",
			CacheSize:    10000,
			CacheTTL:     24 * time.Hour,
			NegativeTTL:  time.Hour,
		},
		DB: DBConfig{
			Port:               5432,
			SSLMode:            "disable",
			MaxConns:           5,
			MinConns:           1,
			MaxConnIdleTime:    time.Minute,
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		MQ:      MQConfig{Queue: "forumhelper.gravatar.invalidate"},
		Tracing: TracingConfig{SampleRatio: 1},
		Server:  ServerConfig{Port: ":8080"},
	}
}

// OverrideFromEnv 用环境变量覆盖配置（优先级最高）
func OverrideFromEnv(cfg *Config) {
	overrideInt("FORUM_HOT_THRESHOLD", &cfg.Forum.PostsTillHotTopic)
	overrideInt("FORUM_POSTS_PER_PAGE", &cfg.Forum.PostsPerPage)
	overrideString("FORUM_DEFAULT_TIMEZONE", &cfg.Forum.DefaultTimezone)

	overrideString("GRAVATAR_BASE_URL", &cfg.Gravatar.BaseURL)
	overrideString("GRAVATAR_CACHE_BACKEND", &cfg.Gravatar.CacheBackend)

	overrideString("DB_HOST", &cfg.DB.Host)
	overrideInt("DB_PORT", &cfg.DB.Port)
	overrideString("DB_USER", &cfg.DB.User)
	overrideString("DB_PASSWORD", &cfg.DB.Password)
	overrideString("DB_NAME", &cfg.DB.Name)
	overrideString("DB_SSLMODE", &cfg.DB.SSLMode)
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.DB.MaxConns = int32(n)
		}
	}

	overrideString("MQ_URL", &cfg.MQ.URL)

	overrideString("REDIS_ADDR", &cfg.Redis.Addr)
	overrideString("REDIS_PASSWORD", &cfg.Redis.Password)

	overrideString("JWT_SECRET", &cfg.JWT.Secret)

	overrideString("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
	overrideString("SERVER_PORT", &cfg.Server.Port)
}

func overrideString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
