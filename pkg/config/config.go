package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/play/guandan/pkg/guandan"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 GUANDAN_RULES_START_LEVEL
const EnvPrefix = "GUANDAN"

// Config 包装 viper，所有配置项都有默认值
type Config struct {
	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	d := guandan.DefaultOptions()
	v.SetDefault("rules.start_level", int(d.StartLevel))
	v.SetDefault("rules.tribute_threshold", d.TributeThreshold)
	v.SetDefault("rules.strict_tribute", d.StrictTribute)
	v.SetDefault("rules.gate_reset_level", int(d.GateResetLevel))
	v.SetDefault("rules.max_gate_failures", d.MaxGateFailures)
	v.SetDefault("rules.first_lead", int(d.FirstLead))

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "guandan")

	v.SetDefault("hall.size", 1024)
	v.SetDefault("hall.ttl", 30*time.Minute)
	v.SetDefault("hall.workers", 8)

	v.SetDefault("log.level", "info")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default 只有默认值和环境变量的配置
func Default() *Config {
	return &Config{v: newViper()}
}

// Load 读取配置文件，格式由扩展名决定；path 为空时等同于 Default
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return &Config{v: v}, nil
}

// Set 覆盖单个配置项
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// Viper 底层的 viper 实例
func (c *Config) Viper() *viper.Viper {
	return c.v
}

// Rules 规则参数，非法值由 guandan 按默认值修正
func (c *Config) Rules() guandan.Options {
	return guandan.Options{
		StartLevel:       level(c.v.Get("rules.start_level")),
		TributeThreshold: c.v.GetInt("rules.tribute_threshold"),
		StrictTribute:    c.v.GetBool("rules.strict_tribute"),
		GateResetLevel:   level(c.v.Get("rules.gate_reset_level")),
		MaxGateFailures:  c.v.GetInt("rules.max_gate_failures"),
		FirstLead:        guandan.Seat(cast.ToInt8(c.v.Get("rules.first_lead"))),
	}
}

// level 接受 2..14 的数字或 "J" "Q" "K" "A" 这样的点数名
func level(val any) guandan.Rank {
	if r, ok := guandan.ParseRank(cast.ToString(val)); ok {
		return r
	}
	return guandan.Rank(cast.ToInt(val))
}

// Redis 连接参数
type Redis struct {
	Addr   string
	DB     int
	Prefix string
}

// Redis 连接参数
func (c *Config) Redis() Redis {
	return Redis{
		Addr:   c.v.GetString("redis.addr"),
		DB:     c.v.GetInt("redis.db"),
		Prefix: c.v.GetString("redis.prefix"),
	}
}

// Client 按连接参数创建 redis 客户端
func (r Redis) Client() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: r.Addr,
		DB:   r.DB,
	})
}

// Hall 牌桌缓存参数
type Hall struct {
	Size    int
	TTL     time.Duration
	Workers int
}

// Hall 牌桌缓存参数
func (c *Config) Hall() Hall {
	return Hall{
		Size:    c.v.GetInt("hall.size"),
		TTL:     c.v.GetDuration("hall.ttl"),
		Workers: c.v.GetInt("hall.workers"),
	}
}

// LogLevel 日志级别，无法识别时为 info
func (c *Config) LogLevel() zerolog.Level {
	lv, err := zerolog.ParseLevel(c.v.GetString("log.level"))
	if err != nil || lv == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lv
}

// SetupLog 按配置设置 zerolog 全局级别
func (c *Config) SetupLog() {
	zerolog.SetGlobalLevel(c.LogLevel())
}
