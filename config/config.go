package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Push      PushConfig      `mapstructure:"push"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Retention RetentionConfig `mapstructure:"retention"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// PushConfig holds VAPID credentials for Web Push. Empty keys disable push delivery.
type PushConfig struct {
	VAPIDPublicKey  string        `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string        `mapstructure:"vapid_private_key"`
	Subscriber      string        `mapstructure:"subscriber"` // mailto: contact sent to the relay
	TTL             time.Duration `mapstructure:"ttl"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type SchedulerConfig struct {
	EquipmentScan    time.Duration `mapstructure:"equipment_scan"`
	MaintenanceScan  time.Duration `mapstructure:"maintenance_scan"`
	ServiceOrderScan time.Duration `mapstructure:"service_order_scan"`
	RetentionSweep   time.Duration `mapstructure:"retention_sweep"`
	DedupWindow      time.Duration `mapstructure:"dedup_window"`
}

type RetentionConfig struct {
	ReadAge         time.Duration `mapstructure:"read_age"`
	UnreadAge       time.Duration `mapstructure:"unread_age"`
	SubscriptionAge time.Duration `mapstructure:"subscription_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("database.dsn", "manu4:manu4@tcp(localhost:3306)/manu4?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "manu4")

	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.vapid_private_key", "")
	v.SetDefault("push.subscriber", "mailto:ops@manu4.local")
	v.SetDefault("push.ttl", "24h")
	v.SetDefault("push.timeout", "10s")

	v.SetDefault("scheduler.equipment_scan", "15m")
	v.SetDefault("scheduler.maintenance_scan", "12h")
	v.SetDefault("scheduler.service_order_scan", "30m")
	v.SetDefault("scheduler.retention_sweep", "24h")
	v.SetDefault("scheduler.dedup_window", "1h")

	v.SetDefault("retention.read_age", "720h")          // 30 days
	v.SetDefault("retention.unread_age", "2160h")       // 90 days
	v.SetDefault("retention.subscription_age", "1440h") // 60 days

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
