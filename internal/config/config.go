package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string              `mapstructure:"env"`
	Server     ServerConfig        `mapstructure:"server"`
	Database   DatabaseConfig      `mapstructure:"database"`
	Redis      RedisConfig         `mapstructure:"redis"`
	Kafka      KafkaConfig         `mapstructure:"kafka"`
	JWT        JWTConfig           `mapstructure:"jwt"`
	Engine     EngineConfig        `mapstructure:"engine"`
	Escalation EscalationConfig    `mapstructure:"escalation"`
	Outbox     OutboxConfig        `mapstructure:"outbox"`
	Roles      map[string]string   `mapstructure:"roles"`  // capability -> role id or name
	Chains     map[string][]string `mapstructure:"chains"` // claim type -> ordered capabilities
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// AllowedOrigins enables CORS with credentials for browser clients.
	// Empty disables CORS.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type KafkaConfig struct {
	Broker string `mapstructure:"broker"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type EngineConfig struct {
	TxMaxAttempts int               `mapstructure:"tx_max_attempts"`
	Entitlement   EntitlementConfig `mapstructure:"entitlement"`
}

// EntitlementConfig is the annual allowance seeded into a new leave balance.
type EntitlementConfig struct {
	Earned int `mapstructure:"earned"`
	Casual int `mapstructure:"casual"`
	Sick   int `mapstructure:"sick"`
}

type EscalationConfig struct {
	Threshold time.Duration `mapstructure:"threshold"`
	Interval  time.Duration `mapstructure:"interval"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// Load reads configPath (optional) and APP_* environment variables on top of
// the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		_ = v.ReadInConfig()
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

func (c *Config) Validate() error {
	if c.Engine.TxMaxAttempts < 1 {
		return fmt.Errorf("engine.tx_max_attempts must be at least 1")
	}
	e := c.Engine.Entitlement
	if e.Earned < 0 || e.Casual < 0 || e.Sick < 0 {
		return fmt.Errorf("engine.entitlement values must not be negative")
	}
	if c.Escalation.Threshold <= 0 {
		return fmt.Errorf("escalation.threshold must be positive")
	}
	if c.Escalation.Interval <= 0 {
		return fmt.Errorf("escalation.interval must be positive")
	}
	// A zero TTL stores the sweep lock without expiry.
	if c.Escalation.LockTTL <= 0 {
		return fmt.Errorf("escalation.lock_ttl must be positive")
	}
	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("outbox.poll_interval must be positive")
	}
	if c.Outbox.BatchSize < 1 {
		return fmt.Errorf("outbox.batch_size must be at least 1")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	v.SetDefault("env", env)

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "hris")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_retries", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("kafka.broker", "")
	v.SetDefault("jwt.secret", "")

	v.SetDefault("engine.tx_max_attempts", 3)
	v.SetDefault("engine.entitlement.earned", 15)
	v.SetDefault("engine.entitlement.casual", 10)
	v.SetDefault("engine.entitlement.sick", 10)

	v.SetDefault("escalation.threshold", 48*time.Hour)
	v.SetDefault("escalation.interval", time.Hour)
	v.SetDefault("escalation.lock_ttl", 5*time.Minute)

	v.SetDefault("outbox.poll_interval", 3*time.Second)
	v.SetDefault("outbox.batch_size", 50)

	v.SetDefault("roles", map[string]string{
		"chain_manager": "MANAGER",
		"chain_finance": "FINANCE_ADMIN",
		"escalation_hr": "HR_ADMIN",
	})
	v.SetDefault("chains", map[string][]string{
		"expense": {"chain_manager", "chain_finance"},
		"advance": {"chain_manager", "chain_finance"},
	})
}
