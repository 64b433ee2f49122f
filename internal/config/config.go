package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	AppName     string `mapstructure:"app_name"`
	CORSOrigins string `mapstructure:"cors_allow_origins"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, mysql, sqlite
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	Issuer        string `mapstructure:"issuer"`
	ExpireHours   int    `mapstructure:"expire_hours"`
	SessionCookie string `mapstructure:"session_cookie"`
}

type RedisConfig struct {
	Address string        `mapstructure:"address"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

type InventoryConfig struct {
	// StrictOutWarehouse applies out_warehouse lines of an ingested transaction as
	// validated warehouse issues instead of plain out-counter increments.
	StrictOutWarehouse bool   `mapstructure:"strict_out_warehouse"`
	DefaultProjectType string `mapstructure:"default_project_type"`
}

type SeedConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

// envAliases maps config keys to the flat environment names used in deployments.
var envAliases = map[string]string{
	"server.port":                    "PORT",
	"server.app_name":                "APP_NAME",
	"server.cors_allow_origins":      "CORS_ALLOW_ORIGINS",
	"database.driver":                "DATABASE_DRIVER",
	"database.url":                   "DATABASE_URL",
	"database.host":                  "DB_HOST",
	"database.user":                  "DB_USER",
	"database.password":              "DB_PASSWORD",
	"database.name":                  "DB_NAME",
	"database.port":                  "DB_PORT",
	"database.log_level":             "DATABASE_LOG_LEVEL",
	"jwt.secret":                     "JWT_SECRET",
	"jwt.issuer":                     "JWT_ISSUER",
	"jwt.expire_hours":               "JWT_EXPIRE_HOURS",
	"jwt.session_cookie":             "SESSION_COOKIE",
	"redis.address":                  "REDIS_ADDRESS",
	"redis.lock_ttl":                 "LOCK_TTL",
	"log.level":                      "LOG_LEVEL",
	"log.format":                     "LOG_FORMAT",
	"inventory.strict_out_warehouse": "INVENTORY_STRICT_OUT_WAREHOUSE",
	"inventory.default_project_type": "INVENTORY_DEFAULT_PROJECT_TYPE",
	"seed.admin_email":               "SEED_ADMIN_EMAIL",
	"seed.admin_password":            "SEED_ADMIN_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.app_name", "Construction Inventory API v1.0")
	v.SetDefault("server.cors_allow_origins", "*")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "construction")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("jwt.secret", "your-super-secret-key-change-in-production")
	v.SetDefault("jwt.issuer", "go-construction-inventory")
	v.SetDefault("jwt.expire_hours", 24*7)
	v.SetDefault("jwt.session_cookie", "session_token")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.lock_ttl", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("inventory.strict_out_warehouse", false)
	v.SetDefault("inventory.default_project_type", "arsitektur")
	v.SetDefault("seed.admin_email", "admin@example.com")
	v.SetDefault("seed.admin_password", "admin123")
}

// Load reads .env (if present) and the process environment into a Config.
// Pass envFiles to load specific dotenv files; missing files are not an error.
func Load(envFiles ...string) (*Config, error) {
	// .env is optional; the process environment always wins over it
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// DSN builds a driver specific connection string when DATABASE_URL is empty.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Asia%%2FJakarta",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case "sqlite":
		return d.Name + ".db"
	default:
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Jakarta",
			d.Host, d.User, d.Password, d.Name, d.Port,
		)
	}
}
