package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application-wide configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Skylink      SkylinkConfig      `mapstructure:"skylink"`
	Verification VerificationConfig `mapstructure:"verification"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	StaticDir    string     `mapstructure:"static_dir"` // built SPA bundle; empty disables page serving
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig MySQL connection settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the go-sql-driver/mysql connection string.
// multiStatements is required by the migration files.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=%s&multiStatements=true",
		c.User, c.Password, c.Host, c.Port, c.Name, strings.ReplaceAll(c.Timezone, "/", "%2F"),
	)
}

// ServerDSN is the DSN without a database name, used to create the schema on first start.
func (c *DatabaseConfig) ServerDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4", c.User, c.Password, c.Host, c.Port)
}

// RedisConfig Redis settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig session and fallback-login settings.
type AuthConfig struct {
	JWTSecret        string        `mapstructure:"jwt_secret"`
	AccessTokenTTL   time.Duration `mapstructure:"access_token_ttl"`
	Cookie           CookieConfig  `mapstructure:"cookie"`
	LocalEmailDomain string        `mapstructure:"local_email_domain"`
	LocalUsers       []LocalUser   `mapstructure:"local_users"`
	LoginRateLimit   int           `mapstructure:"login_rate_limit"`
	LoginRateWindow  time.Duration `mapstructure:"login_rate_window"`
}

// CookieConfig cookie attributes.
type CookieConfig struct {
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
	Domain   string `mapstructure:"domain"`
}

// LocalUser is one entry of the fallback credential list used when Skylink is unreachable.
// PasswordHash is a bcrypt hash; plaintext passwords are never stored.
type LocalUser struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Name         string `mapstructure:"name"`
	Role         string `mapstructure:"role"`
}

// SkylinkConfig upstream API settings.
type SkylinkConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PendingStatus string        `mapstructure:"pending_status"`
	ShipmentLimit int           `mapstructure:"shipment_limit"`
	// MaxFileBytes caps an evidence download; larger files are refused.
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`
	// PreviewMaxPixels caps width*height of images decoded for previews.
	// Larger images are served as-is.
	PreviewMaxPixels int `mapstructure:"preview_max_pixels"`
}

// VerificationConfig verification logger settings.
type VerificationConfig struct {
	StrictClusterMatch bool          `mapstructure:"strict_cluster_match"`
	LogInsertTimeout   time.Duration `mapstructure:"log_insert_timeout"`
}

// CacheConfig cache TTLs.
type CacheConfig struct {
	ClusterTTL time.Duration `mapstructure:"cluster_ttl"`
}

// LogConfig logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, an optional config file and the environment.
// Precedence: environment > config file > defaults. A .env file in the working
// directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.name", "owo_internet")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "")
	v.SetDefault("db.timezone", "Asia/Jakarta")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.cookie.same_site", "Lax")
	v.SetDefault("auth.local_email_domain", "sab.id")
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("auth.login_rate_window", "1m")

	v.SetDefault("skylink.timeout", "30s")
	v.SetDefault("skylink.pending_status", "PENDING_VERIFICATION")
	v.SetDefault("skylink.shipment_limit", 100000)
	v.SetDefault("skylink.max_file_bytes", 32<<20)
	v.SetDefault("skylink.preview_max_pixels", 40_000_000)

	v.SetDefault("verification.strict_cluster_match", false)
	v.SetDefault("verification.log_insert_timeout", "3s")

	v.SetDefault("cache.cluster_ttl", "10m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath("./backend/config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("OWO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	if c.Skylink.BaseURL == "" {
		return fmt.Errorf("config: skylink.base_url must not be empty")
	}
	if c.Skylink.ShipmentLimit <= 0 {
		return fmt.Errorf("config: skylink.shipment_limit must be positive")
	}
	for i, u := range c.Auth.LocalUsers {
		if u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("config: auth.local_users[%d] needs username and password_hash", i)
		}
		if u.Role != "" && u.Role != "user" && u.Role != "admin" {
			return fmt.Errorf("config: auth.local_users[%d] has unknown role %q", i, u.Role)
		}
	}
	return nil
}
