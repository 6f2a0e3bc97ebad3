package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"` // application environment (dev, test, prod)
	Port string `env:"APP_PORT" envDefault:"8080"`

	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"` // mysql, sqlite3 or postgres
	DBUser   string `env:"DB_USER" envDefault:"root"`
	DBPass   string `env:"DB_PASS"`
	DBHost   string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort   string `env:"DB_PORT"`
	DBName   string `env:"DB_NAME" envDefault:"campaign_companion"`
	DBDSN    string `env:"DB_DSN"` // used verbatim when set

	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"campaign-companion"`
	JWTAudience string        `env:"JWT_AUDIENCE" envDefault:"campaign-companion-clients"`
	AccessTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"12"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	Events    EventsConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.RateLimit.normalize()
	cfg.Events.normalize()
	return cfg, nil
}

// loadDotEnv loads .env from the working directory when there is one.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite3", "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if c.AccessTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// DatabaseDSN returns DB_DSN when set, otherwise a DSN assembled from the
// DB_* parts for the configured driver. For sqlite3 DB_NAME is the file path.
func (c Config) DatabaseDSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "sqlite3", "sqlite":
		return c.DBName
	case "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DBUser, c.DBPass),
			Host:     net.JoinHostPort(c.DBHost, portOr(c.DBPort, "5432")),
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=disable",
		}
		if c.DBPass == "" {
			u.User = url.User(c.DBUser)
		}
		return u.String()
	default:
		mc := mysql.NewConfig()
		mc.User = c.DBUser
		mc.Passwd = c.DBPass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.DBHost, portOr(c.DBPort, "3306"))
		mc.DBName = c.DBName
		mc.Loc = time.UTC // driver default, left out of the DSN
		_ = mc.Apply(mysql.Charset("utf8mb4", ""))
		return mc.FormatDSN()
	}
}

func portOr(p, def string) string {
	if p == "" {
		return def
	}
	return p
}
