package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug        bool         `yaml:"debug" env:"DEBUG"`
	Server       Server       `yaml:"server"`
	DB           DB           `yaml:"db"`
	Auth         Auth         `yaml:"auth"`
	Limiter      Limiter      `yaml:"limiter"`
	LoginLimiter LoginLimiter `yaml:"login_limiter"`
	CORS         CORS         `yaml:"cors"`
	Pagination   Pagination   `yaml:"pagination"`
	Redis        Redis        `yaml:"redis"`
	TMDB         TMDB         `yaml:"tmdb"`
	SMTPServer   SMTPServer   `yaml:"smtp"`
	Tasks        Tasks        `yaml:"tasks"`
	Metrics      Metrics      `yaml:"metrics"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
	Host string `yaml:"host" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DB struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Dsn             string        `yaml:"dsn" env:"DATABASE_URL"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	Migrate         bool          `yaml:"migrate" env:"DB_MIGRATE"`
}

type Auth struct {
	Secret         string        `yaml:"secret" env:"APP_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env-default:"30m"`
	BcryptCost     int           `yaml:"bcrypt_cost" env-default:"10"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

// LoginLimiter throttles credential guessing on /users/login independently of the global limiter.
type LoginLimiter struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests" env-default:"10"`
	Window   time.Duration `yaml:"window" env-default:"1m"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"*"`
}

type Pagination struct {
	DefaultLimit int `yaml:"default_limit" env-default:"20"`
	MaxLimit     int `yaml:"max_limit" env-default:"100"`
}

// Redis caching is disabled when Addr is empty.
type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"1m"`
}

type TMDB struct {
	ApiKey  string        `yaml:"api_key" env:"TMDB_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"TMDB_BASE_URL" env-default:"https://api.themoviedb.org/3"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
	Pages   int           `yaml:"pages" env-default:"5"`
}

// SMTPServer mail delivery is disabled when Host is empty.
type SMTPServer struct {
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"25"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender       string        `yaml:"sender" env-default:"Movie Night <no-reply@movienight.local>"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"4"`
	QueueSize int `yaml:"queue_size" env-default:"100"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
}

// Load reads configPath, letting environment variables (optionally from a .env file) override it.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Dsn == "" {
			return fmt.Errorf("db.dsn is required for driver %q", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	if c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("pagination.default_limit (%d) exceeds pagination.max_limit (%d)",
			c.Pagination.DefaultLimit, c.Pagination.MaxLimit)
	}
	return nil
}
