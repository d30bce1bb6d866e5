package app

import (
	"io/fs"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const (
	envPrefix   = "STORE"
	defaultAddr = "0.0.0.0:8080"
)

var configFiles = []string{"config.yaml", "/etc/backoffice/config.yaml"}

// Config holds the API server configuration, loadable from environment
// variables (STORE_ prefix), flags, a .env file, or YAML config files.
type Config struct {
	Addr           string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	RequestTimeout time.Duration `default:"30s" usage:"Per-request deadline for API calls" flag:"request-timeout"`
	MaxBodyBytes   int64         `default:"1048576" usage:"Maximum request body size in bytes" flag:"max-body-bytes"`
	Database       DatabaseConfig
	Graceful       GracefulConfig
}

// DatabaseConfig locates PostgreSQL. URL wins; otherwise the discrete
// connection fields are assembled into one.
type DatabaseConfig struct {
	URL      string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Host     string `usage:"PostgreSQL host (DB_HOST)" flag:"db-host"`
	Port     string `default:"5432" usage:"PostgreSQL port (DB_PORT)" flag:"db-port"`
	User     string `usage:"PostgreSQL user (DB_USER)" flag:"db-user"`
	Password string `usage:"PostgreSQL password (DB_PASSWORD)" flag:"db-password"`
	Name     string `usage:"PostgreSQL database (DB_NAME)" flag:"db-name"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads the server configuration, including command-line flags.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := load(&cfg, false); err != nil {
		return nil, err
	}
	cfg.applyPlatformDefaults()

	if _, err := cfg.Database.DSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabaseConfig loads only the database settings. Flags are left to the
// caller, which is how the CLI tools use it.
func LoadDatabaseConfig() (*DatabaseConfig, error) {
	var cfg struct {
		Database DatabaseConfig
	}
	if err := load(&cfg, true); err != nil {
		return nil, err
	}
	cfg.Database.applyPlatformDefaults()
	return &cfg.Database, nil
}

func load(dst any, skipFlags bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}

	loader := aconfig.LoaderFor(dst, aconfig.Config{
		EnvPrefix: envPrefix,
		SkipFlags: skipFlags,
		Files:     configFiles,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return errors.Wrap(err, "load config")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided variables such as
// DATABASE_URL and PORT onto the STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	c.Database.applyPlatformDefaults()
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// applyPlatformDefaults fills unset fields from DATABASE_URL and the
// DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME variables.
func (c *DatabaseConfig) applyPlatformDefaults() {
	fill := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fill(&c.URL, "DATABASE_URL")
	fill(&c.Host, "DB_HOST")
	fill(&c.User, "DB_USER")
	fill(&c.Password, "DB_PASSWORD")
	fill(&c.Name, "DB_NAME")
	if port := os.Getenv("DB_PORT"); port != "" && (c.Port == "" || c.Port == "5432") {
		c.Port = port
	}
}

// DSN returns the connection URL.
func (c DatabaseConfig) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" || c.Name == "" {
		return "", errors.New("database is not configured: set STORE_DATABASE_URL, DATABASE_URL or DB_HOST and DB_NAME")
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, port),
		Path:   "/" + c.Name,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	return u.String(), nil
}
