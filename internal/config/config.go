package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Service    Service    `yaml:"service"`
	Server     Server     `yaml:"server"`
	Generation Generation `yaml:"generation"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Database   Database   `yaml:"database"`
	Redis      Redis      `yaml:"redis"`
	Archive    Archive    `yaml:"archive"`
	Mail       Mail       `yaml:"mail"`
	Logging    Logging    `yaml:"logging"`
}

type Service struct {
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

type Server struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Generation struct {
	APIKey          string `yaml:"api_key"`
	Project         string `yaml:"project"`
	Location        string `yaml:"location"`
	Model           string `yaml:"model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	MaxRounds       int    `yaml:"max_rounds"`
	AcceptThreshold int    `yaml:"accept_threshold"`
}

type RateLimit struct {
	Limit         int           `yaml:"limit"`
	Window        time.Duration `yaml:"window"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Database struct {
	Driver     string `yaml:"driver"` // mysql | sqlite
	DSN        string `yaml:"dsn"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Redis is optional; without an address the limiter stays in process.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Archive is optional; without a host the similarity archive is disabled.
type Archive struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
	Dimensions uint64 `yaml:"dimensions"`
}

type Mail struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Load reads the embedded defaults, then the optional YAML file at path, then
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var err error
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" || err != nil {
			return
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			err = fmt.Errorf("%s: %w", key, convErr)
			return
		}
		*dst = n
	}

	num("PORT", &c.Server.Port)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	str("GEMINI_API_KEY", &c.Generation.APIKey)
	str("GOOGLE_CLOUD_PROJECT", &c.Generation.Project)
	str("GOOGLE_CLOUD_LOCATION", &c.Generation.Location)
	str("GEMINI_MODEL", &c.Generation.Model)
	num("MAX_ROUNDS", &c.Generation.MaxRounds)
	num("ACCEPT_THRESHOLD", &c.Generation.AcceptThreshold)

	str("DB_DRIVER", &c.Database.Driver)
	str("DATABASE_DSN", &c.Database.DSN)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("MARIADB_PRIVATE_HOST", &c.Database.Host)
	num("MARIADB_PRIVATE_PORT", &c.Database.Port)
	str("MARIADB_USER", &c.Database.User)
	str("MARIADB_PASSWORD", &c.Database.Password)
	str("MARIADB_DATABASE", &c.Database.Name)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)

	str("QDRANT_HOST", &c.Archive.Host)
	num("QDRANT_PORT", &c.Archive.Port)
	str("QDRANT_COLLECTION", &c.Archive.Collection)

	str("SMTP_HOST", &c.Mail.Host)
	num("SMTP_PORT", &c.Mail.Port)
	str("SMTP_USER", &c.Mail.User)
	str("SMTP_PASS", &c.Mail.Pass)
	str("SMTP_FROM", &c.Mail.From)

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	return err
}

func (c *Config) Validate() error {
	if c.Generation.MaxRounds < 1 {
		return fmt.Errorf("generation.max_rounds must be at least 1, got %d", c.Generation.MaxRounds)
	}
	if t := c.Generation.AcceptThreshold; t < 1 || t > 10 {
		return fmt.Errorf("generation.accept_threshold must be in [1,10], got %d", t)
	}
	if c.RateLimit.Limit < 1 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit needs a positive limit and window")
	}
	switch c.Database.Driver {
	case "mysql", "mariadb", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("server.allowed_origins must not be empty")
	}
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" {
			return fmt.Errorf("server.allowed_origins must list explicit origins")
		}
	}
	return nil
}

// MailEnabled reports whether SMTP credentials are configured.
func (c *Config) MailEnabled() bool {
	return c.Mail.Host != "" && c.Mail.User != ""
}

// IsSQLite reports whether the ledger uses the local sqlite file.
func (c *Config) IsSQLite() bool {
	return strings.HasPrefix(c.Database.Driver, "sqlite")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
