package util

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// EnvPrefix namespaces every environment variable, e.g. FANLIFE_DSN.
const EnvPrefix = "FANLIFE"

// Config holds runtime settings. Flags override what the environment sets.
type Config struct {
	Seed    string `envconfig:"SEED"`
	Backend string `envconfig:"BACKEND" default:"memory"` // postgres|redis|memory
	SaveKey string `envconfig:"SAVE_KEY" default:"default"`

	DSN           string `envconfig:"DSN"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	AIKey     string        `envconfig:"AI_KEY"`
	AIBaseURL string        `envconfig:"AI_BASE_URL"`
	AIModel   string        `envconfig:"AI_MODEL"`
	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"90s"`

	TablesPath  string `envconfig:"TABLES"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
	Theme       string `envconfig:"THEME" default:"sakura"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogPath     string `envconfig:"LOG_PATH" default:"fanlife.log"`
}

// Backends lists the accepted save backends.
var Backends = []string{"memory", "postgres", "redis"}

// LoadConfig reads an optional .env file and then the environment. Callers
// apply flag overrides and then call Validate.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, errors.Wrapf(err, "load %s", envFile)
			}
		}
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "process environment")
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	backend := strings.ToLower(c.Backend)
	for _, b := range Backends {
		if backend == b {
			if backend == "postgres" && c.DSN == "" {
				return errors.New("postgres backend needs FANLIFE_DSN")
			}
			return nil
		}
	}
	return errors.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", "))
}
