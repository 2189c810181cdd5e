package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MDD"

// Config holds the API server configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr       string
		CORSOrigin string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
	}
	Topics struct {
		// Seed entries use the "Title: description" form.
		Seed []string
	}
	Backup struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
		Interval  time.Duration
		Retain    int
		WorkDir   string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	BaseURL     string
	SessionFile string
	Timeout     time.Duration
	Log         struct {
		Level string
	}
}

// DefaultTopics is the catalogue created on first start.
var DefaultTopics = []string{
	"JavaScript: Le langage du web, côté client comme côté serveur",
	"Java: Écosystème JVM, Spring et compagnie",
	"Python: Scripts, data et back-end",
	"Web3: Blockchain, smart contracts et applications décentralisées",
	"Go: Services, outillage et concurrence",
	"Angular: Framework front-end de Google",
}

// Load reads the server configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := newViper("config")
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.corsorigin", "http://localhost:4200")
	v.SetDefault("database.path", "data/mdd.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("topics.seed", DefaultTopics)
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.keyprefix", "mdd-backups")
	v.SetDefault("backup.region", "us-east-1")
	v.SetDefault("backup.endpoint", "")
	v.SetDefault("backup.interval", "6h")
	v.SetDefault("backup.retain", 7)
	v.SetDefault("backup.workdir", "data/backups")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")

	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the client configuration; flags, when given, override env and file values.
func LoadClient(flags *pflag.FlagSet) (ClientConfig, error) {
	loadDotEnv()

	v := newViper("mdd")
	v.SetDefault("baseurl", "http://localhost:8080/api")
	v.SetDefault("sessionfile", defaultSessionFile())
	v.SetDefault("timeout", "15s")
	v.SetDefault("log.level", "warn")
	_ = v.BindEnv("baseurl", envPrefix+"_BASE_URL", envPrefix+"_BASEURL")
	_ = v.BindEnv("sessionfile", envPrefix+"_SESSION_FILE", envPrefix+"_SESSIONFILE")

	if flags != nil {
		bindings := map[string]string{
			"baseurl":     "base-url",
			"sessionfile": "session-file",
			"timeout":     "timeout",
			"log.level":   "log-level",
		}
		for key, name := range bindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return ClientConfig{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	_ = v.ReadInConfig() // optional file

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("failed to unmarshal client config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return ClientConfig{}, fmt.Errorf("base url is required")
	}
	return cfg, nil
}

// ParseTopic splits a "Title: description" seed entry.
func ParseTopic(entry string) (title, description string) {
	title, description, _ = strings.Cut(entry, ":")
	return strings.TrimSpace(title), strings.TrimSpace(description)
}

func newViper(name string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName(name)
	v.AddConfigPath(".")
	return v
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "mdd", "session.json")
}

// loadDotEnv fills unset variables from a local .env file when present.
func loadDotEnv() {
	_ = godotenv.Load()
}
