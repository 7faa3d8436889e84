package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendJSON   = "json"
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Environment   string   `mapstructure:"environment"`
	ServerAddress string   `mapstructure:"server_address"`
	CorsOrigins   []string `mapstructure:"cors_origins"`
	LogLevel      string   `mapstructure:"log_level"`

	StoreBackend   string        `mapstructure:"store_backend"`
	RequestsFile   string        `mapstructure:"requests_file"`
	CommentsFile   string        `mapstructure:"comments_file"`
	DatabaseDSN    string        `mapstructure:"database_dsn"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`

	AuthEnabled  bool          `mapstructure:"auth_enabled"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	StaffPinHash string        `mapstructure:"staff_pin_hash"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
}

// LoadConfig reads .env, an optional config.yaml under path, and HELPDESK_*
// environment variables, in increasing precedence.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment")
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, errors.Wrap(err, "error reading config file")
		}
	}

	v.SetEnvPrefix("HELPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The assistant key is commonly exported without the prefix.
	if err := v.BindEnv("gemini_api_key", "HELPDESK_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, errors.Wrap(err, "bind gemini_api_key")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unable to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at startup.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendJSON:
		if c.RequestsFile == "" || c.CommentsFile == "" {
			return errors.New("requests_file and comments_file are required for the json backend")
		}
	case BackendMySQL, BackendSQLite:
		if c.DatabaseDSN == "" {
			return errors.Errorf("database_dsn is required for the %s backend", c.StoreBackend)
		}
	default:
		return errors.Errorf("unknown store_backend %q", c.StoreBackend)
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return errors.New("jwt_secret is required when auth_enabled is set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server_address", "0.0.0.0:8080")
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("log_level", "info")

	v.SetDefault("store_backend", BackendJSON)
	v.SetDefault("requests_file", "requests.json")
	v.SetDefault("comments_file", "comments.json")
	v.SetDefault("database_dsn", "")
	v.SetDefault("reload_interval", "0s")

	v.SetDefault("auth_enabled", false)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("staff_pin_hash", "")
	v.SetDefault("token_ttl", "12h")

	v.SetDefault("gemini_api_key", "")
}
