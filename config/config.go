package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/GyrosOfWar/serve"
	servehttp "github.com/GyrosOfWar/serve/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for serve.
type Config struct {
	Server  ServerConfig         `mapstructure:"server" yaml:"server"`
	Storage StorageConfig        `mapstructure:"storage" yaml:"storage"`
	Auth    AuthConfig           `mapstructure:"auth" yaml:"auth"`
	CORS    servehttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Log     LogConfig            `mapstructure:"log" yaml:"log"`
	Env     string               `mapstructure:"env" yaml:"env" validate:"required,oneof=dev development prod production"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int    `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	Bind            string `mapstructure:"bind" yaml:"bind" validate:"required,ip|hostname"`
	Realm           string `mapstructure:"realm" yaml:"realm" validate:"required"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=1"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Bind, strconv.Itoa(s.Port))
}

// ShutdownGrace returns how long in-flight requests get on shutdown.
func (s ServerConfig) ShutdownGrace() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// StorageConfig holds the served directory.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// AuthConfig holds basic authentication configuration.
type AuthConfig struct {
	// Credentials is "user:pass". Empty disables authentication.
	Credentials string `mapstructure:"credentials" yaml:"credentials" validate:"omitempty,credentials"`
}

// Parse returns the configured credentials, or nil when authentication is disabled.
func (a AuthConfig) Parse() (*serve.Credentials, error) {
	return serve.ParseCredentials(a.Credentials)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// IsProd reports whether the production log format should be used.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Redacted returns a copy of the config safe to print: the password is masked.
func (c *Config) Redacted() Config {
	out := *c
	if user, _, ok := strings.Cut(out.Auth.Credentials, ":"); ok {
		out.Auth.Credentials = user + ":********"
	}
	return out
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":      "server.port",
	"bind":      "server.bind",
	"realm":     "server.realm",
	"auth":      "auth.credentials",
	"log-level": "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key that
// may come from the environment needs a default so that AutomaticEnv sees it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.bind", "0.0.0.0")
	v.SetDefault("server.realm", "serve")
	v.SetDefault("server.shutdown_timeout", 30) // seconds

	v.SetDefault("storage.path", ".")

	v.SetDefault("auth.credentials", "")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Range", "If-None-Match", "If-Modified-Since", "If-Range"})
	v.SetDefault("cors.exposed_headers", []string{"Content-Length", "Content-Range", "ETag", "Last-Modified"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("env", "dev")
}

func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("credentials", func(fl validator.FieldLevel) bool {
		_, err := serve.ParseCredentials(fl.Field().String())
		return err == nil
	})
	return validate
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("serve")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := newValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
