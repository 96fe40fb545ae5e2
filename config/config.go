package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the server,
// e.g. QFORMS_DB_URL.
const EnvPrefix = "QFORMS"

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
}

// AddFlags registers the server flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("host", "0.0.0.0", "listen host name")
	fs.Uint("port", 8080, "listen port number")
	fs.String("db-url", "qforms.sqlite", "path to SQLite3 DB file")
	fs.String("token-secret", "", "secret key for admin tokens; leave empty to disable admin auth")
	fs.Duration("token-ttl", 2*time.Minute, "admin access token TTL")
	fs.Bool("debug", false, "log at DEBUG level")
	fs.String("openai-key", "", "OpenAI API key; the assistant is disabled without one")
	fs.String("openai-model", "", "OpenAI chat model (default gpt-3.5-turbo)")
	fs.String("openai-base-url", "", "OpenAI compatible API base URL")
}

// Bind wires flags and environment into v. OPENAI_API_KEY is honoured as a
// fallback for the assistant key.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openai-key", EnvPrefix+"_OPENAI_KEY", "OPENAI_API_KEY"); err != nil {
		return err
	}
	return v.BindPFlags(fs)
}

// Load reads the configuration out of v and validates it.
func Load(v *viper.Viper) (cfg Config, err error) {
	port := v.GetUint("port")
	cfg = Config{
		Addr:          net.JoinHostPort(v.GetString("host"), strconv.Itoa(int(port))),
		DBUrl:         v.GetString("db-url"),
		TokenSecret:   v.GetString("token-secret"),
		TokenTTL:      v.GetDuration("token-ttl"),
		Debug:         v.GetBool("debug"),
		OpenAIKey:     v.GetString("openai-key"),
		OpenAIModel:   v.GetString("openai-model"),
		OpenAIBaseURL: v.GetString("openai-base-url"),
	}
	err = cfg.Validate()
	return
}

// Validate reports every problem with cfg at once.
func (cfg Config) Validate() error {
	var result *multierror.Error

	host, port, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid listen address %q: %w", cfg.Addr, err))
	} else {
		if host == "" {
			result = multierror.Append(result, fmt.Errorf("missing parameter -host"))
		}
		if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
			result = multierror.Append(result, fmt.Errorf("port %s out of range 1-65535", port))
		}
	}
	if cfg.DBUrl == "" {
		result = multierror.Append(result, fmt.Errorf("missing parameter -db-url"))
	}
	if cfg.AuthEnabled() && cfg.TokenTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("token-ttl must be positive, got %s", cfg.TokenTTL))
	}

	return result.ErrorOrNil()
}

// AuthEnabled reports whether builder routes require an admin token.
func (cfg Config) AuthEnabled() bool {
	return cfg.TokenSecret != ""
}

func (cfg Config) AssistantEnabled() bool {
	return cfg.OpenAIKey != ""
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
