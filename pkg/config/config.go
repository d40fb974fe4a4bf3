package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/user/debugpanel/internal/entity"
)

// Pool types.
const (
	ThreadPool  = "thread-pool"
	ProcessPool = "process-pool"
)

// EnvPrefix prefixes every environment variable, e.g. DEBUGPANEL_POOL_SIZE.
const EnvPrefix = "DEBUGPANEL"

// Config stores all configuration for the application.
type Config struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// PoolSize of zero picks the number of available CPUs.
	PoolSize int    `mapstructure:"pool_size"`
	PoolType string `mapstructure:"pool_type"`
	// Wait is the minimum delay between two request starts.
	Wait time.Duration `mapstructure:"wait"`
	// Timeout bounds one request. Zero means no limit.
	Timeout            time.Duration `mapstructure:"timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	Depth              int           `mapstructure:"depth"`

	TableFormat string `mapstructure:"table_format"`
	Progress    bool   `mapstructure:"progress"`
	MetricsFile string `mapstructure:"metrics_file"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// ListenAddr is used by the mock node only.
	ListenAddr string `mapstructure:"listen_addr"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("pool_size", 0)
	v.SetDefault("pool_type", ThreadPool)
	v.SetDefault("wait", time.Duration(0))
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("insecure_skip_verify", false)
	v.SetDefault("depth", entity.DefaultDepth)
	v.SetDefault("table_format", "simple")
	v.SetDefault("progress", false)
	v.SetDefault("metrics_file", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_file", "")
	v.SetDefault("listen_addr", ":8081")
}

// New returns a viper instance holding every default. Callers may
// override defaults and bind flags before calling Load.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

// Load reads configuration from the optional file, the environment and
// whatever flags were bound to v, in increasing order of precedence.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, entity.Configurationf("reading config file %s: %v", configFile, err)
		}
	}

	wait, err := waitValue(v.Get("wait"))
	if err != nil {
		return nil, err
	}
	v.Set("wait", wait)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, entity.Configurationf("decoding configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseWait accepts a Go duration ("1.5s", "200ms") or a plain number of
// seconds, the form the legacy --wait option took.
func ParseWait(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	var d time.Duration
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		d = seconds(secs)
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, entity.Configurationf("invalid wait %q: expected a duration or a number of seconds", s)
	}
	if d < 0 {
		return 0, entity.Configurationf("wait must not be negative, got %s", s)
	}
	return d, nil
}

// waitValue normalizes wait from whichever source set it. Numbers from a
// config file are seconds, like the flag.
func waitValue(raw any) (time.Duration, error) {
	switch w := raw.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return w, nil
	case string:
		return ParseWait(w)
	case int:
		return ParseWait(strconv.Itoa(w))
	case int64:
		return ParseWait(strconv.FormatInt(w, 10))
	case float64:
		return ParseWait(strconv.FormatFloat(w, 'f', -1, 64))
	default:
		return 0, entity.Configurationf("invalid wait %v", raw)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate checks the values that do not depend on the selected operation.
func (c *Config) Validate() error {
	if c.PoolSize < 0 {
		return &entity.InvalidPoolSizeError{Size: c.PoolSize}
	}
	switch c.PoolType {
	case ThreadPool, ProcessPool:
	default:
		return entity.Configurationf("invalid pool type %q: expected %s or %s", c.PoolType, ThreadPool, ProcessPool)
	}
	if c.Depth < 0 {
		return entity.Configurationf("depth must be non-negative, got %d", c.Depth)
	}
	if c.Wait < 0 || c.Timeout < 0 {
		return entity.Configurationf("wait and timeout must be non-negative")
	}
	return nil
}

// String hides the password.
func (c Config) String() string {
	type plain Config
	c.Password = strings.Repeat("*", min(len(c.Password), 8))
	return fmt.Sprintf("%+v", plain(c))
}
