package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		ListenAddr string `mapstructure:"listen_addr"`
	} `mapstructure:"server"`

	Backend struct {
		URL       string        `mapstructure:"url"`
		Transport string        `mapstructure:"transport"` // http | docker-exec
		Container string        `mapstructure:"container"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`

	Chain struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"chain"`

	Docker struct {
		Binary     string        `mapstructure:"binary"`
		Timeout    time.Duration `mapstructure:"timeout"`
		Containers []string      `mapstructure:"containers"`
		RestartSet []string      `mapstructure:"restart_set"`
		LogTail    int           `mapstructure:"log_tail"`
	} `mapstructure:"docker"`

	Pool struct {
		PollInterval    time.Duration `mapstructure:"poll_interval"`
		ConfirmAttempts int           `mapstructure:"confirm_attempts"`
		ConfirmInterval time.Duration `mapstructure:"confirm_interval"`
	} `mapstructure:"pool"`

	State struct {
		File string `mapstructure:"file"`
	} `mapstructure:"state"`

	Session struct {
		Secret   string        `mapstructure:"secret"`
		TTL      time.Duration `mapstructure:"ttl"`
		Required bool          `mapstructure:"required"`
	} `mapstructure:"session"`

	RateLimit struct {
		PerSecond float64       `mapstructure:"per_second"`
		Burst     int           `mapstructure:"burst"`
		MaxWait   time.Duration `mapstructure:"max_wait"`
	} `mapstructure:"ratelimit"`

	Log struct {
		Level  string        `mapstructure:"level"`
		Dev    bool          `mapstructure:"dev"`
		File   string        `mapstructure:"file"`
		MaxAge time.Duration `mapstructure:"max_age"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", "127.0.0.1:7000")

	v.SetDefault("backend.url", "http://127.0.0.1:3500")
	v.SetDefault("backend.transport", "http")
	v.SetDefault("backend.container", "fula_go")
	v.SetDefault("backend.timeout", 30*time.Second)

	v.SetDefault("chain.url", "https://api.node3.functionyard.fula.network")
	v.SetDefault("chain.timeout", 30*time.Second)

	v.SetDefault("docker.binary", "docker")
	v.SetDefault("docker.timeout", 60*time.Second)
	v.SetDefault("docker.containers", []string{"fula_go", "fula_node", "ipfs_host", "ipfs_cluster", "fula_fxsupport"})
	v.SetDefault("docker.restart_set", []string{"ipfs_host", "ipfs_cluster", "fula_go", "fula_node"})
	v.SetDefault("docker.log_tail", 20)

	v.SetDefault("pool.poll_interval", 5*time.Minute)
	v.SetDefault("pool.confirm_attempts", 6)
	v.SetDefault("pool.confirm_interval", 10*time.Second)

	v.SetDefault("state.file", defaultStateFile())

	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.required", true)

	v.SetDefault("ratelimit.per_second", 0.5)
	v.SetDefault("ratelimit.burst", 4)
	v.SetDefault("ratelimit.max_wait", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_age", 7*24*time.Hour)
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "blox-wizard", "state.json")
}

// Load reads defaults, then the optional YAML file at path, then BLOX_* environment
// variables (e.g. BLOX_BACKEND_URL overrides backend.url).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BLOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Backend.Transport {
	case "http", "docker-exec":
	default:
		return fmt.Errorf("config: unknown backend transport %q", c.Backend.Transport)
	}
	if len(c.Docker.Containers) == 0 {
		return fmt.Errorf("config: docker.containers must not be empty")
	}
	for _, name := range c.Docker.RestartSet {
		if !contains(c.Docker.Containers, name) {
			return fmt.Errorf("config: restart container %q is not in docker.containers", name)
		}
	}
	if c.Pool.ConfirmAttempts < 1 {
		c.Pool.ConfirmAttempts = 1
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
