// Package config manages YAML-based configuration, environment overrides, and CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. NBHUB_NOTEBOOKS_DIR.
const EnvPrefix = "NBHUB"

// Config holds all configuration options for NBHub
type Config struct {
	// Document root; made absolute by Load.
	NotebooksDir string `yaml:"notebooks_dir" mapstructure:"notebooks_dir"`

	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	Watch          bool     `yaml:"watch" mapstructure:"watch"`

	// Serve notebooks as committed at this ref instead of the working tree.
	GitRef string `yaml:"git_ref,omitempty" mapstructure:"git_ref"`

	CodeStyle string `yaml:"code_style" mapstructure:"code_style"`
	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`

	// Internal: config file the values were read from, if any
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		NotebooksDir: "notebooks",
		Port:         8000,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://localhost:2808",
			"https://notebook-viewer-1.onrender.com",
		},
		Watch:     true,
		CodeStyle: "monokai",
		LogLevel:  "info",
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nbhub"
	}
	return filepath.Join(home, ".config", "nbhub")
}

// GetConfigPath returns the full path to the global config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Flag names bound to config keys by Load.
var flagKeys = map[string]string{
	"dir":       "notebooks_dir",
	"port":      "port",
	"origin":    "allowed_origins",
	"watch":     "watch",
	"git-ref":   "git_ref",
	"style":     "code_style",
	"log-level": "log_level",
}

// Load resolves configuration with precedence flags > env > config file > defaults.
// cfgFile is optional; when empty ~/.config/nbhub/config.yaml and then ./nbhub.yaml
// are tried. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("notebooks_dir", def.NotebooksDir)
	v.SetDefault("port", def.Port)
	v.SetDefault("allowed_origins", def.AllowedOrigins)
	v.SetDefault("watch", def.Watch)
	v.SetDefault("git_ref", def.GitRef)
	v.SetDefault("code_style", def.CodeStyle)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Hosting platforms hand the listen port over as a bare PORT.
	if err := v.BindEnv("port", EnvPrefix+"_PORT", "PORT"); err != nil {
		return nil, err
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		if _, err := os.Stat(GetConfigPath()); err == nil {
			cfgPath = GetConfigPath()
		} else if _, err := os.Stat("nbhub.yaml"); err == nil {
			cfgPath = "nbhub.yaml"
		}
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.configPath = cfgPath

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize resolves the notebook root to an absolute path and validates values.
func (c *Config) normalize() error {
	if c.NotebooksDir == "" {
		return fmt.Errorf("notebooks_dir must not be empty")
	}
	absPath, err := filepath.Abs(c.NotebooksDir)
	if err != nil {
		return fmt.Errorf("resolve notebooks_dir: %w", err)
	}
	c.NotebooksDir = absPath

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	origins := c.AllowedOrigins[:0]
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins
	return nil
}

// GetConfigFilePath returns the path of the config file that was read, or "".
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

// IsOriginAllowed reports whether origin is in the CORS allow-list.
// A "*" entry allows every origin.
func (c *Config) IsOriginAllowed(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// YAML returns the effective configuration in config file format.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
