package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultExtension = ".opus"
	DefaultComment   = "Tagged for null:radio"
	DefaultDelay     = 250 * time.Millisecond
	DefaultFile      = "config.json"
)

type Config struct {
	Dir        string   `json:"dir"`
	Extension  string   `json:"extension"`
	Delay      Duration `json:"delay"`
	Comment    string   `json:"comment"`
	UserAgent  string   `json:"user_agent"`
	BaseURL    string   `json:"base_url"`
	ImageIndex int      `json:"image_index"`
	Proxy      string   `json:"proxy"`
	Timeout    Duration `json:"timeout"`
	LogFile    string   `json:"log_file"`

	// APIKey only ever comes from the environment.
	APIKey string `json:"-"`
}

// Env is the environment surface.
type Env struct {
	APIKey string `envconfig:"LASTFM_API_KEY"`
	Proxy  string `envconfig:"DOWNTAG_PROXY"`
	Dir    string `envconfig:"DOWNTAG_DIR"`
}

func Default() *Config {
	return &Config{
		Extension:  DefaultExtension,
		Delay:      Duration{DefaultDelay},
		Comment:    DefaultComment,
		UserAgent:  "downtag",
		BaseURL:    "https://ws.audioscrobbler.com/2.0/",
		ImageIndex: 2,
	}
}

// LoadConfig reads the JSON file at path over the defaults, then applies the
// environment. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.APIKey = env.APIKey
	if env.Proxy != "" {
		cfg.Proxy = env.Proxy
	}
	if env.Dir != "" {
		cfg.Dir = env.Dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Extension == "" {
		return errors.New("extension must not be empty")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.Delay.Duration < 0 {
		return errors.New("delay must not be negative")
	}
	if c.ImageIndex < 0 {
		return errors.New("image_index must not be negative")
	}
	return nil
}

// ResolveDir returns Dir, or the directory holding the running executable
// when Dir is empty.
func (c *Config) ResolveDir() (string, error) {
	if c.Dir != "" {
		return filepath.Abs(c.Dir)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Duration reads either a Go duration string ("250ms") or a number of
// seconds (0.25).
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch x := v.(type) {
	case float64:
		d.Duration = time.Duration(x * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", x, err)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Set parses a flag value: a duration string or a plain number of seconds.
func (d *Duration) Set(s string) error {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
