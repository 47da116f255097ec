package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/petems/hotkeyd/internal/hotkey"
	"go.yaml.in/yaml/v3"
)

// Action types a binding can run.
const (
	ActionExec      = "exec"
	ActionClipboard = "clipboard"
	ActionLog       = "log"
)

type Config struct {
	LogLevel     string    `json:"log_level" yaml:"log_level"`
	PollInterval Duration  `json:"poll_interval" yaml:"poll_interval"`
	ReplyTimeout Duration  `json:"reply_timeout" yaml:"reply_timeout"`
	Bindings     []Binding `json:"bindings" yaml:"bindings"`
	Relay        Relay     `json:"relay" yaml:"relay"`
	Tray         bool      `json:"tray" yaml:"tray"`

	path string
}

type Binding struct {
	Hotkey string `json:"hotkey" yaml:"hotkey"`
	Action Action `json:"action" yaml:"action"`
}

type Action struct {
	Type    string   `json:"type" yaml:"type"` // "exec", "clipboard" or "log"
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
}

type Relay struct {
	// Addr is the listen address of the websocket relay; empty disables it.
	Addr string `json:"addr" yaml:"addr"`
}

// Duration is a time.Duration written as a string ("50ms") in config files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.set(s)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		PollInterval: Duration(50 * time.Millisecond),
		ReplyTimeout: Duration(2 * time.Second),
		Bindings: []Binding{
			{
				Hotkey: "Ctrl+Alt+T",
				Action: Action{Type: ActionExec, Command: "x-terminal-emulator"},
			},
		},
		Tray: true,
	}
}

// Load reads the config from the default path or returns defaults
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.path = Path()
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads a JSON or YAML (by extension) config file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	// A file that lists bindings replaces the default set.
	cfg.Bindings = nil
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config back to the file it was loaded from
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = Path()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// File is the path the config was loaded from.
func (c *Config) File() string {
	if c.path == "" {
		return Path()
	}
	return c.path
}

// Validate checks every binding. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.PollInterval < 0 {
		errs = append(errs, errors.New("poll_interval must not be negative"))
	}
	if c.ReplyTimeout < 0 {
		errs = append(errs, errors.New("reply_timeout must not be negative"))
	}

	seen := make(map[uint32]string)
	for i, b := range c.Bindings {
		hk, err := hotkey.Parse(b.Hotkey)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %d (%q): %w", i, b.Hotkey, err))
			continue
		}
		if prev, dup := seen[hk.ID()]; dup {
			errs = append(errs, fmt.Errorf("binding %d (%q): same hotkey as %q", i, b.Hotkey, prev))
		}
		seen[hk.ID()] = b.Hotkey

		if err := b.Action.validate(); err != nil {
			errs = append(errs, fmt.Errorf("binding %d (%q): %w", i, b.Hotkey, err))
		}
	}
	return errors.Join(errs...)
}

func (a Action) validate() error {
	switch a.Type {
	case ActionExec:
		if a.Command == "" {
			return errors.New("exec action needs a command")
		}
	case ActionClipboard:
		if a.Text == "" {
			return errors.New("clipboard action needs text")
		}
	case ActionLog, "":
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

// HotKey parses the binding's hotkey string.
func (b Binding) HotKey() (hotkey.HotKey, error) {
	return hotkey.Parse(b.Hotkey)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Path returns the config file path under XDG_CONFIG_HOME
func Path() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, "hotkeyd", "config.json")
}
