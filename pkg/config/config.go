// Package config loads radclient.Client settings from YAML (the
// recommended format) or from a legacy XML schema.
package config

import (
	"fmt"
	"time"

	"github.com/vitalvas/radqueue/pkg/radclient"
)

// Config is the format-independent configuration both LoadYAML and
// LoadXML produce.
type Config struct {
	ServersMax    int `yaml:"serversMax"`
	ThrSocketsMin int `yaml:"poolMin"`
	ThrSocketsMax int `yaml:"poolMax"`

	SktRcvBuf int `yaml:"sktRcvBuf"`
	SktSndBuf int `yaml:"sktSndBuf"`

	NASIdentifier string `yaml:"nasIdentifier"`

	Workers int `yaml:"workers"`

	Servers []ServerConfig `yaml:"servers"`
}

// ServerConfig is one upstream RADIUS server entry.
type ServerConfig struct {
	Name   string `yaml:"name"`
	Addr   string `yaml:"address"`
	Secret string `yaml:"secret"`

	RetransTimeInit    Duration `yaml:"retransTimeInit"`
	RetransTimeMax     Duration `yaml:"retransTimeMax"`
	RetransDurationMax Duration `yaml:"retransDurationMax"`
	RetransCountMax    int      `yaml:"retransCountMax"`

	Disabled bool `yaml:"disabled"`
}

// Duration wraps time.Duration so both YAML ("1s", "500ms") and the XML
// loader's plain text nodes parse the same way, via UnmarshalText.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, used by both yaml.v3
// (which accepts it for scalar nodes) and encoding/xml's chardata
// decoding. An empty string leaves the duration at zero.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig mirrors radclient.DefaultSettings so a config file only
// needs to specify what it wants to override.
func DefaultConfig() *Config {
	return &Config{
		ServersMax:    32,
		ThrSocketsMin: 1,
		ThrSocketsMax: 16,
		Workers:       1,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.ServersMax <= 0 {
		cfg.ServersMax = 32
	}
	if cfg.ThrSocketsMin <= 0 {
		cfg.ThrSocketsMin = 1
	}
	if cfg.ThrSocketsMax < cfg.ThrSocketsMin {
		cfg.ThrSocketsMax = cfg.ThrSocketsMin
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	for i := range cfg.Servers {
		if cfg.Servers[i].RetransTimeInit == 0 {
			cfg.Servers[i].RetransTimeInit = Duration(time.Second)
		}
		if cfg.Servers[i].RetransCountMax == 0 {
			cfg.Servers[i].RetransCountMax = 3
		}
	}
}

// ToSettings converts to radclient.Settings. SktRcvBuf/SktSndBuf and
// NASIdentifier pass through unchanged.
func (c *Config) ToSettings() radclient.Settings {
	return radclient.Settings{
		ServersMax:    c.ServersMax,
		ThrSocketsMin: c.ThrSocketsMin,
		ThrSocketsMax: c.ThrSocketsMax,
		SktSndBuf:     c.SktSndBuf,
		SktRcvBuf:     c.SktRcvBuf,
		NASIdentifier: []byte(c.NASIdentifier),
		WorkerCount:   c.Workers,
	}
}

// ToServerSettings converts one server entry to radclient.ServerSettings.
func (s ServerConfig) ToServerSettings() radclient.ServerSettings {
	return radclient.ServerSettings{
		Name:               s.Name,
		Addr:               s.Addr,
		Secret:             []byte(s.Secret),
		RetransTimeInit:    time.Duration(s.RetransTimeInit),
		RetransTimeMax:     time.Duration(s.RetransTimeMax),
		RetransDurationMax: time.Duration(s.RetransDurationMax),
		RetransCountMax:    s.RetransCountMax,
		Enabled:            !s.Disabled,
	}
}

func validateConfig(cfg *Config) error {
	if cfg.ServersMax < len(cfg.Servers) {
		return fmt.Errorf("config: serversMax (%d) is smaller than the number of configured servers (%d)", cfg.ServersMax, len(cfg.Servers))
	}
	for i, srv := range cfg.Servers {
		if srv.Addr == "" {
			return fmt.Errorf("config: server[%d]: address is required", i)
		}
		if srv.Secret == "" {
			return fmt.Errorf("config: server[%d]: secret is required", i)
		}
	}
	return nil
}
