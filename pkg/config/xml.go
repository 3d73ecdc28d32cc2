package config

import (
	"encoding/xml"
	"fmt"
	"os"
)

// xmlConfig is the legacy XML schema: queueMax/poolMin/poolMax/skt/
// nasIdentifier at the top level, serverList/server for upstream
// servers.
type xmlConfig struct {
	XMLName xml.Name `xml:"config"`

	QueueMax int `xml:"queueMax"`
	PoolMin  int `xml:"poolMin"`
	PoolMax  int `xml:"poolMax"`

	Skt struct {
		RcvBuf int `xml:"rcvBuf"`
		SndBuf int `xml:"sndBuf"`
	} `xml:"skt"`

	NASIdentifier string `xml:"nasIdentifier"`

	ServerList struct {
		Servers []xmlServer `xml:"server"`
	} `xml:"serverList"`
}

type xmlServer struct {
	Address string `xml:"address"`
	Secret  string `xml:"secret"`

	RetransTimeInit    Duration `xml:"retransTimeInit"`
	RetransTimeMax     Duration `xml:"retransTimeMax"`
	RetransDurationMax Duration `xml:"retransDurationMax"`
	RetransCountMax    int      `xml:"retransCountMax"`
}

// LoadXML reads the legacy XML configuration schema and converts it
// into the same Config produced by LoadYAML, so operators can migrate a
// deployment without rewriting its configuration first.
func LoadXML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var x xmlConfig
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := &Config{
		ServersMax:    x.QueueMax,
		ThrSocketsMin: x.PoolMin,
		ThrSocketsMax: x.PoolMax,
		SktRcvBuf:     x.Skt.RcvBuf,
		SktSndBuf:     x.Skt.SndBuf,
		NASIdentifier: x.NASIdentifier,
	}

	for _, s := range x.ServerList.Servers {
		cfg.Servers = append(cfg.Servers, ServerConfig{
			Addr:               s.Address,
			Secret:             s.Secret,
			RetransTimeInit:    s.RetransTimeInit,
			RetransTimeMax:     s.RetransTimeMax,
			RetransDurationMax: s.RetransDurationMax,
			RetransCountMax:    s.RetransCountMax,
		})
	}

	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
