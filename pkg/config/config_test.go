package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")

	data := `
serversMax: 4
poolMin: 1
poolMax: 4
nasIdentifier: nas01
servers:
  - name: primary
    address: 127.0.0.1:1812
    secret: testing123
    retransTimeInit: 1s
    retransCountMax: 3
  - address: 127.0.0.1:1813
    secret: testing456
    disabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadYAML(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.ServersMax)
	assert.Equal(t, "nas01", cfg.NASIdentifier)
	assert.Len(t, cfg.Servers, 2)
	assert.Equal(t, "primary", cfg.Servers[0].Name)
	assert.Equal(t, time.Second, time.Duration(cfg.Servers[0].RetransTimeInit))
	assert.True(t, cfg.Servers[1].Disabled)
}

func TestLoadYAML_MissingFile(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadYAML_ValidatesSecretRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")

	data := `
servers:
  - address: 127.0.0.1:1812
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadYAML(path)
	assert.Error(t, err)
}

func TestLoadXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.xml")

	data := `<config>
  <queueMax>8</queueMax>
  <poolMin>1</poolMin>
  <poolMax>8</poolMax>
  <skt>
    <rcvBuf>65536</rcvBuf>
    <sndBuf>65536</sndBuf>
  </skt>
  <nasIdentifier>nas-xml</nasIdentifier>
  <serverList>
    <server>
      <address>127.0.0.1:1812</address>
      <secret>testing123</secret>
      <retransTimeInit>1s</retransTimeInit>
      <retransTimeMax>8s</retransTimeMax>
      <retransDurationMax>30s</retransDurationMax>
      <retransCountMax>3</retransCountMax>
    </server>
  </serverList>
</config>`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadXML(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.ServersMax)
	assert.Equal(t, 65536, cfg.SktRcvBuf)
	assert.Equal(t, "nas-xml", cfg.NASIdentifier)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "127.0.0.1:1812", cfg.Servers[0].Addr)
	assert.Equal(t, 8*time.Second, time.Duration(cfg.Servers[0].RetransTimeMax))
}

func TestConfigToSettings(t *testing.T) {
	cfg := &Config{
		ServersMax:    10,
		ThrSocketsMin: 2,
		ThrSocketsMax: 6,
		SktRcvBuf:     4096,
		NASIdentifier: "nas01",
		Workers:       2,
	}

	settings := cfg.ToSettings()

	assert.Equal(t, 10, settings.ServersMax)
	assert.Equal(t, 2, settings.ThrSocketsMin)
	assert.Equal(t, 6, settings.ThrSocketsMax)
	assert.Equal(t, 4096, settings.SktRcvBuf)
	assert.Equal(t, []byte("nas01"), settings.NASIdentifier)
	assert.Equal(t, 2, settings.WorkerCount)
}

func TestServerConfigToServerSettings(t *testing.T) {
	sc := ServerConfig{
		Name:            "primary",
		Addr:            "127.0.0.1:1812",
		Secret:          "testing123",
		RetransCountMax: 5,
		Disabled:        true,
	}

	ss := sc.ToServerSettings()

	assert.Equal(t, "primary", ss.Name)
	assert.Equal(t, []byte("testing123"), ss.Secret)
	assert.Equal(t, 5, ss.RetransCountMax)
	assert.False(t, ss.Enabled)
}
