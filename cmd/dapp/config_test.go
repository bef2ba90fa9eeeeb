package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-dapp/config"
)

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"DAPP_HOST":             "10.0.0.2",
		"DAPP_START_PORT":       "4000",
		"DAPP_END_PORT":         "4005",
		"DAPP_KNOWN_PEERS":      " http://a:1 , ,b:2",
		"DAPP_MONITOR":          "off",
		"DAPP_MONITOR_INTERVAL": "10s",
		"DAPP_AUTO_FETCH":       "false",
		"DAPP_PORT":             "not-a-number",
	}
	cfg := config.NewConfig()
	applyEnvOverrides(cfg, func(k string) string { return env[k] })

	assert.Equal(t, "10.0.0.2", cfg.Node.Host)
	assert.Equal(t, 0, cfg.Node.Port, "无法解析的值被忽略")
	assert.Equal(t, 4000, cfg.Discovery.StartPort)
	assert.Equal(t, 4005, cfg.Discovery.EndPort)
	assert.Equal(t, []string{"http://a:1", "b:2"}, cfg.Discovery.KnownPeers)
	assert.False(t, cfg.Discovery.Monitor)
	assert.Equal(t, 10*time.Second, cfg.Discovery.MonitorInterval.Duration())
	assert.False(t, cfg.CodeStore.AutoFetch)
	assert.True(t, cfg.Metrics.Enable)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "YES", " on "} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"", "false", "0", "off", "nope"} {
		assert.False(t, parseBool(s), s)
	}
}
