package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost", cfg.Node.Host)
	assert.Equal(t, 3000, cfg.Discovery.StartPort)
	assert.Equal(t, 3010, cfg.Discovery.EndPort)
	assert.Equal(t, 11, cfg.Discovery.Ports())
	assert.Equal(t, 5*time.Second, cfg.Discovery.MonitorInterval.Duration())
	assert.True(t, cfg.CodeStore.AutoFetch)

	t.Log("✅ NewConfig 测试通过")
}

// TestNodeConfig 测试节点配置
func TestNodeConfig(t *testing.T) {
	cfg := DefaultNodeConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Host = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultNodeConfig()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}

// TestDiscoveryConfig 测试发现配置
func TestDiscoveryConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert.NoError(t, DefaultDiscoveryConfig().Validate())
	})

	t.Run("InvertedRange", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.StartPort, cfg.EndPort = 3010, 3000
		assert.Error(t, cfg.Validate())
	})

	t.Run("SinglePort", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.EndPort = cfg.StartPort
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, 1, cfg.Ports())
	})

	t.Run("MonitorIntervalRequired", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.MonitorInterval = 0
		assert.Error(t, cfg.Validate())

		cfg.Monitor = false
		assert.NoError(t, cfg.Validate())
	})

	t.Run("ProbeTimeout", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig()
		cfg.ProbeTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}

// TestTransportConfig 测试传输配置
func TestTransportConfig(t *testing.T) {
	cfg := DefaultTransportConfig()
	assert.NoError(t, cfg.Validate())

	cfg.RetryAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultTransportConfig()
	cfg.RetryMaxDelay = cfg.RetryDelay / 2
	assert.Error(t, cfg.Validate())
}

// TestCodeStoreConfig 测试代码存储配置
func TestCodeStoreConfig(t *testing.T) {
	cfg := DefaultCodeStoreConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("./data", "codestore.db"), cfg.DBPath())

	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())

	cfg.InMemory = true
	assert.NoError(t, cfg.Validate())

	cfg.FetchRate = 0
	assert.Error(t, cfg.Validate())
}

// TestMetricsConfig 测试指标配置
func TestMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Namespace = ""
	assert.Error(t, cfg.Validate())

	cfg.Enable = false
	assert.NoError(t, cfg.Validate())
}

// TestDuration_JSON 测试 Duration 的 JSON 编解码
func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	// 整数按毫秒解释
	require.NoError(t, json.Unmarshal([]byte(`5000`), &d))
	assert.Equal(t, 5*time.Second, d.Duration())

	// null 保留原值
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, 5*time.Second, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"-1s"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`-5`), &d))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	data, err := json.Marshal(Duration(5 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"5s"`, string(data))
}

// TestFromJSON 测试从 JSON 加载配置
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"node": {"host": "10.0.0.2", "port": 4001},
		"discovery": {"start_port": 4000, "end_port": 4005, "monitor_interval": "10s",
			"known_peers": ["http://10.0.0.9:3000"]},
		"code_store": {"auto_fetch": false}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2", cfg.Node.Host)
	assert.Equal(t, 4001, cfg.Node.Port)
	assert.Equal(t, 4000, cfg.Discovery.StartPort)
	assert.Equal(t, 10*time.Second, cfg.Discovery.MonitorInterval.Duration())
	assert.Equal(t, []string{"http://10.0.0.9:3000"}, cfg.Discovery.KnownPeers)
	assert.False(t, cfg.CodeStore.AutoFetch)

	// 未出现的字段保留默认值
	assert.Equal(t, DefaultTransportConfig(), cfg.Transport)
	assert.True(t, cfg.Discovery.Monitor)
	assert.NoError(t, cfg.Validate())

	_, err = FromJSON([]byte(`{"discovery": {"probe_timeout": "never"}}`))
	assert.Error(t, err)

	t.Log("✅ FromJSON 测试通过")
}

// TestLoadFile 测试从文件加载配置
func TestLoadFile(t *testing.T) {
	cfg := NewConfig()
	cfg.Node.Description = "test node"
	data, err := cfg.ToJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dapp.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestCloneConfig 测试配置克隆
func TestCloneConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Discovery.KnownPeers = []string{"http://a:1"}

	cloned := CloneConfig(cfg)
	cloned.Discovery.KnownPeers[0] = "http://b:2"
	cloned.Node.Host = "other"

	assert.Equal(t, "http://a:1", cfg.Discovery.KnownPeers[0])
	assert.Equal(t, "localhost", cfg.Node.Host)
	assert.Nil(t, CloneConfig(nil))
}

// TestValidateAll 测试 nil 处理
func TestValidateAll(t *testing.T) {
	assert.Error(t, ValidateAll(nil))
	assert.NoError(t, ValidateAll(NewConfig()))
	assert.Panics(t, func() { MustValidate(nil) })
}
