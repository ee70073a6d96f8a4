package config

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tapebox/pkg/tape"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "basic_data.bin", config.TapeFile)
	assert.Equal(t, "debug_output.txt", config.DumpFile)
	assert.Equal(t, "overwrite", config.SlotPolicy)
	assert.True(t, config.Fsync)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Empty(t, config.Server.APIKey)
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty tape file", func(c *Config) { c.TapeFile = "" }, "tape_file cannot be empty"},
		{"unknown policy", func(c *Config) { c.SlotPolicy = "shuffle" }, "invalid slot_policy"},
		{"empty policy defaults", func(c *Config) { c.SlotPolicy = "" }, ""},
		{"splice policy", func(c *Config) { c.SlotPolicy = "splice" }, ""},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid logging level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_StoreConfig(t *testing.T) {
	config := DefaultConfig()
	config.TapeFile = "/tmp/programs.bin"
	config.SlotPolicy = "splice"
	config.Fsync = false

	sc := config.StoreConfig()
	assert.Equal(t, "/tmp/programs.bin", sc.FilePath)
	assert.Equal(t, tape.PolicySplice, sc.Policy)
	assert.False(t, sc.Fsync)
}

func TestGenerateSecureKey(t *testing.T) {
	t.Run("generate 32 byte key", func(t *testing.T) {
		key, err := GenerateSecureKey(32)
		require.NoError(t, err)
		assert.Len(t, key, 64)

		_, err = hex.DecodeString(key)
		assert.NoError(t, err)
	})

	t.Run("generate different keys", func(t *testing.T) {
		key1, err := GenerateSecureKey(16)
		require.NoError(t, err)
		key2, err := GenerateSecureKey(16)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "tapebox_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "config.yaml")
		expectedConfig := &Config{
			TapeFile:   "/custom/tape.bin",
			DumpFile:   "/custom/dump.txt",
			SlotPolicy: "splice",
			Fsync:      false,
			Server: Server{
				Port:   9000,
				Bind:   "0.0.0.0",
				APIKey: "test-api-key",
			},
			Logging: Logging{
				Level:  "debug",
				Format: "json",
			},
		}

		require.NoError(t, SaveConfig(expectedConfig, configPath))

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "tapebox_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("tape_file: other.bin\n"), 0644))

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "other.bin", loadedConfig.TapeFile)
		assert.Equal(t, "debug_output.txt", loadedConfig.DumpFile)
		assert.Equal(t, 8080, loadedConfig.Server.Port)
		assert.True(t, loadedConfig.Fsync)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "tapebox_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "invalid.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644))

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestSaveConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tapebox_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	config := DefaultConfig()

	require.NoError(t, SaveConfig(config, configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)

	t.Run("parent is a file", func(t *testing.T) {
		blocker := filepath.Join(tmpDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		err := SaveConfig(config, filepath.Join(blocker, "config.yaml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create config directory")
	})
}

func TestBootstrapConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tapebox_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	tapeFile := filepath.Join(tmpDir, "programs.bin")

	config, err := BootstrapConfig(configPath, tapeFile)
	require.NoError(t, err)

	assert.Equal(t, tapeFile, config.TapeFile)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Len(t, config.Server.APIKey, 64)
	_, err = hex.DecodeString(config.Server.APIKey)
	assert.NoError(t, err)

	assert.True(t, ConfigExists(configPath))

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)

	t.Run("empty tape file keeps default", func(t *testing.T) {
		config, err := BootstrapConfig(filepath.Join(tmpDir, "other.yaml"), "")
		require.NoError(t, err)
		assert.Equal(t, tape.DefaultTapeFile, config.TapeFile)
	})
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "tapebox")
	assert.Contains(t, path, ".yaml")
}

func TestConfigExists(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tapebox_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	require.NoError(t, os.WriteFile(existingPath, []byte("test"), 0644))

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(filepath.Join(tmpDir, "does-not-exist.yaml")))
}

func TestConfigureLogging(t *testing.T) {
	originalLevel := log.GetLevel()
	defer log.SetLevel(originalLevel)
	defer log.SetOutput(os.Stderr)
	defer log.SetFormatter(&log.TextFormatter{})

	var buf bytes.Buffer
	require.NoError(t, ConfigureLogging(Logging{Level: "debug", Format: "json"}, &buf))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.WithField("name", "HELLO").Debug("saved")
	assert.Contains(t, buf.String(), `"name":"HELLO"`)

	require.NoError(t, ConfigureLogging(Logging{}, nil))
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	assert.Error(t, ConfigureLogging(Logging{Level: "loud"}, nil))
	assert.Error(t, ConfigureLogging(Logging{Level: "info", Format: "xml"}, nil))
}
