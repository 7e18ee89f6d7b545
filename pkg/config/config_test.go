// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SetGetUnsetWithValue(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
	}{
		{
			name:  "RootValue",
			path:  "a",
			value: "apple",
		},
		{
			name:  "NestedValue",
			path:  "cache.ttlSeconds",
			value: 60,
		},
		{
			name:  "DeepNestedValue",
			path:  "azure.clouds.public.name",
			value: "AzurePublic",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := NewEmptyConfig()
			require.True(t, cfg.IsEmpty())

			require.NoError(t, cfg.Set(test.path, test.value))

			value, ok := cfg.Get(test.path)
			require.True(t, ok)
			require.Equal(t, test.value, value)

			require.NoError(t, cfg.Unset(test.path))

			value, ok = cfg.Get(test.path)
			require.False(t, ok)
			require.Nil(t, value)
		})
	}
}

func Test_SetThroughLeafFails(t *testing.T) {
	cfg := NewConfig(map[string]any{"cache": "not a section"})
	require.Error(t, cfg.Set("cache.ttlSeconds", 60))
}

func Test_UnsetMissingPath(t *testing.T) {
	cfg := NewConfig(map[string]any{"cache": map[string]any{"ttlSeconds": 60}})
	require.NoError(t, cfg.Unset("tracing.file"))
	require.NoError(t, cfg.Unset("cache.other"))

	value, ok := cfg.Get("cache.ttlSeconds")
	require.True(t, ok)
	require.Equal(t, 60, value)
}

func Test_GetString(t *testing.T) {
	cfg := NewConfig(map[string]any{
		"azure": map[string]any{"cloud": "AzureChinaCloud", "count": 3},
	})

	value, ok := cfg.GetString("azure.cloud")
	require.True(t, ok)
	require.Equal(t, "AzureChinaCloud", value)

	_, ok = cfg.GetString("azure.count")
	require.False(t, ok)

	_, ok = cfg.GetString("azure.cloud.name")
	require.False(t, ok)
}

func Test_GetSection(t *testing.T) {
	cfg := NewConfig(map[string]any{
		"tracing": map[string]any{"otlpEndpoint": "http://localhost:4318", "file": "trace.json"},
	})

	var tracing TracingSettings
	ok, err := cfg.GetSection("tracing", &tracing)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, TracingSettings{OtlpEndpoint: "http://localhost:4318", File: "trace.json"}, tracing)

	var cache CacheSettings
	ok, err = cfg.GetSection("cache", &cache)
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_SaveAndLoad(t *testing.T) {
	cfg := NewConfig(map[string]any{
		"cache": map[string]any{"ttlSeconds": float64(120)},
	})

	var buffer bytes.Buffer
	require.NoError(t, NewManager().Save(cfg, &buffer))

	loaded, err := NewManager().Load(&buffer)
	require.NoError(t, err)
	require.Equal(t, cfg.Raw(), loaded.Raw())
}

func Test_FileConfigManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	fileManager := NewFileConfigManager(NewManager())

	empty, err := fileManager.LoadOrEmpty(path)
	require.NoError(t, err)
	require.True(t, empty.IsEmpty())

	_, err = fileManager.Load(path)
	require.Error(t, err)

	cfg := NewEmptyConfig()
	require.NoError(t, cfg.Set("batch.concurrency", float64(8)))
	require.NoError(t, fileManager.Save(cfg, path))

	// A shorter document must fully replace the previous one.
	require.NoError(t, fileManager.Save(NewConfig(map[string]any{"a": "b"}), path))

	loaded, err := fileManager.Load(path)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": "b"}, loaded.Raw())
}

func Test_UserConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGICAPPS_MCP_CONFIG_DIR", dir)

	configDir, err := GetUserConfigDir()
	require.NoError(t, err)
	require.Equal(t, dir, configDir)

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "config.json"), path)
}
