package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evmio.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8545/", cfg.NodeURL)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, 1025, cfg.MaxCallDepth)
	assert.NoError(t, cfg.Validate())
	assert.Contains(t, cfg.String(), `"batch_size": 50`)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{"node_url": "ws://node:8546", "batch_size": 10, "seed": 7}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://node:8546", cfg.NodeURL)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, uint64(7), cfg.Seed)
	// untouched fields keep their defaults
	assert.Equal(t, "data", cfg.DataDir)

	_, err = Load(writeConfig(t, `{"batch_sise": 10}`))
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadFileKeepFlags(t *testing.T) {
	cfg := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "")
	fs.StringVar(&cfg.NodeURL, "node-url", cfg.NodeURL, "")
	require.NoError(t, fs.Parse([]string{"--batch-size", "5"}))

	path := writeConfig(t, `{"node_url": "http://other:8545", "batch_size": 20}`)
	require.NoError(t, cfg.LoadFileKeepFlags(path, fs))
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, "http://other:8545", cfg.NodeURL)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"zero batches", func(c *Config) { c.Batches = 0 }},
		{"zero depth", func(c *Config) { c.MaxCallDepth = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
