// Package config holds the settings shared by the evmio subcommands.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/spf13/pflag"
)

const (
	DefaultNodeURL      = "http://127.0.0.1:8545/"
	DefaultBatchSize    = 50
	DefaultDataDir      = "data"
	DefaultMaxCallDepth = 1025
)

type Config struct {
	NodeURL      string `json:"node_url"`
	DataDir      string `json:"data_dir"`
	OutputDir    string `json:"output_dir"`
	BatchSize    int    `json:"batch_size"`
	Batches      int    `json:"batches"`
	Concurrency  int    `json:"concurrency"`
	MaxCallDepth int    `json:"max_call_depth"`
	Seed         uint64 `json:"seed"`
	Workers      int    `json:"workers"`
	OTLPEndpoint string `json:"otlp_endpoint"`
	DBPath       string `json:"db_path"`
	DBCacheMB    int    `json:"db_cache_mb"`
	DBBloomBits  int    `json:"db_bloom_bits"`
	LogLevel     string `json:"log_level"`
	LogJSON      bool   `json:"log_json"`
	Debug        string `json:"debug"`
}

func Default() *Config {
	return &Config{
		NodeURL:      DefaultNodeURL,
		DataDir:      DefaultDataDir,
		OutputDir:    DefaultDataDir,
		BatchSize:    DefaultBatchSize,
		Batches:      1,
		MaxCallDepth: DefaultMaxCallDepth,
		DBBloomBits:  10,
		LogLevel:     "info",
	}
}

// Load reads a JSON config file on top of the defaults. Unknown fields are
// rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the JSON file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadFileKeepFlags loads path into c while keeping every flag the user set
// explicitly on the command line. Flags must be bound to fields of c.
func (c *Config) LoadFileKeepFlags(path string, flags *pflag.FlagSet) error {
	set := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		set[f.Name] = f.Value.String()
	})
	if err := c.LoadFile(path); err != nil {
		return err
	}
	for name, val := range set {
		if err := flags.Set(name, val); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.Batches <= 0 {
		return fmt.Errorf("batches must be positive, got %d", c.Batches)
	}
	if c.MaxCallDepth <= 0 {
		return fmt.Errorf("max call depth must be positive, got %d", c.MaxCallDepth)
	}
	if c.Concurrency < 0 || c.Workers < 0 {
		return fmt.Errorf("concurrency and workers must not be negative")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String method returns the Config as a formatted JSON string
func (c *Config) String() string {
	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling JSON: %v", err)
	}
	return string(jsonData)
}
