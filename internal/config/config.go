package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bs "github.com/AnishMulay/fatstore/internal/block_service"
	fs "github.com/AnishMulay/fatstore/internal/file_service"
	is "github.com/AnishMulay/fatstore/internal/inode_service"
	"github.com/AnishMulay/fatstore/internal/log_service"
	"github.com/AnishMulay/fatstore/internal/path_resolver/prefix"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "FATSTORE"
	DefaultFile    = "fatstore.yaml"
	BackendLocal   = "localdisc"
	BackendZap     = "zap"
	StoreMemory    = "memory"
	StoreLocal     = "localdisc"
	defaultLogDir  = "logs"
	defaultVolName = "vol0"
	defaultDataDir = "data"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Volume     VolumeConfig     `yaml:"volume"`
	Allocation AllocationConfig `yaml:"allocation"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	Log        LogConfig        `yaml:"log"`
}

// Multi-word fields are read from FATSTORE_<SECTION>_<WORDS>, e.g.
// FATSTORE_VOLUME_BLOCK_COUNT.
type VolumeConfig struct {
	Name       string `yaml:"name"`
	Store      string `yaml:"store"`
	DataDir    string `yaml:"data_dir" split_words:"true"`
	BlockCount int    `yaml:"block_count" split_words:"true"`
	BlockSize  int    `yaml:"block_size" split_words:"true"`
	InodeCount int    `yaml:"inode_count" split_words:"true"`
	MaxNameLen int    `yaml:"max_name_len" split_words:"true"`
}

type AllocationConfig struct {
	Policy string `yaml:"policy"`
}

type ResolverConfig struct {
	Prefixes []string `yaml:"prefixes"`
}

type LogConfig struct {
	Backend     string `yaml:"backend"`
	Level       string `yaml:"level"`
	Dir         string `yaml:"dir"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Volume: VolumeConfig{
			Name:       defaultVolName,
			Store:      StoreMemory,
			DataDir:    defaultDataDir,
			BlockCount: bs.DefaultBlockCount,
			BlockSize:  bs.DefaultBlockSize,
			InodeCount: is.DefaultInodeCount,
			MaxNameLen: fs.DefaultMaxNameLen,
		},
		Allocation: AllocationConfig{Policy: string(fs.PolicyStrict)},
		Resolver:   ResolverConfig{Prefixes: append([]string(nil), prefix.DefaultPrefixes...)},
		Log: LogConfig{
			Backend: BackendZap,
			Level:   log_service.InfoLevel,
			Dir:     defaultLogDir,
		},
	}
}

// Load reads the YAML file at path on top of Default, writing the defaults
// there first if the file does not exist, then applies FATSTORE_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := Write(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := decode(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("unmarshaling config file: %w", err)
	}
	return nil
}

// Write marshals cfg to path, creating parent directories as needed.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if y, e := func() (string, string) {
		switch {
		case c.Volume.BlockCount <= 0:
			return "volume.block_count", "VOLUME_BLOCK_COUNT"
		case c.Volume.BlockSize <= 0:
			return "volume.block_size", "VOLUME_BLOCK_SIZE"
		case c.Volume.InodeCount < 2:
			return "volume.inode_count", "VOLUME_INODE_COUNT"
		case c.Volume.MaxNameLen < 2:
			return "volume.max_name_len", "VOLUME_MAX_NAME_LEN"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf("%w: %s (%s_%s) out of range", ErrInvalidConfig, y, EnvPrefix, e)
	}

	switch strings.ToLower(c.Volume.Store) {
	case StoreMemory:
	case StoreLocal:
		if c.Volume.DataDir == "" {
			return fmt.Errorf("%w: volume.data_dir is required for the %s store", ErrInvalidConfig, StoreLocal)
		}
	default:
		return fmt.Errorf("%w: volume.store %q, want %s or %s", ErrInvalidConfig, c.Volume.Store, StoreMemory, StoreLocal)
	}

	if _, err := fs.ParseAllocationPolicy(c.Allocation.Policy); err != nil {
		return fmt.Errorf("%w: allocation.policy: %w", ErrInvalidConfig, err)
	}

	switch strings.ToLower(c.Log.Backend) {
	case BackendLocal, BackendZap:
	default:
		return fmt.Errorf("%w: log.backend %q, want %s or %s", ErrInvalidConfig, c.Log.Backend, BackendLocal, BackendZap)
	}
	switch strings.ToUpper(c.Log.Level) {
	case log_service.DebugLevel, log_service.InfoLevel, log_service.WarnLevel, "WARNING", log_service.ErrorLevel:
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// Policy returns the parsed allocation policy. Validate must have passed.
func (c *Config) Policy() fs.AllocationPolicy {
	p, _ := fs.ParseAllocationPolicy(c.Allocation.Policy)
	return p
}
