// Package config loads the optional blocksig configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bamsammich/blocksig/internal/fault"
)

// Config represents the optional blocksig configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. A nil field was not set.
type DefaultsConfig struct {
	BlockSize *string `toml:"block_size"` // e.g. "1M", "4K"
	Workers   *int    `toml:"workers"`
	Hash      *string `toml:"hash"`
	Prefetch  *bool   `toml:"prefetch"`
	Buffer    *string `toml:"buffer"`
	Readers   *int    `toml:"readers"`
	BWLimit   *string `toml:"bwlimit"`
}

// ThemeConfig holds optional color overrides for the progress bar.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Blue   *string `toml:"blue"`
	Yellow *string `toml:"yellow"`
	Red    *string `toml:"red"`
	Muted  *string `toml:"muted"`
	Dim    *string `toml:"dim"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "blocksig", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	cfg, _, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// LoadFile decodes the config file at path. It also returns the keys the
// file sets that blocksig does not know, so callers can warn about typos.
func LoadFile(path string) (Config, []string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil, err
		}
		return Config{}, nil, fault.Configf("%s: %v", path, err)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	slices.Sort(unknown)
	return cfg, unknown, nil
}

// String renders the keys that are set, in a fixed order, for verbose output.
func (d DefaultsConfig) String() string {
	var parts []string
	add := func(key string, set bool, val func() string) {
		if set {
			parts = append(parts, key+"="+val())
		}
	}
	add("block_size", d.BlockSize != nil, func() string { return *d.BlockSize })
	add("workers", d.Workers != nil, func() string { return strconv.Itoa(*d.Workers) })
	add("hash", d.Hash != nil, func() string { return *d.Hash })
	add("prefetch", d.Prefetch != nil, func() string { return strconv.FormatBool(*d.Prefetch) })
	add("buffer", d.Buffer != nil, func() string { return *d.Buffer })
	add("readers", d.Readers != nil, func() string { return strconv.Itoa(*d.Readers) })
	add("bwlimit", d.BWLimit != nil, func() string { return *d.BWLimit })
	return strings.Join(parts, " ")
}
