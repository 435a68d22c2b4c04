package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	t.Run("Missing file gives defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
		a.True(errors.Is(err, ErrConfigNotFound))
		a.Equal(Default(), cfg)
	})
	t.Run("Values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		r.Nil(os.WriteFile(path, []byte("output_dir: /data/out\ncompress_level: 0\nhistory_db: history.db\n"), 0o644))

		cfg, err := Load(path)
		r.Nil(err)
		a.Equal("input", cfg.InputDir)
		a.Equal("/data/out", cfg.OutputDir)
		a.Equal(0, cfg.CompressLevel)
		a.Equal("history.db", cfg.HistoryDb)
	})
	t.Run("Invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		r.Nil(os.WriteFile(path, []byte("compress_level: [1"), 0o644))

		_, err := Load(path)
		a.NotNil(err)
	})
}

func TestConfig_ApplyEnvironment(t *testing.T) {
	a := assert.New(t)

	env := map[string]string{
		"IMGMETA_INPUT_DIR":      "/in",
		"IMGMETA_LOG_LEVEL":      "debug",
		"IMGMETA_COMPRESS_LEVEL": "9",
	}
	lookup := func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}

	cfg := Default()
	a.Nil(cfg.ApplyEnvironment(lookup))
	a.Equal("/in", cfg.InputDir)
	a.Equal("output", cfg.OutputDir)
	a.Equal("debug", cfg.LogLevel)
	a.Equal(9, cfg.CompressLevel)

	env["IMGMETA_COMPRESS_LEVEL"] = "high"
	a.NotNil(Default().ApplyEnvironment(lookup))
}

func TestConfig_Validate(t *testing.T) {
	a := assert.New(t)

	a.Nil(Default().Validate())

	cfg := Default()
	cfg.CompressLevel = 10
	a.NotNil(cfg.Validate())

	cfg = Default()
	cfg.OutputDir = ""
	a.NotNil(cfg.Validate())
}
