package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LOANPREP_SPLIT_YEAR", "2017")
	t.Setenv("LOANPREP_INPUT_DELIMITER", "|")
	t.Setenv("LOANPREP_SPLIT_PRE_PROCESS", "true")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 2017, cfg.Split.Year)
	assert.Equal(t, "|", cfg.Input.Delimiter)
	assert.True(t, cfg.Split.PreProcess)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loanprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  path: loans.xlsx
  sheet: Origination
output:
  dir: out
  format: XLSX
split:
  year: 2016
  tidy: true
logging:
  level: DEBUG
  format: json
metrics_file: loanprep.prom
`), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "loans.xlsx", cfg.Input.Path)
	assert.Equal(t, "Origination", cfg.Input.Sheet)
	assert.Equal(t, ",", cfg.Input.Delimiter)
	assert.Equal(t, OutputConfig{Dir: "out", Format: "xlsx"}, cfg.Output)
	assert.Equal(t, SplitConfig{Year: 2016, Tidy: true}, cfg.Split)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)
	assert.Equal(t, "loanprep.prom", cfg.MetricsFile)
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"output format", func(c *Config) { c.Output.Format = "parquet" }, "output.format: must be one of [csv xlsx]"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"delimiter", func(c *Config) { c.Input.Delimiter = "||" }, "input.delimiter: must have length 1"},
		{"output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir: is required"},
		{"split year", func(c *Config) { c.Split.Year = -1 }, "split.year: must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
