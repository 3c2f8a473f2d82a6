package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectDir(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PLUGDOC_NVIM", "PLUGDOC_LISTEN_ADDRESS", "NVIM_LISTEN_ADDRESS", "PLUGDOC_REPORT"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	root := projectDir(t, "stickybuf.nvim")

	cfg, err := LoadConfig(root, "")
	require.NoError(t, err)

	assert.Equal(t, "stickybuf", cfg.Project.Module)
	assert.Equal(t, "stickybuf.lua", cfg.Source.APIFile)
	assert.Equal(t, filepath.Join("doc", "stickybuf.txt"), cfg.Vimdoc.Path)
	assert.Equal(t, `require("stickybuf").get_all_commands()`, cfg.Nvim.CommandsExpr)
	assert.Equal(t, 3, cfg.Readme.HeadingLevel)
	assert.Equal(t, 1, cfg.Readme.TOCDepth)
	assert.Equal(t, 78, cfg.Vimdoc.Width)
	assert.Equal(t, filepath.Join(root, "README.md"), cfg.Resolve(cfg.Readme.Path))
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	root := projectDir(t, "plug")
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFile), []byte(`
project:
  module: other
readme:
  toc_depth: 3
nvim:
  binary: /opt/nvim
`), 0o644))
	t.Setenv("NVIM_LISTEN_ADDRESS", "/tmp/nvim.sock")
	t.Setenv("PLUGDOC_REPORT", "report.json")

	cfg, err := LoadConfig(root, "")
	require.NoError(t, err)

	assert.Equal(t, "other", cfg.Project.Module)
	assert.Equal(t, root, cfg.Project.Root)
	assert.Equal(t, 3, cfg.Readme.TOCDepth)
	assert.Equal(t, "/opt/nvim", cfg.Nvim.Binary)
	assert.Equal(t, "/tmp/nvim.sock", cfg.Nvim.ListenAddress)
	assert.Equal(t, "report.json", cfg.Report)
	// Derived defaults keep the directory name.
	assert.Equal(t, "plug.lua", cfg.Source.APIFile)
}

func TestLoadConfig_ExplicitListenAddressWins(t *testing.T) {
	clearEnv(t)
	root := projectDir(t, "plug")
	t.Setenv("NVIM_LISTEN_ADDRESS", "/tmp/a.sock")
	t.Setenv("PLUGDOC_LISTEN_ADDRESS", "/tmp/b.sock")

	cfg, err := LoadConfig(root, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/b.sock", cfg.Nvim.ListenAddress)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	clearEnv(t)
	root := projectDir(t, "plug")
	path := filepath.Join(root, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("readme: [\n"), 0o644))

	_, err := LoadConfig(root, path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty module", func(c *Config) { c.Project.Module = "" }},
		{"heading level", func(c *Config) { c.Readme.HeadingLevel = 7 }},
		{"toc depth", func(c *Config) { c.Readme.TOCDepth = 0 }},
		{"width", func(c *Config) { c.Vimdoc.Width = 10 }},
		{"commands expr", func(c *Config) { c.Nvim.CommandsExpr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/x/plug.nvim")
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
