package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the project root when no path is given.
const DefaultFile = "plugdoc.yaml"

type Config struct {
	Project struct {
		Root string `yaml:"root"`
		// Module is the Lua module name, "stickybuf" for require("stickybuf").
		Module string `yaml:"module"`
	} `yaml:"project"`
	Source struct {
		Dir string `yaml:"dir"`
		// APIFile is the file, relative to Dir, whose functions form the API.
		APIFile string `yaml:"api_file"`
	} `yaml:"source"`
	Readme struct {
		Path         string `yaml:"path"`
		HeadingLevel int    `yaml:"heading_level"`
		TOCDepth     int    `yaml:"toc_depth"`
	} `yaml:"readme"`
	Vimdoc struct {
		Path           string `yaml:"path"`
		Width          int    `yaml:"width"`
		OptionsSection string `yaml:"options_section"`
	} `yaml:"vimdoc"`
	Nvim struct {
		Binary        string `yaml:"binary"`
		ListenAddress string `yaml:"listen_address"`
		CommandsExpr  string `yaml:"commands_expr"`
	} `yaml:"nvim"`
	// Report, when set, is where the run's stage report is written as JSON.
	Report string `yaml:"report"`
}

// Default derives every setting from the project directory: "stickybuf.nvim"
// documents the module "stickybuf".
func Default(root string) *Config {
	module := strings.TrimSuffix(filepath.Base(root), ".nvim")
	module = strings.TrimSuffix(module, ".lua")

	var cfg Config
	cfg.Project.Root = root
	cfg.Project.Module = module
	cfg.Source.Dir = "lua"
	cfg.Source.APIFile = module + ".lua"
	cfg.Readme.Path = "README.md"
	cfg.Readme.HeadingLevel = 3
	cfg.Readme.TOCDepth = 1
	cfg.Vimdoc.Path = filepath.Join("doc", module+".txt")
	cfg.Vimdoc.Width = 78
	cfg.Vimdoc.OptionsSection = "^## Configuration"
	cfg.Nvim.Binary = "nvim"
	cfg.Nvim.CommandsExpr = fmt.Sprintf("require(%q).get_all_commands()", module)
	return &cfg
}

// LoadConfig reads the YAML file at path over the defaults for root. A missing
// file is not an error.
func LoadConfig(root, path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load(filepath.Join(root, ".env"))

	cfg := Default(root)

	// 2. Load YAML config
	if path == "" {
		path = filepath.Join(root, DefaultFile)
	}
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if cfg.Project.Root == "" {
			cfg.Project.Root = root
		}
	}

	// 3. Override with Environment Variables if present
	if bin := os.Getenv("PLUGDOC_NVIM"); bin != "" {
		cfg.Nvim.Binary = bin
	}
	if addr := os.Getenv("PLUGDOC_LISTEN_ADDRESS"); addr != "" {
		cfg.Nvim.ListenAddress = addr
	} else if addr := os.Getenv("NVIM_LISTEN_ADDRESS"); addr != "" && cfg.Nvim.ListenAddress == "" {
		cfg.Nvim.ListenAddress = addr
	}
	if report := os.Getenv("PLUGDOC_REPORT"); report != "" {
		cfg.Report = report
	}

	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Project.Module == "":
		return errors.New("config: project.module is empty")
	case c.Source.Dir == "":
		return errors.New("config: source.dir is empty")
	case c.Source.APIFile == "":
		return errors.New("config: source.api_file is empty")
	case c.Readme.Path == "":
		return errors.New("config: readme.path is empty")
	case c.Vimdoc.Path == "":
		return errors.New("config: vimdoc.path is empty")
	case c.Nvim.CommandsExpr == "":
		return errors.New("config: nvim.commands_expr is empty")
	case c.Readme.HeadingLevel < 1 || c.Readme.HeadingLevel > 6:
		return fmt.Errorf("config: readme.heading_level %d is outside 1-6", c.Readme.HeadingLevel)
	case c.Readme.TOCDepth < 1:
		return fmt.Errorf("config: readme.toc_depth %d must be at least 1", c.Readme.TOCDepth)
	case c.Vimdoc.Width < 40:
		return fmt.Errorf("config: vimdoc.width %d is narrower than 40", c.Vimdoc.Width)
	}
	return nil
}

// Resolve joins a project-relative path onto the root.
func (c *Config) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Project.Root, rel)
}
