// Copyright 2025 the odexpatch authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Default values used when the config file (or a field) is absent. The
// zero-argument run processes ./input into ./output with backups in ./backup
// and the patch tool expected under ./tools.
const (
	DefaultInputDir  = "input"
	DefaultOutputDir = "output"
	DefaultBackupDir = "backup"
	DefaultToolsDir  = "tools"
	DefaultTmpDir    = "tmp_odex_patcher"
	DefaultTool      = "odexpatcher"
	DefaultPattern   = "*.odex"
)

// 📚 Config represents the complete run configuration
type Config struct {
	InputDir  string `json:"input_dir" yaml:"input_dir" hcl:"input_dir,optional"`    // Directory scanned for files to patch
	OutputDir string `json:"output_dir" yaml:"output_dir" hcl:"output_dir,optional"` // Directory receiving transformed files
	BackupDir string `json:"backup_dir" yaml:"backup_dir" hcl:"backup_dir,optional"` // Directory receiving pre-transform copies
	ToolsDir  string `json:"tools_dir" yaml:"tools_dir" hcl:"tools_dir,optional"`    // Directory holding the patch tool
	TmpDir    string `json:"tmp_dir" yaml:"tmp_dir" hcl:"tmp_dir,optional"`          // Scratch directory for APK processing

	Tool    string `json:"tool" yaml:"tool" hcl:"tool,optional"`          // Patch tool executable name
	SDKPath string `json:"sdk_path" yaml:"sdk_path" hcl:"sdk_path,optional"` // Optional Android SDK root for dex2oat lookup
	Pattern string `json:"pattern" yaml:"pattern" hcl:"pattern,optional"` // Glob matched against input file base names

	BootJars []string `json:"boot_jars,omitempty" yaml:"boot_jars,omitempty" hcl:"boot_jars,optional"` // Bootclasspath entries for odexing

	Workers     int  `json:"workers,omitempty" yaml:"workers,omitempty" hcl:"workers,optional"`                   // Concurrent file workers (1 = sequential)
	Force       bool `json:"force,omitempty" yaml:"force,omitempty" hcl:"force,optional"`                         // Overwrite existing output files
	FailOnError bool `json:"fail_on_error,omitempty" yaml:"fail_on_error,omitempty" hcl:"fail_on_error,optional"` // Per-file failures produce a non-zero exit
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🏭 Default returns the configuration used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills empty fields with their default values
func (cfg *Config) applyDefaults() {
	if cfg.InputDir == "" {
		cfg.InputDir = DefaultInputDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = DefaultBackupDir
	}
	if cfg.ToolsDir == "" {
		cfg.ToolsDir = DefaultToolsDir
	}
	if cfg.TmpDir == "" {
		cfg.TmpDir = DefaultTmpDir
	}
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	cfg.applyDefaults()

	if cfg.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return errors.Errorf("invalid file pattern: %s", cfg.Pattern)
	}

	// Clean up paths
	cfg.InputDir = filepath.Clean(cfg.InputDir)
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	cfg.BackupDir = filepath.Clean(cfg.BackupDir)
	cfg.ToolsDir = filepath.Clean(cfg.ToolsDir)
	cfg.TmpDir = filepath.Clean(cfg.TmpDir)

	return nil
}

// 📂 EnsureDirs creates the input, output, backup and tmp directories.
// The tools directory is deliberately not created: its absence is a fatal
// configuration error surfaced by tool.Locate, not something to paper over.
func (cfg *Config) EnsureDirs(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, cfg.BackupDir, cfg.TmpDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Errorf("creating directory %s: %w", dir, err)
		}
		logger.Debug().Str("dir", dir).Msg("directory ready")
	}

	return nil
}

// ToolPath returns the expected location of the patch tool executable
func (cfg *Config) ToolPath() string {
	return filepath.Join(cfg.ToolsDir, cfg.Tool)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s (%s) -> %s [backup: %s, tools: %s]",
		cfg.InputDir, cfg.Pattern, cfg.OutputDir, cfg.BackupDir, cfg.ToolsDir)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
