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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestLoadYAML(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		check       func(t *testing.T, cfg *Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "full_config",
			content: `input_dir: in
output_dir: out
backup_dir: bak
tools_dir: bin
tool: dex2oat
pattern: "*.apk"
workers: 4
fail_on_error: true
boot_jars:
  - /system/framework/core-oj.jar
  - /system/framework/framework.jar
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "in", cfg.InputDir)
				assert.Equal(t, "out", cfg.OutputDir)
				assert.Equal(t, "bak", cfg.BackupDir)
				assert.Equal(t, "bin", cfg.ToolsDir)
				assert.Equal(t, "dex2oat", cfg.Tool)
				assert.Equal(t, "*.apk", cfg.Pattern)
				assert.Equal(t, 4, cfg.Workers)
				assert.True(t, cfg.FailOnError)
				assert.Len(t, cfg.BootJars, 2)
			},
		},
		{
			name:    "defaults_applied",
			content: "tool: mytool\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultInputDir, cfg.InputDir)
				assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
				assert.Equal(t, DefaultBackupDir, cfg.BackupDir)
				assert.Equal(t, DefaultToolsDir, cfg.ToolsDir)
				assert.Equal(t, DefaultPattern, cfg.Pattern)
				assert.Equal(t, "mytool", cfg.Tool)
				assert.Equal(t, 1, cfg.Workers)
			},
		},
		{
			name:        "unknown_field_rejected",
			content:     "not_a_field: true\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "negative_workers",
			content:     "workers: -2\n",
			wantErr:     true,
			errContains: "workers must be at least 1",
		},
		{
			name:        "bad_pattern",
			content:     "pattern: \"[\"\n",
			wantErr:     true,
			errContains: "invalid file pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "odexpatch.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := Load(testContext(t), path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadHCL(t *testing.T) {
	content := `
input_dir  = "odex_in"
output_dir = "odex_out"
tool       = "dex2oat"
workers    = 2
`
	path := filepath.Join(t.TempDir(), "odexpatch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(testContext(t), path)
	require.NoError(t, err)
	assert.Equal(t, "odex_in", cfg.InputDir)
	assert.Equal(t, "odex_out", cfg.OutputDir)
	assert.Equal(t, "dex2oat", cfg.Tool)
	assert.Equal(t, 2, cfg.Workers)
	// Untouched fields still default
	assert.Equal(t, DefaultBackupDir, cfg.BackupDir)
}

func TestLoadErrors(t *testing.T) {
	ctx := testContext(t)

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})

	t.Run("unsupported_extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "odexpatch.toml")
		require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0644))
		_, err := Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no parser found")
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultInputDir, cfg.InputDir)
	assert.Equal(t, DefaultTool, cfg.Tool)
	assert.Equal(t, DefaultTmpDir, cfg.TmpDir)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, filepath.Join(DefaultToolsDir, DefaultTool), cfg.ToolPath())
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{
		InputDir:  filepath.Join(tmpDir, "input"),
		OutputDir: filepath.Join(tmpDir, "output"),
		BackupDir: filepath.Join(tmpDir, "backup"),
		ToolsDir:  filepath.Join(tmpDir, "tools"),
		TmpDir:    filepath.Join(tmpDir, "tmp"),
	}
	require.NoError(t, cfg.Validate())

	require.NoError(t, cfg.EnsureDirs(testContext(t)))

	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, cfg.BackupDir, cfg.TmpDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, "dir %s should exist", dir)
		assert.True(t, info.IsDir())
	}

	// Tools dir is never created implicitly
	_, err := os.Stat(cfg.ToolsDir)
	assert.True(t, os.IsNotExist(err), "tools dir must not be created")
}
