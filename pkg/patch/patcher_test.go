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

package patch_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/odexkit/odexpatch/pkg/config"
	"github.com/odexkit/odexpatch/pkg/patch"
	"github.com/odexkit/odexpatch/pkg/status"
	"github.com/odexkit/odexpatch/pkg/tool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransformer fakes the external tool: it "patches" by prefixing the
// source content, and fails for configured file names. Names in partial
// additionally leave a half-written destination behind before failing, like
// a tool that dies mid-write.
type stubTransformer struct {
	mu      sync.Mutex
	fail    map[string]bool
	partial map[string]bool
	calls   []string
}

func (s *stubTransformer) Transform(ctx context.Context, src, dst string) error {
	name := filepath.Base(src)

	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()

	if s.fail[name] {
		if s.partial[name] {
			if err := os.WriteFile(dst, []byte("truncated"), 0644); err != nil {
				return err
			}
		}
		return &tool.ExitError{Code: 1, Stderr: "cannot patch"}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append([]byte("patched:"), data...), 0644)
}

// 🧪 createTestEnv creates a run environment rooted in a temp dir
func createTestEnv(t *testing.T) (context.Context, *config.Config, *status.Manager, *bytes.Buffer) {
	t.Helper()

	tmpDir := t.TempDir()
	cfg := &config.Config{
		InputDir:  filepath.Join(tmpDir, "input"),
		OutputDir: filepath.Join(tmpDir, "output"),
		BackupDir: filepath.Join(tmpDir, "backup"),
		ToolsDir:  filepath.Join(tmpDir, "tools"),
		TmpDir:    filepath.Join(tmpDir, "tmp"),
	}
	require.NoError(t, cfg.Validate())

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())
	require.NoError(t, cfg.EnsureDirs(ctx))

	var console bytes.Buffer
	statusMgr := status.NewManager(&console, status.NewDefaultFileFormatter())

	return ctx, cfg, statusMgr, &console
}

func writeInput(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, name), []byte(content), 0644))
}

func newPatcher(t *testing.T, cfg *config.Config, tf patch.Transformer, mgr *status.Manager) *patch.Patcher {
	t.Helper()
	p, err := patch.New(patch.Options{Config: cfg, Transformer: tf, StatusMgr: mgr})
	require.NoError(t, err)
	return p
}

func TestRunMixedOutcomes(t *testing.T) {
	ctx, cfg, mgr, console := createTestEnv(t)
	writeInput(t, cfg, "a.odex", "aaa")
	writeInput(t, cfg, "b.odex", "bbb")

	tf := &stubTransformer{fail: map[string]bool{"b.odex": true}}
	p := newPatcher(t, cfg, tf, mgr)

	summary, err := p.Run(ctx)
	require.NoError(t, err, "one bad file must not abort the run")

	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	// Both files were backed up before their transform was attempted
	assert.FileExists(t, filepath.Join(cfg.BackupDir, "a.odex"))
	assert.FileExists(t, filepath.Join(cfg.BackupDir, "b.odex"))

	// Only the successful file produced output
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "a.odex"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "b.odex"))

	// One status line per file, plus the completion line
	out := console.String()
	assert.Contains(t, out, "Patched a.odex")
	assert.Contains(t, out, "Failed b.odex")
	assert.Contains(t, out, "done:")
}

func TestRunBackupPrecedesTransform(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	for _, name := range []string{"one.odex", "two.odex", "three.odex"} {
		writeInput(t, cfg, name, name)
	}

	tf := &stubTransformer{fail: map[string]bool{"one.odex": true, "two.odex": true, "three.odex": true}}
	p := newPatcher(t, cfg, tf, mgr)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Failed)

	// Backups equal attempts even when every transform fails
	entries, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Len(t, tf.calls, 3, "iteration is total, not short-circuited")
}

func TestRunPatternFilter(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	writeInput(t, cfg, "app.odex", "x")
	writeInput(t, cfg, "readme.txt", "not eligible")
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.InputDir, "subdir.odex"), 0755))

	tf := &stubTransformer{}
	p := newPatcher(t, cfg, tf, mgr)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Attempted)
	assert.Equal(t, []string{"app.odex"}, tf.calls)
}

func TestRunEmptyInput(t *testing.T) {
	ctx, cfg, mgr, console := createTestEnv(t)

	p := newPatcher(t, cfg, &stubTransformer{}, mgr)
	summary, err := p.Run(ctx)
	require.NoError(t, err, "zero eligible files is not an error")
	assert.Zero(t, summary.Attempted)
	assert.Contains(t, console.String(), "done:")
}

func TestRunSkipsExistingOutput(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	writeInput(t, cfg, "a.odex", "aaa")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputDir, "a.odex"), []byte("previous"), 0644))

	tf := &stubTransformer{}
	p := newPatcher(t, cfg, tf, mgr)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, tf.calls, "skipped files are not transformed")

	// Skipped files are not backed up either
	assert.NoFileExists(t, filepath.Join(cfg.BackupDir, "a.odex"))
}

func TestRunForceReprocesses(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	cfg.Force = true
	writeInput(t, cfg, "a.odex", "aaa")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputDir, "a.odex"), []byte("previous"), 0644))

	tf := &stubTransformer{}
	p := newPatcher(t, cfg, tf, mgr)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	content, err := os.ReadFile(filepath.Join(cfg.OutputDir, "a.odex"))
	require.NoError(t, err)
	assert.Equal(t, "patched:aaa", string(content))
}

func TestRunIdempotent(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	writeInput(t, cfg, "a.odex", "aaa")
	writeInput(t, cfg, "b.odex", "bbb")

	p := newPatcher(t, cfg, &stubTransformer{}, mgr)
	_, err := p.Run(ctx)
	require.NoError(t, err)

	readOutputs := func() map[string]string {
		outputs := map[string]string{}
		entries, err := os.ReadDir(cfg.OutputDir)
		require.NoError(t, err)
		for _, e := range entries {
			content, err := os.ReadFile(filepath.Join(cfg.OutputDir, e.Name()))
			require.NoError(t, err)
			outputs[e.Name()] = string(content)
		}
		return outputs
	}
	first := readOutputs()

	// Second run over the unchanged input leaves the outputs identical
	mgr2 := status.NewManager(&bytes.Buffer{}, nil)
	p2 := newPatcher(t, cfg, &stubTransformer{}, mgr2)
	_, err = p2.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, readOutputs())
}

func TestRunBackupFailureIsPerFile(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	writeInput(t, cfg, "a.odex", "aaa")
	writeInput(t, cfg, "b.odex", "bbb")

	// Replace the backup dir with a regular file so every backup copy fails
	require.NoError(t, os.RemoveAll(cfg.BackupDir))
	require.NoError(t, os.WriteFile(cfg.BackupDir, []byte("in the way"), 0644))

	tf := &stubTransformer{}
	p := newPatcher(t, cfg, tf, mgr)

	summary, err := p.Run(ctx)
	require.NoError(t, err, "backup failures are per-file, not fatal")
	assert.Equal(t, 2, summary.Failed)
	assert.Empty(t, tf.calls, "transform must not run without a backup")
}

func TestRunFailureDropsPartialOutput(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	writeInput(t, cfg, "b.odex", "bbb")

	tf := &stubTransformer{
		fail:    map[string]bool{"b.odex": true},
		partial: map[string]bool{"b.odex": true},
	}
	p := newPatcher(t, cfg, tf, mgr)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	// The half-written destination must not survive the failure
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "b.odex"))

	// And the next run retries the file instead of skipping it
	var console2 bytes.Buffer
	mgr2 := status.NewManager(&console2, nil)
	p2 := newPatcher(t, cfg, tf, mgr2)
	summary2, err := p2.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary2.Failed)
	assert.Equal(t, 0, summary2.Skipped)
	assert.Len(t, tf.calls, 2, "failed file is re-attempted on the next run")
}

func TestRunParallel(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	cfg.Workers = 4

	fail := map[string]bool{}
	for i := 0; i < 20; i++ {
		name := string(rune('a'+i)) + ".odex"
		writeInput(t, cfg, name, name)
		if i%4 == 0 {
			fail[name] = true
		}
	}

	p := newPatcher(t, cfg, &stubTransformer{fail: fail}, mgr)
	summary, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 20, summary.Attempted)
	assert.Equal(t, 5, summary.Failed)
	assert.Equal(t, 15, summary.Succeeded)

	backups, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	assert.Len(t, backups, 20)
}

func TestRunMissingInputDirIsFatal(t *testing.T) {
	ctx, cfg, mgr, _ := createTestEnv(t)
	require.NoError(t, os.RemoveAll(cfg.InputDir))

	p := newPatcher(t, cfg, &stubTransformer{}, mgr)
	_, err := p.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning input directory")
}

func TestNewValidation(t *testing.T) {
	cfg := config.Default()
	mgr := status.NewManager(&bytes.Buffer{}, nil)

	tests := []struct {
		name        string
		opts        patch.Options
		errContains string
	}{
		{
			name:        "missing_config",
			opts:        patch.Options{Transformer: &stubTransformer{}, StatusMgr: mgr},
			errContains: "config is required",
		},
		{
			name:        "missing_transformer",
			opts:        patch.Options{Config: cfg, StatusMgr: mgr},
			errContains: "transformer is required",
		},
		{
			name:        "missing_status_manager",
			opts:        patch.Options{Config: cfg, Transformer: &stubTransformer{}},
			errContains: "status manager is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := patch.New(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
