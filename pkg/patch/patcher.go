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

package patch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/odexkit/odexpatch/pkg/config"
	"github.com/odexkit/odexpatch/pkg/status"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options contains the collaborators of a Patcher
type Options struct {
	// Config is the run configuration
	Config *config.Config
	// Transformer applies the external transformation per file
	Transformer Transformer
	// StatusMgr tracks and reports per-file outcomes
	StatusMgr *status.Manager
}

// 🎮 Patcher runs the batch pipeline: scan, back up, transform, report
type Patcher struct {
	cfg       *config.Config
	transform Transformer
	statusMgr *status.Manager
}

// 🏭 New creates a new patcher with the given options
func New(opts Options) (*Patcher, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Transformer == nil {
		return nil, errors.Errorf("transformer is required")
	}
	if opts.StatusMgr == nil {
		return nil, errors.Errorf("status manager is required")
	}
	return &Patcher{
		cfg:       opts.Config,
		transform: opts.Transformer,
		statusMgr: opts.StatusMgr,
	}, nil
}

// 🏃 Run processes every matching file in the input directory and returns
// the run summary. Per-file failures are recorded and never abort the run;
// the returned error is reserved for fatal conditions (unreadable input
// directory, cancelled context).
func (p *Patcher) Run(ctx context.Context) (status.Summary, error) {
	logger := zerolog.Ctx(ctx)

	files, err := p.scan(ctx)
	if err != nil {
		return status.Summary{}, errors.Errorf("scanning input directory: %w", err)
	}

	p.statusMgr.StartRun(ctx, len(files))

	if p.cfg.Workers > 1 {
		err = p.runParallel(ctx, files)
	} else {
		err = p.runSequential(ctx, files)
	}
	if err != nil {
		return status.Summary{}, err
	}

	summary := p.statusMgr.FinishRun(ctx)
	logger.Info().Int("files", len(files)).Msg("batch run complete")
	return summary, nil
}

// 🔍 scan lists input files whose base name matches the configured pattern
func (p *Patcher) scan(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.cfg.InputDir)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", p.cfg.InputDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := doublestar.Match(p.cfg.Pattern, entry.Name())
		if err != nil {
			return nil, errors.Errorf("matching pattern %s: %w", p.cfg.Pattern, err)
		}
		if matched {
			names = append(names, entry.Name())
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int("matched", len(names)).
		Str("pattern", p.cfg.Pattern).
		Msg("scanned input directory")
	return names, nil
}

func (p *Patcher) runSequential(ctx context.Context, files []string) error {
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("run cancelled: %w", err)
		}
		p.processFile(ctx, name)
		p.statusMgr.UpdateProgress(ctx, i+1)
	}
	return nil
}

func (p *Patcher) runParallel(ctx context.Context, files []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	var processed atomic.Int64
	for _, name := range files {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("run cancelled: %w", err)
			}
			p.processFile(ctx, name)
			p.statusMgr.UpdateProgress(ctx, int(processed.Add(1)))
			return nil
		})
	}
	return g.Wait()
}

// 📄 processFile runs the per-file pipeline. Every failure is terminal for
// the file only: it is tracked as Failed and the run moves on.
func (p *Patcher) processFile(ctx context.Context, name string) {
	rec := status.FileRecord{
		Name:       name,
		SourcePath: filepath.Join(p.cfg.InputDir, name),
		BackupPath: filepath.Join(p.cfg.BackupDir, name),
		OutputPath: filepath.Join(p.cfg.OutputDir, name),
	}

	// Respect existing outputs unless forced
	if !p.cfg.Force {
		if _, err := os.Stat(rec.OutputPath); err == nil {
			rec.Outcome = status.OutcomeSkipped
			p.statusMgr.Track(ctx, rec)
			return
		}
	}

	// Back up before any transformation attempt
	if err := copyFile(rec.SourcePath, rec.BackupPath); err != nil {
		rec.Outcome = status.OutcomeFailed
		rec.Err = errors.Errorf("backing up: %w", err)
		p.statusMgr.Track(ctx, rec)
		return
	}
	rec.Outcome = status.OutcomeBackedUp
	p.statusMgr.Track(ctx, rec)

	if err := p.transform.Transform(ctx, rec.SourcePath, rec.OutputPath); err != nil {
		// A non-zero exit guarantees nothing about the destination. Drop
		// any partial output so the file is retried on the next run
		// instead of being skipped as up to date.
		os.Remove(rec.OutputPath)
		rec.Outcome = status.OutcomeFailed
		rec.Err = err
		p.statusMgr.Track(ctx, rec)
		return
	}

	rec.Outcome = status.OutcomeSuccess
	p.statusMgr.Track(ctx, rec)
}

// copyFile copies src to dst, creating parent directories if needed
func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	destination, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	return nil
}
