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

package status

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome represents the processing state of a single file.
// A file moves Pending → BackedUp → {Success | Failed}; Skipped is terminal
// for files the run never attempted to transform.
type Outcome int

const (
	OutcomePending  Outcome = iota
	OutcomeBackedUp         // Backup copy written, transform not yet attempted
	OutcomeSuccess          // Tool exited zero, output file written
	OutcomeFailed           // Backup or transform failed
	OutcomeSkipped          // File was not attempted (e.g. output exists without --force)
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeBackedUp:
		return "backed-up"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// 📄 FileRecord contains the per-file paths and final outcome
type FileRecord struct {
	Name       string  // Base name of the file (name + extension)
	SourcePath string  // Path in the input directory
	BackupPath string  // Path of the pre-transform copy
	OutputPath string  // Path of the transformed file
	Outcome    Outcome // Current processing outcome
	Err        error   // Error that caused a Failed outcome
}

// 🧮 Summary tallies outcomes across a run
type Summary struct {
	Attempted int // Files visited by the run
	Succeeded int
	Failed    int
	Skipped   int
}

// 🔧 Manager tracks per-file outcomes and emits one status line per file
type Manager struct {
	console   io.Writer
	formatter FileFormatter

	mu    sync.RWMutex
	files map[string]FileRecord
	order []string

	total     int
	processed int
}

// 🏭 NewManager creates a new status manager writing to console
func NewManager(console io.Writer, formatter FileFormatter) *Manager {
	if console == nil {
		console = os.Stdout
	}
	if formatter == nil {
		formatter = NewDefaultFileFormatter()
	}
	return &Manager{
		console:   console,
		formatter: formatter,
		files:     make(map[string]FileRecord),
	}
}

// 📝 Track records a file's outcome and prints its status line.
// Intermediate outcomes (Pending, BackedUp) are tracked silently; terminal
// outcomes produce the per-file console line the run reports.
func (m *Manager) Track(ctx context.Context, rec FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.files[rec.Name]; !seen {
		m.order = append(m.order, rec.Name)
	}
	m.files[rec.Name] = rec

	logger := zerolog.Ctx(ctx)
	evt := logger.Info().
		Str("file", rec.Name).
		Str("outcome", rec.Outcome.String())
	if rec.Err != nil {
		evt = evt.Err(rec.Err)
	}
	evt.Msg("file outcome")

	switch rec.Outcome {
	case OutcomeSuccess, OutcomeFailed, OutcomeSkipped:
		io.WriteString(m.console, m.formatter.FormatFileOutcome(rec)+"\n")
	}
}

// 🔍 Get returns the record for a tracked file
func (m *Manager) Get(name string) (FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.files[name]
	if !ok {
		return FileRecord{}, errors.Errorf("file not tracked: %s", name)
	}
	return rec, nil
}

// 📋 List returns all tracked records in first-seen order
func (m *Manager) List() []FileRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]FileRecord, 0, len(m.order))
	for _, name := range m.order {
		records = append(records, m.files[name])
	}
	return records
}

// 🏁 StartRun resets progress for a run over total files
func (m *Manager) StartRun(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	zerolog.Ctx(ctx).Info().Int("total", total).Msg("starting run")
}

// ⏳ UpdateProgress records that processed files have been visited
func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	zerolog.Ctx(ctx).Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

// 🏁 FinishRun prints the completion line and summary
func (m *Manager) FinishRun(ctx context.Context) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := m.summaryLocked()
	io.WriteString(m.console, m.formatter.FormatSummary(summary)+"\n")
	zerolog.Ctx(ctx).Info().
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("run complete")
	return summary
}

// 🧮 Summary tallies the outcomes tracked so far
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summaryLocked()
}

func (m *Manager) summaryLocked() Summary {
	var s Summary
	for _, name := range m.order {
		switch m.files[name].Outcome {
		case OutcomeSuccess:
			s.Attempted++
			s.Succeeded++
		case OutcomeFailed:
			s.Attempted++
			s.Failed++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}
