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
	"context"
	"testing"

	"github.com/odexkit/odexpatch/pkg/patch"
	"github.com/odexkit/odexpatch/pkg/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type recordingRunner struct {
	exe  string
	args []string
	err  error
}

func (r *recordingRunner) Run(ctx context.Context, exe string, args ...string) error {
	r.exe = exe
	r.args = args
	return r.err
}

func TestExecTransformerInvocation(t *testing.T) {
	runner := &recordingRunner{}
	tf := &patch.ExecTransformer{Tool: "/tools/odexpatcher", Runner: runner}

	err := tf.Transform(context.Background(), "input/a.odex", "output/a.odex")
	require.NoError(t, err)

	assert.Equal(t, "/tools/odexpatcher", runner.exe)
	assert.Equal(t, []string{"patch", "input/a.odex", "output/a.odex"}, runner.args)
}

func TestExecTransformerPropagatesExitStatus(t *testing.T) {
	runner := &recordingRunner{err: &tool.ExitError{Code: 2, Stderr: "bad header"}}
	tf := &patch.ExecTransformer{Tool: "/tools/odexpatcher", Runner: runner}

	err := tf.Transform(context.Background(), "input/a.odex", "output/a.odex")
	require.Error(t, err)

	var exitErr *tool.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
}

func TestNewExecTransformerDefaults(t *testing.T) {
	tf := patch.NewExecTransformer("/tools/odexpatcher")
	assert.Equal(t, "/tools/odexpatcher", tf.Tool)
	assert.NotNil(t, tf.Runner)
}
