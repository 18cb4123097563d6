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

	"github.com/odexkit/odexpatch/pkg/tool"
)

// PatchOp is the subcommand the external tool expects for a patch run
const PatchOp = "patch"

// 🎯 Transformer applies the external transformation to a single file.
// A nil return means the tool exited zero and dst is valid; any error means
// failure with no guaranteed content at dst.
type Transformer interface {
	Transform(ctx context.Context, src, dst string) error
}

// 🔧 ExecTransformer invokes the patch tool as `<tool> patch <src> <dst>`
type ExecTransformer struct {
	Tool   string // Path to the tool executable
	Runner tool.Runner
}

// 🏭 NewExecTransformer creates a transformer shelling out to toolPath
func NewExecTransformer(toolPath string) *ExecTransformer {
	return &ExecTransformer{
		Tool:   toolPath,
		Runner: tool.NewExecRunner(),
	}
}

func (t *ExecTransformer) Transform(ctx context.Context, src, dst string) error {
	return t.Runner.Run(ctx, t.Tool, PatchOp, src, dst)
}
