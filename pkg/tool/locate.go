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

package tool

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNotFound reports that the transformation executable could not be
// located anywhere. It is the one condition that aborts a whole run.
var ErrNotFound = errors.Base("transformation tool not found")

// 🔍 Locate finds the transformation executable.
//
// Lookup order:
//  1. toolsDir/name — the fixed per-run location
//  2. sdkPath/art/compiler/name — when an SDK root is configured, its
//     absence there is an error rather than a fallthrough
//  3. $PATH
func Locate(ctx context.Context, toolsDir, name, sdkPath string) (string, error) {
	logger := zerolog.Ctx(ctx)

	candidate := filepath.Join(toolsDir, name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		logger.Debug().Str("path", candidate).Msg("tool found in tools dir")
		return candidate, nil
	}

	if sdkPath != "" {
		candidate = filepath.Join(sdkPath, "art", "compiler", name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			logger.Debug().Str("path", candidate).Msg("tool found in SDK")
			return candidate, nil
		}
		return "", errors.Errorf("%w: %s not at expected SDK location %s", ErrNotFound, name, candidate)
	}

	if path, err := exec.LookPath(name); err == nil {
		logger.Debug().Str("path", path).Msg("tool found in PATH")
		return path, nil
	}

	return "", errors.Errorf("%w: %s (looked in %s and $PATH)", ErrNotFound, name, toolsDir)
}
