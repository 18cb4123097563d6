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

package dex

import (
	"context"
	"os"
	"path/filepath"

	"github.com/odexkit/odexpatch/pkg/tool"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🏗️ Odexer compiles an APK's classes.dex with dex2oat and repackages the
// result. Scratch files live under TmpDir and are removed per APK whether or
// not the compile succeeds.
type Odexer struct {
	Dex2Oat  string   // Path to the dex2oat executable
	TmpDir   string   // Scratch directory
	BootJars []string // Bootclasspath entries passed to dex2oat
	Runner   tool.Runner
}

// 🏭 NewOdexer creates an Odexer that shells out to dex2oat
func NewOdexer(dex2oat, tmpDir string, bootJars []string) *Odexer {
	return &Odexer{
		Dex2Oat:  dex2oat,
		TmpDir:   tmpDir,
		BootJars: bootJars,
		Runner:   tool.NewExecRunner(),
	}
}

// 🏃 OdexAPK odexes a single APK and returns the path of the odexed copy
func (o *Odexer) OdexAPK(ctx context.Context, apkPath, outDir string) (string, error) {
	logger := zerolog.Ctx(ctx)

	dexPath, err := ExtractClassesDex(ctx, apkPath, o.TmpDir)
	if err != nil {
		return "", errors.Errorf("extracting dex: %w", err)
	}
	defer os.RemoveAll(filepath.Join(o.TmpDir, Stem(apkPath)))

	oatPath := filepath.Join(o.TmpDir, Stem(apkPath)+".oat")
	vdexPath := filepath.Join(o.TmpDir, Stem(apkPath)+".vdex")
	defer os.Remove(oatPath)
	defer os.Remove(vdexPath)

	args := tool.Dex2OatArgs(dexPath, oatPath, vdexPath, o.BootJars)
	if err := o.Runner.Run(ctx, o.Dex2Oat, args...); err != nil {
		return "", errors.Errorf("running dex2oat: %w", err)
	}

	outPath, err := PackageOdex(ctx, apkPath, oatPath, vdexPath, outDir)
	if err != nil {
		return "", errors.Errorf("packaging odexed APK: %w", err)
	}

	logger.Info().Str("apk", apkPath).Str("out", outPath).Msg("odexed APK")
	return outPath, nil
}

// 🧹 CleanTmp removes the scratch directory and everything in it
func CleanTmp(ctx context.Context, tmpDir string) error {
	zerolog.Ctx(ctx).Debug().Str("dir", tmpDir).Msg("removing scratch directory")
	if err := os.RemoveAll(tmpDir); err != nil {
		return errors.Errorf("removing %s: %w", tmpDir, err)
	}
	return nil
}
