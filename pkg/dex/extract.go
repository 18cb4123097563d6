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
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📤 ExtractClassesDex pulls the primary classes.dex out of an APK into
// tmpDir/<stem>/classes.dex and returns the extracted path.
func ExtractClassesDex(ctx context.Context, apkPath, tmpDir string) (string, error) {
	logger := zerolog.Ctx(ctx)

	reader, err := zip.OpenReader(apkPath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return "", errors.Errorf("%w: %s", ErrBadArchive, apkPath)
		}
		return "", errors.Errorf("opening APK %s: %w", apkPath, err)
	}
	defer reader.Close()

	var entry *zip.File
	for _, f := range reader.File {
		if f.Name == ClassesDex {
			entry = f
			break
		}
	}
	if entry == nil {
		return "", errors.Errorf("%w: %s", ErrNoClassesDex, apkPath)
	}

	outDir := filepath.Join(tmpDir, Stem(apkPath))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", errors.Errorf("creating extraction dir: %w", err)
	}
	outPath := filepath.Join(outDir, ClassesDex)

	src, err := entry.Open()
	if err != nil {
		return "", errors.Errorf("opening classes.dex entry: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return "", errors.Errorf("creating %s: %w", outPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Errorf("extracting classes.dex: %w", err)
	}

	logger.Debug().Str("apk", apkPath).Str("dex", outPath).Msg("extracted classes.dex")
	return outPath, nil
}
