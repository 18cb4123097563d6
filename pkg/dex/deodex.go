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
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🧹 StripOat writes outDir/<stem>-deodexed.apk containing every entry of
// the APK except oat/ artifacts and classes.dex. The returned bool reports
// whether a classes.dex was present; when it was not, the input was likely
// already deodexed and callers should warn rather than fail.
func StripOat(ctx context.Context, apkPath, outDir string) (string, bool, error) {
	logger := zerolog.Ctx(ctx)

	reader, err := zip.OpenReader(apkPath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return "", false, errors.Errorf("%w: %s", ErrBadArchive, apkPath)
		}
		return "", false, errors.Errorf("opening APK %s: %w", apkPath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", false, errors.Errorf("creating output dir: %w", err)
	}
	outPath := filepath.Join(outDir, Stem(apkPath)+"-deodexed.apk")

	out, err := os.Create(outPath)
	if err != nil {
		return "", false, errors.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	foundDex := false
	for _, f := range reader.File {
		if f.Name == ClassesDex {
			foundDex = true
			continue
		}
		if strings.HasPrefix(f.Name, oatPrefix) {
			continue
		}
		if err := copyZipEntry(w, f); err != nil {
			return "", foundDex, errors.Errorf("copying entry %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return "", foundDex, errors.Errorf("finalizing archive: %w", err)
	}

	logger.Debug().
		Str("apk", apkPath).
		Str("out", outPath).
		Bool("had_classes_dex", foundDex).
		Msg("stripped oat artifacts")
	return outPath, foundDex, nil
}
