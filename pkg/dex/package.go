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

// 📦 PackageOdex rebuilds an APK with its classes.dex replaced by the
// compiled oat/vdex artifacts and writes it to outDir/<stem>-odexed.apk.
func PackageOdex(ctx context.Context, apkPath, oatPath, vdexPath, outDir string) (string, error) {
	logger := zerolog.Ctx(ctx)

	reader, err := zip.OpenReader(apkPath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return "", errors.Errorf("%w: %s", ErrBadArchive, apkPath)
		}
		return "", errors.Errorf("opening APK %s: %w", apkPath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", errors.Errorf("creating output dir: %w", err)
	}
	outPath := filepath.Join(outDir, Stem(apkPath)+"-odexed.apk")

	out, err := os.Create(outPath)
	if err != nil {
		return "", errors.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	// Carry every entry except the original DEX
	for _, f := range reader.File {
		if f.Name == ClassesDex {
			continue
		}
		if err := copyZipEntry(w, f); err != nil {
			return "", errors.Errorf("copying entry %s: %w", f.Name, err)
		}
	}

	// Add the compiled artifacts under oat/
	for _, artifact := range []string{oatPath, vdexPath} {
		if err := addFileEntry(w, artifact, oatEntryName(artifact)); err != nil {
			return "", errors.Errorf("adding artifact %s: %w", artifact, err)
		}
	}

	if err := w.Close(); err != nil {
		return "", errors.Errorf("finalizing archive: %w", err)
	}

	logger.Debug().Str("apk", apkPath).Str("out", outPath).Msg("packaged odexed APK")
	return outPath, nil
}

// copyZipEntry copies a single entry between archives, preserving its header
func copyZipEntry(w *zip.Writer, f *zip.File) error {
	header := f.FileHeader
	dst, err := w.CreateHeader(&header)
	if err != nil {
		return errors.Errorf("creating entry: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return errors.Errorf("opening entry: %w", err)
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Errorf("copying entry content: %w", err)
	}
	return nil
}

// addFileEntry deflates a file from disk into the archive under entryName
func addFileEntry(w *zip.Writer, path, entryName string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	dst, err := w.CreateHeader(&zip.FileHeader{
		Name:   entryName,
		Method: zip.Deflate,
	})
	if err != nil {
		return errors.Errorf("creating entry %s: %w", entryName, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Errorf("writing entry %s: %w", entryName, err)
	}
	return nil
}
