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

// Package dex handles the APK-level zip surgery around odexing: extracting
// classes.dex, repackaging oat/vdex artifacts into an APK, and stripping
// them back out (deodex). DEX and OAT contents are opaque blobs here; the
// actual compilation is dex2oat's job.
package dex

import (
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ClassesDex is the fixed name of the primary DEX entry in an APK
const ClassesDex = "classes.dex"

// oatPrefix is the in-APK directory holding odex artifacts
const oatPrefix = "oat/"

// ErrNoClassesDex reports an APK without a classes.dex entry
var ErrNoClassesDex = errors.Base("no classes.dex in archive")

// ErrBadArchive reports a file that is not a readable zip archive
var ErrBadArchive = errors.Base("invalid zip archive")

// Stem returns the file's base name without its extension
// (e.g. /x/app1.apk → app1).
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// oatEntryName places an artifact under oat/<first-char>/<name>, the layout
// Android uses for per-ISA odex artifacts inside an APK.
func oatEntryName(artifactPath string) string {
	name := filepath.Base(artifactPath)
	return oatPrefix + name[:1] + "/" + name
}
