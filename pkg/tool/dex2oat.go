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
	"fmt"
	"strings"
)

// Dex2OatName is the fixed name of the Android AOT compiler executable
const Dex2OatName = "dex2oat"

// CompilerFilter selects the dex2oat optimization level
const CompilerFilter = "speed"

// 🛠️ Dex2OatArgs builds the dex2oat argument list for compiling a DEX file
// into oat/vdex artifacts. bootJars, when non-empty, become a single
// colon-joined --boot-image entry.
func Dex2OatArgs(dexFile, oatFile, vdexFile string, bootJars []string) []string {
	args := []string{
		"--dex-file=" + dexFile,
		"--output-oat-file=" + oatFile,
		"--oat-file-format=vdex",
		"--output-vdex-file=" + vdexFile,
		fmt.Sprintf("--compiler-filter=%s", CompilerFilter),
	}
	if len(bootJars) > 0 {
		args = append(args, "--boot-image="+strings.Join(bootJars, ":"))
	}
	return args
}
