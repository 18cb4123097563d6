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

package main

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	require.NotNil(t, info)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Version)
}

func TestFormatVersion(t *testing.T) {
	out := FormatVersion()
	info := GetVersionInfo()

	assert.Contains(t, out, "odexpatch version info")
	assert.Contains(t, out, "Version:   "+info.Version)
	assert.Contains(t, out, "VCS:       "+info.VCS)
	assert.Contains(t, out, "Go:        "+info.GoVersion)
	assert.Contains(t, out, "Platform:  "+info.Platform)
}
