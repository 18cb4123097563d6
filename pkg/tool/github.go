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
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
)

// 📥 Installer downloads the transformation executable from a GitHub release
// asset into the tools directory.
type Installer struct {
	client *github.Client
}

// 🏭 NewInstaller creates a new installer. A GITHUB_TOKEN in the environment
// is used when present; public release assets work without one.
func NewInstaller(ctx context.Context) *Installer {
	var httpClient *http.Client
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return &Installer{client: github.NewClient(httpClient)}
}

// 🔍 parseRepo parses a GitHub repository URL into owner and name
func parseRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) < 2 {
		return "", "", errors.Errorf("invalid repository format: %s", repo)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// 🔍 pickAsset selects the release asset matching assetName
func pickAsset(assets []*github.ReleaseAsset, assetName string) *github.ReleaseAsset {
	for _, a := range assets {
		if a.GetName() == assetName {
			return a
		}
	}
	return nil
}

// 📦 Install fetches the named asset of repo at ref (latest release when ref
// is empty) and writes it executable into destDir. Returns the installed
// path.
func (i *Installer) Install(ctx context.Context, repo, ref, assetName, destDir string) (string, error) {
	logger := zerolog.Ctx(ctx)

	owner, name, err := parseRepo(repo)
	if err != nil {
		return "", errors.Errorf("parsing repo: %w", err)
	}

	var release *github.RepositoryRelease
	if ref == "" {
		release, _, err = i.client.Repositories.GetLatestRelease(ctx, owner, name)
	} else {
		release, _, err = i.client.Repositories.GetReleaseByTag(ctx, owner, name, ref)
	}
	if err != nil {
		return "", errors.Errorf("getting release: %w", err)
	}

	asset := pickAsset(release.Assets, assetName)
	if asset == nil {
		return "", errors.Errorf("release %s has no asset named %s", release.GetTagName(), assetName)
	}

	logger.Debug().
		Str("repo", repo).
		Str("tag", release.GetTagName()).
		Str("asset", assetName).
		Msg("downloading release asset")

	rc, _, err := i.client.Repositories.DownloadReleaseAsset(ctx, owner, name, asset.GetID(), http.DefaultClient)
	if err != nil {
		return "", errors.Errorf("downloading asset: %w", err)
	}
	defer rc.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Errorf("creating tools directory: %w", err)
	}

	destPath := filepath.Join(destDir, assetName)
	if err := writeExecutableAtomic(destPath, rc); err != nil {
		return "", errors.Errorf("writing tool: %w", err)
	}

	return destPath, nil
}

// writeExecutableAtomic streams content to path via a temp file and rename
func writeExecutableAtomic(path string, content io.Reader) error {
	tempPath := path + ".tmp"

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
