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
	"context"
	"os"

	"github.com/odexkit/odexpatch/cmd/odexpatch/commands"
	"github.com/odexkit/odexpatch/cmd/odexpatch/opts"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "odexpatch",
		Short: "Batch odex file patcher",
		Long: `odexpatch scans an input directory for odex files, backs each one up,
runs the external patch tool on it and routes successes to an output
directory, reporting per-file status along the way.

Run without arguments it behaves like the classic run-in-place script:
./input -> ./output with backups in ./backup and the tool under ./tools.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			ctx := zerolog.DefaultContextLogger.WithContext(cmd.Context())
			cmd.SetContext(ctx)

			o, err := newRootOpts(ctx)
			if err != nil {
				return err
			}
			*rootOpts = *o
			return nil
		},
		// The bare invocation runs the batch patch pipeline
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunPatch(cmd.Context(), rootOpts)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewPatchCmd(rootOpts),
		commands.NewOdexCmd(rootOpts),
		commands.NewDeodexCmd(rootOpts),
		commands.NewInstallToolCmd(rootOpts),
		commands.NewCleanCmd(rootOpts),
		newVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		// Errors were already reported by the failing command; the exit
		// code is the contract here.
		os.Exit(1)
	}
}
