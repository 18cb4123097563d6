package commands

import (
	"path/filepath"

	"github.com/odexkit/odexpatch/cmd/odexpatch/opts"
	"github.com/odexkit/odexpatch/pkg/dex"
	"github.com/odexkit/odexpatch/pkg/status"
	"github.com/odexkit/odexpatch/pkg/tool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewOdexCmd creates a new odex command
func NewOdexCmd(o *opts.RootOpts) *cobra.Command {
	var (
		outputDir   string
		sdkPath     string
		bootJars    []string
		failOnError bool
	)

	cmd := &cobra.Command{
		Use:   "odex <apk>...",
		Short: "Odex APK files with dex2oat",
		Long: `Odex compiles each APK's classes.dex ahead of time.
For each APK it will:
1. Extract classes.dex into the scratch directory
2. Run dex2oat to produce oat and vdex artifacts
3. Repackage the APK with the artifacts in place of classes.dex`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "odex").Logger().WithContext(ctx)

			cfg := o.Config
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if sdkPath != "" {
				cfg.SDKPath = sdkPath
			}
			if len(bootJars) > 0 {
				cfg.BootJars = bootJars
			}

			dex2oat, err := tool.Locate(ctx, cfg.ToolsDir, tool.Dex2OatName, cfg.SDKPath)
			if err != nil {
				o.UserLogger.LogValidation(false, "dex2oat missing", err)
				return errors.Errorf("locating dex2oat: %w", err)
			}
			if err := cfg.EnsureDirs(ctx); err != nil {
				return errors.Errorf("preparing directories: %w", err)
			}

			odexer := dex.NewOdexer(dex2oat, cfg.TmpDir, cfg.BootJars)

			o.StatusMgr.StartRun(ctx, len(args))
			for i, apk := range args {
				rec := status.FileRecord{
					Name:       filepath.Base(apk),
					SourcePath: apk,
				}
				outPath, err := odexer.OdexAPK(ctx, apk, cfg.OutputDir)
				if err != nil {
					rec.Outcome = status.OutcomeFailed
					rec.Err = err
				} else {
					rec.Outcome = status.OutcomeSuccess
					rec.OutputPath = outPath
				}
				o.StatusMgr.Track(ctx, rec)
				o.StatusMgr.UpdateProgress(ctx, i+1)
			}

			summary := o.StatusMgr.FinishRun(ctx)
			if (failOnError || cfg.FailOnError) && summary.Failed > 0 {
				return errors.Errorf("%d APK(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "", "output directory override")
	cmd.Flags().StringVar(&sdkPath, "sdk-path", "", "Android SDK root for dex2oat lookup")
	cmd.Flags().StringArrayVar(&bootJars, "boot-jar", nil, "bootclasspath entry (repeatable)")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero if any APK failed")

	return cmd
}
