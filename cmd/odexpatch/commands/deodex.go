package commands

import (
	"path/filepath"

	"github.com/odexkit/odexpatch/cmd/odexpatch/opts"
	"github.com/odexkit/odexpatch/pkg/dex"
	"github.com/odexkit/odexpatch/pkg/status"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewDeodexCmd creates a new deodex command
func NewDeodexCmd(o *opts.RootOpts) *cobra.Command {
	var (
		outputDir   string
		failOnError bool
	)

	cmd := &cobra.Command{
		Use:   "deodex <apk>...",
		Short: "Strip oat artifacts from odexed APK files",
		Long: `Deodex rewrites each APK without its ahead-of-time
compilation artifacts. Entries under oat/ are dropped so the runtime
falls back to the bundled classes.dex. APKs that never carried oat
artifacts are copied through with a warning.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "deodex").Logger().WithContext(ctx)

			cfg := o.Config
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if err := cfg.EnsureDirs(ctx); err != nil {
				return errors.Errorf("preparing directories: %w", err)
			}

			o.StatusMgr.StartRun(ctx, len(args))
			for i, apk := range args {
				rec := status.FileRecord{
					Name:       filepath.Base(apk),
					SourcePath: apk,
				}
				outPath, hadDex, err := dex.StripOat(ctx, apk, cfg.OutputDir)
				switch {
				case err != nil:
					rec.Outcome = status.OutcomeFailed
					rec.Err = err
				default:
					rec.Outcome = status.OutcomeSuccess
					rec.OutputPath = outPath
					if !hadDex {
						zerolog.Ctx(ctx).Warn().
							Str("apk", apk).
							Msg("no classes.dex found, APK may already be deodexed")
					}
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
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero if any APK failed")

	return cmd
}
