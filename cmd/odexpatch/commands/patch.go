package commands

import (
	"context"
	"fmt"

	"github.com/odexkit/odexpatch/cmd/odexpatch/opts"
	"github.com/odexkit/odexpatch/pkg/patch"
	"github.com/odexkit/odexpatch/pkg/tool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewPatchCmd creates a new patch command
func NewPatchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		inputDir    string
		outputDir   string
		backupDir   string
		toolsDir    string
		toolName    string
		pattern     string
		workers     int
		force       bool
		failOnError bool
	)

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Patch every matching file in the input directory",
		Long: `Patch scans the input directory for files matching the pattern.
For each file it will:
1. Copy the original into the backup directory
2. Invoke the patch tool with the source and destination paths
3. Report success or failure and continue with the next file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "patch").Logger().WithContext(ctx)

			// Flag overrides on top of the loaded config
			cfg := o.Config
			if inputDir != "" {
				cfg.InputDir = inputDir
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if backupDir != "" {
				cfg.BackupDir = backupDir
			}
			if toolsDir != "" {
				cfg.ToolsDir = toolsDir
			}
			if toolName != "" {
				cfg.Tool = toolName
			}
			if pattern != "" {
				cfg.Pattern = pattern
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if force {
				cfg.Force = true
			}
			if failOnError {
				cfg.FailOnError = true
			}
			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating config: %w", err)
			}

			return RunPatch(ctx, o)
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "input directory override")
	cmd.Flags().StringVar(&outputDir, "output", "", "output directory override")
	cmd.Flags().StringVar(&backupDir, "backup", "", "backup directory override")
	cmd.Flags().StringVar(&toolsDir, "tools", "", "tools directory override")
	cmd.Flags().StringVar(&toolName, "tool", "", "patch tool executable name override")
	cmd.Flags().StringVar(&pattern, "pattern", "", "file pattern override (e.g. \"*.odex\")")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent file workers (default 1)")
	cmd.Flags().BoolVar(&force, "force", false, "reprocess files whose output already exists")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero if any file failed")

	return cmd
}

// RunPatch runs the batch pipeline with the options' config. It is shared
// between the patch command and the bare root invocation.
func RunPatch(ctx context.Context, o *opts.RootOpts) error {
	cfg := o.Config
	o.UserLogger.LogRunEvent(fmt.Sprintf("Patching %s", cfg.String()))

	// Preconditions: working directories first, then the one fatal check.
	if err := cfg.EnsureDirs(ctx); err != nil {
		o.UserLogger.LogValidation(false, "Preparing directories failed", err)
		return errors.Errorf("preparing directories: %w", err)
	}

	toolPath, err := tool.Locate(ctx, cfg.ToolsDir, cfg.Tool, cfg.SDKPath)
	if err != nil {
		o.UserLogger.LogValidation(false, "Transformation tool missing", err)
		return errors.Errorf("locating tool: %w", err)
	}

	patcher, err := patch.New(patch.Options{
		Config:      cfg,
		Transformer: patch.NewExecTransformer(toolPath),
		StatusMgr:   o.StatusMgr,
	})
	if err != nil {
		return errors.Errorf("creating patcher: %w", err)
	}

	summary, err := patcher.Run(ctx)
	if err != nil {
		o.UserLogger.LogValidation(false, "Batch run failed", err)
		return errors.Errorf("running batch: %w", err)
	}

	o.UserLogger.LogRunEvent(fmt.Sprintf("Run complete: %d patched, %d failed, %d skipped",
		summary.Succeeded, summary.Failed, summary.Skipped))

	if cfg.FailOnError && summary.Failed > 0 {
		return errors.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}
