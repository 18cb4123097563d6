package commands

import (
	"github.com/odexkit/odexpatch/cmd/odexpatch/opts"
	"github.com/odexkit/odexpatch/pkg/dex"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewCleanCmd creates a new clean command
func NewCleanCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the scratch directory",
		Long: `Clean removes the scratch directory used for intermediate
extraction and compilation artifacts. Backups are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "clean").Logger().WithContext(ctx)

			if err := dex.CleanTmp(ctx, o.Config.TmpDir); err != nil {
				return errors.Errorf("cleaning scratch directory: %w", err)
			}

			o.UserLogger.LogValidation(true, "scratch directory removed", nil)
			return nil
		},
	}

	return cmd
}
