package commands

import (
	"github.com/odexkit/odexpatch/cmd/odexpatch/opts"
	"github.com/odexkit/odexpatch/pkg/tool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewInstallToolCmd creates a new install-tool command
func NewInstallToolCmd(o *opts.RootOpts) *cobra.Command {
	var (
		repo      string
		ref       string
		assetName string
	)

	cmd := &cobra.Command{
		Use:   "install-tool",
		Short: "Download a transformation tool from a GitHub release",
		Long: `Install-tool fetches a release asset from GitHub and places
it into the tools directory with the executable bit set. Set GITHUB_TOKEN
to raise the API rate limit or to reach private repositories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "install-tool").Logger().WithContext(ctx)

			cfg := o.Config
			if assetName == "" {
				assetName = cfg.Tool
			}

			installer := tool.NewInstaller(ctx)
			dest, err := installer.Install(ctx, repo, ref, assetName, cfg.ToolsDir)
			if err != nil {
				o.UserLogger.LogValidation(false, "tool installation", err)
				return errors.Errorf("installing %s from %s: %w", assetName, repo, err)
			}

			o.UserLogger.LogValidation(true, "tool installed to "+dest, nil)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "GitHub repository (owner/name)")
	cmd.Flags().StringVar(&ref, "ref", "", "release tag (default latest)")
	cmd.Flags().StringVar(&assetName, "asset", "", "release asset name (default configured tool name)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
