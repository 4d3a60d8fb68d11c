package command

import (
	"fmt"

	"github.com/pixil98/go-rotmg/cmd/viewer/command"
	"github.com/pixil98/go-rotmg/internal/asset"
	"github.com/pixil98/go-rotmg/internal/display"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	assets command.AssetsConfig
	width  int
}

// NewRootCmd builds the assetdump command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "assetdump",
		Short:         "Load asset manifests and inspect the registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVarP(&opts.assets.Manifests, "manifest", "m", nil, "asset manifest to load, repeatable")
	flags.StringVar(&opts.assets.FileRoot, "file-root", "", "directory relative file sources resolve against")
	flags.StringVar(&opts.assets.FetchTimeout, "fetch-timeout", "", "per-source timeout for url sources")
	flags.IntVarP(&opts.width, "width", "w", display.DefaultWidth, "wrap descriptions to this width")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newBrowseCmd(opts),
	)

	return cmd
}

// load builds a manager and loads every manifest into it. Containers that
// fail are reported on the command's error stream; the rest stay usable.
func (o *rootOptions) load(cmd *cobra.Command) (*asset.Manager, error) {
	if err := o.assets.Validate(); err != nil {
		return nil, err
	}

	m, err := o.assets.BuildManager(nil)
	if err != nil {
		return nil, err
	}
	configs, err := o.assets.LoadManifests()
	if err != nil {
		return nil, err
	}

	for _, cfg := range configs {
		report, err := m.Load(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		if err := report.Err(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %v\n", cfg.Name, err)
		}
	}

	return m, nil
}
