package command

import (
	"fmt"
	"io"

	"github.com/pixil98/go-rotmg/internal/asset"
	"github.com/pixil98/go-rotmg/internal/display"
	"github.com/pixil98/go-rotmg/internal/rotmg"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		kind string
		long bool
	)

	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List categories, or the records of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return listCategories(out, m)
			}
			return listRecords(out, m, args[0], kind, long, opts.width)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list objects of this kind (object, equipment, player, projectile)")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "describe every record")

	return cmd
}

func listCategories(out io.Writer, m *asset.Manager) error {
	for _, c := range m.Categories() {
		if _, err := fmt.Fprintf(out, "%-16s %d\n", c, m.Len(c)); err != nil {
			return err
		}
	}
	return nil
}

func listRecords(out io.Writer, m *asset.Manager, category, kind string, long bool, width int) error {
	if m.Len(category) == 0 {
		return fmt.Errorf("category %q is empty or unknown", category)
	}

	for key, v := range m.Entries(category) {
		obj, isObj := v.(rotmg.Object)
		if kind != "" && (!isObj || obj.Kind().String() != kind) {
			continue
		}

		var line string
		switch {
		case long:
			text, err := describeRecord(v, width)
			if err != nil {
				return err
			}
			line = text
		case isObj:
			line = display.Summary(obj) + "\n"
		default:
			line = key + "\n"
		}

		if _, err := io.WriteString(out, line); err != nil {
			return err
		}
	}
	return nil
}
