package command

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pixil98/go-rotmg/internal/display"
	"github.com/pixil98/go-rotmg/internal/rotmg"
	"github.com/spf13/cobra"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <category> <key>",
		Short: "Describe a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.load(cmd)
			if err != nil {
				return err
			}

			v, ok := m.Get(args[0], args[1])
			if !ok {
				return fmt.Errorf("%s %q not found", args[0], args[1])
			}

			text, err := describeRecord(v, opts.width)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

// describeRecord renders object definitions as text and anything else as
// indented JSON.
func describeRecord(v any, width int) (string, error) {
	if obj, ok := v.(rotmg.Object); ok {
		return display.Describe(obj, width)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	return string(data) + "\n", nil
}
