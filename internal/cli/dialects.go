package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/semsql/internal/dialect"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the builtin dialects and their capabilities",
		Long: `List every builtin dialect with the query kinds it renders, the
object kinds it can create, its supported field types and the
aggregations it cannot express.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(rootOpts, cmd)
		},
	}
}

func runDialects(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	bridges := reg.Bridges()
	caps := make([]dialect.Capabilities, len(bridges))
	for i, b := range bridges {
		caps[i] = b.Capabilities()
	}

	if formatter.Format == "json" {
		return formatter.Success(caps)
	}

	w := formatter.Writer
	for _, c := range caps {
		fmt.Fprintf(w, "%s", c.Name)
		if c.Description != "" {
			fmt.Fprintf(w, " - %s", c.Description)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  generators:   %s\n", strings.Join(c.Generators, ", "))
		fmt.Fprintf(w, "  objects:      %s\n", strings.Join(c.ObjectKinds, ", "))
		fmt.Fprintf(w, "  types:        %s\n", strings.Join(c.SupportedTypes, ", "))
		if len(c.UnsupportedAggregations) > 0 {
			fmt.Fprintf(w, "  unsupported:  %s\n", strings.Join(c.UnsupportedAggregations, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}
