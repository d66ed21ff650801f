package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/semsql/internal/compiler"
	"github.com/roach88/semsql/internal/datasource"
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/warehouse/duckdb"
	"github.com/roach88/semsql/internal/warehouse/sqlite"
)

// SchemaOptions holds flags for the schema commands.
type SchemaOptions struct {
	*RootOptions
	Models string // models directory for "schema model"
	DB     string // database file for "schema table"
}

// NewSchemaCommand creates the schema command and its subcommands.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show model or table schemas as seen by a dialect",
		Long: `Show schemas through a dialect's type map.

"schema model" lists the virtual table a model exposes: its dimensions,
time-truncated dimensions, related dimensions and measures with their
native types. "schema table" introspects a table in a SQLite or DuckDB
file and maps each native column type back to a field type.`,
	}

	modelCmd := &cobra.Command{
		Use:           "model <name>",
		Short:         "List the virtual columns of a model",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaModel(opts, args[0], cmd)
		},
	}
	modelCmd.Flags().StringVar(&opts.Models, "models", "", "models directory (default from config)")

	tableCmd := &cobra.Command{
		Use:   "table <table>",
		Short: "Introspect a table in a SQLite or DuckDB database",
		Long: `Introspect a table in a SQLite or DuckDB database file.

The configured dialect must be sqlite or duckdb. A native type the dialect
cannot map fails the command with UNSUPPORTED_TYPE.

Example:
  semsql schema table events --db warehouse.duckdb --dialect duckdb`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaTable(opts, args[0], cmd)
		},
	}
	tableCmd.Flags().StringVar(&opts.DB, "db", "", "database file (required)")
	_ = tableCmd.MarkFlagRequired("db")

	cmd.AddCommand(modelCmd, tableCmd)
	return cmd
}

func runSchemaModel(opts *SchemaOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	models, err := loadModelsForCommand(opts.RootOptions, opts.Models, formatter)
	if err != nil {
		return err
	}
	b, err := opts.bridge(formatter)
	if err != nil {
		return err
	}

	cols, err := compiler.VirtualColumns(models, name, b)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), detailsOf(err))
		return WrapExitError(ExitFailure, "schema", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(cols)
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tKIND\tTYPE\tNATIVE")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Kind, c.Type, c.NativeType)
	}
	return tw.Flush()
}

func runSchemaTable(opts *SchemaOptions, table string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	b, err := opts.bridge(formatter)
	if err != nil {
		return err
	}

	var src *datasource.Source
	switch b.Name() {
	case sqlite.Name:
		src, err = datasource.OpenSQLite(opts.DB, b, opts.logger())
	case duckdb.Name:
		src, err = datasource.OpenDuckDB(opts.DB, b, opts.logger())
	default:
		err = fmt.Errorf("dialect %s has no embedded engine; use sqlite or duckdb", b.Name())
	}
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer src.Close()

	cols, err := src.ListSchema(cmd.Context(), table)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), detailsOf(err))
		return WrapExitError(ExitFailure, "schema", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(cols)
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tNATIVE\tTYPE")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Native, c.Type)
	}
	return tw.Flush()
}

// bridge looks up the configured dialect.
func (o *RootOptions) bridge(formatter *OutputFormatter) (*dialect.Bridge, error) {
	reg, err := o.registry()
	if err != nil {
		return nil, err
	}
	b, err := reg.Lookup(o.config().Dialect)
	if err != nil {
		_ = formatter.Error(ErrCodeDialect, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, ErrCodeDialect, err)
	}
	return b, nil
}
