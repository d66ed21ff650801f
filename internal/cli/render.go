package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/semsql/internal/compiler"
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
	"github.com/roach88/semsql/internal/queryir"
	"github.com/roach88/semsql/internal/warehouse"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Models  string            // models directory; defaults to the config
	All     bool              // render for every dialect
	Options map[string]string // query options passed to the generators
}

// RenderOutcome is the JSON form of one dialect's result under --all.
type RenderOutcome struct {
	Dialect string                 `json:"dialect"`
	Query   *dialect.RenderedQuery `json:"query,omitempty"`
	Error   *CLIError              `json:"error,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <query-file>",
		Short: "Render a query document as SQL",
		Long: `Render a query document (YAML or JSON) as SQL for a dialect.

The query is resolved against the models directory. Use "-" to read the
query from stdin. With --all the query is rendered for every dialect and
per-dialect failures are reported next to the successful renders.

Exit codes:
  0 - Query rendered
  1 - The dialect cannot render the query
  2 - Command error (unreadable query, unknown dialect, bad models)

Examples:
  semsql render query.yaml --dialect postgresql
  semsql render query.yaml --all --format json
  cat query.yaml | semsql render - --option materialized=true`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Models, "models", "", "models directory (default from config)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "render for every dialect")
	cmd.Flags().StringToStringVar(&opts.Options, "option", nil, "query option key=value (repeatable)")

	return cmd
}

func runRender(opts *RenderOptions, queryPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	query, err := readQuery(queryPath, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeQuery, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeQuery, err)
	}

	models, err := loadModelsForCommand(opts.RootOptions, opts.Models, formatter)
	if err != nil {
		return err
	}

	reg, err := opts.registry()
	if err != nil {
		return err
	}
	gctx := dialect.GeneratorContext{Models: models, Options: opts.Options}

	if opts.All {
		outcomes, err := reg.RenderAll(cmd.Context(), gctx, query)
		if err != nil {
			return WrapExitError(ExitCommandError, "rendering", err)
		}
		return outputRenderAll(formatter, outcomes)
	}

	name := opts.config().Dialect
	b, err := reg.Lookup(name)
	if err != nil {
		_ = formatter.Error(ErrCodeDialect, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeDialect, err)
	}
	formatter.VerboseLog("Rendering %s query for %s", queryir.KindOf(query), b.Name())

	rq, err := b.Generate(gctx, query)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), detailsOf(err))
		return WrapExitError(ExitFailure, "render failed", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(rq)
	}
	fmt.Fprintln(formatter.Writer, rq.SQL)
	return nil
}

// readQuery reads and converts a query document; "-" reads from stdin.
func readQuery(path string, stdin io.Reader) (queryir.Query, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open query: %w", err)
		}
		defer f.Close()
		r = f
	}
	req, err := queryir.DecodeRequest(r)
	if err != nil {
		return nil, err
	}
	return req.Query()
}

// loadModelsForCommand loads the models in dir (or the configured directory)
// and fails on any compile or validation error.
func loadModelsForCommand(opts *RootOptions, dir string, formatter *OutputFormatter) (ir.Models, error) {
	if dir == "" {
		dir = opts.config().Models
	}
	result, errs := LoadModels(dir, LoadModeFailFast)
	if len(errs) > 0 {
		code, message := parseCompileError(errs[0])
		_ = formatter.Error(code, message, nil)
		return nil, WrapExitError(ExitCommandError, "loading models", errs[0])
	}
	if verrs := compiler.Validate(result.Models); len(verrs) > 0 {
		_ = formatter.Error(verrs[0].Code, verrs[0].Error(), nil)
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("models invalid: %d error(s)", len(verrs)))
	}
	formatter.VerboseLog("Loaded %d model(s) from %s", len(result.Models), dir)
	return result.Models, nil
}

func outputRenderAll(formatter *OutputFormatter, outcomes []warehouse.Outcome) error {
	results := make([]RenderOutcome, len(outcomes))
	failed := 0
	for i, o := range outcomes {
		results[i] = RenderOutcome{Dialect: o.Dialect, Query: o.Query}
		if o.Err != nil {
			failed++
			results[i].Error = &CLIError{Code: errorCode(o.Err), Message: o.Err.Error(), Details: detailsOf(o.Err)}
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			fmt.Fprintf(formatter.Writer, "-- %s\n", r.Dialect)
			if r.Error != nil {
				fmt.Fprintf(formatter.Writer, "-- ✗ %s: %s\n\n", r.Error.Code, r.Error.Message)
				continue
			}
			fmt.Fprintf(formatter.Writer, "%s\n\n", r.Query.SQL)
		}
	}
	if failed == len(results) {
		return NewExitError(ExitFailure, "no dialect could render the query")
	}
	return nil
}

// errorCode is the dialect error kind, or the generic code for other errors.
func errorCode(err error) string {
	if kind := dialect.KindOf(err); kind != "" {
		return string(kind)
	}
	return ErrCodeGeneric
}

func detailsOf(err error) any {
	var de *dialect.Error
	if errors.As(err, &de) && len(de.Details) > 0 {
		return de.Details
	}
	return nil
}
