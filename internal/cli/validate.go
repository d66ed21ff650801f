package cli

import (
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/semsql/internal/compiler"
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Bind    bool // bind models against the configured dialect
	BindAll bool // bind models against every builtin dialect
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [models-dir]",
		Short: "Validate models without producing output",
		Long: `Validate CUE semantic models.

Checks the models against the schema rules, reports relation cycles as
warnings and, with --bind, checks that every field type, post operation
and aggregation can be rendered by the dialect. Binding surfaces types a
warehouse cannot hold before any query is rendered.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, modelsDir(rootOpts, args), cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Bind, "bind", false, "bind models against the configured dialect")
	cmd.Flags().BoolVar(&opts.BindAll, "bind-all", false, "bind models against every dialect")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadModels(dir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr.Pos),
			})
		}
	}
	validationErrors = append(validationErrors, compiler.Validate(loadResult.Models)...)

	// Binding only makes sense on structurally valid models.
	if len(validationErrors) == 0 && (opts.Bind || opts.BindAll) {
		bindErrs, err := bindModels(opts, loadResult.Models, formatter)
		if err != nil {
			return err
		}
		validationErrors = append(validationErrors, bindErrs...)
	}

	warnings := compiler.AnalyzeRelations(loadResult.Models)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors, warnings)
	}
	return outputValidateSuccess(formatter, warnings)
}

// bindModels binds the models against the selected dialects.
func bindModels(opts *ValidateOptions, models ir.Models, formatter *OutputFormatter) ([]compiler.ValidationError, error) {
	reg, err := opts.registry()
	if err != nil {
		return nil, err
	}
	var bridges []*dialect.Bridge
	if opts.BindAll {
		bridges = reg.Bridges()
	} else {
		b, err := reg.Lookup(opts.config().Dialect)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, ErrCodeDialect, err)
		}
		bridges = []*dialect.Bridge{b}
	}

	var out []compiler.ValidationError
	for _, b := range bridges {
		formatter.VerboseLog("Binding models to %s", b.Name())
		for _, err := range compiler.BindModels(b, models) {
			code := ErrCodeGeneric
			if kind := dialect.KindOf(err); kind != "" {
				code = string(kind)
			}
			out = append(out, compiler.ValidationError{
				Field:   "bind." + b.Name(),
				Message: err.Error(),
				Code:    code,
			})
		}
	}
	return out, nil
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, warnings []compiler.CycleWarning) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Warnings: warnings})
	}

	printWarnings(formatter.Writer, warnings)
	fmt.Fprintln(formatter.Writer, "✓ All models valid")
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Validation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError, warnings []compiler.CycleWarning) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs, Warnings: warnings},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	printWarnings(formatter.Writer, warnings)
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func printWarnings(w io.Writer, warnings []compiler.CycleWarning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "! %s: %s\n", warning.Level, warning.Message)
	}
}

// ValidateModelsDir validates all models in a directory.
// This is a helper function for external callers.
func ValidateModelsDir(dir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadModels(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}
	return compiler.Validate(loadResult.Models), nil
}
