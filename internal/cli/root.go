package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/semsql/internal/config"
	"github.com/roach88/semsql/internal/dialect"
	"github.com/roach88/semsql/internal/warehouse"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Dialect    string
	LogLevel   string

	// Config and Logger are resolved in PersistentPreRunE. Commands built
	// on their own (as in tests) fall back to defaults.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the semsql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "semsql",
		Short: "semsql - semantic models rendered as warehouse SQL",
		Long: `Compile semantic models and render queries over them as SQL for
Trino, PostgreSQL, SQL Server, SQLite and DuckDB.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "", "dialect to render for (default from config)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewDialectsCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// resolve loads the config file and environment, then applies flags that
// were set explicitly.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Dialect = o.Dialect
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if o.Verbose && !flags.Changed("log-level") {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	o.Config = cfg
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

// config returns the resolved config or the defaults.
func (o *RootOptions) config() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	cfg := config.Default()
	cfg.ApplyEnv()
	if o.Dialect != "" {
		cfg.Dialect = o.Dialect
	}
	return cfg
}

// logger returns the resolved logger or one that discards output.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// registry builds the builtin dialect registry.
func (o *RootOptions) registry(opts ...dialect.Option) (*warehouse.Registry, error) {
	reg, err := warehouse.Builtin(o.logger(), opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "building dialect registry", err)
	}
	return reg, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
