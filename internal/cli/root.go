package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Arterning/style-mirror/internal/engine"
	"github.com/Arterning/style-mirror/internal/store"
)

// Environment variables consulted when the matching flag is not set.
// A .env file in the working directory is loaded first.
const (
	EnvDatabase = "STYLEMIRROR_DB"
	EnvRedis    = "STYLEMIRROR_REDIS"
)

// DefaultDatabase is the SQLite file used when neither --db nor
// STYLEMIRROR_DB is set.
const DefaultDatabase = "stylemirror.db"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Redis    string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stylemirror CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stylemirror",
		Short: "Style Mirror - wardrobe, outfits and the fashion journal",
		Long: `Style Mirror catalogs garment images, composes them into outfit and
occasion scenes and archives finished scenes in a chronological journal.

Documents live in a SQLite file (--db) or a Redis server (--redis).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !cmd.Flags().Changed("db") {
				if v := os.Getenv(EnvDatabase); v != "" {
					opts.Database = v
				}
			}
			if !cmd.Flags().Changed("redis") {
				if v := os.Getenv(EnvRedis); v != "" {
					opts.Redis = v
				}
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", DefaultDatabase, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Redis, "redis", "", "Redis URL; overrides --db when set")

	// Add subcommands
	cmd.AddCommand(NewWardrobeCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewOccasionCommand(opts))
	cmd.AddCommand(NewComposeCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger builds the slog logger for engine diagnostics.
// Diagnostics go to stderr so JSON output stays parseable.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openBackend opens the configured document backend.
func (o *RootOptions) openBackend(ctx context.Context) (store.Backend, func() error, error) {
	if o.Redis != "" {
		r, err := store.OpenRedis(ctx, o.Redis)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to connect to redis", err)
		}
		return r, r.Close, nil
	}
	if o.Database == "" {
		return nil, nil, NewExitError(ExitCommandError, "no database configured (use --db or --redis)")
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, st.Close, nil
}

// openEngine opens the backend and returns a loaded engine over it.
// The returned close function must be called when the command finishes.
func (o *RootOptions) openEngine(cmd *cobra.Command) (*engine.Engine, func(), error) {
	ctx := commandContext(cmd)
	backend, closeBackend, err := o.openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	log := o.logger(cmd.ErrOrStderr())
	done := func() {
		if err := closeBackend(); err != nil {
			log.Error("error closing store", "error", err)
		}
	}

	eng := engine.New(store.Namespace(backend, store.DefaultNamespace), engine.WithLogger(log))
	if err := eng.Load(ctx); err != nil {
		done()
		return nil, nil, WrapExitError(ExitCommandError, "failed to load documents", err)
	}
	return eng, done, nil
}

// commandContext returns cmd's context or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
