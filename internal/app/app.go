// Package app wires configuration, snapshot storage, and the export paths
// behind the morphsheet command line. The wizard is the default command;
// the rest are scripting entry points over the same creation steps.
package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
	"github.com/louisbranch/morphsheet/internal/platform/config"
	"github.com/louisbranch/morphsheet/internal/storage"
	"github.com/louisbranch/morphsheet/internal/storage/sqlite"
)

// Config holds morphsheet command configuration.
type Config struct {
	DBPath     string `env:"MORPHSHEET_DB_PATH"     envDefault:"morphsheet.db"`
	Template   string `env:"MORPHSHEET_TEMPLATE"`
	OutDir     string `env:"MORPHSHEET_OUT_DIR"`
	Layout     string `env:"MORPHSHEET_LAYOUT"`
	AutosaveMS int    `env:"MORPHSHEET_AUTOSAVE_MS" envDefault:"800"`

	// Format selects the export output (pdf, text, or html).
	Format string

	// Command and Args are the positional command line after the flags.
	Command string
	Args    []string
}

// AutosaveDelay returns the configured debounce window.
func (c Config) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveMS) * time.Millisecond
}

// ParseConfig parses environment variables and flags into a Config. Flag
// values win over the environment.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the snapshot database")
	fs.StringVar(&cfg.Template, "template", cfg.Template, "sheet template path or http(s) URL")
	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "directory for exported sheets (default: working directory)")
	fs.StringVar(&cfg.Layout, "layout", cfg.Layout, "sheet field layout (default: renegade)")
	fs.IntVar(&cfg.AutosaveMS, "autosave-ms", cfg.AutosaveMS, "autosave debounce window in milliseconds")
	fs.StringVar(&cfg.Format, "format", "pdf", "export format: pdf, text, or html")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Command = fs.Arg(0)
	if fs.NArg() > 1 {
		cfg.Args = fs.Args()[1:]
	}
	return cfg, nil
}

// Run executes the morphsheet command named by cfg.Command. An empty
// command starts the interactive wizard.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	rules, err := rulebook.Default()
	if err != nil {
		return err
	}
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	a := &app{
		cfg:    cfg,
		rules:  rules,
		store:  store,
		in:     os.Stdin,
		out:    out,
		errOut: errOut,
	}
	return a.run(ctx)
}

func openStore(path string) (*sqlite.Store, error) {
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	return sqlite.Open(cleanPath)
}

// app carries the resolved dependencies of one command invocation.
type app struct {
	cfg    Config
	rules  *rulebook.Rulebook
	store  storage.Store
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (a *app) run(ctx context.Context) error {
	switch a.cfg.Command {
	case "", "wizard":
		return a.runWizard(ctx)
	case "new":
		return a.runNew(ctx)
	case "list":
		return a.runList(ctx)
	case "show":
		return a.runShow(ctx)
	case "apply":
		return a.runApply(ctx)
	case "export":
		return a.runExport(ctx)
	case "copy":
		return a.runCopy(ctx)
	case "delete":
		return a.runDelete(ctx)
	default:
		return fmt.Errorf("unknown command %q (expected new, list, show, apply, export, copy, delete, or wizard)", a.cfg.Command)
	}
}

func (a *app) arg(i int) string {
	if i < len(a.cfg.Args) {
		return a.cfg.Args[i]
	}
	return ""
}
