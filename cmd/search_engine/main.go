package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/internal/engine"
	"github.com/Linattendu/projet-moteur-recherche/internal/ingest"
	"github.com/Linattendu/projet-moteur-recherche/store"
)

// configKey holds the resolved config.Config in cli.App.Metadata.
const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "search_engine",
		Usage:    "TF-IDF keyword search over named text corpora",
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
			},
		},
		Before: func(c *cli.Context) error {
			if err := loadConfig(c); err != nil {
				return err
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on (default from config, else 8080)",
					},
					&cli.Int64Flag{
						Name:  "max-body-mb",
						Usage: "Largest accepted request body in MiB",
						Value: 32,
					},
				),
			},
			{
				Name:   "ingest",
				Usage:  "Add documents to a corpus, then build and persist its index",
				Action: ingestCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:     "corpus",
						Usage:    "Corpus name, created when missing",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Tab-separated speech file (speaker, text, date, descr, link)",
					},
					&cli.StringFlag{
						Name:  "json",
						Usage: "JSON file holding one document or an array of documents",
					},
					&cli.IntFlag{
						Name:  "min-words",
						Usage: "Speech sentences with at most this many words are dropped",
						Value: ingest.DefaultMinWords,
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Run a keyword query against a stored corpus",
				Action: searchCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:     "corpus",
						Usage:    "Corpus name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Keywords to look for",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits (0 uses the corpus default)",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Only documents by this author",
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Only documents published on or after this date (YYYY-MM-DD or RFC 3339)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Only documents published on or before this date (YYYY-MM-DD or RFC 3339)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the result as JSON",
					},
				),
			},
		},
	}
}

// storageFlags are shared by every command that opens the snapshot store.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding corpus snapshots (default from config, else ./search_data)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Snapshot store driver: file, sqlite or badger (default from config, else file)",
		},
	}
}

// loadConfig reads the --config file, or the defaults when none is given.
func loadConfig(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		if err != nil {
			return err
		}
		cfg = loaded
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// commandConfig returns the loaded configuration with the storage flags of
// the running command applied on top.
func commandConfig(c *cli.Context) (config.Config, error) {
	cfg, ok := c.App.Metadata[configKey].(config.Config)
	if !ok {
		cfg = config.Default()
	}
	if c.IsSet("data-dir") {
		cfg.Storage.Path = c.String("data-dir")
	}
	if c.IsSet("store") {
		cfg.Storage.Driver = strings.ToLower(c.String("store"))
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return config.Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// openStore opens the snapshot store selected by cfg.
func openStore(cfg config.Config, logger *slog.Logger) (store.SnapshotStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageFile:
		return store.NewGobFileStore(cfg.Storage.Path, logger)
	case config.StorageSQLite:
		return store.NewSQLiteStore(cfg.Storage.Path, logger)
	case config.StorageBadger:
		return store.OpenBadgerStore(cfg.Storage.Path, false, logger)
	default:
		return nil, fmt.Errorf("unknown store driver '%s'", cfg.Storage.Driver)
	}
}

// openEngine opens the configured store and loads every corpus kept there.
func openEngine(cfg config.Config) (*engine.Engine, error) {
	logger := slog.Default()
	snapshots, err := openStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store at %s: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}
	logger.Debug("snapshot store opened", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)
	return engine.NewEngine(snapshots, cfg.Index, engine.WithLogger(logger)), nil
}

func setupLogger(c *cli.Context) error {
	levelStr := c.String("log-level")
	if !c.IsSet("log-level") {
		if cfg, ok := c.App.Metadata[configKey].(config.Config); ok {
			levelStr = cfg.Log.Level
		}
	}

	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
