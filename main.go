// Command flatmap shows an svg map in a window and lets the user select
// regions on it by clicking, with drag-to-pan and wheel zoom.
//
//	flatmap [--config flatmap.yaml] [--ws :8765] map.svg
//
// Every selection change is emitted as a regionclick_simple notification on
// the page and, with --ws, broadcast as JSON to websocket clients on /ws.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"flatmap/config"
	"flatmap/logx"
	"flatmap/selection"
)

type options struct {
	configPath string
	logLevel   string
	ws         string
	script     string
	noWatch    bool
	restore    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "flatmap [svg]",
		Short:        "Select regions on an svg map",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, args)
			if err != nil {
				return err
			}
			return run(cfg, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&opts.ws, "ws", "", "serve notifications on this address, e.g. :8765")
	f.StringVar(&opts.script, "groups", "", "starlark grouping script")
	f.BoolVar(&opts.noWatch, "no-watch", false, "do not reload the svg when it changes")
	f.BoolVar(&opts.restore, "restore", false, "restore the selection from the export file")
	return cmd
}

// loadConfig reads the config file, if any, and lets flags override it.
func loadConfig(opts options, args []string) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	if len(args) > 0 {
		cfg.Host.SVG = args[0]
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.ws != "" {
		cfg.Host.WebSocket = opts.ws
	}
	if opts.script != "" {
		cfg.Host.Script = opts.script
	}
	if opts.noWatch {
		cfg.Host.Watch = false
	}
	if cfg.Host.SVG == "" {
		return cfg, errors.New("no svg given: pass a path or set host.svg")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg config.Config, opts options) error {
	logger := logx.New(cfg.Log.Level, os.Stderr)
	slog.SetDefault(logger)

	store := selection.NewStore()
	if opts.restore {
		state, err := LoadSelection(cfg.Host.Export)
		if err != nil {
			logger.Warn("nothing restored", "path", cfg.Host.Export, "err", err)
		} else {
			store = selection.NewStore(state.SelectedLabels...)
			logger.Info("selection restored", "path", cfg.Host.Export, "labels", store.Len())
		}
	}

	game, err := NewGame(cfg, store, logger)
	if err != nil {
		return err
	}
	defer game.Close()

	ebiten.SetWindowSize(cfg.Host.Width, cfg.Host.Height)
	ebiten.SetWindowTitle(cfg.Host.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(game)
}
