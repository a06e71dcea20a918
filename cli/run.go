package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/craftos/cli/tui"
	"github.com/mwantia/craftos/computer"
	"github.com/mwantia/craftos/config"
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/shell"
	"github.com/mwantia/craftos/term"
	"github.com/mwantia/craftos/vfs"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	xterm "golang.org/x/term"
)

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("id") {
		cfg.Computer.ID = flags.id
	}
	if changed("root") {
		cfg.Storage.Root = flags.root
	}
	if changed("rom") {
		cfg.Storage.ROM = flags.rom
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = flags.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, interactive bool) (*log.Logger, error) {
	level, err := log.Parse(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	// The front-end owns the terminal, without a file there is nowhere to log to.
	if interactive && cfg.Log.File == "" {
		return log.Nop(), nil
	}

	var opts []log.LoggerOption
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	return log.NewLogger("craftos", level, cfg.Log.File, interactive, opts...), nil
}

// setupFS builds the root, the rom and every configured mount.
func setupFS(ctx context.Context, cfg *config.Config, logger *log.Logger) (*vfs.Manager, error) {
	root, err := cfg.BuildRoot(logger.Named("hdd"))
	if err != nil {
		return nil, fmt.Errorf("failed to create root mount: %w", err)
	}

	fs, err := vfs.NewManager(root, vfs.WithLogger(logger.Named("vfs")))
	if err != nil {
		return nil, err
	}

	rom, err := cfg.BuildROM(logger.Named("rom"))
	if err != nil {
		return nil, fmt.Errorf("failed to create rom: %w", err)
	}
	fs.Add(rom)

	for _, m := range cfg.Mounts {
		mnt, err := m.Build(ctx, logger.Named(m.Type))
		if err != nil {
			fs.Close(ctx)
			return nil, fmt.Errorf("failed to mount /%s: %w", m.Path, err)
		}
		fs.Add(mnt)
	}
	return fs, nil
}

func run(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	interactive := !flags.headless && xterm.IsTerminal(int(os.Stdout.Fd()))
	logger, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs, err := setupFS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer fs.Close(context.Background())

	sh, err := shell.NewShell(shell.WithLogger(logger.Named("shell")))
	if err != nil {
		return err
	}

	buffer := term.NewBuffer(cfg.Computer.Width, cfg.Computer.Height)
	c, err := computer.NewComputer(cfg.Computer.ID, fs, buffer, sh.Boot,
		computer.WithLabel(cfg.Computer.Label),
		computer.WithLogger(logger.Named("computer")))
	if err != nil {
		return err
	}

	registry := computer.NewRegistry()
	if err := registry.Register(c); err != nil {
		return err
	}
	defer registry.Unregister(c.ID())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	if interactive {
		model := tui.NewModel(ctx, c, registry, buffer, logger.Named("tui"))
		program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := c.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if program != nil {
			program.Send(tui.StoppedMsg{Err: err})
		} else {
			cancel()
		}
		return err
	})

	if program != nil {
		g.Go(func() error {
			_, err := program.Run()
			cancel()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	if !interactive {
		printScreen(cmd, buffer.Snapshot())
	}
	return err
}

// printScreen writes the final screen of a headless computer.
func printScreen(cmd *cobra.Command, screen term.Screen) {
	for y := 1; y <= screen.Size.Height; y++ {
		fmt.Fprintln(cmd.OutOrStdout(), screen.Line(y))
	}
}
