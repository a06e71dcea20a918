package shell

import (
	"github.com/mwantia/craftos/cmd"
	"github.com/mwantia/craftos/log"
)

type ShellOptions struct {
	Prompt   string        // Printed before every input line.
	MOTD     string        // File printed once at boot, skipped if missing.
	Startup  string        // Script run once at boot, skipped if missing.
	Commands []cmd.Command // Commands registered next to the builtins.
	Logger   *log.Logger
}

type ShellOption func(*ShellOptions) error

func newDefaultShellOptions() *ShellOptions {
	return &ShellOptions{
		Prompt:  "> ",
		MOTD:    "rom/motd.txt",
		Startup: "startup",
		Logger:  log.Nop(),
	}
}

func WithPrompt(prompt string) ShellOption {
	return func(opts *ShellOptions) error {
		opts.Prompt = prompt
		return nil
	}
}

func WithMOTD(path string) ShellOption {
	return func(opts *ShellOptions) error {
		opts.MOTD = path
		return nil
	}
}

func WithStartup(path string) ShellOption {
	return func(opts *ShellOptions) error {
		opts.Startup = path
		return nil
	}
}

func WithCommands(commands ...cmd.Command) ShellOption {
	return func(opts *ShellOptions) error {
		opts.Commands = append(opts.Commands, commands...)
		return nil
	}
}

func WithLogger(logger *log.Logger) ShellOption {
	return func(opts *ShellOptions) error {
		if logger != nil {
			opts.Logger = logger
		}
		return nil
	}
}
