package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/mwantia/craftos/cmd"
	"github.com/mwantia/craftos/cmd/builtin"
	"github.com/mwantia/craftos/computer"
	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/guest"
	"github.com/mwantia/craftos/term"
)

// Colors as bit masks.
const (
	ColorWhite  = 1
	ColorYellow = 16
	ColorRed    = 16384
)

// Shell is the interactive command line a computer boots into.
type Shell struct {
	center  *cmd.Center
	options *ShellOptions
}

func NewShell(opts ...ShellOption) (*Shell, error) {
	options := newDefaultShellOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	center := cmd.NewCenter()
	if err := center.Register(builtin.All()...); err != nil {
		return nil, err
	}
	if err := center.Register(options.Commands...); err != nil {
		return nil, err
	}

	return &Shell{
		center:  center,
		options: options,
	}, nil
}

func (s *Shell) Center() *cmd.Center {
	return s.center
}

// Boot is a computer.BootFunc starting the shell on env.
func (s *Shell) Boot(env *computer.Environment) (guest.Program, error) {
	return func(ctx context.Context, co *guest.Coroutine) error {
		return s.run(ctx, env, co)
	}, nil
}

func (s *Shell) run(ctx context.Context, env *computer.Environment, co *guest.Coroutine) error {
	out := NewOutput(env.Term)
	session := cmd.NewSession(env, co, s.center)

	env.Term.Clear()
	env.Term.SetCursorPos(1, 1)

	if content, err := env.FS.ReadFile(ctx, s.options.MOTD); err == nil {
		out.Print(ColorYellow, strings.TrimRight(string(content), "\n")+"\n")
	}

	if env.FS.Exists(ctx, s.options.Startup) && !env.FS.IsDir(ctx, s.options.Startup) {
		s.runScript(ctx, session, out, s.options.Startup)
	}

	for {
		out.Print(ColorYellow, s.options.Prompt)

		line, ok := s.readLine(co, env.Term, out)
		if !ok {
			out.Print(ColorRed, "Terminated\n")
			continue
		}

		s.execute(ctx, session, out, line)
	}
}

// runScript executes a file line by line. Empty lines and lines
// starting with # are skipped.
func (s *Shell) runScript(ctx context.Context, session *cmd.Session, out *Output, path string) {
	content, err := session.Env.FS.ReadFile(ctx, path)
	if err != nil {
		out.Print(ColorRed, data.Message(err)+"\n")
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.execute(ctx, session, out, line)
	}
}

func (s *Shell) execute(ctx context.Context, session *cmd.Session, out *Output, line string) {
	code, err := s.center.Execute(ctx, session, line, out)
	if err == nil {
		return
	}

	s.options.Logger.Debug("Command '%s' exited with code %d: %v", line, code, err)
	switch {
	case errors.Is(err, guest.ErrTerminated):
		out.Print(ColorRed, "Terminated\n")
	default:
		out.Print(ColorRed, data.Message(err)+"\n")
	}
}

// readLine echoes typed characters until enter is pressed. It returns
// false if the input was terminated.
func (s *Shell) readLine(co *guest.Coroutine, t *computer.Term, out *Output) (string, bool) {
	var line []byte

	t.SetCursorBlink(true)
	defer t.SetCursorBlink(false)

	for {
		ev := co.PullEventRaw("")
		switch ev.Name() {
		case event.Terminate:
			out.Newline()
			return "", false

		case "char", "paste":
			text, _ := ev.Arg(0).AsString()
			line = append(line, text...)
			out.Write([]byte(text))

		case "key":
			code, _ := ev.Arg(0).AsInt()
			switch code {
			case term.KeyEnter, term.KeyNumPadEnter:
				out.Newline()
				return string(line), true
			case term.KeyBackspace:
				if len(line) > 0 {
					line = line[:len(line)-1]
					out.Backspace()
				}
			}
		}
	}
}
