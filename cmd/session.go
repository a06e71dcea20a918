package cmd

import (
	"strings"

	"github.com/mwantia/craftos/computer"
	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/guest"
)

// Session is the shell state a command runs in.
type Session struct {
	Env    *computer.Environment
	Co     *guest.Coroutine
	Center *Center

	dir string
}

func NewSession(env *computer.Environment, co *guest.Coroutine, center *Center) *Session {
	return &Session{
		Env:    env,
		Co:     co,
		Center: center,
	}
}

// Dir returns the current directory.
func (s *Session) Dir() string {
	return s.dir
}

func (s *Session) SetDir(dir string) {
	s.dir = data.Sanitize(dir, false)
}

// Resolve returns the virtual path of p. Paths starting with a separator
// are absolute, everything else is relative to the current directory.
// Wildcards are kept.
func (s *Session) Resolve(p string) string {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return data.Combine("", p)
	}
	return data.Combine(s.dir, p)
}
