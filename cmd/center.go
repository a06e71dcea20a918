package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

var ErrNoSuchProgram = errors.New("No such program")

// Center is the registry of commands known to a shell.
type Center struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewCenter() *Center {
	return &Center{
		commands: make(map[string]Command),
	}
}

func (c *Center) Register(commands ...Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, command := range commands {
		if _, exists := c.commands[command.Name()]; exists {
			return fmt.Errorf("command already registered: %s", command.Name())
		}
		c.commands[command.Name()] = command
	}
	return nil
}

func (c *Center) Lookup(name string) (Command, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	command, ok := c.commands[name]
	return command, ok
}

// Commands returns every registered command sorted by name.
func (c *Center) Commands() []Command {
	c.mu.RLock()
	defer c.mu.RUnlock()

	commands := make([]Command, 0, len(c.commands))
	for _, command := range c.commands {
		commands = append(commands, command)
	}
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})
	return commands
}

// Execute tokenizes line, parses the flags of the named command and runs it.
// An empty line is a no-op.
func (c *Center) Execute(ctx context.Context, session *Session, line string, writer io.Writer) (int, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return 1, err
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	command, ok := c.Lookup(tokens[0])
	if !ok {
		return 127, ErrNoSuchProgram
	}

	args, err := NewParser(command.GetFlags()).Parse(tokens[1:])
	if err != nil {
		return 2, err
	}

	return command.Execute(ctx, session, args, writer)
}
