package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mwantia/craftos/data"
)

// Parser splits the tokens following a command name into options and
// positional arguments. Options may appear anywhere until "--"; a lone "-"
// and negative numbers are positional unless a digit option exists.
type Parser struct {
	flags  map[string]*CommandFlag
	long   map[string]string
	short  map[string]string
	digits bool
	seen   map[string]bool
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	p := &Parser{
		flags: make(map[string]*CommandFlag),
		long:  make(map[string]string),
		short: make(map[string]string),
	}
	if flagSet == nil {
		return p
	}

	for key, flag := range flagSet.Flags {
		p.flags[key] = flag
		p.long[flag.Name] = key
		if flag.Short != "" {
			p.short[flag.Short] = key
			if flag.Short[0] >= '0' && flag.Short[0] <= '9' {
				p.digits = true
			}
		}
	}
	return p
}

func (p *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Flags: make(map[string]any),
		Raw:   raw,
	}
	p.seen = make(map[string]bool)
	for key, flag := range p.flags {
		if flag.Default != nil {
			args.Flags[key] = flag.Default
		}
	}

	for i := 0; i < len(raw); i++ {
		token := raw[i]

		switch {
		case token == "--":
			args.Args = append(args.Args, raw[i+1:]...)
			i = len(raw)

		case strings.HasPrefix(token, "--"):
			name, value, inline := strings.Cut(token[2:], "=")
			key, ok := p.long[name]
			if !ok {
				return nil, data.ArgumentError("unknown option --" + name)
			}
			if !inline && p.flags[key].Type != "bool" {
				if i+1 >= len(raw) {
					return nil, data.ArgumentError("option --" + name + " expects a value")
				}
				i++
				value, inline = raw[i], true
			}
			if err := p.set(args, key, "--"+name, value, inline); err != nil {
				return nil, err
			}

		case p.isShort(token):
			consumed, err := p.parseShort(args, token[1:], raw[i+1:])
			if err != nil {
				return nil, err
			}
			i += consumed

		default:
			args.Args = append(args.Args, token)
		}
	}

	if err := p.checkRequired(args); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) isShort(token string) bool {
	if len(token) < 2 || token[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(token, 64); err == nil && !p.digits {
		return false
	}
	return true
}

// parseShort handles a cluster like "-al" or "-n3" and returns the number
// of following tokens it consumed as a value.
func (p *Parser) parseShort(args *CommandArgs, cluster string, rest []string) (int, error) {
	for j, r := range cluster {
		name := string(r)
		key, ok := p.short[name]
		if !ok {
			return 0, data.ArgumentError("unknown option -" + name)
		}
		if p.flags[key].Type == "bool" {
			if err := p.set(args, key, "-"+name, "", false); err != nil {
				return 0, err
			}
			continue
		}

		if value := cluster[j+len(name):]; value != "" {
			return 0, p.set(args, key, "-"+name, value, true)
		}
		if len(rest) == 0 {
			return 0, data.ArgumentError("option -" + name + " expects a value")
		}
		return 1, p.set(args, key, "-"+name, rest[0], true)
	}
	return 0, nil
}

func (p *Parser) set(args *CommandArgs, key, spelled, value string, hasValue bool) error {
	flag := p.flags[key]

	var v any
	switch flag.Type {
	case "bool":
		if !hasValue {
			v = true
			break
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return data.ArgumentError("option " + spelled + " expects true or false")
		}
		v = b
	case "int":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return data.ArgumentError(fmt.Sprintf("option %s expects a number, got %q", spelled, value))
		}
		v = n
	default:
		v = value
	}

	if flag.Multiple || flag.Type == "stringSlice" {
		var values []any
		if p.seen[key] {
			values, _ = args.Flags[key].([]any)
		}
		v = append(values, v)
	}
	args.Flags[key] = v
	p.seen[key] = true
	return nil
}

func (p *Parser) checkRequired(args *CommandArgs) error {
	keys := make([]string, 0, len(p.flags))
	for key := range p.flags {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		flag := p.flags[key]
		if _, ok := args.Flags[key]; !flag.Required || ok {
			continue
		}
		if flag.Short != "" {
			return data.ArgumentError(fmt.Sprintf("required option -%s / --%s", flag.Short, flag.Name))
		}
		return data.ArgumentError("required option --" + flag.Name)
	}
	return nil
}
