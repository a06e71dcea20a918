package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/craftos/cmd"
	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
)

var (
	ErrUsage      = errors.New("missing arguments")
	ErrNotAFolder = errors.New("Not a directory")
	ErrNoHelp     = errors.New("No help available")
)

// usage reports a usage error in the same way for every command.
func usage(writer io.Writer, command cmd.Command) (int, error) {
	fmt.Fprintf(writer, "Usage: %s\n", command.Usage())
	return 1, ErrUsage
}

type LsCommand struct {
}

func (ls *LsCommand) Name() string {
	return "ls"
}

func (ls *LsCommand) Description() string {
	return "Lists the files in a directory"
}

func (ls *LsCommand) Usage() string {
	return "ls [-al] [path]"
}

func (ls *LsCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	dir := session.Dir()
	if len(args.Args) > 0 {
		dir = session.Resolve(args.Args[0])
	}

	if !session.Env.FS.IsDir(ctx, dir) {
		return 1, ErrNotAFolder
	}

	names, err := session.Env.FS.List(ctx, dir)
	if err != nil {
		return 1, err
	}

	var dirs, files []string
	for _, name := range names {
		if strings.HasPrefix(name, ".") && !args.Bool("all") {
			continue
		}

		path := data.Combine(dir, name)
		if args.Bool("long") {
			attr, err := session.Env.FS.Attributes(ctx, path)
			if err != nil {
				return 1, err
			}
			kind, size := "-", fmt.Sprint(attr.Size)
			if attr.IsDir {
				kind, size = "d", ""
			}
			if attr.IsReadOnly {
				kind += "r"
			} else {
				kind += "w"
			}
			fmt.Fprintf(writer, "%s %8s %s\n", kind, size, name)
			continue
		}

		if session.Env.FS.IsDir(ctx, path) {
			dirs = append(dirs, name+"/")
		} else {
			files = append(files, name)
		}
	}

	if entries := append(dirs, files...); len(entries) > 0 {
		fmt.Fprintln(writer, strings.Join(entries, "  "))
	}
	return 0, nil
}

func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"all": {
				Name:        "all",
				Short:       "a",
				Type:        "bool",
				Description: "Show hidden files",
			},
			"long": {
				Name:        "long",
				Short:       "l",
				Type:        "bool",
				Description: "Show type, permission and size",
			},
		},
	}
}

type CdCommand struct {
}

func (cd *CdCommand) Name() string {
	return "cd"
}

func (cd *CdCommand) Description() string {
	return "Changes the current directory"
}

func (cd *CdCommand) Usage() string {
	return "cd <path>"
}

func (cd *CdCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usage(writer, cd)
	}

	dir := session.Resolve(args.Args[0])
	if !session.Env.FS.IsDir(ctx, dir) {
		return 1, ErrNotAFolder
	}

	session.SetDir(dir)
	return 0, nil
}

func (cd *CdCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type CatCommand struct {
}

func (cat *CatCommand) Name() string {
	return "cat"
}

func (cat *CatCommand) Description() string {
	return "Prints the content of files"
}

func (cat *CatCommand) Usage() string {
	return "cat <path>..."
}

func (cat *CatCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return usage(writer, cat)
	}

	for _, arg := range args.Args {
		h, err := session.Env.FS.Open(ctx, session.Resolve(arg), "r")
		if err != nil {
			return 1, err
		}

		err = printHandle(h, writer)
		h.Close()
		if err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func printHandle(h mount.Handle, writer io.Writer) error {
	reader, ok := h.(mount.ReadableHandle)
	if !ok {
		return data.ErrInvalidMode
	}

	for {
		line, err := reader.ReadLine(true)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := writer.Write(line); err != nil {
			return err
		}
	}
}

func (cat *CatCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type MkdirCommand struct {
}

func (mkdir *MkdirCommand) Name() string {
	return "mkdir"
}

func (mkdir *MkdirCommand) Description() string {
	return "Creates directories"
}

func (mkdir *MkdirCommand) Usage() string {
	return "mkdir <path>..."
}

func (mkdir *MkdirCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return usage(writer, mkdir)
	}

	for _, arg := range args.Args {
		if err := session.Env.FS.MakeDir(ctx, session.Resolve(arg)); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func (mkdir *MkdirCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type RmCommand struct {
}

func (rm *RmCommand) Name() string {
	return "rm"
}

func (rm *RmCommand) Description() string {
	return "Deletes files and directories"
}

func (rm *RmCommand) Usage() string {
	return "rm <pattern>..."
}

func (rm *RmCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return usage(writer, rm)
	}

	for _, arg := range args.Args {
		matches, err := session.Env.FS.Find(ctx, session.Resolve(arg))
		if err != nil {
			return 1, err
		}
		if len(matches) == 0 {
			return 1, data.WrapPath("delete", session.Resolve(arg), data.ErrNotExist)
		}

		for _, match := range matches {
			if err := session.Env.FS.Delete(ctx, match); err != nil {
				return 1, err
			}
		}
	}
	return 0, nil
}

func (rm *RmCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

// transfer implements mv and cp. When the destination is an existing
// directory the source keeps its name inside it.
func transfer(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer, command cmd.Command,
	fn func(ctx context.Context, from, to string) error) (int, error) {
	if len(args.Args) != 2 {
		return usage(writer, command)
	}

	from := session.Resolve(args.Args[0])
	to := session.Resolve(args.Args[1])
	if session.Env.FS.IsDir(ctx, to) {
		to = data.Combine(to, data.GetName(from))
	}

	if err := fn(ctx, from, to); err != nil {
		return 1, err
	}
	return 0, nil
}

type MvCommand struct {
}

func (mv *MvCommand) Name() string {
	return "mv"
}

func (mv *MvCommand) Description() string {
	return "Moves a file or directory"
}

func (mv *MvCommand) Usage() string {
	return "mv <source> <destination>"
}

func (mv *MvCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	return transfer(ctx, session, args, writer, mv, session.Env.FS.Move)
}

func (mv *MvCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type CpCommand struct {
}

func (cp *CpCommand) Name() string {
	return "cp"
}

func (cp *CpCommand) Description() string {
	return "Copies a file or directory"
}

func (cp *CpCommand) Usage() string {
	return "cp <source> <destination>"
}

func (cp *CpCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	return transfer(ctx, session, args, writer, cp, session.Env.FS.Copy)
}

func (cp *CpCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
