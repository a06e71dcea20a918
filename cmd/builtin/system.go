package builtin

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mwantia/craftos/cmd"
	"github.com/mwantia/craftos/data"
)

type EchoCommand struct {
}

func (echo *EchoCommand) Name() string {
	return "echo"
}

func (echo *EchoCommand) Description() string {
	return "Prints its arguments"
}

func (echo *EchoCommand) Usage() string {
	return "echo [text]..."
}

func (echo *EchoCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	fmt.Fprintln(writer, strings.Join(args.Args, " "))
	return 0, nil
}

func (echo *EchoCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type ClearCommand struct {
}

func (cc *ClearCommand) Name() string {
	return "clear"
}

func (cc *ClearCommand) Description() string {
	return "Clears the screen"
}

func (cc *ClearCommand) Usage() string {
	return "clear"
}

func (cc *ClearCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	session.Env.Term.Clear()
	session.Env.Term.SetCursorPos(1, 1)
	return 0, nil
}

func (cc *ClearCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type IDCommand struct {
}

func (id *IDCommand) Name() string {
	return "id"
}

func (id *IDCommand) Description() string {
	return "Prints the id and label of this computer"
}

func (id *IDCommand) Usage() string {
	return "id"
}

func (id *IDCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	fmt.Fprintf(writer, "This is computer #%d\n", session.Env.OS.ComputerID())
	if label := session.Env.OS.ComputerLabel(); label != "" {
		fmt.Fprintf(writer, "Computer label: %q\n", label)
	}
	return 0, nil
}

func (id *IDCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type LabelCommand struct {
}

func (label *LabelCommand) Name() string {
	return "label"
}

func (label *LabelCommand) Description() string {
	return "Shows or changes the computer label"
}

func (label *LabelCommand) Usage() string {
	return "label [get | set <text> | clear]"
}

func (label *LabelCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	action := "get"
	if len(args.Args) > 0 {
		action = args.Args[0]
	}

	switch action {
	case "get":
		current := session.Env.OS.ComputerLabel()
		if current == "" {
			fmt.Fprintln(writer, "No label")
		} else {
			fmt.Fprintf(writer, "Computer label is %q\n", current)
		}
	case "set":
		if len(args.Args) < 2 {
			return usage(writer, label)
		}
		text := strings.Join(args.Args[1:], " ")
		session.Env.OS.SetComputerLabel(text)
		fmt.Fprintf(writer, "Computer label set to %q\n", text)
	case "clear":
		session.Env.OS.SetComputerLabel("")
		fmt.Fprintln(writer, "Computer label cleared")
	default:
		return usage(writer, label)
	}
	return 0, nil
}

func (label *LabelCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type TimeCommand struct {
}

func (t *TimeCommand) Name() string {
	return "time"
}

func (t *TimeCommand) Description() string {
	return "Prints the in-game time and day"
}

func (t *TimeCommand) Usage() string {
	return "time"
}

func (t *TimeCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	hours, err := session.Env.OS.Time("")
	if err != nil {
		return 1, err
	}
	day, err := session.Env.OS.Day("")
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "The time is %s on Day %d\n", FormatTime(hours), day)
	return 0, nil
}

func (t *TimeCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

// FormatTime renders a time of day in hours as HH:MM.
func FormatTime(hours float64) string {
	h := int(math.Floor(hours))
	m := int(math.Floor((hours - float64(h)) * 60))
	return fmt.Sprintf("%02d:%02d", h, m)
}

type SleepCommand struct {
}

func (sleep *SleepCommand) Name() string {
	return "sleep"
}

func (sleep *SleepCommand) Description() string {
	return "Waits for a number of seconds"
}

func (sleep *SleepCommand) Usage() string {
	return "sleep <seconds>"
}

func (sleep *SleepCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usage(writer, sleep)
	}

	seconds, err := strconv.ParseFloat(args.Args[0], 64)
	if err != nil {
		return 1, data.ErrInvalidValue
	}

	if err := session.Env.OS.Sleep(ctx, session.Co, seconds); err != nil {
		return 1, err
	}
	return 0, nil
}

func (sleep *SleepCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type MountsCommand struct {
}

func (mounts *MountsCommand) Name() string {
	return "mounts"
}

func (mounts *MountsCommand) Description() string {
	return "Lists the mounted drives"
}

func (mounts *MountsCommand) Usage() string {
	return "mounts"
}

func (mounts *MountsCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	for _, info := range session.Env.Computer().FS().Mounts() {
		mode := "rw"
		if info.ReadOnly {
			mode = "ro"
		}
		fmt.Fprintf(writer, "/%-12s %-8s %s\n", info.Path, info.Drive, mode)
	}
	return 0, nil
}

func (mounts *MountsCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type RebootCommand struct {
}

func (reboot *RebootCommand) Name() string {
	return "reboot"
}

func (reboot *RebootCommand) Description() string {
	return "Restarts the computer"
}

func (reboot *RebootCommand) Usage() string {
	return "reboot"
}

func (reboot *RebootCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	fmt.Fprintln(writer, "Goodbye")
	session.Env.OS.Reboot()
	return 0, nil
}

func (reboot *RebootCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type ShutdownCommand struct {
}

func (shutdown *ShutdownCommand) Name() string {
	return "shutdown"
}

func (shutdown *ShutdownCommand) Description() string {
	return "Turns the computer off"
}

func (shutdown *ShutdownCommand) Usage() string {
	return "shutdown"
}

func (shutdown *ShutdownCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	fmt.Fprintln(writer, "Goodbye")
	session.Env.OS.Shutdown()
	return 0, nil
}

func (shutdown *ShutdownCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type HelpCommand struct {
}

func (help *HelpCommand) Name() string {
	return "help"
}

func (help *HelpCommand) Description() string {
	return "Lists commands or shows a help topic"
}

func (help *HelpCommand) Usage() string {
	return "help [topic]"
}

func (help *HelpCommand) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		for _, command := range session.Center.Commands() {
			fmt.Fprintf(writer, "%-8s %s\n", command.Name(), command.Description())
		}
		return 0, nil
	}

	topic := args.Args[0]
	if content, err := session.Env.FS.ReadFile(ctx, data.Combine(HelpPath, topic+".txt")); err == nil {
		fmt.Fprintln(writer, strings.TrimRight(string(content), "\n"))
		return 0, nil
	}

	command, ok := session.Center.Lookup(topic)
	if !ok {
		return 1, ErrNoHelp
	}

	fmt.Fprintln(writer, command.Description())
	fmt.Fprintf(writer, "Usage: %s\n", command.Usage())
	if flags := command.GetFlags(); flags != nil {
		for _, flag := range flags.Flags {
			fmt.Fprintf(writer, "  -%s, --%s  %s\n", flag.Short, flag.Name, flag.Description)
		}
	}
	return 0, nil
}

func (help *HelpCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

// HelpPath is the directory searched for help topics.
const HelpPath = "rom/help"

// All returns every builtin command.
func All() []cmd.Command {
	return []cmd.Command{
		&LsCommand{},
		&CdCommand{},
		&CatCommand{},
		&MkdirCommand{},
		&RmCommand{},
		&MvCommand{},
		&CpCommand{},
		&EchoCommand{},
		&ClearCommand{},
		&IDCommand{},
		&LabelCommand{},
		&TimeCommand{},
		&SleepCommand{},
		&MountsCommand{},
		&HelpCommand{},
		&RebootCommand{},
		&ShutdownCommand{},
	}
}
