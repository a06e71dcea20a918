package shell_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/mwantia/craftos/cmd"
	"github.com/mwantia/craftos/computer"
	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/ephemeral"
	"github.com/mwantia/craftos/rom"
	"github.com/mwantia/craftos/shell"
	"github.com/mwantia/craftos/term"
	"github.com/mwantia/craftos/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

type fixture struct {
	computer *computer.Computer
	buffer   *term.Buffer
	done     <-chan error
}

func boot(t *testing.T, startup string) *fixture {
	t.Helper()

	root, err := mount.NewObjectMount(t.Context(), ephemeral.NewEphemeralBackend())
	require.NoError(t, err)
	fs, err := vfs.NewManager(root)
	require.NoError(t, err)

	romMount, err := rom.New()
	require.NoError(t, err)
	fs.Add(romMount)

	if startup != "" {
		require.NoError(t, fs.Write(t.Context(), "startup", []byte(startup)))
	}

	sh, err := shell.NewShell()
	require.NoError(t, err)

	buffer := term.NewBuffer(0, 0)
	c, err := computer.NewComputer(1, fs, buffer, sh.Boot)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done <- c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-finished
	})

	return &fixture{computer: c, buffer: buffer, done: done}
}

func (f *fixture) line(t *testing.T, y int, want string) {
	t.Helper()

	assert.Eventually(t, func() bool {
		return f.buffer.Snapshot().Line(y) == want
	}, waitFor, tick, "line %d: %q", y, f.buffer.Snapshot().Line(y))
}

func (f *fixture) typeText(text string) {
	for _, r := range text {
		f.computer.Push(event.New("char", string(r)))
	}
}

func (f *fixture) enter(line string) {
	f.typeText(line)
	f.computer.Push(event.New("key", term.KeyEnter, false))
}

func TestShell_Boot(t *testing.T) {
	f := boot(t, "")

	f.line(t, 1, "CraftOS 3.0 (Go)")
	f.line(t, 2, `Type "help" for a list of commands.`)
	f.line(t, 3, ">")
	assert.True(t, f.buffer.CursorBlink())
}

func TestShell_Execute(t *testing.T) {
	f := boot(t, "")
	f.line(t, 3, ">")

	f.enter(`echo "hello  there" world`)
	f.line(t, 3, `> echo "hello  there" world`)
	f.line(t, 4, "hello  there world")
	f.line(t, 5, ">")
}

func TestShell_UnknownCommand(t *testing.T) {
	f := boot(t, "")
	f.line(t, 3, ">")

	f.enter("nope")
	f.line(t, 4, "No such program")

	screen := f.buffer.Snapshot()
	assert.Equal(t, byte(0xE), screen.Cells[3][0]&0x0F)
}

func TestShell_Directories(t *testing.T) {
	f := boot(t, "")
	f.line(t, 3, ">")

	f.enter("mkdir docs")
	f.line(t, 4, ">")
	f.enter("cd docs")
	f.line(t, 5, ">")
	f.enter("cat /rom/motd.txt")
	f.line(t, 6, "CraftOS 3.0 (Go)")
	f.enter("ls ..")
	f.line(t, 9, "docs/  rom/")
}

func TestShell_Backspace(t *testing.T) {
	f := boot(t, "")
	f.line(t, 3, ">")

	f.typeText("ecx")
	f.computer.Push(event.New("key", term.KeyBackspace, false))
	f.enter("ho ok")
	f.line(t, 3, "> echo ok")
	f.line(t, 4, "ok")
}

func TestShell_Startup(t *testing.T) {
	f := boot(t, "# greeting\n\necho from startup\n")

	f.line(t, 3, "from startup")
	f.line(t, 4, ">")
}

func TestShell_Terminate(t *testing.T) {
	f := boot(t, "")
	f.line(t, 3, ">")

	f.typeText("abc")
	f.computer.Push(event.New(event.Terminate))
	f.line(t, 4, "Terminated")
	f.line(t, 5, ">")
}

func TestShell_Shutdown(t *testing.T) {
	f := boot(t, "")
	f.line(t, 3, ">")

	f.enter("shutdown")

	select {
	case err := <-f.done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("computer did not stop")
	}
	assert.Equal(t, computer.Off, f.computer.State())
}

func TestShell_Reboot(t *testing.T) {
	f := boot(t, "")
	f.line(t, 3, ">")

	f.enter("echo before")
	f.line(t, 4, "before")
	f.enter("reboot")

	f.line(t, 4, "")
	f.line(t, 3, ">")
	assert.Equal(t, computer.Running, f.computer.State())
}

func TestShell_DuplicateCommand(t *testing.T) {
	_, err := shell.NewShell(shell.WithCommands(&duplicate{}))
	assert.Error(t, err)
}

type duplicate struct {
}

func (d *duplicate) Name() string {
	return "echo"
}

func (d *duplicate) Description() string {
	return ""
}

func (d *duplicate) Usage() string {
	return "echo"
}

func (d *duplicate) Execute(ctx context.Context, session *cmd.Session, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	return 0, nil
}

func (d *duplicate) GetFlags() *cmd.CommandFlagSet {
	return nil
}
