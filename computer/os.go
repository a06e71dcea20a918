package computer

import (
	"context"
	"strings"
	"time"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/guest"
	"github.com/ncruces/go-strftime"
)

// Locales accepted by Time, Day and Epoch.
const (
	LocaleInGame = "ingame"
	LocaleUTC    = "utc"
	LocaleLocal  = "local"
)

var ErrUnsupported = data.ArgumentError("Unsupported operation")

// About is returned by OS.About.
const About = `CraftOS 3.0 (Go)

A CraftOS computer emulator. Guest programs run against a virtual
filesystem, a terminal and the event queue of their computer.`

// OS is the operating system API of a guest.
type OS struct {
	computer *Computer
}

// QueueEvent pushes a custom event. It reports whether the queue had room.
func (o *OS) QueueEvent(name string, args ...any) bool {
	return o.computer.Push(event.New(name, args...))
}

func (o *OS) StartTimer(seconds float64) int {
	return o.computer.timers.StartTimer(seconds)
}

func (o *OS) CancelTimer(id int) {
	o.computer.timers.Cancel(id)
}

func (o *OS) SetAlarm(hour float64) (int, error) {
	return o.computer.timers.SetAlarm(hour)
}

// CancelAlarm cancels an alarm. Timers and alarms share their ids.
func (o *OS) CancelAlarm(id int) {
	o.computer.timers.Cancel(id)
}

func (o *OS) Shutdown() {
	o.computer.Shutdown()
}

func (o *OS) Reboot() {
	o.computer.Reboot()
}

func (o *OS) ComputerID() int {
	return o.computer.ID()
}

func (o *OS) ComputerLabel() string {
	return o.computer.Label()
}

func (o *OS) SetComputerLabel(label string) {
	o.computer.SetLabel(label)
}

// Clock returns the seconds since the computer booted.
func (o *OS) Clock() float64 {
	return o.computer.timers.Clock()
}

// Time returns the time of day in hours for locale. An empty locale is "ingame".
func (o *OS) Time(locale string) (float64, error) {
	switch locale {
	case "", LocaleInGame:
		return o.computer.timers.Time(), nil
	case LocaleUTC:
		return hours(o.computer.clock.Now().UTC()), nil
	case LocaleLocal:
		return hours(o.computer.clock.Now().Local()), nil
	default:
		return 0, ErrUnsupported
	}
}

// Day returns the in-game day or the days since the Unix epoch.
func (o *OS) Day(locale string) (int, error) {
	switch locale {
	case "", LocaleInGame:
		return o.computer.timers.Day(), nil
	case LocaleUTC:
		return int(o.computer.clock.Now().Unix() / 86400), nil
	case LocaleLocal:
		return int(localMillis(o.computer.clock.Now()) / 86400000), nil
	default:
		return 0, ErrUnsupported
	}
}

// Epoch returns milliseconds since the in-game or Unix epoch.
func (o *OS) Epoch(locale string) (int64, error) {
	switch locale {
	case "", LocaleInGame:
		return o.computer.timers.Epoch(), nil
	case LocaleUTC:
		return o.computer.clock.Now().UnixMilli(), nil
	case LocaleLocal:
		return localMillis(o.computer.clock.Now()), nil
	default:
		return 0, ErrUnsupported
	}
}

// DateTable is the broken-down form of a point in time. WDay counts from
// Sunday as 1.
type DateTable struct {
	Year  int
	Month int
	Day   int
	Hour  int
	Min   int
	Sec   int
	WDay  int
	YDay  int
	IsDST bool
}

// Now returns the current seconds since the Unix epoch.
func (o *OS) Now() int64 {
	return o.computer.clock.Now().Unix()
}

// Date formats seconds since the Unix epoch with a strftime format in local
// time. A leading "!" selects UTC and an empty format is "%c".
// The "*t" format is served by DateTable.
func (o *OS) Date(format string, seconds int64) (string, error) {
	format, utc := strings.CutPrefix(format, "!")
	if format == "*t" {
		return "", ErrUnsupported
	}
	if format == "" {
		format = "%c"
	}
	return strftime.Format(format, at(seconds, utc)), nil
}

// DateTable breaks seconds since the Unix epoch down in local time or UTC.
func (o *OS) DateTable(seconds int64, utc bool) DateTable {
	t := at(seconds, utc)
	return DateTable{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
		Hour:  t.Hour(),
		Min:   t.Minute(),
		Sec:   t.Second(),
		WDay:  int(t.Weekday()) + 1,
		YDay:  t.YearDay(),
		IsDST: t.IsDST(),
	}
}

// TimeOf converts a local date table to seconds since the Unix epoch.
// Out of range fields are normalized; WDay, YDay and IsDST are ignored.
func (o *OS) TimeOf(table DateTable) int64 {
	return time.Date(table.Year, time.Month(table.Month), table.Day,
		table.Hour, table.Min, table.Sec, 0, time.Local).Unix()
}

func (o *OS) About() string {
	return About
}

// Sleep waits for seconds using a timer. Other events received meanwhile
// are discarded.
func (o *OS) Sleep(ctx context.Context, co *guest.Coroutine, seconds float64) error {
	id := o.StartTimer(seconds)
	for {
		ev, err := co.PullEvent("timer")
		if err != nil {
			o.CancelTimer(id)
			return err
		}
		if n, ok := ev.Arg(0).AsInt(); ok && n == id {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func at(seconds int64, utc bool) time.Time {
	t := time.Unix(seconds, 0)
	if utc {
		return t.UTC()
	}
	return t.Local()
}

func hours(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func localMillis(t time.Time) int64 {
	_, offset := t.Local().Zone()
	return t.UnixMilli() + int64(offset)*1000
}
