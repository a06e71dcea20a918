package event

import "strings"

// Terminate always wakes a waiting computation, whatever its filter.
const Terminate = "terminate"

// Event is an ordered tuple of values; the first one is its name.
type Event []Value

// New builds an event named name with args converted by ValueOf.
func New(name string, args ...any) Event {
	e := make(Event, 0, len(args)+1)
	e = append(e, String(name))
	for _, arg := range args {
		e = append(e, ValueOf(arg))
	}
	return e
}

// Name returns the first element if it is a string, else "".
func (e Event) Name() string {
	if len(e) == 0 {
		return ""
	}
	name, _ := e[0].AsString()
	return name
}

// Arg returns the i-th argument after the name, or nil if absent.
func (e Event) Arg(i int) Value {
	if i < 0 || i+1 >= len(e) {
		return Nil()
	}
	return e[i+1]
}

// Matches reports whether e wakes a computation waiting with filter.
// A nil filter matches everything.
func (e Event) Matches(filter Value) bool {
	if filter.IsNil() {
		return true
	}
	if len(e) == 0 {
		return false
	}
	return e[0] == filter || e.Name() == Terminate
}

func (e Event) String() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.GoString()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
