package timer

import (
	"math"
	"sync"
	"time"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/log"
)

const (
	// DayLength is the real duration of one in-game day.
	DayLength = 20 * time.Minute

	// HourLength is the real duration of one in-game hour.
	HourLength = DayLength / 24

	// dayOffset starts the in-game clock at 06:00.
	dayOffset = 5 * time.Minute
)

type entry struct {
	id      int
	alarm   bool
	stopper Stopper
}

// Scheduler owns the timers and alarms of a computer. Expired entries
// push ("timer", id) or ("alarm", id) to the event queue.
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	queue   *event.Queue
	start   time.Time
	nextID  int
	entries map[int]*entry
	log     *log.Logger
}

func NewScheduler(queue *event.Queue, opts ...SchedulerOption) (*Scheduler, error) {
	options := newDefaultSchedulerOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return &Scheduler{
		clock:   options.Clock,
		queue:   queue,
		start:   options.Clock.Now(),
		entries: make(map[int]*entry),
		log:     options.Logger.Named("timer"),
	}, nil
}

// Reset cancels every pending entry, restarts the id sequence and records
// the current instant as the system start.
func (s *Scheduler) Reset() {
	s.CancelAll()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.start = s.clock.Now()
	s.nextID = 0
}

// StartTimer schedules a ("timer", id) event after seconds.
func (s *Scheduler) StartTimer(seconds float64) int {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	return s.schedule(time.Duration(seconds*float64(time.Second)), false)
}

// SetAlarm schedules an ("alarm", id) event at the next in-game time of day
// equal to hour.
func (s *Scheduler) SetAlarm(hour float64) (int, error) {
	if math.IsNaN(hour) || hour < 0 || hour >= 24 {
		return 0, data.ErrOutOfRange
	}

	now := s.Time()
	delta := hour - now
	if delta <= 0 {
		delta += 24
	}

	return s.schedule(time.Duration(delta*float64(HourLength)), true), nil
}

func (s *Scheduler) schedule(delay time.Duration, alarm bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e := &entry{id: s.nextID, alarm: alarm}
	e.stopper = s.clock.AfterFunc(delay, func() {
		s.fire(e)
	})
	s.entries[e.id] = e

	s.log.Debug("Scheduled %s %d in %s", kind(alarm), e.id, delay)
	return e.id
}

// fire holds the lock across the push so a Reset cannot slip in between
// the entry check and the event reaching the queue.
func (s *Scheduler) fire(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[e.id]
	if !ok || current != e {
		// Cancelled or reset while the callback was starting
		return
	}
	delete(s.entries, e.id)

	if !s.queue.Push(event.New(kind(e.alarm), e.id)) {
		s.log.Warn("Event queue full, dropped %s %d", kind(e.alarm), e.id)
	}
}

// Cancel stops the timer or alarm with id before it fires.
// Unknown ids are ignored.
func (s *Scheduler) Cancel(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}

	e.stopper.Stop()
	delete(s.entries, id)
	s.log.Debug("Cancelled %s %d", kind(e.alarm), id)
	return true
}

// CancelAll stops every pending entry.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		e.stopper.Stop()
		delete(s.entries, id)
	}
}

// Pending returns the number of entries that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Elapsed returns the real time since the system start.
func (s *Scheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clock.Now().Sub(s.start)
}

// Clock returns the seconds since the system start.
func (s *Scheduler) Clock() float64 {
	return s.Elapsed().Seconds()
}

// Time returns the in-game time of day in hours, in [0, 24).
func (s *Scheduler) Time() float64 {
	ms := (s.Elapsed() + dayOffset).Milliseconds() % DayLength.Milliseconds()
	return float64(ms/50) / 1000
}

// Day returns the in-game day, starting at 1.
func (s *Scheduler) Day() int {
	return int(s.Elapsed()/DayLength) + 1
}

// Epoch returns the in-game milliseconds since the in-game epoch.
func (s *Scheduler) Epoch() int64 {
	return int64(s.Day())*86400000 + int64(s.Time()*3600000)
}

func kind(alarm bool) string {
	if alarm {
		return "alarm"
	}
	return "timer"
}
