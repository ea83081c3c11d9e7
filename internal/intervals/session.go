package intervals

import (
	"fmt"
	"log"
	"strconv"
	"time"
)

// Status is the coarse session status shown to the user
type Status int

const (
	StatusReady   Status = iota // Freshly reset
	StatusPlaying               // Anchored and ticking
	StatusPaused                // Anchor cleared, progress kept
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Announcer speaks a cue. Calls are fire-and-forget: failures never reach the session.
type Announcer interface {
	Announce(text string)
}

// StateSink receives a snapshot after every command and tick
type StateSink interface {
	SetSessionState(snapshot Snapshot)
}

// Inputs holds the raw values of the settings fields
type Inputs struct {
	Leadin  string
	Work    string
	Break   string
	Sets    string
	Halfway bool
}

// Get returns the raw field value for a phase
func (in Inputs) Get(p Phase) string {
	switch p {
	case PhaseLeadin:
		return in.Leadin
	case PhaseWork:
		return in.Work
	case PhaseBreak:
		return in.Break
	case PhaseSets:
		return in.Sets
	}
	panic(fmt.Sprintf("intervals: no input field for phase %d", int(p)))
}

// Set replaces the raw field value for a phase
func (in *Inputs) Set(p Phase, value string) {
	switch p {
	case PhaseLeadin:
		in.Leadin = value
	case PhaseWork:
		in.Work = value
	case PhaseBreak:
		in.Break = value
	case PhaseSets:
		in.Sets = value
	default:
		panic(fmt.Sprintf("intervals: no input field for phase %d", int(p)))
	}
}

// Durations parses every field
func (in Inputs) Durations() PhaseDurations {
	return PhaseDurations{
		Leadin: ParseDuration(in.Leadin),
		Work:   ParseDuration(in.Work),
		Break:  ParseDuration(in.Break),
		Sets:   ParseSets(in.Sets),
	}
}

// Snapshot is the published view of a session
type Snapshot struct {
	Status    Status
	Inputs    Inputs
	Durations PhaseDurations
	Remaining SetState
	Phase     Phase
	Elapsed   int // seconds applied to Remaining
	Total     int // seconds in the whole session
	Hidden    bool
}

// Label is the text shown next to a phase: remaining time, or remaining sets.
func (s Snapshot) Label(p Phase) string {
	if p == PhaseSets {
		return strconv.Itoa(s.Remaining.Sets)
	}
	return FormatSeconds(s.Remaining.Get(p))
}

// Session owns all state of one interval timer. It is not safe for concurrent use: callers
// serialize commands and ticks on a single goroutine (see trainer.WorkoutManager).
// Operations that keep the session running return the delay until the next wake-up and true;
// false means no wake-up must be armed.
type Session struct {
	inputs    Inputs
	durations PhaseDurations
	set       SetState
	anchor    time.Time // zero unless playing
	applied   int       // whole seconds applied to set since the last reset
	pending   []Announcement
	status    Status
	hidden    bool

	announcer Announcer
	sink      StateSink
	logger    *log.Logger
}

// NewSession creates a session in the ready state
func NewSession(inputs Inputs, announcer Announcer, sink StateSink, logger *log.Logger) *Session {
	if announcer == nil {
		panic("Session: announcer cannot be nil")
	}
	if sink == nil {
		panic("Session: sink cannot be nil")
	}
	if logger == nil {
		panic("Session: logger cannot be nil")
	}
	s := &Session{
		inputs:    inputs,
		announcer: announcer,
		sink:      sink,
		logger:    logger,
	}
	s.Reset()
	return s
}

// Reset re-parses the inputs and returns to ready with zero elapsed.
func (s *Session) Reset() {
	s.anchor = time.Time{}
	s.applied = 0
	s.pending = nil
	s.durations = s.inputs.Durations()
	s.set = NewSetState(s.durations)
	s.status = StatusReady
	s.logger.Printf("Session: reset to %+v", s.durations)
	s.publish()
}

// Play anchors the session at now minus the seconds already elapsed and regenerates the
// announcements still ahead. Playing an already playing session does nothing.
func (s *Session) Play(now time.Time) (time.Duration, bool) {
	if s.status == StatusPlaying {
		s.logger.Printf("Session: already playing")
		return 0, false
	}
	if s.set.settle(s.durations) {
		s.logger.Printf("Session: nothing to play")
		s.complete()
		return 0, false
	}

	s.anchor = now.Add(-time.Duration(s.applied) * time.Second)
	s.pending = PruneThrough(GenerateAnnouncements(s.anchor, s.durations, s.inputs.Halfway), now)
	s.status = StatusPlaying
	s.logger.Printf("Session: playing from %ds with %d announcements pending", s.applied, len(s.pending))
	s.publish()
	return NextWake(now, s.anchor, s.hidden, s.pending), true
}

// Pause clears the anchor and keeps the progress of the current set.
func (s *Session) Pause() {
	if s.status != StatusPlaying {
		s.logger.Printf("Session: cannot pause while %s", s.status)
		return
	}
	s.anchor = time.Time{}
	s.pending = nil
	s.status = StatusPaused
	s.logger.Printf("Session: paused at %ds", s.applied)
	s.publish()
}

// Tick fires due announcements, applies every whole second elapsed since the last tick one
// transition at a time, and publishes the new state.
func (s *Session) Tick(now time.Time) (time.Duration, bool) {
	if s.status != StatusPlaying {
		s.publish()
		return 0, false
	}

	fire, rest := DueAnnouncements(s.pending, now)
	s.pending = rest
	for _, a := range fire {
		s.announcer.Announce(a.Text)
	}

	elapsed := ElapsedSeconds(now, s.anchor)
	ticks := elapsed - s.applied
	if ticks > 0 {
		s.applied = elapsed
	}
	for ; ticks > 0; ticks-- {
		if s.set.Tick(s.durations) {
			s.complete()
			return 0, false
		}
	}

	s.publish()
	return NextWake(now, s.anchor, s.hidden, s.pending), true
}

// SetInput stores a field value. It is applied right away through a reset unless the
// session is playing, in which case it waits for the next reset.
func (s *Session) SetInput(p Phase, value string) bool {
	s.inputs.Set(p, value)
	if s.status == StatusPlaying {
		s.logger.Printf("Session: %s changed to %q while playing, applied on next reset", p, value)
		s.publish()
		return false
	}
	s.Reset()
	return true
}

// SetHalfway toggles halfway announcements. The toggle is read whenever announcements are
// generated, i.e. on the next play or resume.
func (s *Session) SetHalfway(enabled bool) {
	s.inputs.Halfway = enabled
	s.publish()
}

// SetHidden records whether the timer view is visible. Becoming visible ticks immediately;
// becoming hidden only changes how far ahead the next wake-up is.
func (s *Session) SetHidden(hidden bool, now time.Time) (time.Duration, bool) {
	s.hidden = hidden
	if s.status != StatusPlaying {
		s.publish()
		return 0, false
	}
	if hidden {
		s.publish()
		return NextWake(now, s.anchor, s.hidden, s.pending), true
	}
	return s.Tick(now)
}

// NextWake returns the delay until the next wake-up of a playing session
func (s *Session) NextWake(now time.Time) (time.Duration, bool) {
	if s.status != StatusPlaying {
		return 0, false
	}
	return NextWake(now, s.anchor, s.hidden, s.pending), true
}

// Status returns the current status
func (s *Session) Status() Status {
	return s.status
}

// Anchor returns the anchor instant and whether the session is anchored
func (s *Session) Anchor() (time.Time, bool) {
	return s.anchor, !s.anchor.IsZero()
}

// Pending returns a copy of the announcements not yet fired
func (s *Session) Pending() []Announcement {
	return append([]Announcement(nil), s.pending...)
}

// Snapshot returns the current published view
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Status:    s.status,
		Inputs:    s.inputs,
		Durations: s.durations,
		Remaining: s.set,
		Phase:     s.set.Current(),
		Elapsed:   s.applied,
		Total:     s.durations.TotalSeconds(),
		Hidden:    s.hidden,
	}
}

func (s *Session) complete() {
	s.logger.Printf("Session: complete after %ds", s.applied)
	s.Reset()
}

func (s *Session) publish() {
	s.sink.SetSessionState(s.Snapshot())
}
