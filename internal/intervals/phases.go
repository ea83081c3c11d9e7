package intervals

import "fmt"

// Phase identifies one countdown segment of a set. PhaseSets is the set counter, which the
// sequencer walks through with the same ordering rule as the timed phases.
type Phase int

const (
	PhaseLeadin Phase = iota
	PhaseWork
	PhaseBreak
	PhaseSets
)

// AllPhases lists the phases in sequencing order
var AllPhases = []Phase{PhaseLeadin, PhaseWork, PhaseBreak, PhaseSets}

// Key returns the settings/label key of the phase
func (p Phase) Key() string {
	switch p {
	case PhaseLeadin:
		return "leadin"
	case PhaseWork:
		return "work"
	case PhaseBreak:
		return "break"
	case PhaseSets:
		return "sets"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) String() string {
	return p.Key()
}

// PhaseByKey looks up a phase from its settings key
func PhaseByKey(key string) (Phase, bool) {
	for _, p := range AllPhases {
		if p.Key() == key {
			return p, true
		}
	}
	return 0, false
}

// PhaseDurations holds the configured seconds per phase and the number of sets.
// It is set once per reset.
type PhaseDurations struct {
	Leadin int
	Work   int
	Break  int
	Sets   int
}

// Get returns the value for a phase. Unknown phases are a programming error.
func (d PhaseDurations) Get(p Phase) int {
	switch p {
	case PhaseLeadin:
		return d.Leadin
	case PhaseWork:
		return d.Work
	case PhaseBreak:
		return d.Break
	case PhaseSets:
		return d.Sets
	}
	panic(fmt.Sprintf("intervals: unknown phase %d", int(p)))
}

// TotalSeconds is the length of a full session: one lead-in, every work interval and a break
// between consecutive sets.
func (d PhaseDurations) TotalSeconds() int {
	if d.Sets <= 0 {
		return 0
	}
	return d.Leadin + d.Sets*d.Work + (d.Sets-1)*d.Break
}

// SetState holds what is left of the in-progress set. Sets counts the sets not yet finished,
// including the current one.
type SetState PhaseDurations

// NewSetState starts a session at the first set.
func NewSetState(d PhaseDurations) SetState {
	return SetState(d)
}

// Get returns the remaining value for a phase
func (s SetState) Get(p Phase) int {
	return PhaseDurations(s).Get(p)
}

// Current returns the phase that the next tick would count down. PhaseSets means the set
// counter itself is next, i.e. no timed phase has budget left.
func (s SetState) Current() Phase {
	switch {
	case s.Sets <= 0:
		return PhaseSets
	case s.Leadin > 0:
		return PhaseLeadin
	case s.Work > 0:
		return PhaseWork
	case s.Break > 0:
		return PhaseBreak
	}
	return PhaseSets
}

// Consumed returns how many seconds of d have been counted down to reach s.
func (s SetState) Consumed(d PhaseDurations) int {
	done := d.Sets - s.Sets
	return (d.Leadin - s.Leadin) + done*(d.Work+d.Break) + (d.Work - s.Work) + (d.Break - s.Break)
}

// Tick counts down one second and returns true once the session is complete.
// The first phase with budget left loses a second; exhausted phases are then passed
// without consuming further ticks.
func (s *SetState) Tick(d PhaseDurations) bool {
	if s.settle(d) {
		return true
	}
	switch {
	case s.Leadin > 0:
		s.Leadin--
	case s.Work > 0:
		s.Work--
	case s.Break > 0:
		s.Break--
	}
	return s.settle(d)
}

// settle moves past exhausted phases. Lead-in is never refilled and the last set has no break.
func (s *SetState) settle(d PhaseDurations) bool {
	for {
		if s.Sets <= 0 {
			return true
		}
		if s.Leadin > 0 || s.Work > 0 {
			return false
		}
		if s.Sets == 1 {
			return true
		}
		if s.Break > 0 {
			return false
		}
		s.Sets--
		s.Work = d.Work
		s.Break = d.Break
	}
}
