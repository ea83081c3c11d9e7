package intervals

import (
	"slices"
	"strconv"
	"time"
)

// Spoken transition texts
const (
	TextHalfway = "halfway"
	TextGo      = "go"
	TextSwitch  = "switch"
	TextDone    = "done"
)

// countdownFrom is the first countdown digit spoken before each phase end
const countdownFrom = 3

// Announcement is a cue due at an absolute time. Non-mandatory announcements may be dropped
// when a later one is due in the same wake-up.
type Announcement struct {
	At        time.Time
	Mandatory bool
	Text      string
}

// Offset returns the announcement time relative to an anchor
func (a Announcement) Offset(anchor time.Time) time.Duration {
	return a.At.Sub(anchor)
}

// GenerateAnnouncements replays the phase sequence from anchor and returns every cue of the
// session in time order: the halfway marker of each work phase (when enabled), a 3-2-1
// countdown before every phase end and the transition word at the phase end.
// The lead-in only precedes the first set and the last set has no break.
func GenerateAnnouncements(anchor time.Time, d PhaseDurations, halfway bool) []Announcement {
	var list []Announcement
	add := func(offset time.Duration, text string) {
		list = append(list, Announcement{At: anchor.Add(offset), Text: text})
	}

	var offset time.Duration
	for set := 0; set < d.Sets; set++ {
		last := set == d.Sets-1
		for _, phase := range setPhases(set == 0, last) {
			length := time.Duration(d.Get(phase)) * time.Second
			if phase == PhaseWork && halfway {
				add(offset+length/2, TextHalfway)
			}
			for k := countdownFrom; k >= 1; k-- {
				add(offset+length-time.Duration(k)*time.Second, strconv.Itoa(k))
			}
			add(offset+length, transitionText(phase, last))
			offset += length
		}
	}

	// Short phases can put a countdown ahead of the previous phase's cues
	slices.SortStableFunc(list, func(a, b Announcement) int {
		return a.At.Compare(b.At)
	})
	return list
}

func setPhases(first, last bool) []Phase {
	phases := make([]Phase, 0, 3)
	if first {
		phases = append(phases, PhaseLeadin)
	}
	phases = append(phases, PhaseWork)
	if !last {
		phases = append(phases, PhaseBreak)
	}
	return phases
}

func transitionText(phase Phase, lastSet bool) string {
	if phase == PhaseWork {
		if lastSet {
			return TextDone
		}
		return TextSwitch
	}
	return TextGo
}

// PruneThrough drops every announcement at or before t. The list must be sorted.
func PruneThrough(list []Announcement, t time.Time) []Announcement {
	i := 0
	for i < len(list) && !list[i].At.After(t) {
		i++
	}
	return list[i:]
}

// AnnouncementTexts lists every text an announcement can carry
func AnnouncementTexts() []string {
	texts := []string{TextHalfway, TextGo, TextSwitch, TextDone}
	for n := countdownFrom; n >= 1; n-- {
		texts = append(texts, strconv.Itoa(n))
	}
	return texts
}
