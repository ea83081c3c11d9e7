package intervals

import "time"

// DueWindow is how far ahead of now an announcement still counts as due
const DueWindow = 500 * time.Millisecond

// DueAnnouncements splits the sorted pending list into the announcements to speak now and the
// ones still pending. When several announcements fall into the same window (a late wake-up),
// a non-mandatory one is skipped if the next one is also due, so bursts collapse into the
// latest cue instead of overlapping speech.
func DueAnnouncements(pending []Announcement, now time.Time) (fire, rest []Announcement) {
	window := now.Add(DueWindow)
	i := 0
	for ; i < len(pending); i++ {
		if pending[i].At.After(window) {
			break
		}
		if !pending[i].Mandatory && i+1 < len(pending) && !pending[i+1].At.After(window) {
			continue
		}
		fire = append(fire, pending[i])
	}
	return fire, pending[i:]
}

// ElapsedSeconds is the number of whole seconds between anchor and now, rounded to nearest.
func ElapsedSeconds(now, anchor time.Time) int {
	return int(now.Sub(anchor).Round(time.Second) / time.Second)
}

// NextWake decides how long the scheduler sleeps. A hidden view with pending announcements only
// wakes for the next announcement; otherwise wake-ups stay on whole seconds since anchor so
// they never drift.
func NextWake(now, anchor time.Time, hidden bool, pending []Announcement) time.Duration {
	if hidden && len(pending) > 0 {
		wait := pending[0].At.Sub(now)
		if wait < 0 {
			return 0
		}
		return wait
	}
	into := now.Sub(anchor) % time.Second
	if into < 0 {
		into += time.Second
	}
	return time.Second - into
}
