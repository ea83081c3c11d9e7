package trainer

import (
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/interval-timer/internal/clock"
	"github.com/lowaak/smart-trainer/interval-timer/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

// workoutCommandKind identifies a command sent to the workout goroutine
type workoutCommandKind int

const (
	cmdPlay workoutCommandKind = iota
	cmdPause
	cmdToggle
	cmdRestart
	cmdSetInput
	cmdSetHalfway
	cmdSetHidden
)

func (k workoutCommandKind) String() string {
	switch k {
	case cmdPlay:
		return "play"
	case cmdPause:
		return "pause"
	case cmdToggle:
		return "toggle"
	case cmdRestart:
		return "restart"
	case cmdSetInput:
		return "set input"
	case cmdSetHalfway:
		return "set halfway"
	case cmdSetHidden:
		return "set hidden"
	}
	return "unknown"
}

// workoutCommand is a command plus its arguments
type workoutCommand struct {
	kind  workoutCommandKind
	phase intervals.Phase
	value string
	flag  bool
}

// cmdChanSize lets a burst of key presses queue without blocking the UI goroutine
const cmdChanSize = 16

// WorkoutManager runs the interval session on a single goroutine. Commands and timer
// wake-ups are serialized there, and the one armed timer is disarmed before any command
// touches the session, so a stale wake-up can never reach a reset or paused session.
type WorkoutManager struct {
	session *intervals.Session
	clock   clock.Clock
	logger  *log.Logger

	// Goroutine management
	cmdChan      chan workoutCommand
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewWorkoutManagerArg holds the arguments for creating a WorkoutManager
type NewWorkoutManagerArg struct {
	Inputs    intervals.Inputs
	Announcer intervals.Announcer
	Sink      intervals.StateSink
	Clock     clock.Clock
	Logger    *log.Logger
}

// NewWorkoutManager creates the session in the ready state and starts its goroutine
func NewWorkoutManager(args NewWorkoutManagerArg) *WorkoutManager {
	if args.Logger == nil {
		panic("WorkoutManager: logger cannot be nil")
	}
	if args.Clock == nil {
		panic("WorkoutManager: clock cannot be nil")
	}

	wm := &WorkoutManager{
		session:  intervals.NewSession(args.Inputs, args.Announcer, args.Sink, args.Logger),
		clock:    args.Clock,
		logger:   args.Logger,
		cmdChan:  make(chan workoutCommand, cmdChanSize),
		doneChan: make(chan struct{}),
	}

	go_func_utils.SafeGoWG(args.Logger, &wm.wg, wm.runWorkoutLoop)

	return wm
}

// Play starts or resumes the session
func (wm *WorkoutManager) Play() {
	wm.send(workoutCommand{kind: cmdPlay})
}

// Pause pauses a playing session
func (wm *WorkoutManager) Pause() {
	wm.send(workoutCommand{kind: cmdPause})
}

// Toggle pauses a playing session and plays any other
func (wm *WorkoutManager) Toggle() {
	wm.send(workoutCommand{kind: cmdToggle})
}

// Restart resets the session from the current inputs
func (wm *WorkoutManager) Restart() {
	wm.send(workoutCommand{kind: cmdRestart})
}

// SetInput changes the field for phase. It applies through a reset unless playing.
func (wm *WorkoutManager) SetInput(phase intervals.Phase, value string) {
	wm.send(workoutCommand{kind: cmdSetInput, phase: phase, value: value})
}

// SetHalfway toggles halfway announcements
func (wm *WorkoutManager) SetHalfway(enabled bool) {
	wm.send(workoutCommand{kind: cmdSetHalfway, flag: enabled})
}

// SetHidden records whether the timer view is out of sight
func (wm *WorkoutManager) SetHidden(hidden bool) {
	wm.send(workoutCommand{kind: cmdSetHidden, flag: hidden})
}

// Shutdown stops the workout goroutine and disarms its timer.
// Safe to call multiple times - only the first call has effect
func (wm *WorkoutManager) Shutdown() {
	wm.shutdownOnce.Do(func() {
		wm.logger.Printf("WorkoutManager: Shutting down")
		close(wm.doneChan)
		wm.wg.Wait()
		wm.logger.Printf("WorkoutManager: Shutdown complete")
	})
}

func (wm *WorkoutManager) send(cmd workoutCommand) {
	select {
	case <-wm.doneChan:
		wm.logger.Printf("WorkoutManager: Dropping %s after shutdown", cmd.kind)
		return
	default:
	}
	select {
	case <-wm.doneChan:
		wm.logger.Printf("WorkoutManager: Dropping %s after shutdown", cmd.kind)
	case wm.cmdChan <- cmd:
	}
}

// apply runs one command against the session and returns the next wake-up, if any.
// Runs on the workout goroutine only.
func (wm *WorkoutManager) apply(cmd workoutCommand, now time.Time) (time.Duration, bool) {
	switch cmd.kind {
	case cmdPlay:
		return wm.session.Play(now)
	case cmdPause:
		wm.session.Pause()
		return 0, false
	case cmdToggle:
		if wm.session.Status() == intervals.StatusPlaying {
			wm.session.Pause()
			return 0, false
		}
		return wm.session.Play(now)
	case cmdRestart:
		wm.session.Reset()
		return 0, false
	case cmdSetInput:
		wm.session.SetInput(cmd.phase, cmd.value)
		return wm.session.NextWake(now)
	case cmdSetHalfway:
		wm.session.SetHalfway(cmd.flag)
		return wm.session.NextWake(now)
	case cmdSetHidden:
		return wm.session.SetHidden(cmd.flag, now)
	}
	wm.logger.Printf("WorkoutManager: Unknown command %d", cmd.kind)
	return wm.session.NextWake(now)
}

// runWorkoutLoop is the main goroutine that owns the session and its timer.
func (wm *WorkoutManager) runWorkoutLoop() {
	var timer clock.Timer
	var wake <-chan time.Time // nil while disarmed, so select never picks it

	disarm := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			wake = nil
		}
	}
	arm := func(delay time.Duration, ok bool) {
		if !ok {
			return
		}
		timer = wm.clock.NewTimer(delay)
		wake = timer.C()
	}

	for {
		select {
		case <-wm.doneChan:
			disarm()
			wm.logger.Printf("WorkoutManager: Goroutine exiting")
			return

		case cmd := <-wm.cmdChan:
			disarm()
			wm.logger.Printf("WorkoutManager: %s", cmd.kind)
			arm(wm.apply(cmd, wm.clock.Now()))

		case <-wake:
			timer = nil
			wake = nil
			arm(wm.session.Tick(wm.clock.Now()))
		}
	}
}
