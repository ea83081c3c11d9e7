package trainer

import (
	"log"

	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

// WorkoutControl is the part of WorkoutManager the controller drives
type WorkoutControl interface {
	Play()
	Pause()
	Toggle()
	Restart()
	SetInput(phase intervals.Phase, value string)
	SetHalfway(enabled bool)
	SetHidden(hidden bool)
	Shutdown()
}

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model          *UIModel
	workoutManager WorkoutControl
	logger         *log.Logger
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, workoutManager WorkoutControl, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if workoutManager == nil {
		panic("UIController: workoutManager cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	c := &UIController{
		model:          model,
		workoutManager: workoutManager,
		logger:         logger,
	}
	// The timer page is only out of sight when another mode is shown
	workoutManager.SetHidden(model.GetUIState().Mode != UIModeTimer)
	return c
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// OnModeChange handles when the user requests a mode change. Leaving the timer page hides
// the timer, so the session only wakes for announcements until it is shown again.
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("Switching to %s mode", info.DisplayName)
	}
	if c.model.GetUIState().Mode != mode {
		c.workoutManager.SetHidden(mode != UIModeTimer)
	}
	c.model.SetMode(mode)
}

// OnInputChanged handles an edit of a duration field
func (c *UIController) OnInputChanged(phase intervals.Phase, value string) {
	if c.model.GetSessionState().Inputs.Get(phase) == value {
		return
	}
	c.workoutManager.SetInput(phase, value)
}

// OnHalfwayChanged handles the halfway checkbox
func (c *UIController) OnHalfwayChanged(enabled bool) {
	c.workoutManager.SetHalfway(enabled)
}

// PlayWorkout starts or resumes the session
func (c *UIController) PlayWorkout() {
	c.workoutManager.Play()
}

// PauseWorkout pauses the running session
func (c *UIController) PauseWorkout() {
	c.workoutManager.Pause()
}

// ToggleWorkout plays, pauses or resumes based on the session state
func (c *UIController) ToggleWorkout() {
	c.workoutManager.Toggle()
}

// RestartWorkout resets the session from the current inputs
func (c *UIController) RestartWorkout() {
	c.workoutManager.Restart()
}

// Shutdown stops the workout manager
func (c *UIController) Shutdown() {
	c.workoutManager.Shutdown()
}
