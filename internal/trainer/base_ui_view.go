package trainer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/interval-timer/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

// BaseUIView contains the base logic shared by all UI implementations
type BaseUIView struct {
	uiViewImpl   UIViewImpl
	uiModel      *UIModel
	uiController *UIController
	context      context.Context
	cancelFunc   context.CancelFunc
	waitGroup    sync.WaitGroup
	logger       *log.Logger
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl   UIViewImpl
	UIModel      *UIModel
	UIController *UIController
	Logger       *log.Logger
}

// NewBaseUIView creates a new BaseUIView with the given implementation
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.UIModel == nil {
		panic("BaseUIView: UIModel cannot be nil")
	}
	if args.UIController == nil {
		panic("BaseUIView: UIController cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl:   args.UIViewImpl,
		uiModel:      args.UIModel,
		uiController: args.UIController,
		context:      ctx,
		cancelFunc:   cancel,
		logger:       args.Logger,
	}

	// Initialize framework-specific widgets
	args.UIViewImpl.Initialize(args.UIController)

	// Set up keyboard handlers
	args.UIViewImpl.SetupKeyboardHandlers(args.UIController)

	// Set initial mode from model
	args.UIViewImpl.SetMode(args.UIModel.GetUIState().Mode)

	// Set up periodic resize check and initial display
	go_func_utils.SafeGoWG(base.logger, &base.waitGroup, base.monitorLogResize)
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

// listenAndDraw runs apply for every value received on ch until ctx is done, redrawing after each
func listenAndDraw[T any](base *BaseUIView, ch <-chan T, unregister func(), apply func(T)) {
	go_func_utils.SafeGoWG(base.logger, &base.waitGroup, func() {
		defer unregister()
		for {
			select {
			case <-base.context.Done():
				return
			case value, ok := <-ch:
				if !ok {
					return
				}
				apply(value)
				base.draw()
			}
		}
	})
}

func (base *BaseUIView) setupEventListeners() {
	// New log lines refresh the tail, and the history page while it is shown
	logChan := make(chan string, 1)
	listenAndDraw(base, logChan, base.uiModel.ListenToLog(logChan), func(string) {
		base.updateLogDisplay()
		if base.uiViewImpl.GetCurrentMode() == UIModeLog {
			base.uiViewImpl.SetLogHistory(base.uiModel.GetLogTail(maxLogLines))
		}
	})

	// Session snapshots drive the timer page
	sessionChan := make(chan intervals.Snapshot, 1)
	listenAndDraw(base, sessionChan, base.uiModel.ListenToSessionState(sessionChan), base.uiViewImpl.UpdateSessionState)

	// Announcements arrive on the workout goroutine; hand them over without blocking it
	announcementChan := make(chan string, 4)
	unregisterAnnouncements := base.uiModel.ListenToAnnouncements(func(text string) {
		select {
		case announcementChan <- text:
		default:
		}
	})
	listenAndDraw(base, announcementChan, unregisterAnnouncements, base.uiViewImpl.UpdateAnnouncement)

	uiStateChan := make(chan UIState, 1)
	listenAndDraw(base, uiStateChan, base.uiModel.ListenToUIState(uiStateChan), func(state UIState) {
		base.uiViewImpl.SetMode(state.Mode)
		if state.Mode == UIModeLog {
			base.uiViewImpl.SetLogHistory(base.uiModel.GetLogTail(maxLogLines))
		}
	})

	// Listen to close application event from model
	closeChan := make(chan struct{}, 1)
	closeUnregister := base.uiModel.ListenToCloseApplication(closeChan)
	go_func_utils.SafeGoWG(base.logger, &base.waitGroup, func() {
		defer closeUnregister()
		select {
		case <-base.context.Done():
			return
		case _, ok := <-closeChan:
			if !ok {
				return
			}
			base.uiViewImpl.Stop()
		}
	})
}

func (base *BaseUIView) draw() {
	if err := base.uiViewImpl.Draw(); err != nil {
		base.logger.Printf("BaseUIView: Error drawing: %v", err)
	}
}

func (base *BaseUIView) updateLogDisplay() {
	// Get the visible height of the log view
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}

	base.uiViewImpl.ClearLogView()
	for _, line := range base.uiModel.GetLogTail(height) {
		if err := base.uiViewImpl.WriteLogLine(line); err != nil {
			base.logger.Printf("BaseUIView: Error writing to log view: %v", err)
		}
	}
}

func (base *BaseUIView) monitorLogResize() {
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
				base.draw()
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Println("BaseUIView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	base.logger.Println("BaseUIView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseUIView) Run() error {
	return base.uiViewImpl.Run()
}
