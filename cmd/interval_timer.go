package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rivo/tview"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/smart-trainer/interval-timer/internal/assetcache"
	"github.com/lowaak/smart-trainer/interval-timer/internal/clock"
	"github.com/lowaak/smart-trainer/interval-timer/internal/config"
	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
	"github.com/lowaak/smart-trainer/interval-timer/internal/speech"
	"github.com/lowaak/smart-trainer/interval-timer/internal/trainer"
)

// uiLogChanSize bounds log lines waiting for the UI; a full channel drops lines from the UI only
const uiLogChanSize = 256

// installTimeout bounds how long startup waits for clips to download
const installTimeout = 20 * time.Second

// chanWriter forwards each log line, newline included, to a channel without blocking the writer
type chanWriter chan string

func (w chanWriter) Write(p []byte) (int, error) {
	select {
	case w <- string(p):
	default:
	}
	return len(p), nil
}

// closer is an announcer that holds background work
type closer interface {
	Close() error
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "interval-timer: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	cfg, err := config.Load(args, config.HomeDir())
	if err != nil {
		return err
	}

	logFile := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
	}
	defer func() { multierr.AppendInto(&err, logFile.Close()) }()

	uiLogChan := make(chan string, uiLogChanSize)
	logger := log.New(io.MultiWriter(logFile, chanWriter(uiLogChan)), "", log.Ltime|log.Lmicroseconds)
	if cfg.File != "" {
		logger.Printf("Config: loaded %s", cfg.File)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := trainer.NewInputsStore(cfg.State.File, logger)
	last, ok, loadErr := store.Load()
	if loadErr != nil {
		logger.Printf("Config: ignoring last inputs: %v", loadErr)
	}
	var lastInputs *intervals.Inputs
	if ok {
		lastInputs = &last
	}

	model := trainer.NewUIModel(logger, uiLogChan, store)
	defer model.Shutdown()

	voice, closers := newAnnouncer(ctx, cfg, logger)
	defer func() {
		for _, c := range closers {
			multierr.AppendInto(&err, c.Close())
		}
	}()

	workoutManager := trainer.NewWorkoutManager(trainer.NewWorkoutManagerArg{
		Inputs:    cfg.Inputs(lastInputs),
		Announcer: speech.Multi{model, voice},
		Sink:      model,
		Clock:     clock.Real,
		Logger:    logger,
	})
	// Deferred after the announcers so the session stops speaking before they close
	defer workoutManager.Shutdown()

	if cfg.Headless {
		// Nothing to press without the terminal UI, so headless always plays
		workoutManager.Play()
		view := trainer.NewConsoleView(model, os.Stdout, logger)
		if err := view.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	controller := trainer.NewUIController(model, workoutManager, logger)
	app := tview.NewApplication()
	view := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   trainer.NewCursesUIView(logger, app),
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})
	defer view.Shutdown()

	go func() {
		<-ctx.Done()
		model.RequestCloseApplication()
	}()

	if cfg.Autoplay {
		controller.PlayWorkout()
	}
	return view.Run()
}

// newAnnouncer builds the speaking announcer from the configuration. Without a speech program
// announcements are only logged. The returned closers must be closed once the session stopped.
func newAnnouncer(ctx context.Context, cfg *config.Config, logger *log.Logger) (speech.Announcer, []closer) {
	var voice speech.Announcer = speech.NewLog(logger)
	var closers []closer

	if cfg.Speech.Command != "" {
		command := speech.NewCommand(cfg.Speech.Command, cfg.Speech.Args, nil, logger)
		voice = command
		closers = append(closers, command)
	}

	if len(cfg.Speech.Clips) == 0 {
		return voice, closers
	}

	cache := assetcache.New(assetcache.Options{
		Fs:      afero.NewOsFs(),
		Root:    cfg.Assets.Dir,
		Name:    cfg.Assets.Name,
		Version: cfg.Assets.Version,
		Logger:  logger,
	})
	clips := speech.NewClips(speech.ClipsOptions{
		Clips:      cfg.Speech.Clips,
		Fetcher:    cache,
		Player:     cfg.Speech.Player,
		PlayerArgs: cfg.Speech.PlayerArgs,
		Fallback:   voice,
		Logger:     logger,
	})

	installCtx, cancel := context.WithTimeout(ctx, installTimeout)
	defer cancel()
	// A partial install is fine: missing clips are fetched on first use or fall back
	if err := cache.Install(installCtx, clips.URLs()); err == nil {
		if err := cache.Activate(); err != nil {
			logger.Printf("AssetCache: %v", err)
		}
	}

	// Clips goes first so its in-flight fallbacks still reach an open voice
	return clips, append([]closer{clips}, closers...)
}
