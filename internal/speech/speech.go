package speech

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/lowaak/smart-trainer/interval-timer/internal/go_func_utils"
)

// TextPlaceholder in command arguments is replaced with the announced text
const TextPlaceholder = "{text}"

// Announcer speaks a cue without waiting for it to finish
type Announcer interface {
	Announce(text string)
}

// Runner runs an external program to completion, feeding stdin when it is not nil
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin []byte) error
}

// ExecRunner runs programs with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string, stdin []byte) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// asyncRunner runs commands in the background and tracks them for Close
type asyncRunner struct {
	runner Runner
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newAsyncRunner(runner Runner, logger *log.Logger) *asyncRunner {
	if runner == nil {
		runner = ExecRunner{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &asyncRunner{runner: runner, logger: logger, ctx: ctx, cancel: cancel}
}

func (a *asyncRunner) goRun(fn func(ctx context.Context)) {
	go_func_utils.SafeGoWG(a.logger, &a.wg, func() { fn(a.ctx) })
}

func (a *asyncRunner) close() {
	a.cancel()
	a.wg.Wait()
}

// Command speaks through a text-to-speech program such as espeak or say.
type Command struct {
	name  string
	args  []string
	async *asyncRunner
}

// NewCommand creates a Command announcer. Arguments may contain TextPlaceholder; without it the
// text is passed as the last argument. runner defaults to ExecRunner.
func NewCommand(name string, args []string, runner Runner, logger *log.Logger) *Command {
	if logger == nil {
		panic("Command: logger cannot be nil")
	}
	if name == "" {
		panic("Command: program name cannot be empty")
	}
	return &Command{name: name, args: args, async: newAsyncRunner(runner, logger)}
}

// Announce starts the program and returns immediately. Failures are only logged.
func (c *Command) Announce(text string) {
	argv := expandArgs(c.args, text)
	c.async.goRun(func(ctx context.Context) {
		if err := c.async.runner.Run(ctx, c.name, argv, nil); err != nil && ctx.Err() == nil {
			c.async.logger.Printf("Speech: %q failed: %v", text, err)
		}
	})
}

// Close stops running programs and waits for them
func (c *Command) Close() error {
	c.async.close()
	return nil
}

func expandArgs(args []string, text string) []string {
	out := make([]string, 0, len(args)+1)
	substituted := false
	for _, arg := range args {
		if strings.Contains(arg, TextPlaceholder) {
			arg = strings.ReplaceAll(arg, TextPlaceholder, text)
			substituted = true
		}
		out = append(out, arg)
	}
	if !substituted {
		out = append(out, text)
	}
	return out
}

// Log writes announcements to a logger
type Log struct {
	logger *log.Logger
}

// NewLog creates a Log announcer
func NewLog(logger *log.Logger) *Log {
	if logger == nil {
		panic("Log: logger cannot be nil")
	}
	return &Log{logger: logger}
}

func (l *Log) Announce(text string) {
	l.logger.Printf("Announce: %s", text)
}

// Multi announces through every announcer in order
type Multi []Announcer

func (m Multi) Announce(text string) {
	for _, a := range m {
		a.Announce(text)
	}
}

// Func adapts a function to Announcer
type Func func(text string)

func (f Func) Announce(text string) {
	f(text)
}
