package trainer

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/lowaak/smart-trainer/interval-timer/internal/intervals"
)

// ConsoleView renders a session without a terminal UI: one progress bar over the whole
// session, decorated with the running phase and the last announcement.
type ConsoleView struct {
	model  *UIModel
	out    io.Writer
	logger *log.Logger

	mu       sync.Mutex
	phase    string
	lastCall string
}

// NewConsoleView creates a ConsoleView writing to out
func NewConsoleView(model *UIModel, out io.Writer, logger *log.Logger) *ConsoleView {
	if model == nil {
		panic("ConsoleView: model cannot be nil")
	}
	if out == nil {
		panic("ConsoleView: out cannot be nil")
	}
	if logger == nil {
		panic("ConsoleView: logger cannot be nil")
	}
	return &ConsoleView{model: model, out: out, logger: logger}
}

// Run renders snapshots until a session that was playing completes, or ctx is done
func (v *ConsoleView) Run(ctx context.Context) error {
	sessionChan := make(chan intervals.Snapshot, 8)
	unregister := v.model.ListenToSessionState(sessionChan)
	defer unregister()

	unregisterAnnouncements := v.model.ListenToAnnouncements(func(text string) {
		v.mu.Lock()
		v.lastCall = text
		v.mu.Unlock()
	})
	defer unregisterAnnouncements()

	total := v.model.GetSessionState().Total
	if total <= 0 {
		fmt.Fprintln(v.out, "Nothing to play")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p := mpb.NewWithContext(ctx, mpb.WithOutput(v.out), mpb.WithWidth(48))
	bar, err := p.Add(int64(total),
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟").Build(),
		mpb.PrependDecorators(
			decor.Any(v.phaseDecor, decor.WC{W: 10, C: decor.DindentRight}),
			decor.Any(elapsedDecor(total), decor.WC{W: 12}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Any(v.lastCallDecor), "done"),
		),
	)
	if err != nil {
		// The context ended while the container was starting
		p.Wait()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("console view: %w", err)
	}

	played := false
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case snapshot := <-sessionChan:
			v.mu.Lock()
			v.phase = GetPhaseDisplayInfo(snapshot.Phase).DisplayName
			v.mu.Unlock()

			switch snapshot.Status {
			case intervals.StatusPlaying:
				played = true
				bar.SetCurrent(int64(snapshot.Elapsed))
			case intervals.StatusReady:
				if played {
					v.logger.Printf("ConsoleView: Session complete")
					break loop
				}
			}
		}
	}

	if err != nil {
		bar.Abort(false)
	} else {
		// The completing tick resets to ready, so the last playing snapshot is one short
		bar.SetCurrent(int64(total))
	}
	p.Wait()
	return err
}

func (v *ConsoleView) phaseDecor(decor.Statistics) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

func (v *ConsoleView) lastCallDecor(decor.Statistics) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastCall
}

func elapsedDecor(total int) decor.DecorFunc {
	totalText := intervals.FormatSeconds(total)
	return func(s decor.Statistics) string {
		return fmt.Sprintf("%s/%s", intervals.FormatSeconds(int(s.Current)), totalText)
	}
}
