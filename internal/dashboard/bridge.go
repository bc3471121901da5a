package dashboard

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hasup/internal/monitor"
)

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards monitor events into a running program. It implements
// monitor.Reporter.
type Bridge struct {
	program Sender
}

// NewBridge creates a bridge delivering to p.
func NewBridge(p Sender) *Bridge {
	return &Bridge{program: p}
}

// Report sends e to the program. Once the program has exited Send returns
// immediately, so the loop is never blocked by a closed dashboard.
func (b *Bridge) Report(e monitor.Event) {
	b.program.Send(EventMsg(e))
}

// SessionFunc runs a monitoring session reporting to r.
type SessionFunc func(ctx context.Context, r monitor.Reporter) *monitor.Result

// RunConfig configures Run.
type RunConfig struct {
	Model Model
	// Reporter also receives every event, e.g. a file logger.
	Reporter monitor.Reporter
	// Input and Output override the terminal, mostly for tests.
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Run shows the dashboard while session runs. Quitting the dashboard cancels
// the session; Run always waits for the session to return and hands back its
// result.
func Run(ctx context.Context, cfg RunConfig, session SessionFunc) (*monitor.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := cfg.Model
	model.stop = cancel

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}
	opts = append(opts, tea.WithContext(ctx))

	p := tea.NewProgram(model, opts...)

	reporter := monitor.Reporter(NewBridge(p))
	if cfg.Reporter != nil {
		reporter = monitor.Multi(reporter, cfg.Reporter)
	}

	done := make(chan *monitor.Result, 1)
	go func() {
		res := session(ctx, reporter)
		p.Send(FinishedMsg{Result: res})
		done <- res
	}()

	_, err := p.Run()
	cancel()
	res := <-done

	if err != nil && ctx.Err() != nil {
		// The program was stopped by the canceled context, not by a failure.
		err = nil
	}
	return res, err
}
