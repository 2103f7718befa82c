package dialog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/smazurov/progressbridge/internal/logging"
	"github.com/smazurov/progressbridge/internal/protocol"
)

// Options configures a dialog run.
type Options struct {
	In  io.Reader // commands from the bridge
	Out io.Writer // tokens to the bridge

	// TTY is where the progress display is drawn. Nil runs headless.
	TTY *os.File

	// CancelAfter makes a headless dialog cancel after that many progress
	// updates. Zero never cancels.
	CancelAfter int

	Title  string
	Logger logging.Logger
}

// OpenTTY opens the controlling terminal, or returns an error if there is
// none.
func OpenTTY() (*os.File, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if !term.IsTerminal(int(f.Fd())) {
		f.Close()
		return nil, fmt.Errorf("/dev/tty is not a terminal")
	}
	return f, nil
}

// Run connects to the bridge and serves commands until the input ends, the
// user cancels, or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	tokens := &tokenWriter{w: opts.Out}
	if err := tokens.connect(); err != nil {
		return fmt.Errorf("send connect token: %w", err)
	}

	if opts.TTY == nil {
		return runHeadless(ctx, opts, tokens)
	}
	return runInteractive(ctx, opts, tokens)
}

// readCommands parses lines from r and calls fn for each valid command.
// Malformed lines are logged and skipped.
func readCommands(r io.Reader, logger logging.Logger, fn func(protocol.Command)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cmd, err := protocol.ParseCommand(line)
		if err != nil {
			logger.Warn("Ignoring malformed command", "line", line, "error", err)
			continue
		}
		fn(cmd)
	}
	return scanner.Err()
}

func runHeadless(ctx context.Context, opts Options, tokens *tokenWriter) error {
	cmds := make(chan protocol.Command)
	readErr := make(chan error, 1)
	go func() {
		readErr <- readCommands(opts.In, opts.Logger, func(cmd protocol.Command) {
			select {
			case cmds <- cmd:
			case <-ctx.Done():
			}
		})
		close(cmds)
	}()

	var state State
	for {
		select {
		case <-ctx.Done():
			opts.Logger.Debug("Dialog interrupted", "updates", state.Updates)
			return nil
		case cmd, ok := <-cmds:
			if !ok {
				opts.Logger.Debug("Command stream ended", "updates", state.Updates)
				return <-readErr
			}
			state.Apply(cmd)
			opts.Logger.Debug("Applied command", "target", cmd.Target, "operation", state.Operation, "label", state.Label, "width", state.Width)

			if opts.CancelAfter > 0 && state.Updates >= opts.CancelAfter {
				tokens.diagnostic("Cancel after %d updates", state.Updates)
				return tokens.close()
			}
		}
	}
}

func runInteractive(ctx context.Context, opts Options, tokens *tokenWriter) error {
	m := newModel(opts.Title, tokens)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(opts.TTY),
		tea.WithOutput(opts.TTY),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		err := readCommands(opts.In, opts.Logger, func(cmd protocol.Command) {
			p.Send(commandMsg(cmd))
		})
		if err != nil {
			opts.Logger.Warn("Failed to read commands", "error", err)
		}
		p.Send(inputClosedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return nil
		}
		return err
	}
	return nil
}
