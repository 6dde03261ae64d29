// Package chat runs the terminal read-eval-print loop.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/petasbytes/medbot/internal/telemetry"
	"github.com/petasbytes/medbot/internal/windowing"
	"github.com/petasbytes/medbot/internal/workflow"
	"github.com/petasbytes/medbot/memory"
)

const (
	Prompt      = "You: "
	ExitCommand = "exit"
	GoodbyeLine = "Exiting the chatbot. Goodbye!"
)

// TooLongLine is printed when a message cannot fit the request token budget.
const TooLongLine = "That message is too long to send; please shorten it (or raise token_budget)."

// Separator is printed after every turn.
var Separator = strings.Repeat("-", 68)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Stepper runs one workflow turn over the conversation.
type Stepper interface {
	Step(ctx context.Context, conv *memory.Conversation) (workflow.Result, error)
}

// Deps holds everything a Session touches outside its own state.
type Deps struct {
	Stepper Stepper
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	IsTTY   func() bool
	Banner  string
	Logger  *slog.Logger
}

type Session struct {
	deps   Deps
	conv   *memory.Conversation
	tty    bool
	render func(string) string
}

func NewSession(deps Deps) *Session {
	if deps.IsTTY == nil {
		deps.IsTTY = func() bool { return false }
	}
	if deps.Stderr == nil {
		deps.Stderr = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{deps: deps, conv: memory.NewConversation(), tty: deps.IsTTY()}
	s.render = s.plain
	if s.tty {
		if r, err := glamour.NewTermRenderer(glamour.WithStylePath("dark"), glamour.WithWordWrap(100)); err == nil {
			s.render = func(text string) string {
				out, err := r.Render(text)
				if err != nil {
					return text
				}
				return strings.Trim(out, "\n")
			}
		} else {
			deps.Logger.Debug("markdown rendering disabled", "err", err)
		}
	}
	return s
}

// Conversation returns the session's log.
func (s *Session) Conversation() *memory.Conversation { return s.conv }

// Run prints the banner and serves turns until "exit", end of input or an
// error from a turn.
func (s *Session) Run(ctx context.Context) error {
	out := s.deps.Stdout
	if s.deps.Banner != "" {
		fmt.Fprintln(out, s.deps.Banner)
	}

	done := make(chan struct{})
	defer close(done)
	lines := s.readLines(done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, s.style(promptStyle, Prompt))

		var in lineResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in = <-lines:
		}
		if in.err != nil && !errors.Is(in.err, io.EOF) {
			return fmt.Errorf("reading input: %w", in.err)
		}
		eof := in.err != nil

		input := strings.TrimSpace(in.line)
		if strings.ToLower(input) == ExitCommand {
			fmt.Fprintln(out, GoodbyeLine)
			return nil
		}
		if input == "" {
			if eof {
				fmt.Fprintln(out)
				return nil
			}
			continue
		}

		if err := s.turn(ctx, input); err != nil {
			return err
		}
		if eof {
			return nil
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLines feeds stdin to the loop so a blocked read never delays
// cancellation. The last result carries the read error (io.EOF included).
func (s *Session) readLines(done <-chan struct{}) <-chan lineResult {
	ch := make(chan lineResult)
	go func() {
		reader := bufio.NewReader(s.deps.Stdin)
		for {
			line, err := reader.ReadString('\n')
			select {
			case ch <- lineResult{line: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

func (s *Session) turn(ctx context.Context, input string) error {
	ctx = telemetry.WithTurnID(ctx, telemetry.NewTurnID())
	telemetry.EmitLocalFeatures(ctx, input)

	s.conv.Append(memory.UserMessage(input))
	res, err := s.deps.Stepper.Step(ctx, s.conv)
	out := s.deps.Stdout
	if errors.Is(err, windowing.ErrWindowEmpty) {
		s.deps.Logger.Warn("message over token budget", "runes", utf8.RuneCountInString(input))
		fmt.Fprintln(out, TooLongLine)
		fmt.Fprintln(out, s.style(dimStyle, Separator))
		return nil
	}
	if err != nil {
		return fmt.Errorf("turn failed: %w", err)
	}

	switch {
	case res.Replied:
		fmt.Fprintf(out, "%s %s\n", s.style(agentStyle, res.Reply.Name+":"), s.render(res.Reply.Text))
	case !res.Finished:
		fmt.Fprintf(out, "No message content available in response from %s.\n", res.Route)
	}
	fmt.Fprintln(out, s.style(dimStyle, Separator))
	s.deps.Logger.Debug("turn complete", "route", res.Route, "log_len", s.conv.Len())
	return nil
}

func (s *Session) style(st lipgloss.Style, text string) string {
	if !s.tty {
		return text
	}
	return st.Render(text)
}

func (s *Session) plain(text string) string { return text }
