// Package chat runs the interactive mentor conversation in a terminal.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Yates-Labs/mentor/internal/generation"
	"github.com/Yates-Labs/mentor/internal/orchestrator"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Disclaimer is printed once when a session starts.
const Disclaimer = `********************************************************************************
* DISCLAIMER:                                                                  *
* This AI is a supportive college mentor, NOT a mental health professional.    *
* It cannot diagnose, treat, or cure any mental health conditions.             *
* If you are in crisis, please seek professional help immediately.             *
********************************************************************************`

const (
	Greeting          = "Hello! I'm here to listen and offer perspective from your library. How are you feeling?"
	Farewell          = "Take care of yourself. Remember to seek support if you need it. Bye."
	InterruptFarewell = "Take care! Bye."
	GeneralAdviceNote = "(Note: This advice is general. I couldn't find specific passages in your library.)"
	FailureMessage    = "Sorry, I couldn't put together a response just now. Please try again."
)

// Asker answers one question given the conversation so far.
type Asker interface {
	Ask(ctx context.Context, question string, history []generation.ConversationTurn) (orchestrator.Answer, error)
}

// Session is one interactive conversation. Memory is private to the session.
type Session struct {
	asker  Asker
	memory *orchestrator.Memory
	in     io.Reader
	out    io.Writer
	prompt bool
	logger *zap.Logger
	styles styles
}

type styles struct {
	banner  lipgloss.Style
	speaker lipgloss.Style
	answer  lipgloss.Style
	sources lipgloss.Style
	note    lipgloss.Style
	crisis  lipgloss.Style
	failure lipgloss.Style
}

func newStyles(out io.Writer) styles {
	var (
		headerColor  = lipgloss.Color("#F780FF") // Bright pink
		speakerColor = lipgloss.Color("#8BE9FD") // Cyan
		answerColor  = lipgloss.Color("#E9E9F4") // Light purple/white
		mutedColor   = lipgloss.Color("#6272A4") // Muted purple
		errorColor   = lipgloss.Color("#FF5555") // Red
	)

	r := lipgloss.NewRenderer(out)
	return styles{
		banner:  r.NewStyle().Foreground(headerColor).Bold(true),
		speaker: r.NewStyle().Foreground(speakerColor).Bold(true),
		answer:  r.NewStyle().Foreground(answerColor),
		sources: r.NewStyle().Foreground(mutedColor).Italic(true),
		note:    r.NewStyle().Foreground(mutedColor).Italic(true),
		crisis:  r.NewStyle().Foreground(errorColor).Bold(true),
		failure: r.NewStyle().Foreground(errorColor),
	}
}

// Option configures a Session.
type Option func(*Session)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Session) {
		s.in = in
		s.out = out
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a session keeping the last historySize turns.
func NewSession(asker Asker, historySize int, opts ...Option) *Session {
	s := &Session{
		asker:  asker,
		memory: orchestrator.NewMemory(historySize),
		in:     os.Stdin,
		out:    os.Stdout,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if f, ok := s.in.(*os.File); ok {
		s.prompt = term.IsTerminal(int(f.Fd()))
	}
	s.styles = newStyles(s.out)
	return s
}

// Memory returns the session's conversation memory.
func (s *Session) Memory() *orchestrator.Memory {
	return s.memory
}

// Run prints the disclaimer and greeting, then answers one line at a time
// until the user quits, input ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.styles.banner.Render(Disclaimer))
	fmt.Fprintln(s.out)
	s.say(s.styles.answer.Render(Greeting))

	lines := make(chan string)
	readErr := make(chan error, 1)
	go readLines(ctx, s.in, lines, readErr)

	for {
		if s.prompt {
			fmt.Fprint(s.out, "\n"+s.styles.speaker.Render("Student:")+" ")
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			s.say(s.styles.answer.Render(InterruptFarewell))
			return nil

		case line, ok := <-lines:
			if !ok {
				s.say(s.styles.answer.Render(Farewell))
				return <-readErr
			}

			question := strings.TrimSpace(line)
			if question == "" {
				continue
			}
			if isQuit(question) {
				s.say(s.styles.answer.Render(Farewell))
				return nil
			}

			if err := s.handle(ctx, question); err != nil {
				fmt.Fprintln(s.out)
				s.say(s.styles.answer.Render(InterruptFarewell))
				return nil
			}
		}
	}
}

// handle answers one question. It returns an error only when ctx was
// cancelled mid-answer; other failures are reported to the user.
func (s *Session) handle(ctx context.Context, question string) error {
	answer, err := s.asker.Ask(ctx, question, s.memory.Turns())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Error("failed to answer question", zap.Error(err))
		fmt.Fprintln(s.out)
		s.say(s.styles.failure.Render(FailureMessage))
		return nil
	}

	fmt.Fprintln(s.out)
	if answer.Intercepted {
		s.say(s.styles.crisis.Render(answer.Text))
		return nil
	}

	s.say(s.styles.answer.Render(strings.TrimSpace(answer.Text)))
	s.memory.Add(question, answer.Text)

	if len(answer.Sources) > 0 {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, s.styles.sources.Render("Sources:"))
		for _, id := range answer.Sources {
			fmt.Fprintln(s.out, s.styles.sources.Render(" - "+id))
		}
	}
	if !answer.Relevant {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, s.styles.note.Render(GeneralAdviceNote))
	}
	return nil
}

func (s *Session) say(text string) {
	fmt.Fprintln(s.out, s.styles.speaker.Render("Mentor:")+" "+text)
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// readLines sends each input line until EOF, then closes lines.
func readLines(ctx context.Context, in io.Reader, lines chan<- string, errc chan<- error) {
	defer close(lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			errc <- nil
			return
		}
	}
	errc <- scanner.Err()
}
