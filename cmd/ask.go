package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/mentor/internal/logging"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var showSources bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the mentor a single question",
	Long: `Ask one question without conversation history and print the answer.

Examples:
  mentor ask "How do I stop procrastinating before exams?"
  mentor ask I feel overwhelmed by my course load --sources`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&showSources, "sources", true, "Print the IDs of the chunks used as context")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	audit, err := logging.OpenAudit(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer audit.Close()

	pipeline, store, err := buildPipeline(ctx, cfg, logger, audit)
	if err != nil {
		return err
	}
	defer store.Close()

	// Styling
	var (
		headerColor   = lipgloss.Color("#F780FF") // Bright pink
		questionColor = lipgloss.Color("#8BE9FD") // Cyan
		answerColor   = lipgloss.Color("#E9E9F4") // Light purple/white
		contextColor  = lipgloss.Color("#6272A4") // Muted purple
		crisisColor   = lipgloss.Color("#FF5555") // Red
	)

	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true)

	questionStyle := lipgloss.NewStyle().
		Foreground(questionColor).
		Italic(true)

	answerStyle := lipgloss.NewStyle().
		Foreground(answerColor)

	contextStyle := lipgloss.NewStyle().
		Foreground(contextColor).
		Italic(true)

	crisisStyle := lipgloss.NewStyle().
		Foreground(crisisColor).
		Bold(true)

	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	answer, err := pipeline.Ask(ctx, question, nil)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	fmt.Println(headerStyle.Render("Answer:"))
	fmt.Println()
	if answer.Intercepted {
		fmt.Println(crisisStyle.Render(answer.Text))
		return nil
	}
	fmt.Println(answerStyle.Render(strings.TrimSpace(answer.Text)))
	fmt.Println()

	if showSources && len(answer.Sources) > 0 {
		fmt.Println(contextStyle.Render("Sources:"))
		for _, id := range answer.Sources {
			fmt.Println(contextStyle.Render(" - " + id))
		}
	}
	if !answer.Relevant {
		fmt.Println(contextStyle.Render("(Note: This advice is general. I couldn't find specific passages in your library.)"))
	}
	return nil
}
