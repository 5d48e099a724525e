package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfwise/librarian/internal/api"
	"github.com/shelfwise/librarian/internal/app"
	"github.com/shelfwise/librarian/internal/config"
	"github.com/shelfwise/librarian/internal/log"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Ask for a recommendation",
	Long: `With arguments, answers a single query. Without arguments, reads
queries from stdin until EOF or 'quit'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	if len(args) > 0 {
		return answer(ctx, a, strings.Join(args, " "))
	}

	fmt.Println("Librarian (type 'quit' to exit)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "quit" || query == "exit" {
			break
		}
		if err := answer(ctx, a, query); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func answer(ctx context.Context, a *app.App, query string) error {
	decision, err := a.Recommender.Recommend(ctx, query)
	if err != nil {
		return err
	}

	if decision.IsRefusal() {
		fmt.Printf("Librarian: %s\n", api.RefusalMessage(decision.Refusal))
		return nil
	}

	rec := decision.Recommendation
	fmt.Printf("Librarian: %s\n%s\n\n%s\n", rec.Title, rec.Reason, rec.Summary)
	return nil
}
