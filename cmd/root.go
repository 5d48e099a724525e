// Package cmd implements the librarian command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "librarian",
	Short: "Librarian - a guarded, retrieval-backed book recommender",
	Long: `Librarian recommends exactly one book from a small catalog for a
free-text mood or theme query, using semantic retrieval over precomputed
embeddings plus an LLM judge that may abstain.

Commands:
  serve    start the HTTP API server
  index    build the vector index from the catalog file
  ask      ask for a recommendation interactively`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(loadDotEnv)
}

// loadDotEnv loads a .env file from the working directory if present.
// Missing files are fine; real environment variables always win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}
}
