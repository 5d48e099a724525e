package main

import (
	"os"

	"github.com/shelfwise/librarian/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
