package main

import (
	"fmt"
	"io"
	"os"

	"agenttrace/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printHints(os.Stderr, err)
		os.Exit(1)
	}
}

// printHints writes the follow-up hints attached to a coded error.
func printHints(w io.Writer, err error) {
	for _, h := range errors.GetHints(errors.CodeOf(err)) {
		if h.Command != "" {
			fmt.Fprintf(w, "  hint: %s (%s)\n", h.Description, h.Command)
			continue
		}
		fmt.Fprintf(w, "  hint: %s\n", h.Description)
	}
}
