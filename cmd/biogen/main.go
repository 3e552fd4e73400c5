// Command biogen generates a LinkedIn bio from the terminal.
package main

import (
	"errors"
	"os"

	"github.com/ashureev/biogen/internal/tui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, tui.ErrInterrupted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
