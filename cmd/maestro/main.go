package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"maestro/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			printFailure(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// printFailure writes the error and, when one applies, the advisory
// line telling the user what to do next.
func printFailure(w io.Writer, err error) {
	fmt.Fprintln(w, err)
	if hint := services.UserHint(err); hint != "" {
		fmt.Fprintln(w, hint)
	}
}
