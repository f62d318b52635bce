package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nano-labs/dstart/internal/cli"
	"github.com/nano-labs/dstart/internal/runner"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		// The compose process already wrote its own diagnostics; just
		// mirror its exit code.
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "dstart: %v\n", err)
		os.Exit(1)
	}
}
