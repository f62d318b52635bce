// Package runner composes and executes the docker-compose invocation for a
// confirmed service selection.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

// DefaultBinary is the compose binary used when the caller does not
// override it.
const DefaultBinary = "docker-compose"

// Invocation is one fully-specified compose "up" command.
type Invocation struct {
	Binary    string   // compose executable; DefaultBinary when empty
	Files     []string // one -f flag per file, in order
	ExtraArgs []string // pass-through args, placed before "up"
	Services  []string // dependency-closed selection, in display order
}

// Args returns the full argument vector, binary included.
func (inv Invocation) Args() []string {
	bin := inv.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	args := []string{bin}
	for _, f := range inv.Files {
		args = append(args, "-f", f)
	}
	args = append(args, inv.ExtraArgs...)
	args = append(args, "up")
	args = append(args, inv.Services...)
	return args
}

// String renders the command line the way Print and error messages show it.
func (inv Invocation) String() string {
	return strings.Join(inv.Args(), " ")
}

// Print writes the composed command line verbatim, for --print mode.
func (inv Invocation) Print(w io.Writer) {
	fmt.Fprintln(w, inv.String())
}

// ExitError carries the child's exit code so the CLI can propagate it as
// its own.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("compose exited with status %d", e.Code)
}

// Run spawns the invocation with inherited stdio and blocks until it exits.
// SIGINT and SIGTERM are forwarded to the child for the whole wait; dstart
// itself only exits once the child does. A non-zero child exit comes back
// as *ExitError.
func (inv Invocation) Run() error {
	args := inv.Args()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", args[0], err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	for {
		select {
		case sig := <-signals:
			// compose handles the signal itself (graceful stop); keep
			// waiting for it to finish.
			_ = cmd.Process.Signal(sig)
		case err := <-done:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &ExitError{Code: exitErr.ExitCode()}
			}
			return err
		}
	}
}
