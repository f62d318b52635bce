// Package cli wires the compose reader, the dependency graph, the
// interactive checklist, and the runner into the dstart command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nano-labs/dstart/internal/compose"
	"github.com/nano-labs/dstart/internal/depgraph"
	"github.com/nano-labs/dstart/internal/history"
	"github.com/nano-labs/dstart/internal/runner"
	"github.com/nano-labs/dstart/internal/tui"
)

// App holds the root command's flag state.
type App struct {
	Files     []string
	Binary    string
	PrintOnly bool
	Resume    bool
	NoHistory bool

	// HistoryPath overrides the default history location (fixtures/tests).
	HistoryPath string
}

// ErrAborted is returned when the user cancels the checklist session.
var ErrAborted = errors.New("aborted")

// ErrEmptySelection is returned when the user confirms with nothing checked.
var ErrEmptySelection = errors.New("no services selected")

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "dstart [-- extra compose args]",
		Short:         "Interactively pick compose services and start them with their dependencies",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # Pick services from ./docker-compose.yml and run "docker-compose up" with them
  dstart

  # Multiple compose files, print the command instead of running it
  dstart -f docker-compose.yml -f docker-compose.override.yml --print

  # Pass extra args through to the compose binary
  dstart -- --build -d`,
		Args: func(cmd *cobra.Command, args []string) error {
			// Positional args are only valid after "--"; anything else is
			// most likely a typo'd flag or a forgotten -f.
			if dash := cmd.ArgsLenAtDash(); dash > 0 || (dash < 0 && len(args) > 0) {
				return fmt.Errorf("unexpected argument %q (compose pass-through args go after --)", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, args)
		},
	}

	cmd.Flags().StringArrayVarP(&app.Files, "file", "f", []string{"docker-compose.yml"}, "Compose file (repeatable; order matters)")
	cmd.Flags().StringVar(&app.Binary, "bin", envOr("DSTART_COMPOSE_BIN", runner.DefaultBinary), "Compose binary to invoke")
	cmd.Flags().BoolVarP(&app.PrintOnly, "print", "p", false, "Print the composed command line instead of running it")
	cmd.Flags().BoolVar(&app.Resume, "resume", false, "Pre-check the services from this project's last run")
	cmd.Flags().BoolVar(&app.NoHistory, "no-history", false, "Do not read or record selection history")

	return cmd
}

// runChecklist is swapped out in tests; the real implementation needs a
// controlling terminal.
var runChecklist = tui.Run

func run(cmd *cobra.Command, app *App, extraArgs []string) error {
	services, err := compose.Load(app.Files)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return fmt.Errorf("no services declared in %v", app.Files)
	}

	graph, err := depgraph.New(services)
	if err != nil {
		return err
	}

	var preseed []string
	store, haveStore := historyStore(app)
	if app.Resume && haveStore {
		preseed, err = store.Load(context.Background(), history.ProjectKey(app.Files))
		if err != nil {
			// History is a convenience; a broken db must not block startup.
			fmt.Fprintf(cmd.ErrOrStderr(), "dstart: ignoring selection history: %v\n", err)
			preseed = nil
		}
	}

	selected, aborted, err := runChecklist(graph.Names(), graph, preseed)
	if err != nil {
		return err
	}
	if aborted {
		return ErrAborted
	}
	if len(selected) == 0 {
		return ErrEmptySelection
	}

	if haveStore {
		if err := store.Save(context.Background(), history.ProjectKey(app.Files), selected); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "dstart: could not record selection history: %v\n", err)
		}
	}

	inv := runner.Invocation{
		Binary:    app.Binary,
		Files:     app.Files,
		ExtraArgs: extraArgs,
		Services:  selected,
	}
	if app.PrintOnly {
		inv.Print(cmd.OutOrStdout())
		return nil
	}
	return inv.Run()
}

func historyStore(app *App) (history.Store, bool) {
	if app.NoHistory {
		return history.Store{}, false
	}
	path := app.HistoryPath
	if path == "" {
		p, err := history.DefaultPath()
		if err != nil {
			return history.Store{}, false
		}
		path = p
	}
	return history.New(path), true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
