package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Select elements interactively and extract them",
	Long: `Open a URL in a visible browser with an inspection overlay.

Hover to highlight, click to select an element, drag to select every element in a
rectangle. Use the toolbar to clear, confirm or cancel. Confirming extracts every
selected element; cancelling exits without output.

Examples:
  fiberscope inspect http://localhost:3000
  fiberscope inspect http://localhost:3000 --output capture.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addPageFlags(inspectCmd)
	addExtractionFlags(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	applyExtractionFlags(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	page, cleanup, err := openPage(ctx, cmd, args[0], false)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := shots.NewStore(shots.DefaultCapacity)
	if err != nil {
		return err
	}
	registry := inspect.NewRegistry()
	sess, created, err := newSession(registry, page, store)
	if err != nil {
		return err
	}
	defer registry.Close(page.TargetID())
	if created {
		if err := page.Install(ctx); err != nil {
			return err
		}
	}
	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	control := make(chan platform.EventType, 4)
	listenCtx, cancelListen := context.WithCancel(ctx)
	defer cancelListen()
	go func() {
		err := page.Listen(listenCtx, func(ev platform.Event) {
			if ev.Type == platform.EventCancel {
				sess.Cancel()
			}
			handled, err := sess.Dispatch(listenCtx, ev)
			if err != nil {
				slog.Warn("event failed", "type", ev.Type, "error", err)
			}
			if handled {
				return
			}
			select {
			case control <- ev.Type:
			default:
				slog.Debug("dropped control event", "type", ev.Type)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("event listener stopped", "error", err)
		}
	}()

	slog.Info("inspector ready", "url", args[0])
	for {
		select {
		case <-ctx.Done():
			sess.Cancel()
			return ctx.Err()
		case t := <-control:
			switch t {
			case platform.EventCancel:
				slog.Info("inspection cancelled")
				return nil
			case platform.EventConfirm:
				ex, err := sess.Confirm(ctx)
				if err != nil {
					retry, err := confirmFailure(err)
					if retry {
						continue
					}
					return err
				}
				sess.Cancel()
				return emitExtraction(cmd, ex, store)
			}
		}
	}
}

// confirmFailure decides how the inspect loop reacts to a failed Confirm.
// Nothing selected and a pending extraction leave the session open. A
// cancel that lands during extraction ends the command like any other
// cancel.
func confirmFailure(err error) (retry bool, _ error) {
	switch {
	case errors.Is(err, inspect.ErrNoSelection), errors.Is(err, inspect.ErrExtractionInFlight):
		slog.Warn("confirm ignored", "reason", err)
		return true, nil
	case errors.Is(err, inspect.ErrCancelled):
		slog.Info("inspection cancelled")
		return false, nil
	}
	return false, err
}
