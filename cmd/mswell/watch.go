package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mswell/internal/logging"
	"mswell/internal/watcher"

	"github.com/spf13/cobra"
)

var (
	watchCmd = &cobra.Command{
		Use:   "watch DECK",
		Short: "Re-import a deck whenever it changes",
		Long: `Watch a deck file and re-run the import each time it is saved. Import
errors are reported and watching continues. With --save every successful
import is stored as a new checkpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
	watchSave     bool
	watchDebounce time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchSave, "save", false, "store each successful import as a checkpoint")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait this long after the last change before importing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	reimport := func(ctx context.Context) {
		set, err := state.svc.ImportDeck(ctx, path)
		if err != nil {
			fmt.Fprintf(out, "%s  import failed: %v\n", time.Now().Format(time.TimeOnly), err)
			return
		}
		msg := fmt.Sprintf("%s  well %s: %d segments", time.Now().Format(time.TimeOnly), set.Well(), set.Size())
		if watchSave {
			id, err := state.svc.Checkpoint(ctx, set)
			if err != nil {
				fmt.Fprintf(out, "%s, checkpoint failed: %v\n", msg, err)
				return
			}
			msg += ", checkpoint " + id.String()
		}
		fmt.Fprintln(out, msg)
	}

	ctx := cmd.Context()
	reimport(ctx)

	err := watcher.New(path, reimport).
		WithDebounce(watchDebounce).
		WithLogger(state.logger.With(logging.String("component", "watcher"))).
		Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
