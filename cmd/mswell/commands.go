package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"mswell/internal/codec"
	"mswell/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	importCmd = &cobra.Command{
		Use:   "import DECK",
		Short: "Read a deck, finalize the segment tree and print it",
		Long: `Read a segment deck, convert incremental lengths and depths to absolute
values, attach devices and print the resulting tree.

With --tree-format the input is a tree previously written by
'mswell restore' or 'mswell import --format json|yaml' instead of a deck.

Examples:
  mswell import prod1.yaml
  mswell import prod1.yaml --save
  mswell import prod1.yaml --format json -o prod1.json
  mswell import prod1.json --tree-format json --save`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	importSave       bool
	importFormat     string
	importOutput     string
	importTreeFormat string

	showCmd = &cobra.Command{
		Use:   "show CHECKPOINT|WELL",
		Short: "Print a stored checkpoint",
		Long: `Print a stored checkpoint. The argument is either a checkpoint ID or a
well name, in which case the newest checkpoint of that well is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	showFormat string

	listCmd = &cobra.Command{
		Use:   "list [WELL]",
		Short: "List stored checkpoints, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	}

	restoreCmd = &cobra.Command{
		Use:   "restore CHECKPOINT",
		Short: "Restore a checkpoint and write it as a re-importable tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}
	restoreFormat string
	restoreOutput string

	deleteCmd = &cobra.Command{
		Use:   "delete CHECKPOINT",
		Short: "Delete a stored checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
)

func init() {
	importCmd.Flags().BoolVar(&importSave, "save", false, "store the finalized well as a checkpoint")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "table", fmt.Sprintf("output format %v", codec.Formats()))
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "write output to a file instead of stdout")
	importCmd.Flags().StringVar(&importTreeFormat, "tree-format", "", "read an exported tree (json or yaml) instead of a deck")

	showCmd.Flags().StringVarP(&showFormat, "format", "f", "table", fmt.Sprintf("output format %v", codec.Formats()))

	restoreCmd.Flags().StringVarP(&restoreFormat, "format", "f", "yaml", "tree format (json or yaml)")
	restoreCmd.Flags().StringVarP(&restoreOutput, "output", "o", "", "write the tree to a file instead of stdout")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		set *domain.SegmentSet
		err error
	)
	if importTreeFormat != "" {
		f, openErr := os.Open(args[0])
		if openErr != nil {
			return fmt.Errorf("open tree: %w", openErr)
		}
		defer f.Close()
		set, err = state.svc.ImportTree(ctx, f, importTreeFormat)
	} else {
		set, err = state.svc.ImportDeck(ctx, args[0])
	}
	if err != nil {
		return err
	}

	if importSave {
		id, err := state.svc.Checkpoint(ctx, set)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved checkpoint %s for well %s\n", id, set.Well())
	}

	return writeOutput(cmd, importOutput, func(w io.Writer) error {
		return state.svc.Export(set, importFormat, w)
	})
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		set *domain.SegmentSet
		err error
	)
	if id, parseErr := uuid.Parse(args[0]); parseErr == nil {
		set, err = state.svc.Restore(ctx, id)
	} else {
		set, err = state.svc.RestoreLatest(ctx, args[0])
	}
	if err != nil {
		return err
	}
	return state.svc.Export(set, showFormat, cmd.OutOrStdout())
}

func runList(cmd *cobra.Command, args []string) error {
	well := ""
	if len(args) == 1 {
		well = args[0]
	}
	infos, err := state.svc.List(cmd.Context(), well)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No checkpoints found")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CHECKPOINT", "WELL", "SEGMENTS", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				s = s.Bold(true)
			}
			return s
		})
	for _, info := range infos {
		t.Row(info.ID, info.Well, strconv.Itoa(info.SegmentCount), info.CreatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid checkpoint id %q: %w", args[0], err)
	}
	if _, err := codec.ImporterFor(restoreFormat); err != nil {
		return err
	}

	set, err := state.svc.Restore(cmd.Context(), id)
	if err != nil {
		return err
	}
	return writeOutput(cmd, restoreOutput, func(w io.Writer) error {
		return state.svc.Export(set, restoreFormat, w)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid checkpoint id %q: %w", args[0], err)
	}
	if err := state.svc.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted checkpoint %s\n", id)
	return nil
}

// writeOutput runs write against stdout or, when path is set, a new file
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
