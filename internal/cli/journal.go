package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arterning/style-mirror/internal/model"
)

// NewJournalCommand creates the journal command group.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Browse committed outfits and occasions",
	}
	cmd.AddCommand(
		newJournalListCommand(rootOpts),
		newJournalShowCommand(rootOpts),
	)
	return cmd
}

func newJournalListCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List journal entries, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, done, err := rootOpts.openEngine(cmd)
			if err != nil {
				return err
			}
			defer done()

			out := rootOpts.formatter(cmd)
			seq, err := eng.Journal().ListSortedByRecency(commandContext(cmd))
			if err != nil {
				return fail(out, "failed to read journal", err)
			}

			entries := []model.JournalEntry{}
			for e := range seq {
				if limit > 0 && len(entries) == limit {
					break
				}
				entries = append(entries, e)
			}

			lines := make([]string, 0, len(entries)+1)
			for _, e := range entries {
				lines = append(lines, formatEntry(e))
			}
			if len(entries) == 0 {
				lines = append(lines, "Journal is empty.")
			}
			return out.Lines(entries, lines)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries (0 = all)")
	return cmd
}

func newJournalShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <entry-id>",
		Short:         "Show one journal entry with its placements",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, done, err := rootOpts.openEngine(cmd)
			if err != nil {
				return err
			}
			defer done()

			out := rootOpts.formatter(cmd)
			entry, err := eng.Journal().Get(commandContext(cmd), args[0])
			if err != nil {
				return fail(out, "show failed", err)
			}

			lines := []string{formatEntry(entry)}
			if entry.Background != "" {
				lines = append(lines, "  background: "+entry.Background)
			}
			if entry.Preview != nil {
				lines = append(lines, "  preview: "+*entry.Preview)
			}
			for _, r := range entry.Items {
				lines = append(lines, "  "+formatRecord(r))
			}
			return out.Lines(entry, lines)
		},
	}
}

func formatEntry(e model.JournalEntry) string {
	return fmt.Sprintf("%s  %-8s  %s  %d item(s)", e.ID, e.Type, e.CreatedAt, len(e.Items))
}

func formatRecord(r model.PlacedRecord) string {
	p := r.PositionOr()
	return fmt.Sprintf("%s @ (%g, %g)  %s  %s", r.ID, p.X, p.Y, r.Category, r.ImageRef)
}
