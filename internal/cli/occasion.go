package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arterning/style-mirror/internal/model"
)

// NewOccasionCommand creates the occasion command group.
func NewOccasionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "occasion",
		Short: "Manage occasion background photos",
	}
	cmd.AddCommand(
		newOccasionListCommand(rootOpts),
		newOccasionAddCommand(rootOpts),
	)
	return cmd
}

func newOccasionListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List occasions and their draft sizes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, done, err := rootOpts.openEngine(cmd)
			if err != nil {
				return err
			}
			defer done()

			occasions := eng.Album().List()
			if occasions == nil {
				occasions = []model.Occasion{}
			}
			lines := make([]string, 0, len(occasions)+1)
			for _, o := range occasions {
				lines = append(lines, formatOccasion(o))
			}
			if len(occasions) == 0 {
				lines = append(lines, "No occasions.")
			}
			return rootOpts.formatter(cmd).Lines(occasions, lines)
		},
	}
}

func newOccasionAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <image-ref>",
		Short:         "Add a background photo for occasion scenes",
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
			o, err := eng.Album().Add(commandContext(cmd), args[0])
			if err != nil {
				return fail(out, "add failed", err)
			}
			return out.Lines(o, []string{formatOccasion(o)})
		},
	}
}

func formatOccasion(o model.Occasion) string {
	return fmt.Sprintf("%s  %s  %s  %d draft item(s)", o.ID, o.CreatedAt, o.ImageRef, len(o.Clothes))
}
