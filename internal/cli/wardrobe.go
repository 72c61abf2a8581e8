package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arterning/style-mirror/internal/model"
)

// NewWardrobeCommand creates the wardrobe command group.
func NewWardrobeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wardrobe",
		Short: "Inspect and edit the garment catalog",
	}
	cmd.AddCommand(
		newWardrobeListCommand(rootOpts),
		newWardrobeAddCommand(rootOpts),
		newWardrobeRecategorizeCommand(rootOpts),
		newWardrobeCategoriesCommand(rootOpts),
	)
	return cmd
}

func newWardrobeListCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List catalog items in capture order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, done, err := rootOpts.openEngine(cmd)
			if err != nil {
				return err
			}
			defer done()

			items := eng.Wardrobe().Items()
			if category != "" {
				items = eng.Wardrobe().ByCategory(category)
			}
			if items == nil {
				items = []model.CatalogItem{}
			}

			lines := make([]string, 0, len(items)+1)
			for _, it := range items {
				lines = append(lines, formatItem(it))
			}
			if len(items) == 0 {
				lines = append(lines, "No items.")
			}
			return rootOpts.formatter(cmd).Lines(items, lines)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list items in this category")
	return cmd
}

func newWardrobeAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <image-ref>",
		Short: "Add a captured image to the catalog",
		Long: `Add a captured image to the catalog.

The item is created in the default category and the catalog is saved.`,
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
			item, err := eng.Wardrobe().Add(commandContext(cmd), args[0])
			if err != nil {
				return fail(out, "add failed", err)
			}
			return out.Lines(item, []string{formatItem(item)})
		},
	}
}

func newWardrobeRecategorizeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "recategorize <item-id> <category>",
		Short:         "Move a catalog item to another category",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, done, err := rootOpts.openEngine(cmd)
			if err != nil {
				return err
			}
			defer done()

			out := rootOpts.formatter(cmd)
			item, err := eng.Wardrobe().Recategorize(commandContext(cmd), args[0], args[1])
			if err != nil {
				return fail(out, "recategorize failed", err)
			}
			return out.Lines(item, []string{formatItem(item)})
		},
	}
}

func newWardrobeCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the wardrobe categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Lines(model.Categories, model.Categories)
		},
	}
}

func formatItem(it model.CatalogItem) string {
	return fmt.Sprintf("%s  %-4s  %s  %s", it.ID, it.Category, it.CreatedAt, it.ImageRef)
}
