package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arterning/style-mirror/internal/engine"
	"github.com/Arterning/style-mirror/internal/model"
)

// ComposeOptions holds flags for the compose command.
type ComposeOptions struct {
	*RootOptions
	Occasion string // compose on this occasion's background
	Preview  string // rendered preview reference stored with the entry
	Draft    bool   // save the occasion draft instead of committing
}

// placement is one parsed <item-id>[@x,y] argument.
type placement struct {
	Ref    string
	Pos    model.Position
	HasPos bool
}

// NewComposeCommand creates the compose command.
func NewComposeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComposeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compose <item-id>[@x,y]...",
		Short: "Compose a scene from catalog items and commit it",
		Long: `Compose a scene from catalog items and commit it to the journal.

Each argument places one catalog item. An optional @x,y suffix drags the
placement from the origin to that offset. The same item may be placed
more than once.

With --occasion the scene is composed on that occasion's background and
starts from its saved draft. --draft saves the draft instead of
committing.

Examples:
  stylemirror compose 0192f1c2-...@20,30 0192f1c3-...
  stylemirror compose --occasion 0192f1d0-... --draft 0192f1c2-...@12,8`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Occasion, "occasion", "", "occasion id to compose on")
	cmd.Flags().StringVar(&opts.Preview, "preview", "", "preview image reference for the entry")
	cmd.Flags().BoolVar(&opts.Draft, "draft", false, "save the occasion draft instead of committing")

	return cmd
}

func runCompose(opts *ComposeOptions, args []string, cmd *cobra.Command) error {
	placements := make([]placement, 0, len(args))
	for _, arg := range args {
		p, err := parsePlacement(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid placement", err)
		}
		placements = append(placements, p)
	}
	if opts.Draft && opts.Occasion == "" {
		return NewExitError(ExitCommandError, "--draft requires --occasion")
	}

	eng, done, err := opts.openEngine(cmd)
	if err != nil {
		return err
	}
	defer done()

	out := opts.formatter(cmd)
	ctx := commandContext(cmd)

	var s *engine.Surface
	if opts.Occasion != "" {
		s, err = eng.OpenOccasion(opts.Occasion)
	} else {
		s, err = eng.OpenOutfit()
	}
	if err != nil {
		return fail(out, "open failed", err)
	}
	defer s.Close()

	for _, p := range placements {
		item, err := s.AddItem(p.Ref)
		if err != nil {
			return fail(out, "place failed", err)
		}
		out.VerboseLog("placed %s as %s", p.Ref, item.Key)
		if p.HasPos {
			// A fresh placement sits at the origin, so a drag anchored
			// there ends exactly at the requested offset.
			s.Begin(item.Key, 0, 0)
			s.Update(p.Pos.X, p.Pos.Y)
			s.End()
		}
	}

	if opts.Draft {
		if err := s.SaveDraft(ctx); err != nil {
			return fail(out, "save draft failed", err)
		}
		o, _ := eng.Album().Get(opts.Occasion)
		return out.Lines(o, []string{"draft saved: " + formatOccasion(o)})
	}

	s.SetPreview(opts.Preview)
	entry, err := s.Commit(ctx)
	if err != nil {
		return fail(out, "commit failed", err)
	}

	lines := []string{formatEntry(entry)}
	for _, r := range entry.Items {
		lines = append(lines, "  "+formatRecord(r))
	}
	return out.Lines(entry, lines)
}

// parsePlacement parses "<item-id>" or "<item-id>@x,y".
func parsePlacement(arg string) (placement, error) {
	ref, pos, hasPos := strings.Cut(arg, "@")
	if ref == "" {
		return placement{}, fmt.Errorf("%q: missing item id", arg)
	}
	p := placement{Ref: ref}
	if !hasPos {
		return p, nil
	}

	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return placement{}, fmt.Errorf("%q: position must be x,y", arg)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return placement{}, fmt.Errorf("%q: bad x: %w", arg, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return placement{}, fmt.Errorf("%q: bad y: %w", arg, err)
	}
	p.Pos = model.Position{X: x, Y: y}
	p.HasPos = true
	return p, nil
}
