package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eldridgejm/pensieve/internal/core"
	"github.com/eldridgejm/pensieve/internal/tui"
)

var cloneCmd = &cobra.Command{
	Use:   "clone [locator]",
	Short: "Clone a repository from one of the stores",
	Long: `Clone a repository into the current directory.

With a locator argument (<store>:<name> or <store>:<owner>/<name>), clones
that repository. Without one, opens a picker over the cached repository
names; run ` + "`pensieve list`" + ` first to fill the cache.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeLocators,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}

		var text string
		if len(args) > 0 {
			text = args[0]
		} else {
			snap := d.readCache()
			if snap == nil || len(snap.Repositories) == 0 {
				return errors.New("the cache is empty; run `pensieve list` first")
			}
			text, err = tui.PickRepository(snap.LocatorNames())
			if errors.Is(err, tui.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		loc, err := core.ResolveLocator(text, d.stores)
		if err != nil {
			return err
		}
		return cloneInto(cmd.Context(), d, loc)
	},
}

// cloneInto resolves the clone source and runs git clone into the pensieve
// directory, printing hints when the failure has a known cause.
func cloneInto(ctx context.Context, d *deps, loc core.Locator) error {
	source, err := loc.Store.CloneSource(ctx, loc.Owner, loc.Name)
	if err != nil {
		return err
	}

	if err := core.CloneRepository(source, d.dir, loc.Name); err != nil {
		if cloneErr, ok := core.IsCloneError(err); ok {
			printCloneHints(cloneErr)
		}
		return err
	}

	fmt.Fprintln(os.Stdout, goodStyle.Render(fmt.Sprintf("Cloned repository %q.", loc.String())))
	return nil
}

func printCloneHints(cloneErr *core.CloneError) {
	fmt.Fprintln(os.Stderr, badStyle.Render(cloneErr.Kind.String()))
	for _, hint := range cloneErr.Hints {
		fmt.Fprintln(os.Stderr, fadedStyle.Render("  - "+hint))
	}
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
