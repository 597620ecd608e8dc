package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eldridgejm/pensieve/internal/core"
	"github.com/eldridgejm/pensieve/internal/store"
)

const dateFormat = "2006-01-02"

var newCmd = &cobra.Command{
	Use:   "new <locator>",
	Short: "Create a repository on a store",
	Long: `Create a repository on one of the configured stores and clone it into
the current directory.

The locator has the form <store>:<name>, or <store>:<owner>/<name> for a
GitHub store. When the owner is omitted the repository is created under the
authenticated user's account.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeStorePrefixes,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}

		loc, err := core.ResolveLocator(args[0], d.stores)
		if err != nil {
			return err
		}

		if withDate, _ := cmd.Flags().GetBool("date"); withDate {
			loc.Name = "__" + time.Now().Format(dateFormat) + "__" + loc.Name
		}
		public, _ := cmd.Flags().GetBool("public")
		noClone, _ := cmd.Flags().GetBool("no-clone")

		repo, err := loc.Store.Create(cmd.Context(), loc.Owner, loc.Name, store.CreateOptions{Public: public})
		if errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("repository %q already exists on store %q", loc.FullName(), loc.Store.Name())
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, goodStyle.Render(fmt.Sprintf("New repository %q created.", repo.Locator())))

		if noClone {
			return nil
		}
		return cloneInto(cmd.Context(), d, loc)
	},
}

func init() {
	newCmd.Flags().Bool("date", false, "Prefix the repository name with __YYYY-MM-DD__")
	newCmd.Flags().Bool("public", false, "Create a public repository (GitHub stores only; default is private)")
	newCmd.Flags().Bool("no-clone", false, "Do not clone the new repository into the current directory")
	rootCmd.AddCommand(newCmd)
}
