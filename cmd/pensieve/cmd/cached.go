package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cachedCmd = &cobra.Command{
	Use:   "cached <stores|topics|names>",
	Short: "Print cached values for scripts and shell completion",
	Long: `Print values from the cache snapshot, one per line, without touching
any store:

  stores   the configured store names seen in the snapshot
  topics   every topic appearing on any repository
  names    repository locators, ready to pass to clone

An absent cache prints nothing. Run ` + "`pensieve list`" + ` to build it.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"stores", "topics", "names"},
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}

		snap := d.readCache()

		var values []string
		switch args[0] {
		case "stores":
			values = snap.StoreNames()
		case "topics":
			values = snap.TopicNames()
		case "names":
			values = snap.LocatorNames()
		}

		for _, v := range values {
			fmt.Fprintln(os.Stdout, v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cachedCmd)
}
