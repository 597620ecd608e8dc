package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eldridgejm/pensieve/internal/core"
	"github.com/eldridgejm/pensieve/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories across every store",
	Long: `List the repositories on every configured store as one merged view.

A fresh cache snapshot is served directly; a stale or missing one triggers a
refresh across the stores first. Repositories with the "archived" topic are
hidden unless --all is given or --topic selects them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}

		topic, _ := cmd.Flags().GetString("topic")
		all, _ := cmd.Flags().GetBool("all")
		force, _ := cmd.Flags().GetBool("refresh")

		snap := d.readCache()

		var refreshErr error
		if force || d.cache.Stale(snap) {
			var failures []core.StoreFailure
			snap, failures, refreshErr = d.cache.Refresh(cmd.Context(), d.agg)
			for _, f := range failures {
				fmt.Fprintln(os.Stderr, badStyle.Render("warning: "+f.Err.Error()))
			}
			if snap == nil {
				return refreshErr
			}
			if refreshErr != nil {
				captured := snap.CapturedAt.Local().Format("2006-01-02 15:04")
				fmt.Fprintln(os.Stderr, fadedStyle.Render("showing the snapshot from "+captured))
			}
		}

		repos := core.FilterRepositories(snap.Repositories, core.Filter{Topic: topic, All: all})
		printRepositories(os.Stdout, repos)
		return refreshErr
	},
}

// printRepositories renders the merged view: a name line per repository,
// then description and topics lines, with "None" standing in for values the
// backend never reported.
func printRepositories(w io.Writer, repos []store.Repository) {
	none := fadedStyle.Render("None")

	for _, r := range repos {
		fmt.Fprintln(w, highlightStyle.Render(r.FullName())+fadedStyle.Render(" :: "+r.Store))

		description := none
		if r.Description != nil {
			description = infoStyle.Render(*r.Description)
		}
		fmt.Fprintln(w, "    "+headingStyle.Render("description")+": "+description)

		topics := none
		if len(r.Topics) > 0 {
			topics = infoStyle.Render(strings.Join(r.Topics, ", "))
		}
		fmt.Fprintln(w, "    "+headingStyle.Render("topics")+": "+topics)
	}
}

func init() {
	listCmd.Flags().StringP("topic", "t", "", "Only repositories carrying this topic")
	listCmd.Flags().BoolP("all", "a", false, "Include repositories with the archived topic")
	listCmd.Flags().Bool("refresh", false, "Refresh from the stores even if the cache is fresh")

	_ = listCmd.RegisterFlagCompletionFunc("topic", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		d, err := newDeps()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		snap, err := d.cache.Read()
		if err != nil || snap == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return snap.TopicNames(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(listCmd)
}
