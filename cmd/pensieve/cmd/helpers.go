package cmd

import (
	"github.com/spf13/cobra"
)

// completeLocators completes a repository locator argument from the cache
// snapshot. No network: an absent or unreadable cache just means no
// suggestions.
func completeLocators(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	d, err := newDeps()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	snap, err := d.cache.Read()
	if err != nil || snap == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return snap.LocatorNames(), cobra.ShellCompDirectiveNoFileComp
}

// completeStorePrefixes completes "store:" prefixes for commands that take a
// locator naming a repository that does not exist yet.
func completeStorePrefixes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	d, err := newDeps()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var prefixes []string
	for name := range d.stores {
		prefixes = append(prefixes, name+":")
	}
	return prefixes, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
