package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clicker/internal/app"
	"clicker/internal/core"
)

func CmdKeys() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List configured identities and their addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				wallets := a.Wallets()
				validator := wallets.Validator()

				names := make([]string, 0, len(wallets))
				for name := range wallets {
					if name != core.DefaultSignerName {
						names = append(names, name)
					}
				}
				sort.Strings(names)

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, name := range names {
					marker := ""
					if validator != nil && wallets[name] == validator {
						marker = core.DefaultSignerName
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", name, wallets[name].Address(), marker)
				}
				return tw.Flush()
			})
		},
	}
}
