package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clicker/internal/app"
	"clicker/internal/journal"
)

const flagLimit = "limit"

func CmdTxs() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txs",
		Short: "List journaled transactions, newest first",
		Long: `List executed contract calls recorded in the transaction journal.
Requires JOURNAL_ENABLED=true.
Example:
$ clicker txs --signer bombay --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, _ := cmd.Flags().GetString(flagSigner)
			limit, _ := cmd.Flags().GetInt(flagLimit)

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				store := a.Journal()
				if store == nil {
					return fmt.Errorf("transaction journal is disabled (set JOURNAL_ENABLED=true)")
				}
				entries, err := store.List(ctx, journal.Filter{Signer: signer, Limit: limit})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entries)
			})
		},
	}
	cmd.Flags().String(flagSigner, "", "Only show transactions signed by this identity")
	cmd.Flags().Int(flagLimit, journal.DefaultListLimit, "Maximum number of entries")
	return cmd
}
