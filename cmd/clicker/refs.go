package main

import (
	"context"
	"fmt"

	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/spf13/cobra"

	"clicker/internal/app"
	"clicker/internal/refs"
)

const flagInstance = "instance"

func CmdRefs() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Inspect or edit the contract address book",
	}
	cmd.AddCommand(cmdRefsShow(), cmdRefsSet())
	return cmd
}

func cmdRefsShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the contracts recorded for the configured network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				book := a.Book()
				contracts := book[a.Network()]
				if contracts == nil {
					contracts = map[string]refs.ContractRef{}
				}
				return printJSON(cmd.OutOrStdout(), contracts)
			})
		},
	}
}

func cmdRefsSet() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <contract> <address>",
		Short: "Record a contract address on the configured network",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contract, addr := args[0], args[1]
			if _, _, err := bech32.DecodeAndConvert(addr); err != nil {
				return fmt.Errorf("invalid contract address %q: %w", addr, err)
			}
			instance, _ := cmd.Flags().GetString(flagInstance)

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				store := a.RefsStore()
				book, err := store.Get(ctx)
				if err != nil {
					return err
				}
				if book == nil {
					book = refs.Book{}
				}
				book.SetAddress(a.Network(), contract, instance, addr)
				if err := store.Set(ctx, book); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s/%s -> %s\n", a.Network(), contract, addr)
				return err
			})
		},
	}
	cmd.Flags().String(flagInstance, refs.DefaultInstance, "Instance name within the contract entry")
	return cmd
}
