package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clicker/internal/app"
	"clicker/internal/clicker"
)

const (
	flagDecode = "decode"
	flagSigner = "signer"
)

func CmdFortune() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fortune",
		Short: "Query get_fortune",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				raw, err := a.Clicker().GetFortune(ctx)
				if err != nil {
					return err
				}
				if decode, _ := cmd.Flags().GetBool(flagDecode); decode {
					fortune, err := clicker.ParseFortune(raw)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), fortune.Fortune)
					return err
				}
				return printJSON(cmd.OutOrStdout(), raw)
			})
		},
	}
	cmd.Flags().Bool(flagDecode, false, "Print only the fortune value")
	return cmd
}

func CmdScores() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Query get_scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				raw, err := a.Clicker().GetScores(ctx)
				if err != nil {
					return err
				}
				if decode, _ := cmd.Flags().GetBool(flagDecode); decode {
					scores, err := clicker.ParseScores(raw)
					if err != nil {
						return err
					}
					for _, entry := range scores.Scores {
						if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", entry.Address, entry.Score); err != nil {
							return err
						}
					}
					return nil
				}
				return printJSON(cmd.OutOrStdout(), raw)
			})
		},
	}
	cmd.Flags().Bool(flagDecode, false, "Print one address and score per line")
	return cmd
}

func CmdUpsertScore() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upsert <score>",
		Short: "Record a score for the signer",
		Long: `Execute upsert_score on the clicker contract. The transaction is signed by
the validator identity unless --signer names another one.
Example:
$ clicker upsert 42 --signer custom_tester_2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := parseScore(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				opts, err := signerOptions(cmd, a)
				if err != nil {
					return err
				}
				result, err := a.Clicker().UpsertScore(ctx, score, opts...)
				if result != nil {
					if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().String(flagSigner, "", "Identity that signs the transaction")
	return cmd
}

func CmdSend() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <addr> <amount>",
		Short: "Ask the contract to send funds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseUint(args[1], 10, 64); err != nil {
				return fmt.Errorf("invalid amount %q: must be a base-10 integer", args[1])
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				opts, err := signerOptions(cmd, a)
				if err != nil {
					return err
				}
				result, err := a.Clicker().Send(ctx, args[0], args[1], opts...)
				if result != nil {
					if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().String(flagSigner, "", "Identity that signs the transaction")
	return cmd
}

func parseScore(s string) (uint16, error) {
	score, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q: must be an integer between 0 and 65535", s)
	}
	return uint16(score), nil
}

func signerOptions(cmd *cobra.Command, a *app.App) ([]clicker.Option, error) {
	name, _ := cmd.Flags().GetString(flagSigner)
	if name == "" {
		return nil, nil
	}
	signer, ok := a.Wallets()[name]
	if !ok {
		return nil, fmt.Errorf("unknown signer %q", name)
	}
	return []clicker.Option{clicker.WithSigner(signer)}, nil
}
