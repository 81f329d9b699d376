package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newWithdrawCmd(global *globalFlags) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Delete the managed comment for a tag",
		Long: `Delete the first comment carrying the tag's marker.
Withdrawing a comment that does not exist is not an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			publisher, thread, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}

			deleted, err := publisher.Withdraw(cmd.Context(), thread, id)
			if err != nil {
				return err
			}

			if global.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"thread":  thread.String(),
					"deleted": deleted,
				})
			}
			if !deleted {
				gray := color.New(color.FgHiBlack).SprintFunc()
				fmt.Fprintln(cmd.OutOrStdout(), gray(fmt.Sprintf("No comment to withdraw on %s", thread)))
				return nil
			}
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s comment on %s\n", yellow("Withdrew"), thread)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Tag of the comment to delete (default \"default\")")
	return cmd
}
