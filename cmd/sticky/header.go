package main

import (
	"fmt"

	"github.com/cexll/sticky/internal/github/comment"
	"github.com/spf13/cobra"
)

func newHeaderCmd() *cobra.Command {
	var ids []string

	cmd := &cobra.Command{
		Use:   "header",
		Short: "Print the markers for an identity",
		Long: `Print the invisible markers that tag a comment with an identity.
Useful for scripts that post comments by other means.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), comment.Header(comment.Tags(ids...).Normalize()))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ids, "id", nil, "Identity tag (repeatable, default \"default\")")
	return cmd
}
