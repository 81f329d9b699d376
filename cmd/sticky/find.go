package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newFindCmd(global *globalFlags) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "List the comments carrying a tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			publisher, thread, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}

			found, err := publisher.Find(cmd.Context(), thread, id)
			if err != nil {
				return err
			}

			if global.jsonOutput {
				type item struct {
					ID   int64  `json:"id"`
					Body string `json:"body"`
				}
				items := make([]item, 0, len(found))
				for _, c := range found {
					items = append(items, item{ID: c.ID, Body: c.Body})
				}
				return writeJSON(cmd.OutOrStdout(), items)
			}

			if len(found) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No comments found on %s\n", thread)
				return nil
			}
			cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
			for _, c := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cyan(fmt.Sprintf("#%d", c.ID)), firstLine(c.Body))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Tag to look for (default \"default\")")
	return cmd
}

// firstLine returns the first non-marker line of body.
func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "<!--") {
			continue
		}
		return line
	}
	return ""
}
