package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cexll/sticky/internal/github/comment"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type publishFlags struct {
	ids      []string
	update   bool
	append   bool
	file     string
	sanitize bool
}

func newPublishCmd(global *globalFlags) *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish [message...]",
		Short: "Create or update the managed comment for an identity",
		Long: `Publish a message as the managed comment for an identity.

Without --update a new comment is always created. With --update the first
comment carrying one of the identity's markers is replaced. With --append
the message is added below the existing body when the comment carries every
marker of the identity.

The message is taken from the arguments or from --file ("-" reads stdin).
An empty message is a no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := readMessage(cmd.InOrStdin(), flags.file, args)
			if err != nil {
				return err
			}
			if flags.sanitize {
				message = comment.SanitizeMessage(message)
			}
			if message == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to publish")
				return nil
			}

			publisher, thread, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}

			res, err := publisher.Publish(cmd.Context(), thread, message, comment.Options{
				Identity:         comment.Tags(flags.ids...),
				UpdateExisting:   flags.update,
				AppendToExisting: flags.append,
			})
			if err != nil {
				return err
			}

			if global.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"thread":                   thread.String(),
					"action":                   res.Action,
					"comment_id":               res.CommentID,
					"updated_previous_comment": res.UpdatedPreviousComment,
				})
			}

			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s comment %d on %s\n", green(actionLabel(res.Action)), res.CommentID, thread)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&flags.ids, "id", nil, "Identity tag (repeatable, default \"default\")")
	cmd.Flags().BoolVar(&flags.update, "update", false, "Update the existing comment instead of creating a new one")
	cmd.Flags().BoolVar(&flags.append, "append", false, "Append to the existing comment (implies --update)")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read the message from a file (\"-\" for stdin)")
	cmd.Flags().BoolVar(&flags.sanitize, "sanitize", false, "Strip markers and redact tokens from the message")
	return cmd
}

// readMessage returns the message from file when set, otherwise the
// arguments joined by spaces.
func readMessage(stdin io.Reader, file string, args []string) (string, error) {
	if file == "" {
		return strings.Join(args, " "), nil
	}
	if len(args) > 0 {
		return "", fmt.Errorf("pass the message either as arguments or with --file, not both")
	}

	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	return string(b), nil
}

func actionLabel(a comment.Action) string {
	switch a {
	case comment.ActionCreated:
		return "Created"
	case comment.ActionUpdated:
		return "Updated"
	case comment.ActionAppended:
		return "Appended to"
	default:
		return string(a)
	}
}
