// Package main provides the sticky CLI, which keeps one managed comment per
// identity on a GitHub issue or pull request.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cexll/sticky/internal/config"
	"github.com/cexll/sticky/internal/github/comment"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Swappable for tests.
var (
	loadDotEnv = godotenv.Load
	loadConfig = config.Load
	newClient  = func(ctx context.Context, cfg *config.Config, thread comment.Thread) (comment.Client, error) {
		return cfg.NewClient(ctx, thread)
	}
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	repo       string
	issue      int
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "sticky",
		Short: "Keep one managed status comment per identity on a GitHub thread",
		Long: `sticky creates, updates, appends to and deletes marker-tagged comments
on GitHub issues and pull requests.

Each comment carries invisible markers naming its identity, so later runs
find and rewrite it instead of posting a new one.

Examples:
  sticky publish "Build passed" --id build --update
  sticky publish --file report.md --id coverage --update --append
  sticky withdraw --id build
  sticky find --id coverage --json
  sticky header --id build`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = loadDotEnv()
		},
	}

	root.PersistentFlags().StringVar(&flags.repo, "repo", "", "Repository in owner/repo form (default $GITHUB_REPOSITORY)")
	root.PersistentFlags().IntVar(&flags.issue, "issue", 0, "Issue or pull request number (default $STICKY_ISSUE)")
	root.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(newPublishCmd(flags))
	root.AddCommand(newWithdrawCmd(flags))
	root.AddCommand(newFindCmd(flags))
	root.AddCommand(newHeaderCmd())
	return root
}

// connect loads configuration and builds a publisher for the selected thread.
func (f *globalFlags) connect(ctx context.Context) (*comment.Publisher, comment.Thread, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, comment.Thread{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	thread, err := cfg.Thread(f.repo, f.issue)
	if err != nil {
		return nil, comment.Thread{}, err
	}
	client, err := newClient(ctx, cfg, thread)
	if err != nil {
		return nil, comment.Thread{}, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return comment.NewPublisher(client), thread, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("Error: "+err.Error()))
		os.Exit(1)
	}
}
