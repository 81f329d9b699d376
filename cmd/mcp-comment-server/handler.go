package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cexll/sticky/internal/github/comment"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClientFactory returns a comment client authenticated for thread.
type ClientFactory func(ctx context.Context, thread comment.Thread) (comment.Client, error)

// ThreadResolver applies the GITHUB_REPOSITORY / STICKY_ISSUE defaults.
type ThreadResolver func(repo string, issue int) (comment.Thread, error)

// Tools holds the dependencies shared by every tool handler.
type Tools struct {
	clients ClientFactory
	threads ThreadResolver
}

// NewTools creates the tool handlers.
func NewTools(clients ClientFactory, threads ThreadResolver) *Tools {
	if threads == nil {
		threads = comment.ParseThread
	}
	return &Tools{clients: clients, threads: threads}
}

// Register adds the comment tools to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish_comment",
		Description: "Create or update the sticky comment for an identity on an issue or pull request",
	}, t.HandlePublish)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "withdraw_comment",
		Description: "Delete the first sticky comment carrying a tag",
	}, t.HandleWithdraw)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_comments",
		Description: "List the sticky comments carrying a tag",
	}, t.HandleFind)
	log.Println("[MCP Comment Server] Registered tools: publish_comment, withdraw_comment, find_comments")
}

// PublishParams defines the input of publish_comment.
type PublishParams struct {
	Repo     string   `json:"repo,omitempty" jsonschema:"Repository in owner/repo form, defaults to GITHUB_REPOSITORY"`
	Issue    int      `json:"issue,omitempty" jsonschema:"Issue or pull request number, defaults to STICKY_ISSUE"`
	Message  string   `json:"message" jsonschema:"The comment content"`
	ID       []string `json:"id,omitempty" jsonschema:"Identity tags, defaults to a single default tag"`
	Update   bool     `json:"update,omitempty" jsonschema:"Update the existing comment instead of creating a new one"`
	Append   bool     `json:"append,omitempty" jsonschema:"Append to the existing comment when every tag matches"`
	Sanitize bool     `json:"sanitize,omitempty" jsonschema:"Strip markers and redact tokens from the message"`
}

// TagParams defines the input of withdraw_comment and find_comments.
type TagParams struct {
	Repo  string `json:"repo,omitempty" jsonschema:"Repository in owner/repo form, defaults to GITHUB_REPOSITORY"`
	Issue int    `json:"issue,omitempty" jsonschema:"Issue or pull request number, defaults to STICKY_ISSUE"`
	ID    string `json:"id,omitempty" jsonschema:"Tag to look for, defaults to the default tag"`
}

// HandlePublish handles the publish_comment tool call.
func (t *Tools) HandlePublish(ctx context.Context, req *mcp.CallToolRequest, params PublishParams) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Comment Server] Received publish_comment request")

	message := params.Message
	if params.Sanitize {
		message = comment.SanitizeMessage(message)
	}
	if message == "" {
		log.Printf("[MCP Comment Server] Empty message, nothing to publish")
		return jsonResult(map[string]any{
			"success": true,
			"action":  comment.ActionNone,
		})
	}

	publisher, thread, err := t.publisher(ctx, params.Repo, params.Issue)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[MCP Comment Server] Publishing %d characters to %s", len(message), thread)

	res, err := publisher.Publish(ctx, thread, message, comment.Options{
		Identity:         comment.Tags(params.ID...),
		UpdateExisting:   params.Update,
		AppendToExisting: params.Append,
	})
	if err != nil {
		return errorResult("publish", err), nil, nil
	}

	return jsonResult(map[string]any{
		"success":                  true,
		"thread":                   thread.String(),
		"action":                   res.Action,
		"comment_id":               res.CommentID,
		"updated_previous_comment": res.UpdatedPreviousComment,
		"body_length":              len(res.Body),
	})
}

// HandleWithdraw handles the withdraw_comment tool call.
func (t *Tools) HandleWithdraw(ctx context.Context, req *mcp.CallToolRequest, params TagParams) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Comment Server] Received withdraw_comment request")

	publisher, thread, err := t.publisher(ctx, params.Repo, params.Issue)
	if err != nil {
		return nil, nil, err
	}

	deleted, err := publisher.Withdraw(ctx, thread, params.ID)
	if err != nil {
		return errorResult("withdraw", err), nil, nil
	}
	return jsonResult(map[string]any{
		"success": true,
		"thread":  thread.String(),
		"deleted": deleted,
	})
}

// HandleFind handles the find_comments tool call.
func (t *Tools) HandleFind(ctx context.Context, req *mcp.CallToolRequest, params TagParams) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Comment Server] Received find_comments request")

	publisher, thread, err := t.publisher(ctx, params.Repo, params.Issue)
	if err != nil {
		return nil, nil, err
	}

	found, err := publisher.Find(ctx, thread, params.ID)
	if err != nil {
		return errorResult("find", err), nil, nil
	}

	type item struct {
		ID   int64  `json:"id"`
		Body string `json:"body"`
	}
	items := make([]item, 0, len(found))
	for _, c := range found {
		items = append(items, item{ID: c.ID, Body: c.Body})
	}
	return jsonResult(map[string]any{
		"success":  true,
		"thread":   thread.String(),
		"comments": items,
	})
}

func (t *Tools) publisher(ctx context.Context, repo string, issue int) (*comment.Publisher, comment.Thread, error) {
	thread, err := t.threads(repo, issue)
	if err != nil {
		return nil, comment.Thread{}, err
	}
	client, err := t.clients(ctx, thread)
	if err != nil {
		return nil, comment.Thread{}, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return comment.NewPublisher(client), thread, nil
}

func errorResult(op string, err error) *mcp.CallToolResult {
	log.Printf("[MCP Comment Server] Failed to %s comment: %v", op, err)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)},
		},
		IsError: true,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}
