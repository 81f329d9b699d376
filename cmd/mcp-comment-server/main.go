package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cexll/sticky/internal/config"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[MCP Comment Server] Invalid configuration: %v", err)
	}

	log.Println("[MCP Comment Server] Starting sticky comment MCP server v1.0.0")
	if cfg.Repository != "" {
		log.Printf("[MCP Comment Server] Default thread: %s#%d", cfg.Repository, cfg.Issue)
	}
	log.Printf("[MCP Comment Server] Transport: %s", cfg.Transport)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sticky-comment-server",
		Version: "v1.0.0",
	}, nil)
	NewTools(cfg.NewClient, cfg.Thread).Register(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[MCP Comment Server] Received shutdown signal")
		cancel()
	}()

	log.Println("[MCP Comment Server] Starting on stdio transport...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("[MCP Comment Server] Server error: %v", err)
	}
	log.Println("[MCP Comment Server] Server stopped gracefully")
}
