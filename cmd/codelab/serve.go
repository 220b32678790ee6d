package main

import (
	"context"

	"github.com/spf13/cobra"

	"codelab/internal/mcp"
	"codelab/internal/widget"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lesson tool server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	catalog, err := loadCatalog(cfg, logger)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close(ctx)
	}

	widgets := widget.Config{StepDelay: cfg.Widgets.StepDelay()}
	server := mcp.NewServer(catalog, registry, archive, widgets, cfg.Runtime.Timeout(), logger, version)

	logger.Info("serving lessons", "count", catalog.Len())
	return server.Run(ctx, &sdk.StdioTransport{})
}
